// Package jira is the REST backend of the cloner. It talks to a JIRA
// server through API version 2 and implements clone.TicketStore.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.Status, e.Message)
}

// Client provides HTTP access to a JIRA instance.
type Client struct {
	URL      string
	Username string
	Token    string
	// PAVField is the custom field id updated by AppendPAV.
	PAVField string
	// Namespace filters the relationships of fetched tickets.
	Namespace  model.Namespace
	HTTPClient *http.Client
	Logger     *slog.Logger

	// RetryInitial and RetryMaxElapsed bound the backoff of read requests.
	RetryInitial    time.Duration
	RetryMaxElapsed time.Duration

	user string
}

// NewClient creates a Client for the server at url. An empty username
// selects bearer (personal access token) authentication.
func NewClient(url, username, token string, ns model.Namespace, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		URL:       strings.TrimSuffix(url, "/"),
		Username:  username,
		Token:     token,
		PAVField:  fields.DefaultPAVField,
		Namespace: ns,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger:          logger,
		RetryInitial:    500 * time.Millisecond,
		RetryMaxElapsed: 30 * time.Second,
	}
}

// get issues an idempotent GET, retrying transient failures.
func (c *Client) get(ctx context.Context, apiURL string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInitial
	bo.MaxElapsedTime = c.RetryMaxElapsed

	var body []byte
	err := backoff.Retry(func() error {
		b, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			if isRetryable(err) {
				c.Logger.Debug("retrying jira request", "url", apiURL, "err", err)
				return err
			}
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}, backoff.WithContext(bo, ctx))
	return body, err
}

// send issues a request that is never retried.
func (c *Client) send(ctx context.Context, method, apiURL string, payload any) ([]byte, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}
	return c.doRequest(ctx, method, apiURL, data)
}

// doRequest executes an authenticated HTTP request and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("jira URL not configured")
	}
	if c.Token == "" {
		return nil, fmt.Errorf("jira API token not configured")
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tclone/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.Logger.Debug("jira request", "method", method, "url", apiURL, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
	}
	return respBody, nil
}

// setAuth sets the appropriate authentication header on the request.
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Token))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// maxErrorLen bounds a raw error body quoted in an APIError.
const maxErrorLen = 200

// errorMessage extracts the first message of a JIRA error body. Field
// errors are reported in field order so the message is stable.
func errorMessage(body []byte) string {
	var e struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if len(e.ErrorMessages) > 0 {
			return e.ErrorMessages[0]
		}
		if len(e.Errors) > 0 {
			keys := make([]string, 0, len(e.Errors))
			for field := range e.Errors {
				keys = append(keys, field)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, field := range keys {
				parts[i] = field + ": " + e.Errors[field]
			}
			return strings.Join(parts, "; ")
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorLen {
		cut := maxErrorLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}

// isRetryable reports whether a failed read may succeed when repeated:
// throttling, server errors, timeouts and broken connections. Request
// errors such as a bad URL or scheme are permanent.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
