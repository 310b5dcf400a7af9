package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/model"
)

var _ clone.TicketStore = (*Client)(nil)

// searchPageSize is the largest page the server hands out.
const searchPageSize = 500

func (c *Client) issueURL(key string) string {
	return fmt.Sprintf("%s/rest/api/2/issue/%s", c.URL, url.PathEscape(key))
}

// Fetch reads a single issue. A missing issue wraps clone.ErrNotFound.
func (c *Client) Fetch(ctx context.Context, key string) (*model.Ticket, error) {
	body, err := c.get(ctx, c.issueURL(key))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("get issue %s: %w: %w", key, clone.ErrNotFound, err)
		}
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}
	return decodeTicket(body, c.Namespace)
}

// Create creates an issue from a field bag and returns its key.
func (c *Client) Create(ctx context.Context, f model.Fields) (string, error) {
	body, err := c.send(ctx, http.MethodPost, c.URL+"/rest/api/2/issue", map[string]any{"fields": f})
	if err != nil {
		return "", fmt.Errorf("create issue: %w", err)
	}
	var created struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parse create response: %w", err)
	}
	if created.Key == "" {
		return "", fmt.Errorf("create issue: response carries no key")
	}
	return created.Key, nil
}

// AddComment adds a plain text comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, text string) error {
	_, err := c.send(ctx, http.MethodPost, c.issueURL(key)+"/comment", map[string]string{"body": text})
	if err != nil {
		return fmt.Errorf("comment on %s: %w", key, err)
	}
	return nil
}

// CreateLink links fromID to toID. dir is the side toID sits on.
func (c *Client) CreateLink(ctx context.Context, fromID, toID, linkType string, dir model.Direction) error {
	inward, outward := fromID, toID
	if dir == model.DirectionInward {
		inward, outward = toID, fromID
	}
	payload := map[string]any{
		"type":         map[string]string{"name": linkType},
		"inwardIssue":  map[string]string{"key": inward},
		"outwardIssue": map[string]string{"key": outward},
	}
	if _, err := c.send(ctx, http.MethodPost, c.URL+"/rest/api/2/issueLink", payload); err != nil {
		return fmt.Errorf("link %s to %s: %w", fromID, toID, err)
	}
	return nil
}

// Search returns the keys of every issue matching q, handling pagination.
func (c *Client) Search(ctx context.Context, q model.Query) ([]string, error) {
	jql := JQL(q)
	c.Logger.Debug("searching", "jql", jql)

	var keys []string
	startAt := 0
	for {
		params := url.Values{
			"jql":        {jql},
			"fields":     {"key"},
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(searchPageSize)},
		}
		body, err := c.get(ctx, c.URL+"/rest/api/2/search?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result struct {
			Total  int `json:"total"`
			Issues []struct {
				Key string `json:"key"`
			} `json:"issues"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parse search response: %w", err)
		}
		for _, i := range result.Issues {
			keys = append(keys, i.Key)
		}
		if len(result.Issues) == 0 || startAt+len(result.Issues) >= result.Total {
			break
		}
		startAt += len(result.Issues)
	}
	return keys, nil
}

// CurrentUser returns the name of the authenticated user. The answer is
// cached for the lifetime of the client.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	if c.user != "" {
		return c.user, nil
	}
	body, err := c.get(ctx, c.URL+"/rest/auth/1/session")
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	var session struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("parse session response: %w", err)
	}
	if session.Name == "" {
		return "", fmt.Errorf("get session: no user name in response")
	}
	c.user = session.Name
	return c.user, nil
}

// MoveSubtask reorders the sub-tasks of parent. The server only exposes
// this through its web action, which needs the internal issue id.
func (c *Client) MoveSubtask(ctx context.Context, parent *model.Ticket, from, to int) error {
	if parent.InternalID == "" {
		return fmt.Errorf("move sub-task of %s: internal id unknown", parent.ID)
	}
	params := url.Values{
		"id":                     {parent.InternalID},
		"currentSubTaskSequence": {strconv.Itoa(from)},
		"subTaskSequence":        {strconv.Itoa(to)},
	}
	if _, err := c.doRequest(ctx, http.MethodGet, c.URL+"/secure/MoveIssueLink.jspa?"+params.Encode(), nil); err != nil {
		return fmt.Errorf("move sub-task of %s: %w", parent.ID, err)
	}
	return nil
}

// CopyRemoteLinks recreates the remote (web) links of fromID on toID.
func (c *Client) CopyRemoteLinks(ctx context.Context, fromID, toID string) error {
	body, err := c.get(ctx, c.issueURL(fromID)+"/remotelink")
	if err != nil {
		return fmt.Errorf("get remote links of %s: %w", fromID, err)
	}
	if len(body) == 0 {
		return nil
	}
	var links []map[string]any
	if err := json.Unmarshal(body, &links); err != nil {
		return fmt.Errorf("parse remote links: %w", err)
	}
	for _, l := range links {
		delete(l, "id")
		delete(l, "self")
		if _, err := c.send(ctx, http.MethodPost, c.issueURL(toID)+"/remotelink", l); err != nil {
			return fmt.Errorf("create remote link on %s: %w", toID, err)
		}
	}
	return nil
}

// AppendPAV adds a Product Affects Version to an issue, keeping the
// versions it already has.
func (c *Client) AppendPAV(ctx context.Context, key, pav string) error {
	payload := map[string]any{
		"update": map[string]any{
			c.PAVField: []any{map[string]any{"add": map[string]string{"value": pav}}},
		},
	}
	if _, err := c.send(ctx, http.MethodPut, c.issueURL(key), payload); err != nil {
		return fmt.Errorf("append PAV to %s: %w", key, err)
	}
	return nil
}
