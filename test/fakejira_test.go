package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeJira is an in-memory JIRA server covering the endpoints the cloner
// calls.
type fakeJira struct {
	mu       sync.Mutex
	issues   map[string]map[string]any // key -> fields
	created  map[string]map[string]any // key -> create payload as sent
	ids      map[string]string         // key -> internal id
	next     map[string]int            // project -> last number
	comments map[string][]string
	links    []map[string]any
	moves    []string
}

func newFakeJira(t *testing.T) (*fakeJira, *httptest.Server) {
	t.Helper()
	f := &fakeJira{
		issues:   make(map[string]map[string]any),
		created:  make(map[string]map[string]any),
		ids:      make(map[string]string),
		next:     make(map[string]int),
		comments: make(map[string][]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

// add stores a template issue. Relationship fields are given in REST shape.
func (f *fakeJira) add(key string, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[key] = fields
	f.ids[key] = strconv.Itoa(10000 + len(f.ids) + 1)
}

func (f *fakeJira) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/rest/auth/1/session":
		writeJSON(w, http.StatusOK, map[string]any{"name": "tester"})

	case path == "/rest/api/2/issue" && r.Method == http.MethodPost:
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errorMessages": []string{err.Error()}})
			return
		}
		project, _ := body.Fields["project"].(map[string]any)
		pkey, _ := project["key"].(string)
		f.next[pkey]++
		key := fmt.Sprintf("%s-%d", pkey, f.next[pkey])
		sent := make(map[string]any, len(body.Fields))
		for k, v := range body.Fields {
			sent[k] = v
		}
		f.created[key] = sent
		f.issues[key] = body.Fields
		f.ids[key] = strconv.Itoa(20000 + len(f.ids) + 1)
		if parent, ok := body.Fields["parent"].(map[string]any); ok {
			pk, _ := parent["key"].(string)
			if p, ok := f.issues[pk]; ok {
				subs, _ := p["subtasks"].([]any)
				p["subtasks"] = append(subs, map[string]any{"key": key})
			}
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": f.ids[key], "key": key})

	case path == "/rest/api/2/issueLink":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.links = append(f.links, body)
		w.WriteHeader(http.StatusCreated)

	case path == "/secure/MoveIssueLink.jspa":
		q := r.URL.Query()
		f.moves = append(f.moves, q.Get("id")+":"+q.Get("currentSubTaskSequence")+"->"+q.Get("subTaskSequence"))
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(path, "/rest/api/2/issue/"):
		rest := strings.TrimPrefix(path, "/rest/api/2/issue/")
		key, sub, _ := strings.Cut(rest, "/")
		fields, ok := f.issues[key]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"errorMessages": []string{"Issue Does Not Exist"}})
			return
		}
		switch {
		case sub == "" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"id": f.ids[key], "key": key, "fields": fields})
		case sub == "comment":
			var body struct {
				Body string `json:"body"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.comments[key] = append(f.comments[key], body.Body)
			writeJSON(w, http.StatusCreated, map[string]any{"id": "1"})
		case sub == "remotelink" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, []any{})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"errorMessages": []string{"unsupported"}})
		}

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"errorMessages": []string{"no route " + path}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
