package model

import (
	"fmt"
	"strings"
)

// Status values the cloner cares about. Any other tracker status is carried as-is.
const (
	StatusDeprecated = "Deprecated"
	StatusOpen       = "Open"
)

// Issue types. Everything that is not a sub-task can parent sub-tasks.
const (
	TypeSubTask = "Sub-task"
	TypeTask    = "Task"
)

// Direction tells which side of a link the other ticket sits on.
type Direction string

const (
	DirectionInward  Direction = "inward"
	DirectionOutward Direction = "outward"
)

// ParseDirection accepts "inward", "outward" and the JIRA payload keys
// "inwardIssue" / "outwardIssue".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inward", "inwardissue":
		return DirectionInward, nil
	case "outward", "outwardissue":
		return DirectionOutward, nil
	default:
		return "", fmt.Errorf("invalid link direction %q: must be inward or outward", s)
	}
}

func (d Direction) String() string { return string(d) }

// Reverse returns the direction as seen from the other ticket.
func (d Direction) Reverse() Direction {
	if d == DirectionInward {
		return DirectionOutward
	}
	return DirectionInward
}

// Link is one relationship from a ticket to another ticket.
type Link struct {
	OtherID   string    `json:"other_id" yaml:"other_id"`
	Type      string    `json:"type" yaml:"type"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Fields is the opaque, copyable content of a ticket keyed by tracker field id.
type Fields map[string]any

// Clone returns a shallow copy of f. Nested values are shared.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the string value stored under key, or "".
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Values reads a list-of-objects field (e.g. [{"value": "x"}]) and returns
// the "value" entries. Plain string lists are returned as they are.
func (f Fields) Values(key string) []string {
	return listEntries(f[key], "value")
}

// Names is Values for list entries keyed by "name" (components, fix versions).
func (f Fields) Names(key string) []string {
	return listEntries(f[key], "name")
}

func listEntries(raw any, entryKey string) []string {
	var out []string
	switch list := raw.(type) {
	case []any:
		for _, item := range list {
			switch v := item.(type) {
			case map[string]any:
				if s, ok := v[entryKey].(string); ok {
					out = append(out, s)
				}
			case Fields:
				if s, ok := v[entryKey].(string); ok {
					out = append(out, s)
				}
			case string:
				out = append(out, v)
			}
		}
	case []map[string]any:
		for _, v := range list {
			if s, ok := v[entryKey].(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, list...)
	}
	return out
}

// Ticket is a tracker issue as seen by the cloner. Relationship views are
// already filtered to the clonable namespace by the store that built it.
type Ticket struct {
	ID           string   `json:"id"`
	InternalID   string   `json:"internal_id,omitempty"`
	Status       string   `json:"status"`
	IssueType    string   `json:"issue_type"`
	ParentID     string   `json:"parent_id,omitempty"`
	SubtaskIDs   []string `json:"subtask_ids,omitempty"`
	SubtaskCount int      `json:"subtask_count"`
	Links        []Link   `json:"links,omitempty"`
	Fields       Fields   `json:"fields,omitempty"`
}

// IsSubTask reports whether the ticket is a sub-task.
func (t *Ticket) IsSubTask() bool { return t.IssueType == TypeSubTask }

// IsDeprecated reports whether the ticket is excluded from cloning.
func (t *Ticket) IsDeprecated() bool { return t.Status == StatusDeprecated }

// Summary returns the summary field.
func (t *Ticket) Summary() string { return t.Fields.String("summary") }

// Description returns the description field.
func (t *Ticket) Description() string { return t.Fields.String("description") }

// Labels returns the labels field.
func (t *Ticket) Labels() []string { return listEntries(t.Fields["labels"], "") }

// Validate checks the fields every store relies on.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("ticket ID is required")
	}
	if t.IssueType == "" {
		return fmt.Errorf("ticket %s: issue type is required", t.ID)
	}
	if t.ParentID != "" && !t.IsSubTask() {
		return fmt.Errorf("ticket %s: only sub-tasks can have a parent", t.ID)
	}
	if t.IsSubTask() && (len(t.SubtaskIDs) > 0 || len(t.Links) > 0) {
		return fmt.Errorf("ticket %s: sub-tasks carry no subtasks or links", t.ID)
	}
	return nil
}
