package model

import "strings"

// DefaultExcludedLinkTypes are link types that describe the template itself
// rather than work, so they are never carried into a clone.
var DefaultExcludedLinkTypes = []string{"Cloners", "Duplicate"}

// Namespace decides which related tickets are clonable. Only keys in the
// template project are followed; links of excluded types are dropped.
type Namespace struct {
	Prefix            string
	ExcludedLinkTypes []string
}

// Relations is the unfiltered relationship data a store reads for a ticket.
type Relations struct {
	Parent   string
	Subtasks []string
	Links    []Link
}

// Contains reports whether id belongs to the namespace. An empty prefix
// accepts every key.
func (n Namespace) Contains(id string) bool {
	if n.Prefix == "" {
		return true
	}
	return strings.HasPrefix(id, n.Prefix+"-")
}

func (n Namespace) excluded(linkType string) bool {
	for _, t := range n.ExcludedLinkTypes {
		if strings.EqualFold(t, linkType) {
			return true
		}
	}
	return false
}

// Apply fills the relationship views of t from raw.
//
// Sub-tasks get a parent (when it is in the namespace) and never get
// subtasks or links: links are not collected for sub-tasks at all, a
// limitation of the template tracker that callers rely on.
func (n Namespace) Apply(t *Ticket, raw Relations) {
	t.ParentID = ""
	t.SubtaskIDs = nil
	t.SubtaskCount = 0
	t.Links = nil

	if t.IsSubTask() {
		if raw.Parent != "" && n.Contains(raw.Parent) {
			t.ParentID = raw.Parent
		}
		return
	}

	t.SubtaskCount = len(raw.Subtasks)
	for _, id := range raw.Subtasks {
		if n.Contains(id) {
			t.SubtaskIDs = append(t.SubtaskIDs, id)
		}
	}
	for _, l := range raw.Links {
		if n.excluded(l.Type) || !n.Contains(l.OtherID) {
			continue
		}
		t.Links = append(t.Links, l)
	}
}
