package model

// CloneRecord describes one ticket created (or planned, in dry-run) by a
// clone run, in creation order.
type CloneRecord struct {
	SourceID string `json:"source_id"`
	NewID    string `json:"new_id"`
	// ParentSourceID is set for sub-tasks cloned under a parent that was
	// cloned in the same run.
	ParentSourceID string `json:"parent_source_id,omitempty"`
	// ParentNewID is the parent the clone was created under, which may be a
	// pre-existing ticket outside the run.
	ParentNewID string `json:"parent_new_id,omitempty"`
	IssueType   string `json:"issue_type"`
	Summary     string `json:"summary"`
}
