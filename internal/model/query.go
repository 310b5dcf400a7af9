package model

import (
	"fmt"
	"strings"
)

// Query selects template tickets. Empty fields do not constrain the result.
type Query struct {
	Project  string
	PAV      string
	Keywords []string
	// KeywordsSkipSubTasks applies the keyword filter to non-sub-tasks only,
	// so the sub-tasks of matching parents still match on PAV alone.
	KeywordsSkipSubTasks bool
}

func (q Query) String() string {
	parts := []string{fmt.Sprintf("project=%s", q.Project)}
	if q.PAV != "" {
		parts = append(parts, fmt.Sprintf("pav=%s", q.PAV))
	}
	if len(q.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("keywords=%s", strings.Join(q.Keywords, ",")))
	}
	return strings.Join(parts, " ")
}

// Matches evaluates q against a ticket. pavField and keywordsField name the
// tracker fields holding the PAV and keyword lists.
func (q Query) Matches(t *Ticket, pavField, keywordsField string) bool {
	if q.Project != "" && !strings.HasPrefix(t.ID, q.Project+"-") {
		return false
	}
	if q.PAV != "" && !containsFold(t.Fields.Values(pavField), q.PAV) {
		return false
	}
	if len(q.Keywords) == 0 || (q.KeywordsSkipSubTasks && t.IsSubTask()) {
		return true
	}
	have := t.Fields.Values(keywordsField)
	for _, kw := range q.Keywords {
		if !containsFold(have, kw) {
			return false
		}
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
