package jira

import (
	"fmt"
	"strings"

	"github.com/RamXX/tclone/internal/model"
)

// Display names of the searchable template fields.
const (
	PAVFieldName     = "Product Affects Version"
	KeywordFieldName = "Keyword"
)

// JQL renders q as a JQL query.
//
// With KeywordsSkipSubTasks the keyword terms only constrain non-sub-tasks,
// so a parent and its sub-tasks match on the PAV alone.
func JQL(q model.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "project=%s", q.Project)
	if q.PAV != "" {
		fmt.Fprintf(&b, " and %s=%s", quote(PAVFieldName), quote(q.PAV))
	}
	if len(q.Keywords) == 0 {
		return b.String()
	}
	var kw strings.Builder
	for _, k := range q.Keywords {
		fmt.Fprintf(&kw, " and %s=%s", quote(KeywordFieldName), quote(k))
	}
	if q.KeywordsSkipSubTasks {
		fmt.Fprintf(&b, ` and ((issuetype="%s") or (issuetype!="%s"%s))`, model.TypeSubTask, model.TypeSubTask, kw.String())
	} else {
		b.WriteString(kw.String())
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
