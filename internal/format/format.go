package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
	"github.com/RamXX/tclone/internal/store"
	"github.com/RamXX/tclone/internal/ui"
)

// SearchResults renders the tickets a query matched: the count, then
// KEY - SUMMARY with the PAVs and labels of each ticket below it.
func SearchResults(w io.Writer, tickets []*model.Ticket, schema fields.Schema) {
	fmt.Fprintf(w, "%d ticket(s) found\n", len(tickets))
	for _, t := range tickets {
		summary := t.Summary()
		if len(summary) > 80 {
			summary = summary[:77] + "..."
		}
		fmt.Fprintf(w, "%s %s - %s\n", ui.RenderStatusIcon(t.Status), ui.RenderID(t.ID), summary)
		fmt.Fprintf(w, "    %s %s  %s %s\n",
			ui.RenderAccent("PAV:"), orNone(t.Fields.Values(schema.PAVField)),
			ui.RenderAccent("Labels:"), orNone(t.Labels()),
		)
	}
}

func orNone(values []string) string {
	if len(values) == 0 {
		return ui.RenderMuted("none")
	}
	return strings.Join(values, ", ")
}

// Detail renders a single ticket with its relationships and the
// description rendered as markdown.
func Detail(w io.Writer, t *model.Ticket, schema fields.Schema) {
	// Header: ICON KEY . SUMMARY [TYPE . STATUS]
	fmt.Fprintf(w, "%s %s %s %s [%s %s %s]\n",
		ui.RenderStatusIcon(t.Status),
		ui.RenderID(t.ID),
		ui.RenderMuted("."),
		ui.RenderBold(t.Summary()),
		ui.RenderType(t.IssueType),
		ui.RenderMuted("."),
		ui.RenderStatus(t.Status),
	)

	if t.ParentID != "" {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Parent:"), t.ParentID)
	}
	if t.SubtaskCount > 0 {
		line := strings.Join(t.SubtaskIDs, ", ")
		if hidden := t.SubtaskCount - len(t.SubtaskIDs); hidden > 0 {
			note := ui.RenderMuted(fmt.Sprintf("(+%d outside the template project)", hidden))
			if line == "" {
				line = note
			} else {
				line += " " + note
			}
		}
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Sub-tasks:"), line)
	}
	for _, l := range t.Links {
		fmt.Fprintf(w, "%s %s %s %s (%s)\n", ui.RenderAccent("Link:"), ui.IconLink, l.OtherID, l.Type, l.Direction)
	}
	if v := t.Fields.Values(schema.PAVField); len(v) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("PAV:"), strings.Join(v, ", "))
	}
	if v := t.Fields.Values(schema.KeywordsField); len(v) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Keywords:"), strings.Join(v, ", "))
	}
	if v := t.Fields.Values(schema.MilestoneField); len(v) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Milestone:"), strings.Join(v, ", "))
	}
	if labels := t.Labels(); len(labels) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.RenderAccent("Labels:"), strings.Join(labels, ", "))
	}

	if d := t.Description(); d != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, ui.RenderMarkdown(d))
		if !strings.HasSuffix(d, "\n") {
			fmt.Fprintln(w)
		}
	}
}

// Notes renders the web links and comments of a vault ticket below its
// detail. Nothing is printed when there are none.
func Notes(w io.Writer, links []store.RemoteLink, comments string) {
	if len(links) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.RenderBold("Remote links"))
		for _, l := range links {
			if l.Title != "" {
				fmt.Fprintf(w, "  %s %s\n", l.Title, ui.RenderMuted(l.URL))
			} else {
				fmt.Fprintf(w, "  %s\n", l.URL)
			}
		}
	}
	if comments = strings.TrimSpace(comments); comments != "" {
		fmt.Fprintf(w, "\n%s\n", ui.RenderBold("Comments"))
		for _, line := range strings.Split(comments, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
