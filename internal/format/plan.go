package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/RamXX/tclone/internal/graph"
	"github.com/RamXX/tclone/internal/idgen"
	"github.com/RamXX/tclone/internal/model"
	"github.com/RamXX/tclone/internal/ui"
)

// Plan renders the clones of one run as a tree: each root with the
// sub-tasks created under it, then the links between clones and a summary
// line. In dry-run the keys are placeholders and nothing was written.
func Plan(w io.Writer, p *graph.Plan, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, ui.RenderDryRun("DRY RUN: nothing was created"))
	}
	tree := p.Tree()
	if len(tree) == 0 {
		fmt.Fprintln(w, "Nothing cloned.")
		return
	}

	for _, root := range tree {
		fmt.Fprintln(w, planLine(root.Record))
		renderChildren(w, root.Children, "")
	}

	if edges := p.Edges(); len(edges) > 0 {
		fmt.Fprintln(w)
		for _, e := range edges {
			a, _ := p.Record(e.A)
			b, _ := p.Record(e.B)
			fmt.Fprintf(w, "%s %s %s %s\n", ui.RenderMuted(e.Type+":"), newID(a.NewID), ui.IconLink, newID(b.NewID))
		}
	}

	s := p.Stats()
	fmt.Fprintf(w, "\n%d ticket(s): %d parent(s), %d sub-task(s), %d link(s)\n",
		s.Total, s.Parents, s.SubTasks, s.Links)
}

func renderChildren(w io.Writer, children []*graph.Node, prefix string) {
	for i, child := range children {
		branch, next := ui.TreeBranch, ui.TreePipe
		if i == len(children)-1 {
			branch, next = ui.TreeLast, ui.TreeSpace
		}
		fmt.Fprintln(w, prefix+ui.RenderMuted(branch)+planLine(child.Record))
		renderChildren(w, child.Children, prefix+ui.RenderMuted(next))
	}
}

func planLine(rec *model.CloneRecord) string {
	icon := ui.IconTicket
	if rec.IssueType == model.TypeSubTask {
		icon = ui.IconSubTask
	}
	parts := []string{
		icon,
		newID(rec.NewID),
		ui.RenderMuted("<- " + rec.SourceID),
	}
	if rec.ParentSourceID == "" && rec.ParentNewID != "" {
		parts = append(parts, ui.RenderMuted("(under "+rec.ParentNewID+")"))
	}
	parts = append(parts, "- "+rec.Summary)
	return strings.Join(parts, " ")
}

// newID styles a clone key. Dry-run placeholders stand out from real keys.
func newID(id string) string {
	if idgen.IsPlaceholder(id) {
		return ui.RenderDryRun(id)
	}
	return ui.RenderID(id)
}
