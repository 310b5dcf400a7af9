package graph

import (
	"strings"
	"testing"

	"github.com/RamXX/tclone/internal/model"
)

func rec(src, newID, parentSrc string) model.CloneRecord {
	r := model.CloneRecord{SourceID: src, NewID: newID, IssueType: model.TypeTask, Summary: "Clone of " + src}
	if parentSrc != "" {
		r.IssueType = model.TypeSubTask
		r.ParentSourceID = parentSrc
	}
	return r
}

// run is T-1 with sub-tasks T-2 and T-3, T-4 linked to T-1 and T-5 on its own.
func run() ([]model.CloneRecord, []Edge) {
	records := []model.CloneRecord{
		rec("T-1", "RCM-1", ""),
		rec("T-2", "RCM-2", "T-1"),
		rec("T-3", "RCM-3", "T-1"),
		rec("T-4", "RCM-4", ""),
		rec("T-5", "RCM-5", ""),
	}
	edges := []Edge{
		{A: "T-1", B: "T-4", Type: "Blocks"},
		{A: "T-4", B: "T-1", Type: "Blocks"},
		{A: "T-4", B: "T-9", Type: "Relates"},
	}
	return records, edges
}

func ids(recs []*model.CloneRecord) string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.SourceID
	}
	return strings.Join(out, ",")
}

func TestRoots(t *testing.T) {
	p := Build(run())
	if got := ids(p.Roots()); got != "T-1,T-4,T-5" {
		t.Errorf("Roots() = %s, want T-1,T-4,T-5", got)
	}
}

func TestTree(t *testing.T) {
	p := Build(run())
	tree := p.Tree()
	if len(tree) != 3 {
		t.Fatalf("Tree() has %d roots, want 3", len(tree))
	}
	first := tree[0]
	if first.Record.NewID != "RCM-1" {
		t.Errorf("first root = %s, want RCM-1", first.Record.NewID)
	}
	if len(first.Children) != 2 || first.Children[0].Record.SourceID != "T-2" || first.Children[1].Record.SourceID != "T-3" {
		t.Errorf("children of T-1 = %+v, want T-2 then T-3", first.Children)
	}
	if len(tree[2].Children) != 0 {
		t.Errorf("T-5 should have no children, got %d", len(tree[2].Children))
	}
}

func TestSubtreeMissing(t *testing.T) {
	p := Build(run())
	if p.Subtree("T-404") != nil {
		t.Error("Subtree of an unknown id should be nil")
	}
}

func TestEdgesDeduplicated(t *testing.T) {
	p := Build(run())
	edges := p.Edges()
	if len(edges) != 1 {
		t.Fatalf("Edges() = %+v, want one edge", edges)
	}
}

func TestGroups(t *testing.T) {
	p := Build(run())
	groups := p.Groups()
	want := []string{"T-1,T-2,T-3,T-4", "T-5"}
	if len(groups) != len(want) {
		t.Fatalf("Groups() = %v, want %v", groups, want)
	}
	for i, g := range groups {
		if got := strings.Join(g, ","); got != want[i] {
			t.Errorf("group %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestStats(t *testing.T) {
	records, edges := run()
	attached := rec("T-6", "RCM-6", "")
	attached.IssueType = model.TypeSubTask
	attached.ParentNewID = "RCM-100"
	records = append(records, attached)

	s := Build(records, edges).Stats()
	if s.Total != 6 {
		t.Errorf("Total = %d, want 6", s.Total)
	}
	if s.Parents != 3 || s.SubTasks != 3 {
		t.Errorf("Parents/SubTasks = %d/%d, want 3/3", s.Parents, s.SubTasks)
	}
	if s.Attached != 1 {
		t.Errorf("Attached = %d, want 1", s.Attached)
	}
	if s.Links != 1 {
		t.Errorf("Links = %d, want 1", s.Links)
	}
	if s.Groups != 3 {
		t.Errorf("Groups = %d, want 3", s.Groups)
	}
	if s.ByProject["RCM"] != 6 {
		t.Errorf("ByProject[RCM] = %d, want 6", s.ByProject["RCM"])
	}
}

func TestEmptyPlan(t *testing.T) {
	p := Build(nil, nil)
	if len(p.Tree()) != 0 || len(p.Groups()) != 0 {
		t.Error("empty plan should have no roots and no groups")
	}
	if s := p.Stats(); s.Total != 0 {
		t.Errorf("Total = %d, want 0", s.Total)
	}
}
