package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Init(t.TempDir(), "RCMTEMPL", "tester")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func pav(values ...string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, map[string]any{"value": v})
	}
	return out
}

func taskTicket(id string) *model.Ticket {
	return &model.Ticket{ID: id, IssueType: model.TypeTask, Fields: model.Fields{"summary": "Task " + id}}
}

func subTicket(id, parent string) *model.Ticket {
	return &model.Ticket{ID: id, IssueType: model.TypeSubTask, ParentID: parent, Fields: model.Fields{"summary": "Sub-task " + id}}
}

// seed writes a parent with two sub-tasks, one of them outside the template
// project, and a set of links.
func seed(t *testing.T, s *Store) {
	t.Helper()
	tickets := []*model.Ticket{
		{
			ID:         "RCMTEMPL-1",
			Status:     model.StatusOpen,
			IssueType:  model.TypeTask,
			SubtaskIDs: []string{"RCMTEMPL-2", "OTHER-1"},
			Links: []model.Link{
				{OtherID: "RCMTEMPL-3", Type: "Blocks", Direction: model.DirectionOutward},
				{OtherID: "RCMTEMPL-4", Type: "Cloners", Direction: model.DirectionInward},
				{OtherID: "OTHER-2", Type: "Relates", Direction: model.DirectionOutward},
			},
			Fields: model.Fields{
				"summary":           "Release <PAV>",
				"description":       "Ship it",
				"customfield_11911": pav("spam-1.0"),
				"customfield_12700": pav("spam"),
			},
		},
		{
			ID:        "RCMTEMPL-2",
			Status:    model.StatusOpen,
			IssueType: model.TypeSubTask,
			ParentID:  "RCMTEMPL-1",
			Fields: model.Fields{
				"summary":           "Build",
				"customfield_11911": pav("spam-1.0"),
			},
		},
		{
			ID:        "RCMTEMPL-3",
			Status:    model.StatusDeprecated,
			IssueType: model.TypeTask,
			Fields: model.Fields{
				"summary":           "Old step",
				"customfield_11911": pav("spam-2.0"),
			},
		},
	}
	for _, tk := range tickets {
		if err := s.AddTicket(tk); err != nil {
			t.Fatalf("AddTicket %s: %v", tk.ID, err)
		}
	}
}

func TestInitAndOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Init(dir, "RCMTEMPL", "tester")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.Prefix() != "RCMTEMPL" {
		t.Errorf("prefix = %q, want RCMTEMPL", s.Prefix())
	}
	if _, err := os.Stat(dir + "/" + ConfigFile); err != nil {
		t.Fatalf("%s missing: %v", ConfigFile, err)
	}
	if _, err := os.Stat(dir + "/issues"); err != nil {
		t.Fatalf("issues/ missing: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s2.Prefix() != "RCMTEMPL" {
		t.Errorf("reopened prefix = %q, want RCMTEMPL", s2.Prefix())
	}
	user, err := s2.CurrentUser(context.Background())
	if err != nil || user != "tester" {
		t.Errorf("CurrentUser = %q, %v; want tester", user, err)
	}
}

func TestOpenWithoutConfig(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Open of a directory without config should fail")
	}
}

func TestFetchFiltersRelationships(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	got, err := s.Fetch(context.Background(), "RCMTEMPL-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Summary() != "Release <PAV>" {
		t.Errorf("summary = %q", got.Summary())
	}
	if got.Description() != "Ship it" {
		t.Errorf("description = %q", got.Description())
	}
	if v := got.Fields.Values("customfield_11911"); len(v) != 1 || v[0] != "spam-1.0" {
		t.Errorf("pav = %v, want [spam-1.0]", v)
	}
	if len(got.SubtaskIDs) != 1 || got.SubtaskIDs[0] != "RCMTEMPL-2" {
		t.Errorf("subtasks = %v, want [RCMTEMPL-2]", got.SubtaskIDs)
	}
	if got.SubtaskCount != 2 {
		t.Errorf("subtask count = %d, want 2", got.SubtaskCount)
	}
	if len(got.Links) != 1 || got.Links[0].OtherID != "RCMTEMPL-3" || got.Links[0].Direction != model.DirectionOutward {
		t.Errorf("links = %+v, want one outward link to RCMTEMPL-3", got.Links)
	}
	if got.InternalID != "10001" {
		t.Errorf("internal id = %q, want 10001", got.InternalID)
	}

	sub, err := s.Fetch(context.Background(), "RCMTEMPL-2")
	if err != nil {
		t.Fatalf("Fetch sub-task: %v", err)
	}
	if !sub.IsSubTask() || sub.ParentID != "RCMTEMPL-1" {
		t.Errorf("sub-task = %+v, want parent RCMTEMPL-1", sub)
	}
}

func TestFetchMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Fetch(context.Background(), "RCMTEMPL-99")
	if !errors.Is(err, clone.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAddTicketRejectsDuplicatesAndBadShapes(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	if err := s.AddTicket(&model.Ticket{ID: "RCMTEMPL-1", IssueType: model.TypeTask}); err == nil {
		t.Error("duplicate key should fail")
	}
	bad := &model.Ticket{
		ID:        "RCMTEMPL-9",
		IssueType: model.TypeSubTask,
		ParentID:  "RCMTEMPL-1",
		Links:     []model.Link{{OtherID: "RCMTEMPL-3", Type: "Blocks", Direction: model.DirectionOutward}},
	}
	if err := s.AddTicket(bad); err == nil {
		t.Error("sub-task with links should fail validation")
	}
}

func TestCreateAssignsSequentialKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parent, err := s.Create(ctx, model.Fields{
		"summary":   "Release 1.0",
		"project":   map[string]any{"key": "RCM"},
		"issuetype": map[string]any{"name": "Task"},
	})
	if err != nil {
		t.Fatalf("Create parent: %v", err)
	}
	if parent != "RCM-1" {
		t.Errorf("parent key = %q, want RCM-1", parent)
	}

	child, err := s.Create(ctx, model.Fields{
		"summary":   "Build",
		"project":   map[string]any{"key": "RCM"},
		"issuetype": map[string]any{"name": "Sub-task"},
		"parent":    map[string]any{"key": parent},
	})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}
	if child != "RCM-2" {
		t.Errorf("child key = %q, want RCM-2", child)
	}

	got, err := s.Fetch(ctx, parent)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// RCM is outside the template namespace: counted, not listed.
	if got.SubtaskCount != 1 || len(got.SubtaskIDs) != 0 {
		t.Errorf("count = %d, ids = %v; want 1 and none", got.SubtaskCount, got.SubtaskIDs)
	}

	s.WithNamespace(model.Namespace{})
	got, err = s.Fetch(ctx, parent)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got.SubtaskIDs) != 1 || got.SubtaskIDs[0] != child {
		t.Errorf("subtasks = %v, want [%s]", got.SubtaskIDs, child)
	}
	sub, err := s.Fetch(ctx, child)
	if err != nil {
		t.Fatalf("Fetch child: %v", err)
	}
	if sub.IssueType != model.TypeSubTask || sub.ParentID != parent {
		t.Errorf("child = %+v", sub)
	}
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, model.Fields{"summary": "x"}); err == nil {
		t.Error("create without project should fail")
	}
	_, err := s.Create(ctx, model.Fields{
		"summary": "x",
		"project": map[string]any{"key": "RCM"},
		"parent":  map[string]any{"key": "RCM-404"},
	})
	if !errors.Is(err, clone.ErrNotFound) {
		t.Errorf("missing parent error = %v, want ErrNotFound", err)
	}
	if s.TicketExists("RCM-1") {
		t.Error("no ticket should be written when the parent is missing")
	}
}

func TestCreateLinkStoresBothSides(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.CreateLink(ctx, "RCMTEMPL-2", "RCMTEMPL-3", "Relates", model.DirectionInward); err == nil {
		t.Error("links on sub-tasks should be rejected")
	}
	if err := s.CreateLink(ctx, "RCMTEMPL-1", "RCMTEMPL-1", "Relates", model.DirectionInward); err == nil {
		t.Error("self link should fail")
	}
	if err := s.CreateLink(ctx, "RCMTEMPL-1", "RCMTEMPL-9", "Relates", model.DirectionInward); !errors.Is(err, clone.ErrNotFound) {
		t.Errorf("missing target error = %v, want ErrNotFound", err)
	}

	if err := s.AddTicket(&model.Ticket{ID: "RCMTEMPL-5", IssueType: model.TypeTask, Fields: model.Fields{"summary": "Docs"}}); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	if err := s.CreateLink(ctx, "RCMTEMPL-5", "RCMTEMPL-3", "Relates", model.DirectionInward); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	// Creating it twice keeps a single entry.
	if err := s.CreateLink(ctx, "RCMTEMPL-5", "RCMTEMPL-3", "Relates", model.DirectionInward); err != nil {
		t.Fatalf("CreateLink again: %v", err)
	}

	a, _ := s.Fetch(ctx, "RCMTEMPL-5")
	b, _ := s.Fetch(ctx, "RCMTEMPL-3")
	if len(a.Links) != 1 || a.Links[0] != (model.Link{OtherID: "RCMTEMPL-3", Type: "Relates", Direction: model.DirectionInward}) {
		t.Errorf("from links = %+v", a.Links)
	}
	if len(b.Links) != 1 || b.Links[0] != (model.Link{OtherID: "RCMTEMPL-5", Type: "Relates", Direction: model.DirectionOutward}) {
		t.Errorf("to links = %+v", b.Links)
	}
}

func TestAddComment(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.AddComment(ctx, "RCMTEMPL-1", "This issue was cloned from X-1"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	got, err := s.Comments("RCMTEMPL-1")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if !strings.Contains(got, "This issue was cloned from X-1") {
		t.Errorf("comments = %q", got)
	}
	if err := s.AddComment(ctx, "RCMTEMPL-99", "x"); !errors.Is(err, clone.ErrNotFound) {
		t.Errorf("comment on missing ticket error = %v, want ErrNotFound", err)
	}
}

func TestMoveSubtask(t *testing.T) {
	s := newTestStore(t)
	s.WithNamespace(model.Namespace{})
	ctx := context.Background()
	parent := &model.Ticket{ID: "RCM-1", IssueType: model.TypeTask, SubtaskIDs: []string{"RCM-2", "RCM-3", "RCM-4"}}
	if err := s.AddTicket(parent); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	if err := s.MoveSubtask(ctx, parent, 2, 0); err != nil {
		t.Fatalf("MoveSubtask: %v", err)
	}
	got, _ := s.Fetch(ctx, "RCM-1")
	want := []string{"RCM-4", "RCM-2", "RCM-3"}
	if strings.Join(got.SubtaskIDs, ",") != strings.Join(want, ",") {
		t.Errorf("subtasks = %v, want %v", got.SubtaskIDs, want)
	}
	if err := s.MoveSubtask(ctx, parent, 3, 0); err == nil {
		t.Error("out of range move should fail")
	}
}

func TestMoveItem(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "b,c,a"},
		{2, 0, "c,a,b"},
		{1, 1, "a,b,c"},
		{2, 1, "a,c,b"},
	}
	for _, tt := range tests {
		got := strings.Join(moveItem([]string{"a", "b", "c"}, tt.from, tt.to), ",")
		if got != tt.want {
			t.Errorf("moveItem(%d, %d) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		q    model.Query
		want string
	}{
		{"project", model.Query{Project: "RCMTEMPL"}, "RCMTEMPL-1,RCMTEMPL-2,RCMTEMPL-3"},
		{"pav", model.Query{Project: "RCMTEMPL", PAV: "spam-1.0"}, "RCMTEMPL-1,RCMTEMPL-2"},
		{"keywords everywhere", model.Query{Project: "RCMTEMPL", PAV: "spam-1.0", Keywords: []string{"spam"}}, "RCMTEMPL-1"},
		{"keywords skip sub-tasks", model.Query{Project: "RCMTEMPL", PAV: "spam-1.0", Keywords: []string{"spam"}, KeywordsSkipSubTasks: true}, "RCMTEMPL-1,RCMTEMPL-2"},
		{"no match", model.Query{Project: "RCMTEMPL", PAV: "eggs"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("Search = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestAppendPAV(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	for range 2 {
		if err := s.AppendPAV(ctx, "RCMTEMPL-1", "spam-2.0"); err != nil {
			t.Fatalf("AppendPAV: %v", err)
		}
	}
	got, _ := s.Fetch(ctx, "RCMTEMPL-1")
	if v := got.Fields.Values("customfield_11911"); strings.Join(v, ",") != "spam-1.0,spam-2.0" {
		t.Errorf("pav = %v, want [spam-1.0 spam-2.0]", v)
	}
}

func TestFieldsSurviveReopen(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	reopened, err := Open(s.Dir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := reopened.Fetch(ctx, "RCMTEMPL-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	list, ok := got.Fields["customfield_11911"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("pav field = %#v", got.Fields["customfield_11911"])
	}
	if _, ok := list[0].(map[string]any); !ok {
		t.Errorf("pav entry decoded as %T, want map[string]any", list[0])
	}
	if v := got.Fields.Values("customfield_12700"); strings.Join(v, ",") != "spam" {
		t.Errorf("keywords = %v, want [spam]", v)
	}

	// Appending reads the list back from disk, so the old entry must stay.
	if err := reopened.AppendPAV(ctx, "RCMTEMPL-1", "spam-2.0"); err != nil {
		t.Fatalf("AppendPAV: %v", err)
	}
	raw, err := os.ReadFile(reopened.ticketPath("RCMTEMPL-1"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), "spam-1.0") || !strings.Contains(string(raw), "spam-2.0") {
		t.Errorf("ticket file lost a PAV:\n%s", raw)
	}
}

func TestCommentsExcludeHeading(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.AddComment(ctx, "RCMTEMPL-2", "hello"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	got, err := s.Comments("RCMTEMPL-2")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if strings.Contains(got, commentsHeading) {
		t.Errorf("comments include the heading: %q", got)
	}
	if !strings.HasSuffix(got, "hello") || !strings.Contains(got, "tester") {
		t.Errorf("comments = %q", got)
	}
}

func TestCopyRemoteLinks(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.AddRemoteLink("RCMTEMPL-1", RemoteLink{URL: "https://docs.example.com", Title: "Docs"}); err != nil {
		t.Fatalf("AddRemoteLink: %v", err)
	}
	if err := s.CopyRemoteLinks(ctx, "RCMTEMPL-1", "RCMTEMPL-3"); err != nil {
		t.Fatalf("CopyRemoteLinks: %v", err)
	}
	got, err := s.RemoteLinks("RCMTEMPL-3")
	if err != nil {
		t.Fatalf("RemoteLinks: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://docs.example.com" {
		t.Errorf("remote links = %+v", got)
	}
	// Nothing to copy is not an error.
	if err := s.CopyRemoteLinks(ctx, "RCMTEMPL-2", "RCMTEMPL-3"); err != nil {
		t.Errorf("CopyRemoteLinks without links: %v", err)
	}
}

func TestContentHashIsStored(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	d, _, err := s.read("RCMTEMPL-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(d.ContentHash, "sha256:") {
		t.Errorf("content hash = %q", d.ContentHash)
	}
}
