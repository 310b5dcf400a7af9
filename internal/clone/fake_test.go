package clone

import (
	"context"
	"errors"
	"fmt"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
)

type createdLink struct {
	From, To, Type string
	Dir            model.Direction
}

type move struct {
	Parent   string
	From, To int
}

// fakeStore is an in-memory tracker. Clones are stored next to the
// templates so they can be fetched back.
type fakeStore struct {
	tickets  map[string]*model.Ticket
	next     int
	user     string
	userErr  error
	calls    []string
	created  []model.Fields
	comments map[string][]string
	links    []createdLink
	moves    []move

	failCreate  map[string]bool // by template id
	failLink    map[string]bool // by "from to"
	failComment bool
	failRemote  bool
}

func newFakeStore(tickets ...*model.Ticket) *fakeStore {
	s := &fakeStore{
		tickets:    make(map[string]*model.Ticket),
		user:       "jdoe",
		comments:   make(map[string][]string),
		failCreate: make(map[string]bool),
		failLink:   make(map[string]bool),
	}
	for _, t := range tickets {
		s.tickets[t.ID] = t
	}
	return s
}

func (s *fakeStore) Fetch(_ context.Context, id string) (*model.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

func (s *fakeStore) Create(_ context.Context, f model.Fields) (string, error) {
	src := f.String("source")
	if s.failCreate[src] {
		return "", errors.New("create rejected")
	}
	s.next++
	id := fmt.Sprintf("NEW-%d", s.next)
	s.calls = append(s.calls, "create "+src)
	s.created = append(s.created, f)

	t := &model.Ticket{ID: id, Status: model.StatusOpen, IssueType: model.TypeTask, Fields: f}
	if p, ok := f["parent"].(map[string]any); ok {
		t.IssueType = model.TypeSubTask
		t.ParentID = p["key"].(string)
		if parent, ok := s.tickets[t.ParentID]; ok {
			parent.SubtaskIDs = append(parent.SubtaskIDs, id)
			parent.SubtaskCount++
		}
	}
	s.tickets[id] = t
	return id, nil
}

func (s *fakeStore) AddComment(_ context.Context, id, text string) error {
	if s.failComment {
		return errors.New("comment rejected")
	}
	s.calls = append(s.calls, "comment "+id)
	s.comments[id] = append(s.comments[id], text)
	return nil
}

func (s *fakeStore) CreateLink(_ context.Context, from, to, linkType string, dir model.Direction) error {
	if s.failLink[from+" "+to] {
		return errors.New("link rejected")
	}
	s.calls = append(s.calls, "link "+from+" "+to)
	s.links = append(s.links, createdLink{From: from, To: to, Type: linkType, Dir: dir})
	return nil
}

func (s *fakeStore) Search(context.Context, model.Query) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) CurrentUser(context.Context) (string, error) {
	s.calls = append(s.calls, "whoami")
	return s.user, s.userErr
}

func (s *fakeStore) MoveSubtask(_ context.Context, parent *model.Ticket, from, to int) error {
	s.calls = append(s.calls, fmt.Sprintf("move %s %d %d", parent.ID, from, to))
	s.moves = append(s.moves, move{Parent: parent.ID, From: from, To: to})
	return nil
}

func (s *fakeStore) CopyRemoteLinks(context.Context, string, string) error {
	if s.failRemote {
		return errors.New("remote links rejected")
	}
	return nil
}

// mutations returns the recorded calls that change the tracker.
func (s *fakeStore) mutations() []string {
	var out []string
	for _, c := range s.calls {
		if c != "whoami" {
			out = append(out, c)
		}
	}
	return out
}

// passthrough copies the template fields and tags them with the source id
// so the fake can tell clones apart.
type passthrough struct{}

func (passthrough) Transform(src *model.Ticket, opts fields.Options) model.Fields {
	f := src.Fields.Clone()
	f["project"] = opts.Project
	f["source"] = src.ID
	f["reporter"] = opts.User
	if opts.ParentID != "" {
		f["parent"] = map[string]any{"key": opts.ParentID}
	}
	return f
}

func task(id string, subtasks []string, links ...model.Link) *model.Ticket {
	return &model.Ticket{
		ID:           id,
		Status:       model.StatusOpen,
		IssueType:    model.TypeTask,
		SubtaskIDs:   subtasks,
		SubtaskCount: len(subtasks),
		Links:        links,
		Fields:       model.Fields{"summary": "summary of " + id},
	}
}

func subtask(id, parent string) *model.Ticket {
	return &model.Ticket{
		ID:        id,
		Status:    model.StatusOpen,
		IssueType: model.TypeSubTask,
		ParentID:  parent,
		Fields:    model.Fields{"summary": "summary of " + id},
	}
}

func deprecated(t *model.Ticket) *model.Ticket {
	t.Status = model.StatusDeprecated
	return t
}

func relates(other string) model.Link {
	return model.Link{OtherID: other, Type: "Relates", Direction: model.DirectionOutward}
}
