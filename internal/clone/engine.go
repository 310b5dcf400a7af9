package clone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/idgen"
	"github.com/RamXX/tclone/internal/model"
)

// Options configure one Engine.
type Options struct {
	// Project is the key of the project clones are created in.
	Project string
	// Inject overrides fields on every clone.
	Inject model.Fields
	// Substitutions are user supplied placeholder values (CUSTOM_TEXT, ...).
	Substitutions map[string]string
	// DryRun makes no mutating store call. Clones get placeholder ids.
	DryRun bool
	// RestrictToMatched limits CloneAll to the tickets listed in Matched.
	RestrictToMatched bool
	// Matched is the restriction set. It is copied at construction and never
	// changes afterwards.
	Matched []string
	// Confirm answers the position prompt of CloneSubtaskIntoParent.
	// Defaults to AutoDecline.
	Confirm Confirmer
	Logger  *slog.Logger
}

// Engine clones template tickets. An Engine holds the state of exactly one
// clone run and must not be reused or shared between goroutines.
type Engine struct {
	store   TicketStore
	tf      Transformer
	opts    Options
	log     *slog.Logger
	confirm Confirmer

	matched map[string]bool
	cloned  map[string]string // template id -> clone id
	pending []PendingLink
	linked  map[linkPair]bool
	records []model.CloneRecord

	user         string
	placeholders int
}

// New returns an Engine writing to store.
func New(store TicketStore, tf Transformer, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = AutoDecline
	}
	matched := make(map[string]bool, len(opts.Matched))
	for _, id := range opts.Matched {
		matched[id] = true
	}
	return &Engine{
		store:   store,
		tf:      tf,
		opts:    opts,
		log:     logger,
		confirm: confirm,
		matched: matched,
		cloned:  make(map[string]string),
		linked:  make(map[linkPair]bool),
	}
}

// CloneAll clones every root in order. A failing root does not stop the
// remaining ones; all failures are returned joined.
func (e *Engine) CloneAll(ctx context.Context, roots []*model.Ticket) error {
	var errs []error
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.CloneOne(ctx, root, "", e.opts.RestrictToMatched); err != nil {
			e.log.Error("clone failed", "id", root.ID, "err", err)
			errs = append(errs, fmt.Errorf("clone %s: %w", root.ID, err))
		}
	}
	return errors.Join(errs...)
}

// CloneOne clones t together with its sub-tasks and linked tickets.
// parentNewID is the clone the new ticket is created under, if any. When
// restrict is set only tickets in the restriction set are cloned.
//
// A sub-task whose parent has not been cloned yet is not cloned here: its
// parent is cloned instead, and the parent's sub-task pass creates it in the
// parent's sub-task order.
func (e *Engine) CloneOne(ctx context.Context, t *model.Ticket, parentNewID string, restrict bool) error {
	if _, done := e.cloned[t.ID]; done {
		return nil
	}
	if restrict && !e.matched[t.ID] {
		e.log.Debug("skipped ticket outside the matched set", "id", t.ID)
		return nil
	}
	if t.IsDeprecated() {
		e.log.Info("skipped deprecated ticket", "id", t.ID)
		return nil
	}
	if t.ParentID != "" {
		parentClone, ok := e.cloned[t.ParentID]
		if !ok {
			parent, err := e.fetch(ctx, t.ParentID)
			if err != nil {
				return err
			}
			return e.CloneOne(ctx, parent, "", restrict)
		}
		if parentNewID == "" {
			parentNewID = parentClone
		}
	}

	newID, err := e.create(ctx, t, parentNewID)
	if err != nil {
		return err
	}

	for _, id := range t.SubtaskIDs {
		if _, done := e.cloned[id]; done {
			continue
		}
		sub, err := e.fetch(ctx, id)
		if err != nil {
			return err
		}
		if err := e.CloneOne(ctx, sub, newID, restrict); err != nil {
			return err
		}
	}

	for _, l := range t.Links {
		if _, done := e.cloned[l.OtherID]; !done {
			other, err := e.fetch(ctx, l.OtherID)
			if err != nil {
				return err
			}
			if err := e.CloneOne(ctx, other, "", restrict); err != nil {
				return err
			}
		}
		e.pending = append(e.pending, PendingLink{
			SourceA:   t.ID,
			SourceB:   l.OtherID,
			Type:      l.Type,
			Direction: l.Direction,
		})
	}
	return nil
}

// CloneSubtaskIntoParent clones a single sub-task under an existing ticket
// and moves it to position (zero-based). A missing or out of range position
// is confirmed with the operator first; declining returns ErrCancelled.
func (e *Engine) CloneSubtaskIntoParent(ctx context.Context, sub *model.Ticket, parentID string, position *int) error {
	if sub.IsDeprecated() {
		e.log.Info("skipped deprecated ticket", "id", sub.ID)
		return nil
	}
	parent, err := e.fetch(ctx, parentID)
	if err != nil {
		return err
	}
	if err := e.verifyPosition(ctx, parent, position); err != nil {
		return err
	}
	if _, err := e.create(ctx, sub, parentID); err != nil {
		return err
	}
	if e.opts.DryRun {
		return nil
	}
	pos := -1
	if position != nil {
		pos = *position
	}
	return NewRepositioner(e.store, e.log).Reposition(ctx, parentID, pos)
}

func (e *Engine) verifyPosition(ctx context.Context, parent *model.Ticket, position *int) error {
	last := parent.SubtaskCount - 1
	if position != nil && *position >= 0 && *position <= last {
		return nil
	}
	ok, err := e.confirm.Confirm(ctx, "Position is not specified or invalid, the sub-task clone will be placed at the end. Continue?")
	if err != nil {
		return fmt.Errorf("confirm position: %w", err)
	}
	if !ok {
		e.log.Info("exiting, no changes were made")
		return ErrCancelled
	}
	return nil
}

// create clones a single ticket and records the mapping. The mapping is
// recorded as soon as the clone exists, so a later failure in the same
// subtree never causes the ticket to be created twice.
func (e *Engine) create(ctx context.Context, t *model.Ticket, parentNewID string) (string, error) {
	kind := "parent"
	if t.IsSubTask() {
		kind = "sub-task"
	}
	e.log.Info("cloning "+kind, "id", t.ID, "summary", t.Summary())

	user, err := e.currentUser(ctx)
	if err != nil {
		return "", err
	}
	f := e.tf.Transform(t, fields.Options{
		Project:       e.opts.Project,
		User:          user,
		ParentID:      parentNewID,
		Inject:        e.opts.Inject,
		Substitutions: e.opts.Substitutions,
	})

	var newID string
	if e.opts.DryRun {
		e.placeholders++
		newID = idgen.Placeholder(e.placeholders)
	} else {
		newID, err = e.store.Create(ctx, f)
		if err != nil {
			return "", fmt.Errorf("create clone of %s: %w", t.ID, err)
		}
	}

	e.cloned[t.ID] = newID
	rec := model.CloneRecord{
		SourceID:    t.ID,
		NewID:       newID,
		ParentNewID: parentNewID,
		IssueType:   t.IssueType,
		Summary:     f.String("summary"),
	}
	if _, ok := e.cloned[t.ParentID]; ok && t.ParentID != "" {
		rec.ParentSourceID = t.ParentID
	}
	e.records = append(e.records, rec)
	e.log.Debug("cloned ticket", "id", t.ID, "clone", newID)

	if e.opts.DryRun {
		return newID, nil
	}
	if err := e.store.CopyRemoteLinks(ctx, t.ID, newID); err != nil {
		e.log.Warn("remote links not copied", "id", t.ID, "clone", newID, "err", err)
	}
	if err := e.store.AddComment(ctx, newID, fmt.Sprintf("This issue was cloned from %s", t.ID)); err != nil {
		return newID, fmt.Errorf("comment on %s: %w", newID, err)
	}
	return newID, nil
}

func (e *Engine) currentUser(ctx context.Context) (string, error) {
	if e.opts.DryRun || e.user != "" {
		return e.user, nil
	}
	user, err := e.store.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	e.user = user
	return user, nil
}

func (e *Engine) fetch(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := e.store.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	return t, nil
}

// Cloned returns a copy of the template id to clone id mapping.
func (e *Engine) Cloned() map[string]string {
	out := make(map[string]string, len(e.cloned))
	for k, v := range e.cloned {
		out[k] = v
	}
	return out
}

// Records returns the clones in creation order.
func (e *Engine) Records() []model.CloneRecord {
	return append([]model.CloneRecord(nil), e.records...)
}
