package clone

import (
	"context"
	"fmt"
	"log/slog"
)

// Repositioner moves a freshly cloned sub-task from the end of its parent's
// sub-task list to the requested position.
type Repositioner struct {
	store TicketStore
	log   *slog.Logger
}

// NewRepositioner returns a Repositioner. A nil logger discards.
func NewRepositioner(store TicketStore, logger *slog.Logger) *Repositioner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repositioner{store: store, log: logger}
}

// Reposition moves the last sub-task of parentID to pos (zero-based). It
// assumes the sub-task to move was the last one appended. An out of range
// pos leaves the sub-task at the end.
func (r *Repositioner) Reposition(ctx context.Context, parentID string, pos int) error {
	parent, err := r.store.Fetch(ctx, parentID)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", parentID, err)
	}
	if parent.IsSubTask() || parent.SubtaskCount == 0 {
		return nil
	}
	last := parent.SubtaskCount - 1
	if pos < 0 || pos > last {
		r.log.Warn("sub-task position missing or invalid, the clone stays at the end of the list", "parent", parentID, "position", pos)
		return nil
	}
	if err := r.store.MoveSubtask(ctx, parent, last, pos); err != nil {
		return fmt.Errorf("move sub-task of %s from %d to %d: %w", parentID, last, pos, err)
	}
	return nil
}
