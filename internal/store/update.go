package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/model"
)

const commentsHeading = "## Comments"

// AddComment appends a comment to the Comments section of a ticket.
func (s *Store) AddComment(_ context.Context, id, text string) error {
	if !s.TicketExists(id) {
		return fmt.Errorf("comment on %s: %w", id, clone.ErrNotFound)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	comment := fmt.Sprintf("\n### %s %s\n%s\n", now, s.config.CreatedBy, text)
	if err := s.vault.Append(id, comment, false); err != nil {
		return fmt.Errorf("append comment: %w", err)
	}
	return nil
}

// Comments returns the raw Comments section of a ticket.
func (s *Store) Comments(id string) (string, error) {
	if !s.TicketExists(id) {
		return "", fmt.Errorf("read comments of %s: %w", id, clone.ErrNotFound)
	}
	content, err := s.vault.Read(id, commentsHeading)
	if err != nil {
		return "", fmt.Errorf("read comments of %s: %w", id, err)
	}
	content = strings.TrimSpace(content)
	if rest, ok := strings.CutPrefix(content, commentsHeading); ok {
		content = strings.TrimSpace(rest)
	}
	return content, nil
}

// MoveSubtask moves the sub-task at index from to index to.
func (s *Store) MoveSubtask(_ context.Context, parent *model.Ticket, from, to int) error {
	return s.update(parent.ID, func(d *document) error {
		n := len(d.Subtasks)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("move sub-task of %s: index out of range [0,%d)", parent.ID, n)
		}
		d.Subtasks = moveItem(d.Subtasks, from, to)
		return nil
	})
}

func moveItem(list []string, from, to int) []string {
	out := make([]string, 0, len(list))
	item := list[from]
	for i, v := range list {
		if i != from {
			out = append(out, v)
		}
	}
	out = append(out[:to], append([]string{item}, out[to:]...)...)
	return out
}

// AppendPAV adds a Product Affects Version to a ticket, keeping the ones it
// already has.
func (s *Store) AppendPAV(_ context.Context, id, pav string) error {
	field := s.schema.PAVField
	return s.update(id, func(d *document) error {
		if d.Fields == nil {
			d.Fields = model.Fields{}
		}
		for _, have := range d.Fields.Values(field) {
			if have == pav {
				return nil
			}
		}
		var list []any
		for _, v := range d.Fields.Values(field) {
			list = append(list, map[string]any{"value": v})
		}
		d.Fields[field] = append(list, map[string]any{"value": pav})
		return nil
	})
}
