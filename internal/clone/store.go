// Package clone copies template ticket trees into a target project.
//
// An Engine walks the template graph depth-first: parents are created before
// their sub-tasks, every template ticket is cloned at most once no matter how
// many paths reach it, and links are collected during the walk and created
// only after every endpoint exists.
package clone

import (
	"context"
	"errors"

	"github.com/RamXX/tclone/internal/fields"
	"github.com/RamXX/tclone/internal/model"
)

var (
	// ErrNotFound is wrapped by stores when a ticket does not exist.
	ErrNotFound = errors.New("ticket not found")
	// ErrCancelled is returned when the operator declines to continue.
	ErrCancelled = errors.New("cancelled by user")
)

// TicketStore is the tracker the engine reads templates from and writes
// clones to.
type TicketStore interface {
	Fetch(ctx context.Context, id string) (*model.Ticket, error)
	Create(ctx context.Context, f model.Fields) (string, error)
	AddComment(ctx context.Context, id, text string) error
	// CreateLink links fromID to toID. dir is the side toID sits on as seen
	// from fromID.
	CreateLink(ctx context.Context, fromID, toID, linkType string, dir model.Direction) error
	Search(ctx context.Context, q model.Query) ([]string, error)
	CurrentUser(ctx context.Context) (string, error)
	// MoveSubtask moves the sub-task at index from to index to within parent.
	MoveSubtask(ctx context.Context, parent *model.Ticket, from, to int) error
	CopyRemoteLinks(ctx context.Context, fromID, toID string) error
}

// Transformer builds the field bag of a clone. Implementations must not
// modify src.
type Transformer interface {
	Transform(src *model.Ticket, opts fields.Options) model.Fields
}
