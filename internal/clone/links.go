package clone

import (
	"context"
	"errors"
	"fmt"

	"github.com/RamXX/tclone/internal/model"
)

// PendingLink is a template link collected during traversal. It is created
// between the clones of both ends once the traversal is over.
type PendingLink struct {
	SourceA   string
	SourceB   string
	Type      string
	Direction model.Direction
}

// linkPair is an unordered pair of clone ids.
type linkPair struct{ lo, hi string }

func pairOf(a, b string) linkPair {
	if b < a {
		a, b = b, a
	}
	return linkPair{lo: a, hi: b}
}

// Pending returns the collected links in collection order.
func (e *Engine) Pending() []PendingLink {
	return append([]PendingLink(nil), e.pending...)
}

// ReplayLinks creates the collected links between clones.
//
// A link whose other end was never cloned (deprecated, outside the matched
// set, failed) is dropped. Both ends of a link usually report it, so a pair
// of clones is linked at most once regardless of direction. A failing link
// does not stop the replay; failures are returned joined.
func (e *Engine) ReplayLinks(ctx context.Context) error {
	if e.opts.DryRun {
		return nil
	}
	var errs []error
	for _, p := range e.pending {
		a, okA := e.cloned[p.SourceA]
		b, okB := e.cloned[p.SourceB]
		if !okA || !okB {
			e.log.Debug("dropped link to a ticket that was not cloned", "from", p.SourceA, "to", p.SourceB, "type", p.Type)
			continue
		}
		key := pairOf(a, b)
		if e.linked[key] {
			continue
		}
		e.log.Debug("linking", "from", a, "to", b, "type", p.Type, "direction", p.Direction)
		if err := e.store.CreateLink(ctx, a, b, p.Type, p.Direction); err != nil {
			e.log.Error("link failed", "from", a, "to", b, "err", err)
			errs = append(errs, fmt.Errorf("link %s to %s: %w", a, b, err))
			continue
		}
		e.linked[key] = true
	}
	return errors.Join(errs...)
}
