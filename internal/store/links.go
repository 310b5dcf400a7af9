package store

import (
	"context"
	"fmt"

	"github.com/RamXX/tclone/internal/clone"
	"github.com/RamXX/tclone/internal/model"
)

// CreateLink links fromID to toID. dir is the side toID sits on as seen
// from fromID; the reverse link is stored on toID.
func (s *Store) CreateLink(_ context.Context, fromID, toID, linkType string, dir model.Direction) error {
	if fromID == toID {
		return fmt.Errorf("a ticket cannot link to itself")
	}
	if !s.TicketExists(toID) {
		return fmt.Errorf("link target %s: %w", toID, clone.ErrNotFound)
	}
	if err := s.addLink(fromID, model.Link{OtherID: toID, Type: linkType, Direction: dir}); err != nil {
		return err
	}
	return s.addLink(toID, model.Link{OtherID: fromID, Type: linkType, Direction: dir.Reverse()})
}

func (s *Store) addLink(id string, l model.Link) error {
	return s.update(id, func(d *document) error {
		for _, have := range d.Links {
			if have == l {
				return nil
			}
		}
		d.Links = append(d.Links, l)
		return nil
	})
}

// CopyRemoteLinks copies the web links of fromID to toID.
func (s *Store) CopyRemoteLinks(_ context.Context, fromID, toID string) error {
	src, _, err := s.read(fromID)
	if err != nil {
		return err
	}
	if len(src.RemoteLinks) == 0 {
		return nil
	}
	return s.update(toID, func(d *document) error {
		d.RemoteLinks = append(d.RemoteLinks, src.RemoteLinks...)
		return nil
	})
}

// AddRemoteLink attaches a web link to a ticket.
func (s *Store) AddRemoteLink(id string, l RemoteLink) error {
	return s.update(id, func(d *document) error {
		d.RemoteLinks = append(d.RemoteLinks, l)
		return nil
	})
}

// RemoteLinks returns the web links of a ticket.
func (s *Store) RemoteLinks(id string) ([]RemoteLink, error) {
	d, _, err := s.read(id)
	if err != nil {
		return nil, err
	}
	return d.RemoteLinks, nil
}
