// Package enforce holds the structural checks a ticket passes before it is
// written.
package enforce

import (
	"fmt"

	"github.com/RamXX/tclone/internal/model"
)

// ValidateTicket runs structural validation on a ticket.
func ValidateTicket(t *model.Ticket) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return ValidateLinks(t)
}

// ValidateLinks checks that a ticket neither links to nor parents itself and
// that every link has a type.
func ValidateLinks(t *model.Ticket) error {
	if t.ParentID == t.ID {
		return fmt.Errorf("ticket %s cannot be its own parent", t.ID)
	}
	for _, s := range t.SubtaskIDs {
		if s == t.ID {
			return fmt.Errorf("ticket %s cannot be its own sub-task", t.ID)
		}
	}
	for _, l := range t.Links {
		if l.OtherID == t.ID {
			return fmt.Errorf("ticket %s cannot link to itself", t.ID)
		}
		if l.Type == "" {
			return fmt.Errorf("ticket %s: link to %s has no type", t.ID, l.OtherID)
		}
	}
	return nil
}

// ValidateFields checks a clone's field bag before it is created.
func ValidateFields(f model.Fields) error {
	if f.String("summary") == "" {
		return fmt.Errorf("summary is required")
	}
	p, ok := f["project"].(map[string]any)
	if !ok {
		return fmt.Errorf("project is required")
	}
	if key, _ := p["key"].(string); key == "" {
		return fmt.Errorf("project key is required")
	}
	return nil
}
