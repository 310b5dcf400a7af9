package store

import (
	"fmt"
	"slices"
	"sort"

	"github.com/RamXX/tclone/internal/enforce"
	"github.com/RamXX/tclone/internal/model"
)

// Problem kinds reported by Check.
const (
	ProblemHash    = "HASH"
	ProblemParent  = "PARENT"
	ProblemSubtask = "SUBTASK"
	ProblemLink    = "LINK"
	ProblemSync    = "SYNC"
	ProblemValid   = "VALID"
)

// Problem is one integrity issue of the vault.
type Problem struct {
	Kind    string
	ID      string
	Message string
	Fixed   bool
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s", p.Kind, p.ID, p.Message)
}

// Check validates the vault: content hashes, parent and sub-task
// references, and that every link is recorded on both of its ends. With
// fix set, hashes are recomputed, missing sub-task entries are added to
// parents and missing mirror links are created.
func (s *Store) Check(fix bool) ([]Problem, error) {
	docs, err := s.listDocuments()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	var problems []Problem
	report := func(kind, id, format string, args ...any) *Problem {
		problems = append(problems, Problem{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
		return &problems[len(problems)-1]
	}

	for _, d := range docs {
		if err := enforce.ValidateTicket(d.unfiltered()); err != nil {
			report(ProblemValid, d.ID, "%v", err)
		}

		expected := enforce.ComputeContentHash(d.Summary, d.Fields.String("description"))
		if d.ContentHash != expected {
			p := report(ProblemHash, d.ID, "content hash mismatch")
			if fix {
				p.Fixed = s.fixed(s.update(d.ID, func(doc *document) error {
					doc.ContentHash = expected
					return nil
				}))
			}
		}

		if d.Parent != "" {
			parent, ok := byID[d.Parent]
			switch {
			case !ok:
				report(ProblemParent, d.ID, "parent %s does not exist", d.Parent)
			case !slices.Contains(parent.Subtasks, d.ID):
				p := report(ProblemParent, d.ID, "parent %s does not list it as a sub-task", d.Parent)
				if fix {
					p.Fixed = s.fixed(s.update(d.Parent, func(doc *document) error {
						doc.Subtasks = append(doc.Subtasks, d.ID)
						return nil
					}))
				}
			}
		}

		for _, id := range d.Subtasks {
			sub, ok := byID[id]
			if !ok {
				// Sub-tasks outside the vault are legitimate; only local keys are checked.
				if projectOf(id) == d.Project {
					report(ProblemSubtask, d.ID, "sub-task %s does not exist", id)
				}
				continue
			}
			if sub.Parent != d.ID {
				report(ProblemSubtask, d.ID, "sub-task %s names %q as its parent", id, sub.Parent)
			}
		}

		for _, l := range d.Links {
			other, ok := byID[l.OtherID]
			if !ok {
				report(ProblemLink, d.ID, "%s link to %s, which does not exist", l.Type, l.OtherID)
				continue
			}
			mirror := model.Link{OtherID: d.ID, Type: l.Type, Direction: l.Direction.Reverse()}
			if slices.Contains(other.Links, mirror) {
				continue
			}
			p := report(ProblemSync, d.ID, "%s link to %s is not recorded on %s", l.Type, l.OtherID, l.OtherID)
			if fix {
				p.Fixed = s.fixed(s.addLink(l.OtherID, mirror))
				if p.Fixed {
					other.Links = append(other.Links, mirror)
				}
			}
		}
	}

	sort.SliceStable(problems, func(i, j int) bool { return problems[i].ID < problems[j].ID })
	return problems, nil
}

func (s *Store) fixed(err error) bool {
	if err != nil {
		s.log.Warn("fix failed", "err", err)
		return false
	}
	return true
}
