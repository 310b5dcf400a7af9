package store

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/RamXX/tclone/internal/idgen"
	"github.com/RamXX/tclone/internal/model"
)

// ListTickets reads every ticket in the vault, ordered by project and key
// number. Unreadable notes are skipped.
func (s *Store) ListTickets() ([]*model.Ticket, error) {
	docs, err := s.listDocuments()
	if err != nil {
		return nil, err
	}
	tickets := make([]*model.Ticket, 0, len(docs))
	for _, d := range docs {
		tickets = append(tickets, d.ticket(s.ns))
	}
	sortTickets(tickets)
	return tickets, nil
}

// listDocuments reads the frontmatter of every note concurrently.
func (s *Store) listDocuments() ([]*document, error) {
	files, err := s.vault.Files("issues", "md")
	if err != nil {
		return nil, err
	}

	type result struct {
		doc *document
		err error
	}

	results := make([]result, len(files))
	var wg sync.WaitGroup

	for i, f := range files {
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()
			id := strings.TrimSuffix(filepath.Base(file), ".md")
			d, _, err := s.read(id)
			results[idx] = result{doc: d, err: err}
		}(i, f)
	}
	wg.Wait()

	var docs []*document
	for _, r := range results {
		if r.err != nil {
			s.log.Debug("skipping unreadable ticket", "err", r.err)
			continue
		}
		docs = append(docs, r.doc)
	}
	return docs, nil
}

// Search returns the keys of the tickets matching q.
func (s *Store) Search(ctx context.Context, q model.Query) ([]string, error) {
	tickets, err := s.ListTickets()
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, t := range tickets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if q.Matches(t, s.schema.PAVField, s.schema.KeywordsField) {
			keys = append(keys, t.ID)
		}
	}
	return keys, nil
}

func sortTickets(tickets []*model.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		pi, pj := projectOf(tickets[i].ID), projectOf(tickets[j].ID)
		if pi != pj {
			return pi < pj
		}
		ni, _ := idgen.KeyNumber(tickets[i].ID)
		nj, _ := idgen.KeyNumber(tickets[j].ID)
		if ni != nj {
			return ni < nj
		}
		return tickets[i].ID < tickets[j].ID
	})
}
