package graph

import "github.com/RamXX/tclone/internal/model"

// Edge is a link between two template tickets, by source id.
type Edge struct {
	A, B string
	Type string
}

// Plan is an in-memory view of one clone run: which clones were created
// under which parent and which clones get linked.
type Plan struct {
	records  []*model.CloneRecord
	nodes    map[string]*model.CloneRecord // source id -> record
	children map[string][]string           // source parent -> source sub-tasks, creation order
	links    map[string][]string           // undirected, both ends cloned
	edges    []Edge
}

// Build constructs a plan from the records of a run, in creation order, and
// the links collected during it. Links with an end that was never cloned
// are dropped, and each unordered pair is kept once.
func Build(records []model.CloneRecord, edges []Edge) *Plan {
	p := &Plan{
		nodes:    make(map[string]*model.CloneRecord, len(records)),
		children: make(map[string][]string),
		links:    make(map[string][]string),
	}
	for i := range records {
		rec := &records[i]
		p.records = append(p.records, rec)
		p.nodes[rec.SourceID] = rec
	}
	for _, rec := range p.records {
		if rec.ParentSourceID != "" {
			if _, ok := p.nodes[rec.ParentSourceID]; ok {
				p.children[rec.ParentSourceID] = append(p.children[rec.ParentSourceID], rec.SourceID)
			}
		}
	}

	seen := make(map[[2]string]bool)
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		if _, ok := p.nodes[e.A]; !ok {
			continue
		}
		if _, ok := p.nodes[e.B]; !ok {
			continue
		}
		key := [2]string{e.A, e.B}
		if e.B < e.A {
			key = [2]string{e.B, e.A}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.edges = append(p.edges, e)
		p.links[e.A] = append(p.links[e.A], e.B)
		p.links[e.B] = append(p.links[e.B], e.A)
	}
	return p
}

// Record returns the record of a source ticket.
func (p *Plan) Record(sourceID string) (*model.CloneRecord, bool) {
	rec, ok := p.nodes[sourceID]
	return rec, ok
}

// Edges returns the deduplicated links between clones.
func (p *Plan) Edges() []Edge {
	return append([]Edge(nil), p.edges...)
}

// Stats returns aggregate counts.
type Stats struct {
	Total int
	// Parents counts clones that are not sub-tasks.
	Parents  int
	SubTasks int
	// Attached counts sub-tasks cloned into a ticket that existed before the run.
	Attached  int
	Links     int
	Groups    int
	ByProject map[string]int
}

func (p *Plan) Stats() Stats {
	s := Stats{ByProject: make(map[string]int)}
	for _, rec := range p.records {
		s.Total++
		if rec.IssueType == model.TypeSubTask {
			s.SubTasks++
			if rec.ParentSourceID == "" && rec.ParentNewID != "" {
				s.Attached++
			}
		} else {
			s.Parents++
		}
		s.ByProject[projectOf(rec.NewID)]++
	}
	s.Links = len(p.edges)
	s.Groups = len(p.Groups())
	return s
}

func projectOf(id string) string {
	for i := len(id) - 1; i > 0; i-- {
		if id[i] == '-' {
			return id[:i]
		}
	}
	return id
}
