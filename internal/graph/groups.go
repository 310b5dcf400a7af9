package graph

// Groups partitions the clones into sets connected by parent/sub-task or
// link edges. Groups come in the creation order of their first clone, and
// ids inside a group are in creation order too.
func (p *Plan) Groups() [][]string {
	visited := make(map[string]bool)
	var groups [][]string

	var dfs func(id string, group map[string]bool)
	dfs = func(id string, group map[string]bool) {
		if visited[id] {
			return
		}
		visited[id] = true
		group[id] = true
		if rec := p.nodes[id]; rec.ParentSourceID != "" {
			if _, ok := p.nodes[rec.ParentSourceID]; ok {
				dfs(rec.ParentSourceID, group)
			}
		}
		for _, child := range p.children[id] {
			dfs(child, group)
		}
		for _, other := range p.links[id] {
			dfs(other, group)
		}
	}

	for _, rec := range p.records {
		if visited[rec.SourceID] {
			continue
		}
		group := make(map[string]bool)
		dfs(rec.SourceID, group)
		ids := make([]string, 0, len(group))
		for _, r := range p.records {
			if group[r.SourceID] {
				ids = append(ids, r.SourceID)
			}
		}
		groups = append(groups, ids)
	}
	return groups
}
