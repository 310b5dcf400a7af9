package graph

import "github.com/RamXX/tclone/internal/model"

// Node is a clone and the sub-tasks created under it.
type Node struct {
	Record   *model.CloneRecord
	Children []*Node
}

// Roots returns the clones that were not created under another clone of
// the same run, in creation order.
func (p *Plan) Roots() []*model.CloneRecord {
	var roots []*model.CloneRecord
	for _, rec := range p.records {
		if _, ok := p.nodes[rec.ParentSourceID]; rec.ParentSourceID == "" || !ok {
			roots = append(roots, rec)
		}
	}
	return roots
}

// Tree returns one node per root, children in creation order.
func (p *Plan) Tree() []*Node {
	roots := p.Roots()
	nodes := make([]*Node, 0, len(roots))
	for _, rec := range roots {
		nodes = append(nodes, p.Subtree(rec.SourceID))
	}
	return nodes
}

// Subtree builds the tree rooted at the clone of sourceID.
func (p *Plan) Subtree(sourceID string) *Node {
	rec, ok := p.nodes[sourceID]
	if !ok {
		return nil
	}
	visited := make(map[string]bool)
	return p.buildChildren(rec, visited)
}

func (p *Plan) buildChildren(rec *model.CloneRecord, visited map[string]bool) *Node {
	node := &Node{Record: rec}
	if visited[rec.SourceID] {
		return node
	}
	visited[rec.SourceID] = true
	for _, childID := range p.children[rec.SourceID] {
		node.Children = append(node.Children, p.buildChildren(p.nodes[childID], visited))
	}
	return node
}
