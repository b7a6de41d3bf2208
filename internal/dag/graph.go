package dag

import (
	"fmt"

	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// Graph holds task nodes keyed by id. Edges are kept as prerequisite ids on each
// dependent, never as pointers between nodes.
//
// A Graph is not safe for concurrent use; board.Board serializes access to it.
type Graph struct {
	nodes map[string]*node
	order []string // insertion order, for deterministic iteration
}

// NewGraph allocates an empty Graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode registers a task. The graph stores its own copy of t.
func (g *Graph) AddNode(t task.Task, pos Position) error {
	if t.ID == "" {
		return ErrInvalidNode
	}
	if _, ok := g.nodes[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, t.ID)
	}
	g.nodes[t.ID] = &node{task: t.Clone(), pos: pos}
	g.order = append(g.order, t.ID)
	return nil
}

// RemoveNode deletes a node and every dependency that references it.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	for _, n := range g.nodes {
		n.deps = without(n.deps, id)
	}
	return nil
}

// AddDependency records that dependentID cannot start before prerequisiteID is done.
// Self-edges and existing edges are no-ops and report false. The caller must have
// checked WouldCreateCycle first.
func (g *Graph) AddDependency(dependentID, prerequisiteID string) (bool, error) {
	dep, err := g.get(dependentID)
	if err != nil {
		return false, err
	}
	if _, err := g.get(prerequisiteID); err != nil {
		return false, err
	}
	if dependentID == prerequisiteID || dep.hasDep(prerequisiteID) {
		return false, nil
	}
	dep.deps = append(dep.deps, prerequisiteID)
	return true, nil
}

// RemoveDependency drops a single prerequisite edge. Absent edges report false.
func (g *Graph) RemoveDependency(dependentID, prerequisiteID string) (bool, error) {
	dep, err := g.get(dependentID)
	if err != nil {
		return false, err
	}
	if _, err := g.get(prerequisiteID); err != nil {
		return false, err
	}
	if !dep.hasDep(prerequisiteID) {
		return false, nil
	}
	dep.deps = without(dep.deps, prerequisiteID)
	return true, nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, error) {
	n, err := g.get(id)
	if err != nil {
		return Node{}, err
	}
	return n.view(id), nil
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].view(id))
	}
	return out
}

// Edges flattens every node's dependencies into prerequisite → dependent edges.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, id := range g.order {
		for _, dep := range g.nodes[id].deps {
			out = append(out, Edge{From: dep, To: id})
		}
	}
	return out
}

// Dependents returns the ids that list id as a direct prerequisite.
func (g *Graph) Dependents(id string) ([]string, error) {
	if _, err := g.get(id); err != nil {
		return nil, err
	}
	var out []string
	for _, oid := range g.order {
		if g.nodes[oid].hasDep(id) {
			out = append(out, oid)
		}
	}
	return out, nil
}

// SetPosition moves a node on the canvas.
func (g *Graph) SetPosition(id string, pos Position) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	n.pos = pos
	return nil
}

// NodeCount returns the total number of registered nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the total number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nd := range g.nodes {
		n += len(nd.deps)
	}
	return n
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make(map[string]*node, len(g.nodes)),
		order: append([]string(nil), g.order...),
	}
	for id, n := range g.nodes {
		c.nodes[id] = &node{
			task: n.task.Clone(),
			pos:  n.pos,
			deps: append([]string(nil), n.deps...),
		}
	}
	return c
}

func (g *Graph) get(id string) (*node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// without returns ids minus every occurrence of id, reusing the backing array.
func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
