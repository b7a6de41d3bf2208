package dag

import (
	"errors"

	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

var (
	ErrNodeNotFound  = errors.New("dag: node not found")
	ErrDuplicateNode = errors.New("dag: node already exists")
	ErrInvalidNode   = errors.New("dag: node id is required")
	ErrCycleDetected = errors.New("dag: cycle detected, graph is not acyclic")
)

// Position is where a node is drawn. It never affects graph semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a read-only view of a task on the graph.
// Dependencies lists the prerequisites that must finish before this task can start.
type Node struct {
	ID           string    `json:"id"`
	Task         task.Task `json:"task"`
	Position     Position  `json:"position"`
	Dependencies []string  `json:"dependencies"`
}

// Edge runs from a prerequisite to the task that depends on it.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// node is the arena entry owned by a Graph.
type node struct {
	task task.Task
	pos  Position
	deps []string
}

func (n *node) hasDep(id string) bool {
	for _, d := range n.deps {
		if d == id {
			return true
		}
	}
	return false
}

func (n *node) view(id string) Node {
	deps := make([]string, len(n.deps))
	copy(deps, n.deps)
	return Node{
		ID:           id,
		Task:         n.task.Clone(),
		Position:     n.pos,
		Dependencies: deps,
	}
}
