package board

import (
	"sync"
	"time"

	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/impact"
	"github.com/gyaneshwarpardhi/depgraph/internal/interaction"
	"github.com/gyaneshwarpardhi/depgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// Board is one editing session: a graph and the gesture controller driving it.
//
// Every check-then-act runs under the write lock, so two concurrent proposals
// can never both pass cycle detection against the same snapshot.
type Board struct {
	ID      string
	Name    string
	Created time.Time

	mu      sync.RWMutex
	graph   *dag.Graph
	ctrl    *interaction.Controller
	spacing dag.LayoutSpacing
}

// Snapshot is the node and edge set for rendering.
type Snapshot struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Nodes []dag.Node `json:"nodes"`
	Edges []dag.Edge `json:"edges"`
}

// ProposalResult is the outcome of an edge proposal or a finished drag.
type ProposalResult struct {
	Outcome   interaction.Outcome    `json:"outcome"`
	Rejection *interaction.Rejection `json:"rejection,omitempty"`
}

func newBoard(id, name string, g *dag.Graph, sp dag.LayoutSpacing) *Board {
	return &Board{
		ID:      id,
		Name:    name,
		Created: time.Now().UTC(),
		graph:   g,
		ctrl:    interaction.NewController(g),
		spacing: sp,
	}
}

// Snapshot returns copies of every node and edge.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{ID: b.ID, Name: b.Name, Nodes: b.graph.Nodes(), Edges: b.graph.Edges()}
}

// CloneGraph returns a private copy of the board's graph.
func (b *Board) CloneGraph() *dag.Graph {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.graph.Clone()
}

func (b *Board) AddNode(t task.Task, pos dag.Position) (dag.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.graph.AddNode(t, pos); err != nil {
		return dag.Node{}, err
	}
	return b.graph.Node(t.ID)
}

// RemoveNode deletes a node and its edges. A drag that started on it is cancelled
// and a pending rejection that names it is dismissed.
func (b *Board) RemoveNode(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.graph.RemoveNode(id); err != nil {
		return err
	}
	switch st := b.ctrl.Status(); {
	case st.State == interaction.StateDragging && st.From == id:
		b.ctrl.CancelDrag()
	case st.State == interaction.StateRejected && st.Rejection != nil && st.Rejection.Involves(id):
		b.ctrl.Dismiss()
	}
	return nil
}

func (b *Board) ProposeEdge(from, to string) (ProposalResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out, rej, err := b.ctrl.ProposeEdge(from, to)
	if err != nil {
		return ProposalResult{}, err
	}
	metrics.EdgeProposals.WithLabelValues(string(out)).Inc()
	return ProposalResult{Outcome: out, Rejection: rej}, nil
}

func (b *Board) RemoveEdge(dependentID, prerequisiteID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed, err := b.ctrl.RemoveEdge(dependentID, prerequisiteID)
	if removed {
		metrics.EdgesRemoved.Inc()
	}
	return removed, err
}

// CycleCheck reports the dependency chain an edge from → to would close, or nil.
func (b *Board) CycleCheck(from, to string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.graph.CyclePath(from, to)
}

func (b *Board) Blockers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.graph.Blockers()
}

// AutoLayout arranges the board by dependency layer and returns the moved nodes.
func (b *Board) AutoLayout() []dag.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.graph.AutoLayout(b.spacing)
	return b.graph.Nodes()
}

func (b *Board) SetPosition(id string, pos dag.Position) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph.SetPosition(id, pos)
}

// Analyze runs a single impact analysis under the read lock.
func (b *Board) Analyze(a *impact.Analyzer, id string) (*impact.Analysis, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return analyze(a, b.graph, id)
}

func (b *Board) BeginDrag(from string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.BeginDrag(from)
}

func (b *Board) EndDrag(to string) (ProposalResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out, rej, err := b.ctrl.EndDrag(to)
	if err != nil {
		return ProposalResult{}, err
	}
	metrics.EdgeProposals.WithLabelValues(string(out)).Inc()
	return ProposalResult{Outcome: out, Rejection: rej}, nil
}

func (b *Board) CancelDrag() interaction.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctrl.CancelDrag()
	return b.ctrl.Status()
}

// Dismiss acknowledges a pending rejection and reports whether there was one.
func (b *Board) Dismiss() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl.Dismiss()
}

func (b *Board) Interaction() interaction.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctrl.Status()
}

func analyze(a *impact.Analyzer, g *dag.Graph, id string) (*impact.Analysis, error) {
	start := time.Now()
	res, err := a.Analyze(g, id)
	if err != nil {
		return nil, err
	}
	metrics.ImpactAnalyses.Inc()
	metrics.ImpactDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}
