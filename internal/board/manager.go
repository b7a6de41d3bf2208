package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/impact"
	"github.com/gyaneshwarpardhi/depgraph/internal/metrics"
)

var ErrBoardNotFound = errors.New("board: not found")

// Summary identifies a live board session.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
}

// Manager owns the live board sessions. New boards are seeded from the current
// board file; the least recently used session is dropped once MaxBoards is reached.
type Manager struct {
	boards   *lru.Cache[string, *Board]
	seed     atomic.Pointer[config.BoardConfig]
	analyzer atomic.Pointer[impact.Analyzer]
	advisors impact.AdvisorSource
	pool     *workerPool[*analysisWork, *impact.Analysis]
}

type analysisWork struct {
	index    int
	graph    *dag.Graph
	analyzer *impact.Analyzer
	nodeID   string
}

// NewManager validates the seed board and starts the analysis workers.
func NewManager(ctx context.Context, cfg *config.BoardConfig, advisors impact.AdvisorSource) (*Manager, error) {
	m := &Manager{advisors: advisors}
	if err := m.apply(cfg); err != nil {
		return nil, err
	}
	cache, err := lru.NewWithEvict[string, *Board](cfg.Sessions.MaxBoards, func(id string, b *Board) {
		slog.Debug("board session released", "board", id, "name", b.Name)
	})
	if err != nil {
		return nil, fmt.Errorf("board cache: %w", err)
	}
	m.boards = cache
	m.pool = newWorkerPool[*analysisWork, *impact.Analysis](
		ctx,
		cfg.Sessions.AnalysisWorkers,
		cfg.Sessions.QueueDepth,
		func(_ context.Context, w *analysisWork) (*impact.Analysis, error) {
			return analyze(w.analyzer, w.graph, w.nodeID)
		},
	)
	return m, nil
}

// Reload swaps in a new seed and rule set. Live boards keep their graphs.
// On error nothing changes.
func (m *Manager) Reload(cfg *config.BoardConfig) error {
	if err := m.apply(cfg); err != nil {
		metrics.ConfigReloads.WithLabelValues("error").Inc()
		return err
	}
	metrics.ConfigReloads.WithLabelValues("ok").Inc()
	slog.Info("board seed reloaded", "tasks", len(cfg.Tasks), "rules", len(m.Analyzer().Rules()))
	return nil
}

func (m *Manager) apply(cfg *config.BoardConfig) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if _, err := dag.Build(cfg); err != nil {
		return fmt.Errorf("seed board: %w", err)
	}
	a, err := impact.FromConfig(cfg, m.advisors)
	if err != nil {
		return fmt.Errorf("impact rules: %w", err)
	}
	m.seed.Store(cfg)
	m.analyzer.Store(a)
	return nil
}

// Analyzer returns the current rule set.
func (m *Manager) Analyzer() *impact.Analyzer {
	return m.analyzer.Load()
}

// Create starts a new session from the seed board. An empty name uses the seed's name.
func (m *Manager) Create(name string) (*Board, error) {
	seed := m.seed.Load()
	g, err := dag.Build(seed)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = seed.Board.Name
	}
	b := newBoard(uuid.NewString(), name, g, dag.SpacingFromConfig(seed.Layout))
	if evicted := m.boards.Add(b.ID, b); evicted {
		metrics.BoardsEvicted.Inc()
	}
	metrics.ActiveBoards.Set(float64(m.boards.Len()))
	slog.Info("board created", "board", b.ID, "name", name, "nodes", g.NodeCount())
	return b, nil
}

// Get returns the board with the given id.
func (m *Manager) Get(id string) (*Board, error) {
	b, ok := m.boards.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	return b, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	if !m.boards.Remove(id) {
		return fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	metrics.ActiveBoards.Set(float64(m.boards.Len()))
	return nil
}

// List summarizes the live sessions, oldest first.
func (m *Manager) List() []Summary {
	var out []Summary
	for _, id := range m.boards.Keys() {
		b, ok := m.boards.Peek(id)
		if !ok {
			continue
		}
		b.mu.RLock()
		out = append(out, Summary{ID: b.ID, Name: b.Name, Nodes: b.graph.NodeCount(), Edges: b.graph.EdgeCount()})
		b.mu.RUnlock()
	}
	return out
}

// Analyze computes the impact analysis of one node with the current rules.
func (m *Manager) Analyze(boardID, nodeID string) (*impact.Analysis, error) {
	b, err := m.Get(boardID)
	if err != nil {
		return nil, err
	}
	return b.Analyze(m.Analyzer(), nodeID)
}

// ImpactReport analyzes every node of a board on the worker pool, in node order.
// The analyses run against a copy of the graph, so edits are not blocked meanwhile.
// Work that does not fit the queue runs inline.
func (m *Manager) ImpactReport(ctx context.Context, boardID string) ([]*impact.Analysis, error) {
	b, err := m.Get(boardID)
	if err != nil {
		return nil, err
	}
	g := b.CloneGraph()
	a := m.Analyzer()
	nodes := g.Nodes()

	results := make([]*impact.Analysis, len(nodes))
	resultC := make(chan jobResult[*analysisWork, *impact.Analysis], len(nodes))
	pending := 0
	for i, n := range nodes {
		w := &analysisWork{index: i, graph: g, analyzer: a, nodeID: n.ID}
		if m.pool.Submit(w, resultC) {
			pending++
			continue
		}
		metrics.AnalysisQueueFull.Inc()
		res, err := analyze(a, g, n.ID)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-resultC:
			if r.err != nil {
				return nil, fmt.Errorf("analyze %s: %w", r.payload.nodeID, r.err)
			}
			results[r.payload.index] = r.value
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// QueueUtilization returns analysis queue used / capacity (0–1).
func (m *Manager) QueueUtilization() float64 {
	if m.pool.QueueCap() == 0 {
		return 0
	}
	util := float64(m.pool.QueueLen()) / float64(m.pool.QueueCap())
	metrics.QueueUtilization.Set(util)
	return util
}

// Shutdown drains the analysis workers.
func (m *Manager) Shutdown() {
	m.pool.Drain()
}
