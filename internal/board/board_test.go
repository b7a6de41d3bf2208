package board_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gyaneshwarpardhi/depgraph/internal/advice"
	"github.com/gyaneshwarpardhi/depgraph/internal/board"
	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/interaction"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
version: "1"
board:
  name: Sprint 12
users:
  - id: u1
    name: Ada
tasks:
  - id: t1
    title: Schema
    estimated_hours: 4
  - id: t2
    title: API
    assignee: u1
    estimated_hours: 6
    depends_on: [t1]
  - id: t3
    title: Client
    estimated_hours: 5
    depends_on: [t1]
  - id: t4
    title: Release
    estimated_hours: 2
    depends_on: [t2, t3]
sessions:
  max_boards: 2
  analysis_workers: 2
  queue_depth: 2
`

func newManager(t *testing.T) *board.Manager {
	t.Helper()
	cfg, err := config.Parse([]byte(seedYAML))
	require.NoError(t, err)
	m, err := board.NewManager(context.Background(), cfg, advice.Default())
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)
	return m
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newManager(t)
	b, err := m.Create("")
	require.NoError(t, err)
	assert.Equal(t, "Sprint 12", b.Name, "empty name falls back to the seed name")

	snap := b.Snapshot()
	assert.Len(t, snap.Nodes, 4)
	assert.Len(t, snap.Edges, 4)

	got, err := m.Get(b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)

	require.NoError(t, m.Delete(b.ID))
	_, err = m.Get(b.ID)
	assert.ErrorIs(t, err, board.ErrBoardNotFound)
	assert.ErrorIs(t, m.Delete(b.ID), board.ErrBoardNotFound)
}

func TestManager_EvictsOldest(t *testing.T) {
	m := newManager(t)
	first, err := m.Create("a")
	require.NoError(t, err)
	_, err = m.Create("b")
	require.NoError(t, err)
	_, err = m.Create("c")
	require.NoError(t, err)

	_, err = m.Get(first.ID)
	assert.ErrorIs(t, err, board.ErrBoardNotFound)
	assert.Len(t, m.List(), 2)
}

func TestManager_BoardsAreIndependent(t *testing.T) {
	m := newManager(t)
	a, _ := m.Create("a")
	b, _ := m.Create("b")
	_, err := a.ProposeEdge("t1", "t4")
	require.NoError(t, err)
	assert.Len(t, a.Snapshot().Edges, 5)
	assert.Len(t, b.Snapshot().Edges, 4)
}

func TestBoard_ProposeAndRemove(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")

	res, err := b.ProposeEdge("t4", "t1")
	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeRejected, res.Outcome)
	require.NotNil(t, res.Rejection)

	path, err := b.CycleCheck("t4", "t1")
	require.NoError(t, err)
	assert.NotNil(t, path)

	removed, err := b.RemoveEdge("t4", "t3")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = b.RemoveEdge("t4", "t3")
	require.NoError(t, err)
	assert.False(t, removed, "second removal is a no-op")

	_, err = b.RemoveEdge("t4", "ghost")
	assert.ErrorIs(t, err, dag.ErrNodeNotFound)
}

func TestBoard_RemoveNodeCancelsDrag(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	require.NoError(t, b.BeginDrag("t2"))
	require.NoError(t, b.RemoveNode("t2"))

	assert.Equal(t, interaction.StateIdle, b.Interaction().State)
	assert.Equal(t, []string{"t1", "t3"}, b.Blockers())
}

func TestBoard_RemoveNodeClearsRejection(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	require.NoError(t, b.BeginDrag("t4"))
	res, err := b.EndDrag("t1")
	require.NoError(t, err)
	require.Equal(t, interaction.OutcomeRejected, res.Outcome)

	require.NoError(t, b.RemoveNode("t1"))
	st := b.Interaction()
	assert.Equal(t, interaction.StateIdle, st.State)
	assert.Nil(t, st.Rejection)
}

func TestBoard_RemoveNodeKeepsUnrelatedRejection(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	_, err := b.AddNode(task.Task{ID: "t5", Title: "Docs"}, dag.Position{})
	require.NoError(t, err)
	require.NoError(t, b.BeginDrag("t4"))
	_, err = b.EndDrag("t1")
	require.NoError(t, err)

	require.NoError(t, b.RemoveNode("t5"))
	assert.Equal(t, interaction.StateRejected, b.Interaction().State)
}

func TestBoard_AddNodeAndLayout(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	n, err := b.AddNode(task.Task{ID: "t5", Title: "Docs"}, dag.Position{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, "t5", n.ID)

	_, err = b.AddNode(task.Task{ID: "t5"}, dag.Position{})
	assert.ErrorIs(t, err, dag.ErrDuplicateNode)

	_, err = b.ProposeEdge("t4", "t5")
	require.NoError(t, err)
	for _, n := range b.AutoLayout() {
		if n.ID == "t5" {
			assert.Equal(t, float64(100+3*250), n.Position.X, "t5 sits in layer 3")
		}
	}
}

func TestManager_ImpactReport(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	report, err := m.ImpactReport(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, report, 4)

	want := map[string]float64{"t1": 13, "t2": 2, "t3": 2, "t4": 0}
	for i, id := range []string{"t1", "t2", "t3", "t4"} {
		assert.Equal(t, id, report[i].TargetID)
		assert.Equal(t, want[id], report[i].CumulativeDelay, "delay of %s", id)
	}

	single, err := m.Analyze(b.ID, "t2")
	require.NoError(t, err)
	assert.True(t, single.CriticalPath)

	_, err = m.ImpactReport(context.Background(), "nope")
	assert.ErrorIs(t, err, board.ErrBoardNotFound)
}

func TestManager_ReloadRejectsCycle(t *testing.T) {
	m := newManager(t)
	before := m.Analyzer()
	cfg, err := config.Parse([]byte(seedYAML))
	require.NoError(t, err)
	cfg.Tasks[0].DependsOn = []string{"t4"}

	assert.ErrorIs(t, m.Reload(cfg), dag.ErrCycleDetected)
	assert.Same(t, before, m.Analyzer(), "failed reload must keep the analyzer")
}

// Opposing proposals race on the same pairs; the lock must keep the graph acyclic.
func TestBoard_ConcurrentProposalsKeepDAG(t *testing.T) {
	m := newManager(t)
	b, _ := m.Create("")
	for i := 0; i < 10; i++ {
		_, err := b.AddNode(task.Task{ID: fmt.Sprintf("n%d", i)}, dag.Position{})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			if i == j {
				continue
			}
			wg.Add(1)
			go func(from, to string) {
				defer wg.Done()
				_, err := b.ProposeEdge(from, to)
				assert.NoError(t, err)
			}(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", j))
		}
	}
	wg.Wait()

	g := b.CloneGraph()
	require.Nil(t, g.FindCycle())
	// Exactly one direction of every pair is accepted.
	assert.Equal(t, 4+45, g.EdgeCount())
}
