package dag_test

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// chain builds a graph from id → prerequisites pairs, in the given order.
func chain(t *testing.T, ids []string, deps map[string][]string) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	for _, id := range ids {
		if err := g.AddNode(task.Task{ID: id, Title: "Task " + id, Status: task.StatusTodo}, dag.Position{}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, id := range ids {
		for _, dep := range deps[id] {
			if _, err := g.AddDependency(id, dep); err != nil {
				t.Fatalf("AddDependency(%s, %s): %v", id, dep, err)
			}
		}
	}
	return g
}

// seedGraph is t1 ← t2, t1 ← t3, {t2, t3} ← t4.
func seedGraph(t *testing.T) *dag.Graph {
	return chain(t, []string{"t1", "t2", "t3", "t4"}, map[string][]string{
		"t2": {"t1"},
		"t3": {"t1"},
		"t4": {"t2", "t3"},
	})
}

func TestAddNode_Errors(t *testing.T) {
	g := dag.NewGraph()
	if err := g.AddNode(task.Task{}, dag.Position{}); !errors.Is(err, dag.ErrInvalidNode) {
		t.Errorf("expected ErrInvalidNode, got %v", err)
	}
	if err := g.AddNode(task.Task{ID: "a"}, dag.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddNode(task.Task{ID: "a"}, dag.Position{}); !errors.Is(err, dag.ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestAddNode_OwnsTaskCopy(t *testing.T) {
	g := dag.NewGraph()
	u := &task.User{ID: "u1", Name: "Sarah Chen"}
	if err := g.AddNode(task.Task{ID: "a", AssignedTo: u}, dag.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u.Name = "changed"
	n, _ := g.Node("a")
	if n.Task.AssignedTo.Name != "Sarah Chen" {
		t.Errorf("graph shares assignee with caller: %q", n.Task.AssignedTo.Name)
	}
	n.Dependencies = append(n.Dependencies, "ghost")
	again, _ := g.Node("a")
	if len(again.Dependencies) != 0 {
		t.Errorf("mutating a returned node leaked into the graph: %v", again.Dependencies)
	}
}

func TestAddDependency_NoOps(t *testing.T) {
	g := chain(t, []string{"a", "b"}, map[string][]string{"b": {"a"}})

	added, err := g.AddDependency("a", "a")
	if err != nil || added {
		t.Errorf("self edge: added=%v err=%v, want false, nil", added, err)
	}
	added, err = g.AddDependency("b", "a")
	if err != nil || added {
		t.Errorf("duplicate edge: added=%v err=%v, want false, nil", added, err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
}

func TestAddDependency_UnknownNode(t *testing.T) {
	g := chain(t, []string{"a"}, nil)
	if _, err := g.AddDependency("a", "ghost"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := g.AddDependency("ghost", "a"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRemoveDependency_Idempotent(t *testing.T) {
	g := chain(t, []string{"a", "b"}, map[string][]string{"b": {"a"}})

	removed, err := g.RemoveDependency("b", "a")
	if err != nil || !removed {
		t.Fatalf("first removal: removed=%v err=%v", removed, err)
	}
	removed, err = g.RemoveDependency("b", "a")
	if err != nil || removed {
		t.Errorf("second removal: removed=%v err=%v, want false, nil", removed, err)
	}
	removed, err = g.RemoveDependency("a", "b")
	if err != nil || removed {
		t.Errorf("never-existing edge: removed=%v err=%v, want false, nil", removed, err)
	}
}

func TestRemoveNode_CascadesEdges(t *testing.T) {
	g := seedGraph(t)
	if err := g.RemoveNode("t2"); err != nil {
		t.Fatalf("RemoveNode error: %v", err)
	}
	n, err := g.Node("t4")
	if err != nil {
		t.Fatalf("Node error: %v", err)
	}
	if !reflect.DeepEqual(n.Dependencies, []string{"t3"}) {
		t.Errorf("expected t4 deps [t3], got %v", n.Dependencies)
	}
	for _, e := range g.Edges() {
		if e.From == "t2" || e.To == "t2" {
			t.Errorf("dangling edge %v after removal", e)
		}
	}
	if err := g.RemoveNode("t2"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestEdges_Derived(t *testing.T) {
	g := seedGraph(t)
	want := []dag.Edge{
		{From: "t1", To: "t2"},
		{From: "t1", To: "t3"},
		{From: "t2", To: "t4"},
		{From: "t3", To: "t4"},
	}
	if got := g.Edges(); !reflect.DeepEqual(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestCycleRejection(t *testing.T) {
	// a depends on b, b depends on c: c must finish first.
	g := chain(t, []string{"a", "b", "c"}, map[string][]string{
		"a": {"b"},
		"b": {"c"},
	})
	before := g.Edges()

	cyc, err := g.WouldCreateCycle("a", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cyc {
		t.Error("making c depend on a must be reported as a cycle")
	}
	path, _ := g.CyclePath("a", "c")
	if !reflect.DeepEqual(path, []string{"a", "b", "c"}) {
		t.Errorf("CyclePath = %v, want [a b c]", path)
	}
	if !reflect.DeepEqual(g.Edges(), before) {
		t.Error("cycle check mutated the graph")
	}

	cyc, _ = g.WouldCreateCycle("c", "a")
	if cyc {
		t.Error("a depending on c again (transitively implied) is not a cycle")
	}
}

func TestWouldCreateCycle_SelfEdge(t *testing.T) {
	g := chain(t, []string{"x"}, nil)
	cyc, err := g.WouldCreateCycle("x", "x")
	if err != nil || !cyc {
		t.Errorf("self edge: cyc=%v err=%v, want true, nil", cyc, err)
	}
}

func TestWouldCreateCycle_UnknownNode(t *testing.T) {
	g := chain(t, []string{"x"}, nil)
	if _, err := g.WouldCreateCycle("x", "ghost"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestDownstream_Chain(t *testing.T) {
	// d depends on c, c on b, b on a.
	g := chain(t, []string{"a", "b", "c", "d"}, map[string][]string{
		"b": {"a"},
		"c": {"b"},
		"d": {"c"},
	})
	ids, err := g.DownstreamIDs("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"b", "c", "d"}) {
		t.Errorf("downstream(a) = %v, want [b c d]", ids)
	}
	ids, _ = g.DownstreamIDs("d")
	if len(ids) != 0 {
		t.Errorf("downstream(d) = %v, want empty", ids)
	}
	if _, err := g.Downstream("ghost"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestSeedScenario(t *testing.T) {
	g := seedGraph(t)

	tasks, err := g.Downstream("t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"t2", "t3", "t4"}) {
		t.Errorf("downstream(t1) = %v, want [t2 t3 t4]", ids)
	}

	cyc, _ := g.WouldCreateCycle("t4", "t1")
	if !cyc {
		t.Error("making t1 depend on t4 must be rejected")
	}
	path, _ := g.CyclePath("t4", "t1")
	if len(path) != 3 || path[0] != "t4" || path[2] != "t1" {
		t.Errorf("expected path t4 -> (t2|t3) -> t1, got %v", path)
	}
}

func TestAcyclicityUnderRandomProposals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	g := chain(t, ids, nil)

	for i := 0; i < 500; i++ {
		from := ids[rng.Intn(len(ids))]
		to := ids[rng.Intn(len(ids))]
		cyc, err := g.WouldCreateCycle(from, to)
		if err != nil {
			t.Fatalf("WouldCreateCycle error: %v", err)
		}
		if cyc {
			continue
		}
		if _, err := g.AddDependency(to, from); err != nil {
			t.Fatalf("AddDependency error: %v", err)
		}
		if cycle := g.FindCycle(); cycle != nil {
			t.Fatalf("cycle %v after accepting %s -> %s", cycle, from, to)
		}
	}
	if g.EdgeCount() == 0 {
		t.Error("expected some proposals to be accepted")
	}
}

func TestDownstream_TerminatesOnCorruptGraph(t *testing.T) {
	// Bypass the cycle check to simulate a corrupted store.
	g := chain(t, []string{"a", "b"}, map[string][]string{"b": {"a"}})
	if _, err := g.AddDependency("a", "b"); err != nil {
		t.Fatalf("AddDependency error: %v", err)
	}
	ids, err := g.DownstreamIDs("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"b"}) {
		t.Errorf("downstream(a) = %v, want [b]", ids)
	}
	cycle := g.FindCycle()
	if len(cycle) != 3 || cycle[0] != cycle[2] {
		t.Errorf("expected a closed 2-cycle, got %v", cycle)
	}
}

func TestBlockers(t *testing.T) {
	g := dag.NewGraph()
	for _, tk := range []task.Task{
		{ID: "t1", Status: task.StatusDone},
		{ID: "t2", Status: task.StatusInProgress},
		{ID: "t3", Status: task.StatusTodo},
	} {
		if err := g.AddNode(tk, dag.Position{}); err != nil {
			t.Fatalf("AddNode error: %v", err)
		}
	}
	g.AddDependency("t2", "t1")
	g.AddDependency("t3", "t2")

	if got := g.Blockers(); !reflect.DeepEqual(got, []string{"t2"}) {
		t.Errorf("Blockers() = %v, want [t2]", got)
	}
}

func TestLayers(t *testing.T) {
	g := seedGraph(t)
	want := map[string]int{"t1": 0, "t2": 1, "t3": 1, "t4": 2}
	if got := g.Layers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Layers() = %v, want %v", got, want)
	}

	g.AutoLayout(dag.LayoutSpacing{OriginX: 100, OriginY: 80, ColumnGap: 250, RowGap: 120})
	n3, _ := g.Node("t3")
	if n3.Position != (dag.Position{X: 350, Y: 200}) {
		t.Errorf("t3 position = %+v, want {350 200}", n3.Position)
	}
}

func TestClone_Independent(t *testing.T) {
	g := seedGraph(t)
	c := g.Clone()
	if _, err := c.RemoveDependency("t4", "t2"); err != nil {
		t.Fatalf("RemoveDependency error: %v", err)
	}
	if g.EdgeCount() != 4 || c.EdgeCount() != 3 {
		t.Errorf("clone not independent: original=%d clone=%d", g.EdgeCount(), c.EdgeCount())
	}
}
