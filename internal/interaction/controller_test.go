package interaction_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/interaction"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// seed builds t2→[t1], t3→[t1], t4→[t2,t3].
func seed(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		if err := g.AddNode(task.Task{ID: id, Title: "Task " + id}, dag.Position{}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]string{{"t2", "t1"}, {"t3", "t1"}, {"t4", "t2"}, {"t4", "t3"}} {
		if _, err := g.AddDependency(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestProposeEdge(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		want     interaction.Outcome
		edges    int
	}{
		{name: "new edge", from: "t1", to: "t4", want: interaction.OutcomeAdded, edges: 5},
		{name: "duplicate", from: "t1", to: "t2", want: interaction.OutcomeNoop, edges: 4},
		{name: "self edge", from: "t3", to: "t3", want: interaction.OutcomeNoop, edges: 4},
		{name: "cycle", from: "t4", to: "t1", want: interaction.OutcomeRejected, edges: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := seed(t)
			c := interaction.NewController(g)
			got, rej, err := c.ProposeEdge(tc.from, tc.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("outcome = %s, want %s", got, tc.want)
			}
			if (rej != nil) != (tc.want == interaction.OutcomeRejected) {
				t.Errorf("rejection = %+v for outcome %s", rej, got)
			}
			if g.EdgeCount() != tc.edges {
				t.Errorf("edge count = %d, want %d", g.EdgeCount(), tc.edges)
			}
			if c.State() != interaction.StateIdle {
				t.Errorf("ProposeEdge changed state to %s", c.State())
			}
		})
	}
}

func TestProposeEdge_RejectionExplains(t *testing.T) {
	c := interaction.NewController(seed(t))
	_, rej, err := c.ProposeEdge("t4", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if rej.From != "t4" || rej.To != "t1" {
		t.Errorf("rejected pair = (%s, %s)", rej.From, rej.To)
	}
	if want := []string{"t4", "t2", "t1"}; !reflect.DeepEqual(rej.Path, want) {
		t.Errorf("path = %v, want %v", rej.Path, want)
	}
	for _, s := range []string{`"Task t1"`, `"Task t4"`, "t4 -> t2 -> t1 -> t4"} {
		if !strings.Contains(rej.Message, s) {
			t.Errorf("message %q does not mention %s", rej.Message, s)
		}
	}
}

func TestProposeEdge_UnknownNode(t *testing.T) {
	c := interaction.NewController(seed(t))
	if _, _, err := c.ProposeEdge("t1", "ghost"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestDrag_Gestures(t *testing.T) {
	g := seed(t)
	c := interaction.NewController(g)

	if err := c.BeginDrag("t1"); err != nil {
		t.Fatal(err)
	}
	if s := c.Status(); s.State != interaction.StateDragging || s.From != "t1" {
		t.Fatalf("status = %+v", s)
	}
	if err := c.BeginDrag("t2"); !errors.Is(err, interaction.ErrBusy) {
		t.Errorf("second BeginDrag: expected ErrBusy, got %v", err)
	}

	// Dropping on empty canvas is a no-op.
	out, _, err := c.EndDrag("")
	if err != nil || out != interaction.OutcomeNoop || c.State() != interaction.StateIdle {
		t.Errorf("empty drop: out=%s err=%v state=%s", out, err, c.State())
	}

	// Dropping on the origin node is a no-op.
	c.BeginDrag("t1")
	if out, _, _ := c.EndDrag("t1"); out != interaction.OutcomeNoop {
		t.Errorf("same-node drop: out=%s", out)
	}

	c.BeginDrag("t1")
	out, _, err = c.EndDrag("t4")
	if err != nil || out != interaction.OutcomeAdded {
		t.Fatalf("drop on t4: out=%s err=%v", out, err)
	}
	if n, _ := g.Node("t4"); !reflect.DeepEqual(n.Dependencies, []string{"t2", "t3", "t1"}) {
		t.Errorf("t4 deps = %v", n.Dependencies)
	}

	c.BeginDrag("t2")
	c.CancelDrag()
	if c.State() != interaction.StateIdle {
		t.Errorf("CancelDrag left state %s", c.State())
	}

	if _, _, err := c.EndDrag("t3"); !errors.Is(err, interaction.ErrNotDragging) {
		t.Errorf("EndDrag while idle: expected ErrNotDragging, got %v", err)
	}
}

func TestDrag_RejectionIsModal(t *testing.T) {
	g := seed(t)
	c := interaction.NewController(g)

	c.BeginDrag("t4")
	out, rej, err := c.EndDrag("t1")
	if err != nil || out != interaction.OutcomeRejected || rej == nil {
		t.Fatalf("out=%s rej=%v err=%v", out, rej, err)
	}
	if c.State() != interaction.StateRejected || c.Pending() == nil {
		t.Fatalf("expected pending rejection, state=%s", c.State())
	}
	if err := c.BeginDrag("t2"); !errors.Is(err, interaction.ErrBusy) {
		t.Errorf("BeginDrag during rejection: expected ErrBusy, got %v", err)
	}
	if g.EdgeCount() != 4 {
		t.Errorf("rejected edge mutated graph: %d edges", g.EdgeCount())
	}

	if !c.Dismiss() {
		t.Error("Dismiss reported nothing pending")
	}
	if c.State() != interaction.StateIdle || c.Pending() != nil {
		t.Errorf("after dismiss: state=%s pending=%v", c.State(), c.Pending())
	}
	if c.Dismiss() {
		t.Error("second Dismiss should report false")
	}
}

func TestDrag_UnknownOrigin(t *testing.T) {
	c := interaction.NewController(seed(t))
	if err := c.BeginDrag("ghost"); !errors.Is(err, dag.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if c.State() != interaction.StateIdle {
		t.Errorf("state = %s", c.State())
	}
}

func TestRemoveEdge(t *testing.T) {
	g := seed(t)
	c := interaction.NewController(g)
	if ok, err := c.RemoveEdge("t4", "t2"); !ok || err != nil {
		t.Fatalf("RemoveEdge = %v, %v", ok, err)
	}
	if ok, err := c.RemoveEdge("t4", "t2"); ok || err != nil {
		t.Errorf("second RemoveEdge = %v, %v; want false, nil", ok, err)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("edge count = %d", g.EdgeCount())
	}
}
