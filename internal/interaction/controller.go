package interaction

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
)

var (
	ErrBusy        = errors.New("interaction: a gesture or rejection is already pending")
	ErrNotDragging = errors.New("interaction: no drag in progress")
)

// State is the controller's position in the drag-to-connect gesture.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
	// StateRejected holds a cycle rejection until the user dismisses it.
	StateRejected State = "rejected"
)

// Outcome is the result of an edge proposal.
type Outcome string

const (
	OutcomeAdded    Outcome = "added"
	OutcomeNoop     Outcome = "noop"
	OutcomeRejected Outcome = "rejected"
)

// Rejection explains why a proposed edge was refused.
// Path runs along existing dependencies from From to To; adding To → From would close it.
type Rejection struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// Involves reports whether the rejected edge or its cycle path touches id.
func (r *Rejection) Involves(id string) bool {
	return r.From == id || r.To == id || slices.Contains(r.Path, id)
}

// Status is a snapshot of the controller for rendering.
type Status struct {
	State     State      `json:"state"`
	From      string     `json:"from,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

// Controller turns drag gestures into graph mutations. A rejected proposal
// leaves the graph untouched.
//
// Controller is not safe for concurrent use; it shares its graph's owner lock.
type Controller struct {
	g       *dag.Graph
	state   State
	from    string
	pending *Rejection
}

// NewController creates an idle controller over g.
func NewController(g *dag.Graph) *Controller {
	return &Controller{g: g, state: StateIdle}
}

// BeginDrag starts a connection from the output connector of node from.
func (c *Controller) BeginDrag(from string) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if !c.g.Has(from) {
		return fmt.Errorf("%w: %s", dag.ErrNodeNotFound, from)
	}
	c.state = StateDragging
	c.from = from
	return nil
}

// EndDrag drops the connection on node to. An empty to means empty canvas.
// Dropping on empty space or on the origin node is a no-op.
func (c *Controller) EndDrag(to string) (Outcome, *Rejection, error) {
	if c.state != StateDragging {
		return "", nil, ErrNotDragging
	}
	from := c.from
	c.reset()
	if to == "" || to == from {
		return OutcomeNoop, nil, nil
	}
	out, rej, err := c.ProposeEdge(from, to)
	if err != nil {
		return "", nil, err
	}
	if out == OutcomeRejected {
		c.state = StateRejected
		c.pending = rej
	}
	return out, rej, nil
}

// CancelDrag abandons a drag, for example when the pointer leaves the canvas.
func (c *Controller) CancelDrag() {
	if c.state == StateDragging {
		c.reset()
	}
}

// Dismiss acknowledges a pending rejection. It reports whether one was pending.
func (c *Controller) Dismiss() bool {
	if c.state != StateRejected {
		return false
	}
	c.reset()
	return true
}

func (c *Controller) State() State { return c.state }

// Pending returns the rejection awaiting acknowledgment, or nil.
func (c *Controller) Pending() *Rejection {
	if c.pending == nil {
		return nil
	}
	r := *c.pending
	r.Path = append([]string(nil), c.pending.Path...)
	return &r
}

func (c *Controller) Status() Status {
	s := Status{State: c.state, Rejection: c.Pending()}
	if c.state == StateDragging {
		s.From = c.from
	}
	return s
}

// ProposeEdge asks for to to depend on from. Self-edges and existing edges are
// no-ops. An edge that would close a cycle is rejected with an explanation and
// the graph is left as it was. ProposeEdge does not change the gesture state.
func (c *Controller) ProposeEdge(from, to string) (Outcome, *Rejection, error) {
	fromNode, err := c.g.Node(from)
	if err != nil {
		return "", nil, err
	}
	toNode, err := c.g.Node(to)
	if err != nil {
		return "", nil, err
	}
	if from == to {
		return OutcomeNoop, nil, nil
	}
	for _, d := range toNode.Dependencies {
		if d == from {
			return OutcomeNoop, nil, nil
		}
	}

	path, err := c.g.CyclePath(from, to)
	if err != nil {
		return "", nil, err
	}
	if path != nil {
		return OutcomeRejected, &Rejection{
			From:    from,
			To:      to,
			Path:    path,
			Message: explain(fromNode.Task.Title, toNode.Task.Title, path),
		}, nil
	}

	if _, err := c.g.AddDependency(to, from); err != nil {
		return "", nil, err
	}
	return OutcomeAdded, nil, nil
}

// RemoveEdge drops the dependency of dependentID on prerequisiteID.
// Removing an absent edge reports false.
func (c *Controller) RemoveEdge(dependentID, prerequisiteID string) (bool, error) {
	return c.g.RemoveDependency(dependentID, prerequisiteID)
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.from = ""
	c.pending = nil
}

func explain(fromTitle, toTitle string, path []string) string {
	loop := append(append([]string(nil), path...), path[0])
	return fmt.Sprintf("%q cannot depend on %q: %q already depends on %q, so the new edge would close the loop %s",
		toTitle, fromTitle, fromTitle, toTitle, strings.Join(loop, " -> "))
}
