package dag

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// Build constructs the seed graph from a validated BoardConfig.
// Tasks without a position are placed by auto layout. The result is acyclic.
func Build(cfg *config.BoardConfig) (*Graph, error) {
	users := make(map[string]task.User, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.ID] = u
	}

	g := NewGraph()
	var unplaced []string
	for _, td := range cfg.Tasks {
		t := task.Task{
			ID:             td.ID,
			Title:          td.Title,
			Description:    td.Description,
			Status:         task.Status(td.Status),
			Priority:       task.Priority(td.Priority),
			EstimatedHours: td.EstimatedHours,
		}
		if td.Assignee != "" {
			u, ok := users[td.Assignee]
			if !ok {
				return nil, fmt.Errorf("task %s: unknown assignee %q", td.ID, td.Assignee)
			}
			t.AssignedTo = &u
		}
		var pos Position
		if td.Position != nil {
			pos = Position{X: td.Position.X, Y: td.Position.Y}
		} else {
			unplaced = append(unplaced, td.ID)
		}
		if err := g.AddNode(t, pos); err != nil {
			return nil, fmt.Errorf("task %s: %w", td.ID, err)
		}
	}

	// Seed edges are wired unchecked and validated as a whole below.
	for _, td := range cfg.Tasks {
		for _, dep := range td.DependsOn {
			if _, err := g.AddDependency(td.ID, dep); err != nil {
				return nil, fmt.Errorf("task %s: %w", td.ID, err)
			}
		}
	}
	if cycle := g.FindCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(cycle, " -> "))
	}

	if len(unplaced) > 0 {
		positions := g.layoutPositions(SpacingFromConfig(cfg.Layout))
		for _, id := range unplaced {
			g.nodes[id].pos = positions[id]
		}
	}
	return g, nil
}

// SpacingFromConfig converts the layout section of a board file.
func SpacingFromConfig(lc config.LayoutConf) LayoutSpacing {
	return LayoutSpacing{
		OriginX:   lc.OriginX,
		OriginY:   lc.OriginY,
		ColumnGap: lc.ColumnGap,
		RowGap:    lc.RowGap,
	}
}
