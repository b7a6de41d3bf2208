package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/depgraph/internal/task"
)

// FallbackRuleType is appended to every analysis and must not be configured.
const FallbackRuleType = "reschedule"

// Validate checks the config for:
//   - Required fields and known status/priority values
//   - Duplicate user and task IDs
//   - Dependencies and assignees that reference unknown IDs
//   - Self-dependencies (longer cycles are rejected when the graph is built)
//   - Rule definitions without a type, or that configure the fallback rule
func Validate(cfg *BoardConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	users := make(map[string]struct{}, len(cfg.Users))
	for i, u := range cfg.Users {
		if u.ID == "" {
			errs = append(errs, fmt.Sprintf("users[%d]: id is required", i))
			continue
		}
		if _, dup := users[u.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate user id %q", u.ID))
		}
		users[u.ID] = struct{}{}
	}

	tasks := make(map[string]int, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("tasks[%d]: id is required", i))
			continue
		}
		if prev, dup := tasks[t.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate task id %q (tasks[%d] and tasks[%d])", t.ID, prev, i))
			continue
		}
		tasks[t.ID] = i
	}

	for _, t := range cfg.Tasks {
		if t.ID == "" {
			continue
		}
		if t.Title == "" {
			errs = append(errs, fmt.Sprintf("task %s: title is required", t.ID))
		}
		if !task.Status(t.Status).Valid() {
			errs = append(errs, fmt.Sprintf("task %s: unknown status %q", t.ID, t.Status))
		}
		if !task.Priority(t.Priority).Valid() {
			errs = append(errs, fmt.Sprintf("task %s: unknown priority %q", t.ID, t.Priority))
		}
		if t.EstimatedHours < 0 {
			errs = append(errs, fmt.Sprintf("task %s: estimated_hours must not be negative", t.ID))
		}
		if t.Assignee != "" {
			if _, ok := users[t.Assignee]; !ok {
				errs = append(errs, fmt.Sprintf("task %s: unknown assignee %q", t.ID, t.Assignee))
			}
		}
		for _, dep := range t.DependsOn {
			switch {
			case dep == t.ID:
				errs = append(errs, fmt.Sprintf("task %s: cannot depend on itself", t.ID))
			default:
				if _, ok := tasks[dep]; !ok {
					errs = append(errs, fmt.Sprintf("task %s: depends on unknown task %q", t.ID, dep))
				}
			}
		}
	}

	for i, r := range cfg.Impact.Rules {
		switch r.Type {
		case "":
			errs = append(errs, fmt.Sprintf("impact.rules[%d]: type is required", i))
		case FallbackRuleType:
			errs = append(errs, fmt.Sprintf("impact.rules[%d]: %q is always applied last and cannot be configured", i, r.Type))
		}
	}

	if cfg.Sessions.MaxBoards < 0 || cfg.Sessions.AnalysisWorkers < 0 || cfg.Sessions.QueueDepth < 0 {
		errs = append(errs, "sessions: values must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
