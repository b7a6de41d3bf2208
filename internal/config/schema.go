package config

import "github.com/gyaneshwarpardhi/depgraph/internal/task"

// BoardConfig is the top-level YAML structure.
type BoardConfig struct {
	Version  string       `yaml:"version"`
	Board    BoardMeta    `yaml:"board"`
	Users    []task.User  `yaml:"users"`
	Tasks    []TaskDef    `yaml:"tasks"`
	Impact   ImpactConf   `yaml:"impact"`
	Sessions SessionsConf `yaml:"sessions"`
	Layout   LayoutConf   `yaml:"layout"`
}

// BoardMeta describes the board that seeds every session.
type BoardMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// TaskDef is one seeded task together with its prerequisites.
type TaskDef struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Status         string   `yaml:"status"`
	Priority       string   `yaml:"priority"`
	Assignee       string   `yaml:"assignee"` // user id, optional
	EstimatedHours float64  `yaml:"estimated_hours"`
	Position       *Point   `yaml:"position"` // nil = placed by auto layout
	DependsOn      []string `yaml:"depends_on"`
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ImpactConf holds the heuristic suggestion rules.
type ImpactConf struct {
	Rules []RuleDef `yaml:"rules"`
}

// RuleDef pairs a suggestion type with the guard that enables it.
// An empty When always fires.
type RuleDef struct {
	Type   string                 `yaml:"type"`
	When   string                 `yaml:"when"`
	Params map[string]interface{} `yaml:"params"`
}

// SessionsConf holds tunable board-session settings.
type SessionsConf struct {
	MaxBoards       int `yaml:"max_boards"`
	AnalysisWorkers int `yaml:"analysis_workers"`
	QueueDepth      int `yaml:"queue_depth"`
}

// LayoutConf controls auto layout spacing.
type LayoutConf struct {
	OriginX   float64 `yaml:"origin_x"`
	OriginY   float64 `yaml:"origin_y"`
	ColumnGap float64 `yaml:"column_gap"`
	RowGap    float64 `yaml:"row_gap"`
}
