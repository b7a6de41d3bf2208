package impact

import "github.com/gyaneshwarpardhi/depgraph/internal/task"

// Fields are the paths a rule guard may reference.
var Fields = []string{
	"target.id",
	"target.status",
	"target.priority",
	"target.estimated_hours",
	"target.dependencies",
	"target.assigned",
	"downstream.count",
	"downstream.hours",
	"critical_path",
}

// Facts is what rules and advisors see about the analyzed node.
type Facts struct {
	Target          task.Task
	Prerequisites   int
	Downstream      []task.Task
	CumulativeDelay float64
	CriticalPath    bool
}

// Lookup implements guard.Scope.
func (f *Facts) Lookup(path []string) (interface{}, bool) {
	if len(path) == 1 && path[0] == "critical_path" {
		return f.CriticalPath, true
	}
	if len(path) != 2 {
		return nil, false
	}
	switch path[0] {
	case "target":
		switch path[1] {
		case "id":
			return f.Target.ID, true
		case "status":
			return string(f.Target.Status), true
		case "priority":
			return string(f.Target.Priority), true
		case "estimated_hours":
			return f.Target.EstimatedHours, true
		case "dependencies":
			return f.Prerequisites, true
		case "assigned":
			return f.Target.AssignedTo != nil, true
		}
	case "downstream":
		switch path[1] {
		case "count":
			return len(f.Downstream), true
		case "hours":
			return f.CumulativeDelay, true
		}
	}
	return nil, false
}

func knownField(path string) bool {
	for _, f := range Fields {
		if f == path {
			return true
		}
	}
	return false
}
