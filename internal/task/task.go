package task

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCodeReview Status = "code-review"
	StatusTesting    Status = "testing"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCodeReview, StatusTesting, StatusDone:
		return true
	}
	return false
}

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// User is the person a task is assigned to. Informational only.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email,omitempty" yaml:"email"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar"`
}

// Task is a unit of work on the board.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	AssignedTo  *User    `json:"assigned_to,omitempty"`
	// EstimatedHours of zero means the task has not been estimated.
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

// Done reports whether the task is complete.
func (t Task) Done() bool { return t.Status == StatusDone }

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	c := t
	if t.AssignedTo != nil {
		u := *t.AssignedTo
		c.AssignedTo = &u
	}
	return c
}
