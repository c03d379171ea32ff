package store

import (
	"math"
	"time"

	"substation-maintenance/internal/model"
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// DefaultPageSize is used when a Page has no size.
const DefaultPageSize = 20

// MaxPageNumber bounds Number so the row offset stays within an int32.
func MaxPageNumber(size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	return math.MaxInt32 / size
}

func (p Page) normalized() Page {
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Number < 1 {
		p.Number = 1
	}
	if limit := MaxPageNumber(p.Size); p.Number > limit {
		p.Number = limit
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// EmployeeFilter narrows ListEmployees. An empty Role matches every role.
type EmployeeFilter struct {
	Role model.Role
	Page Page
}

// NodeFilter narrows ListNodes. Zero MCCID matches every MCC.
type NodeFilter struct {
	MCCID int64
}

// NodePatch holds the fields of a node that may be changed. Nil means keep.
type NodePatch struct {
	Name       *string
	Index      *string
	Level      *int
	MCCID      *int64
	MotorID    *int64
	ClearMotor bool
}

// MotorPatch holds the fields of a motor that may be changed. Nil means keep.
type MotorPatch struct {
	Power      *float64
	RPM        *int
	Connection *string
	Amperage   *float64
}

// TaskDraft is the input of CreateTask. The node is resolved from NodeIndex
// when it is non-empty, otherwise from NodeID.
type TaskDraft struct {
	DoerID      int64
	NodeID      *int64
	NodeIndex   string
	Description string
	Deadline    *time.Time
	Status      model.TaskStatus
	// RequireRole restricts the doer to one role. Empty allows any role.
	RequireRole model.Role
}

// TaskPatch holds the editable task fields. Nil means keep.
type TaskPatch struct {
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	DoerID int64
	NodeID int64
	Status model.TaskStatus
	Page   Page
}

// AssignmentFilter narrows ListAssignments. Zero values match everything.
type AssignmentFilter struct {
	DoerID int64
	NodeID int64
	Page   Page
}

// EmployeeWorkload counts an employee's assigned tasks by status.
type EmployeeWorkload struct {
	DoerID     int64  `json:"doer_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Total      int64  `json:"total"`
	Pending    int64  `json:"pending"`
	InProgress int64  `json:"in_progress"`
	Completed  int64  `json:"completed"`
	Canceled   int64  `json:"canceled"`
}

// NodeWorkload counts the assigned tasks recorded at a node.
type NodeWorkload struct {
	NodeID    int64  `json:"node_id"`
	NodeIndex string `json:"node_index"`
	NodeName  string `json:"node_name"`
	Total     int64  `json:"total"`
}
