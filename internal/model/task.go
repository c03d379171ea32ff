package model

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a task. Any status may follow any
// other; only membership in the set is enforced.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCanceled   TaskStatus = "canceled"
)

// DefaultTaskStatus is assigned to tasks created without an explicit status.
const DefaultTaskStatus = TaskInProgress

// DefaultTaskDescription is stored when a task is created without one.
const DefaultTaskDescription = "No task description provided."

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCanceled:
		return true
	}
	return false
}

// Label returns the display name of the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskInProgress:
		return "In progress"
	case TaskCompleted:
		return "Completed"
	case TaskCanceled:
		return "Canceled"
	}
	return "Unknown"
}

// ParseTaskStatus validates user input.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return st, nil
}

// Task is a unit of work given to a doer, optionally at a node.
type Task struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	DoerID      int64      `gorm:"index;not null" json:"doer_id"`
	NodeID      *int64     `gorm:"index" json:"node_id"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      TaskStatus `gorm:"size:16;not null;index" json:"status"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	// Associations
	Doer *Employee `gorm:"constraint:OnDelete:CASCADE" json:"doer,omitempty"`
	Node *Node     `gorm:"constraint:OnDelete:SET NULL" json:"node,omitempty"`
}
