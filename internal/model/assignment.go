package model

import "time"

// Assignment is the reporting record linking a doer, a task and a node. At
// most one exists per (doer, task).
type Assignment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	DoerID    int64     `gorm:"not null;uniqueIndex:idx_assignments_doer_task,priority:1" json:"doer_id"`
	TaskID    int64     `gorm:"not null;uniqueIndex:idx_assignments_doer_task,priority:2;index" json:"task_id"`
	NodeID    *int64    `gorm:"index" json:"node_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// Associations
	Doer *Employee `gorm:"constraint:OnDelete:CASCADE" json:"doer,omitempty"`
	Task *Task     `gorm:"constraint:OnDelete:CASCADE" json:"task,omitempty"`
	Node *Node     `gorm:"constraint:OnDelete:CASCADE" json:"node,omitempty"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Employee{},
		&Substation{},
		&MotorControlCenter{},
		&NodeMotor{},
		&Node{},
		&Task{},
		&Assignment{},
	}
}
