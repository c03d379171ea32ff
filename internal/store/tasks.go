package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"substation-maintenance/internal/model"
)

func (s *gormStore) validateDeadline(deadline *time.Time) error {
	if deadline != nil && deadline.Before(s.now()) {
		return invalid("deadline", "the deadline must not be in the past")
	}
	return nil
}

// CreateTask inserts a task and, when both a doer and a node are known, its
// assignment, in one transaction.
func (s *gormStore) CreateTask(ctx context.Context, d TaskDraft) (*model.Task, error) {
	status := d.Status
	if status == "" {
		status = model.DefaultTaskStatus
	}
	if !status.Valid() {
		return nil, invalid("status", "select a valid status")
	}
	if err := s.validateDeadline(d.Deadline); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		description = model.DefaultTaskDescription
	}

	task := &model.Task{
		DoerID:      d.DoerID,
		Description: description,
		Status:      status,
		Deadline:    d.Deadline,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doer model.Employee
		if err := tx.First(&doer, d.DoerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("employee %d not found", d.DoerID)
			}
			return fmt.Errorf("failed to get doer %d: %w", d.DoerID, err)
		}
		if d.RequireRole != "" && doer.Role != d.RequireRole {
			return invalid("doer", fmt.Sprintf("select an employee with role %s", d.RequireRole.Label()))
		}

		node, err := resolveTaskNode(tx, d)
		if err != nil {
			return err
		}
		if node != nil {
			task.NodeID = &node.ID
		}

		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		if _, err := s.createAssignment(tx, task); err != nil {
			return err
		}

		task.Doer = &doer
		task.Node = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// resolveTaskNode finds the node named by the draft. A blank index with no
// id means the task has no node.
func resolveTaskNode(tx *gorm.DB, d TaskDraft) (*model.Node, error) {
	if strings.TrimSpace(d.NodeIndex) != "" {
		return findNodeByIndex(tx, d.NodeIndex)
	}
	if d.NodeID == nil {
		return nil, nil
	}

	var n model.Node
	if err := tx.First(&n, *d.NodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("node %d not found", *d.NodeID)
		}
		return nil, fmt.Errorf("failed to get node %d: %w", *d.NodeID, err)
	}
	return &n, nil
}

func (s *gormStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	if err := s.db.WithContext(ctx).Preload("Doer").Preload("Node").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("task %d not found", id)
		}
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns tasks newest first.
func (s *gormStore) ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Task{})
	if f.DoerID != 0 {
		q = q.Where("doer_id = ?", f.DoerID)
	}
	if f.NodeID != 0 {
		q = q.Where("node_id = ?", f.NodeID)
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, 0, invalid("status", "select a valid status")
		}
		q = q.Where("status = ?", f.Status)
	}

	q, total, err := paginate(q, f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	var tasks []model.Task
	err = q.Preload("Doer").Preload("Node").
		Order("created_at DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTaskStatus sets any valid status regardless of the current one.
func (s *gormStore) UpdateTaskStatus(ctx context.Context, id int64, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, invalid("status", "select a valid status")
	}

	res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update task %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("task %d not found", id)
	}
	return s.GetTask(ctx, id)
}

// UpdateTask edits the description or deadline. Assignments are left as
// they are.
func (s *gormStore) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*model.Task, error) {
	updates := map[string]any{}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			description = model.DefaultTaskDescription
		}
		updates["description"] = description
	}
	switch {
	case patch.ClearDeadline:
		updates["deadline"] = nil
	case patch.Deadline != nil:
		if err := s.validateDeadline(patch.Deadline); err != nil {
			return nil, err
		}
		updates["deadline"] = *patch.Deadline
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update task %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, notFound("task %d not found", id)
		}
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes the task. Its assignments go with it through the
// foreign key.
func (s *gormStore) DeleteTask(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("task %d not found", id)
	}
	return nil
}
