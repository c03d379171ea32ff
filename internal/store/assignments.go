package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"substation-maintenance/internal/model"
)

// createAssignment records who is doing a newly inserted task and where.
// It is called once, right after the task insert and inside the same
// transaction. A task without a doer or a node gets no assignment.
func (s *gormStore) createAssignment(tx *gorm.DB, task *model.Task) (*model.Assignment, error) {
	if task.DoerID == 0 || task.NodeID == nil {
		s.log.WithFields(logrus.Fields{
			"task_id":  task.ID,
			"doer_id":  task.DoerID,
			"has_node": task.NodeID != nil,
		}).Info("Task has no doer or no node; no assignment created")
		return nil, nil
	}
	return insertAssignment(tx, task.DoerID, task.ID, task.NodeID)
}

func insertAssignment(tx *gorm.DB, doerID, taskID int64, nodeID *int64) (*model.Assignment, error) {
	var count int64
	err := tx.Model(&model.Assignment{}).
		Where("doer_id = ? AND task_id = ?", doerID, taskID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if count > 0 {
		return nil, ErrAssignmentExists
	}

	a := &model.Assignment{DoerID: doerID, TaskID: taskID, NodeID: nodeID}
	if err := tx.Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("failed to create assignment for task %d: %w", taskID, err)
	}
	return a, nil
}

// CreateAssignment links an existing doer and task directly. At most one
// assignment may exist per (doer, task).
func (s *gormStore) CreateAssignment(ctx context.Context, doerID, taskID int64, nodeID *int64) (*model.Assignment, error) {
	var a *model.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &model.Employee{}, doerID, "employee %d not found"); err != nil {
			return err
		}
		if err := ensureExists(tx, &model.Task{}, taskID, "task %d not found"); err != nil {
			return err
		}
		if nodeID != nil {
			if err := ensureExists(tx, &model.Node{}, *nodeID, "node %d not found"); err != nil {
				return err
			}
		}

		var err error
		a, err = insertAssignment(tx, doerID, taskID, nodeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssignments returns assignments newest first with their task and node.
func (s *gormStore) ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.Assignment, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Assignment{})
	if f.DoerID != 0 {
		q = q.Where("doer_id = ?", f.DoerID)
	}
	if f.NodeID != 0 {
		q = q.Where("node_id = ?", f.NodeID)
	}

	q, total, err := paginate(q, f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	var assignments []model.Assignment
	err = q.Preload("Doer").Preload("Task").Preload("Node").Preload("Node.Motor").
		Order("id DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// EmployeeWorkloads counts assigned tasks per employee and status, ordered
// by last name.
func (s *gormStore) EmployeeWorkloads(ctx context.Context) ([]EmployeeWorkload, error) {
	var rows []struct {
		DoerID    int64
		FirstName string
		LastName  string
		Status    model.TaskStatus
		Count     int64
	}
	err := s.db.WithContext(ctx).Table("assignments AS a").
		Select("a.doer_id AS doer_id, e.first_name AS first_name, e.last_name AS last_name, t.status AS status, COUNT(*) AS count").
		Joins("JOIN tasks t ON t.id = a.task_id").
		Joins("JOIN employees e ON e.id = a.doer_id").
		Group("a.doer_id, e.first_name, e.last_name, t.status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate workload: %w", err)
	}

	byDoer := make(map[int64]*EmployeeWorkload)
	for _, r := range rows {
		w, ok := byDoer[r.DoerID]
		if !ok {
			w = &EmployeeWorkload{DoerID: r.DoerID, FirstName: r.FirstName, LastName: r.LastName}
			byDoer[r.DoerID] = w
		}
		w.Total += r.Count
		switch r.Status {
		case model.TaskPending:
			w.Pending += r.Count
		case model.TaskInProgress:
			w.InProgress += r.Count
		case model.TaskCompleted:
			w.Completed += r.Count
		case model.TaskCanceled:
			w.Canceled += r.Count
		}
	}

	out := make([]EmployeeWorkload, 0, len(byDoer))
	for _, w := range byDoer {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].DoerID < out[j].DoerID
	})
	return out, nil
}

// NodeWorkloads counts assigned tasks per node, busiest first.
func (s *gormStore) NodeWorkloads(ctx context.Context) ([]NodeWorkload, error) {
	var out []NodeWorkload
	err := s.db.WithContext(ctx).Table("assignments AS a").
		Select("n.id AS node_id, n.node_index AS node_index, n.name AS node_name, COUNT(*) AS total").
		Joins("JOIN nodes n ON n.id = a.node_id").
		Group("n.id, n.node_index, n.name").
		Order("total DESC, n.node_index").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate node workload: %w", err)
	}
	return out, nil
}
