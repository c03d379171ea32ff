package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/parse"
)

const maxConnectionLen = 32

func validateMotor(m *model.NodeMotor) error {
	verr := &ValidationError{}
	if m.Power <= 0 {
		verr.Add("power", parse.ErrPowerInvalid.Error())
	}
	if m.RPM < 0 {
		verr.Add("rpm", "must not be negative")
	}
	if m.Amperage < 0 {
		verr.Add("amperage", "must not be negative")
	}
	m.Connection = strings.TrimSpace(m.Connection)
	if utf8.RuneCountInString(m.Connection) > maxConnectionLen {
		verr.Add("connection", fmt.Sprintf("must be at most %d characters", maxConnectionLen))
	}
	return verr.OrNil()
}

func (s *gormStore) CreateMotor(ctx context.Context, m *model.NodeMotor) error {
	if err := validateMotor(m); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create motor: %w", err)
	}
	return nil
}

func (s *gormStore) ListMotors(ctx context.Context) ([]model.NodeMotor, error) {
	var motors []model.NodeMotor
	if err := s.db.WithContext(ctx).Order("power, id").Find(&motors).Error; err != nil {
		return nil, fmt.Errorf("failed to list motors: %w", err)
	}
	return motors, nil
}

// findMotorByPower resolves a user-typed power value to exactly one motor.
func findMotorByPower(tx *gorm.DB, raw string) (*model.NodeMotor, error) {
	power, err := parse.Power(raw)
	if err != nil {
		return nil, invalid("power", err.Error())
	}

	var motors []model.NodeMotor
	if err := tx.Where("power = ?", power).Limit(2).Find(&motors).Error; err != nil {
		return nil, fmt.Errorf("failed to find motor by power: %w", err)
	}
	switch len(motors) {
	case 0:
		return nil, notFound("no motor with power %s kW found", parse.FormatPower(power))
	case 1:
		return &motors[0], nil
	default:
		return nil, fmt.Errorf("%w: %s kW", ErrMotorAmbiguous, parse.FormatPower(power))
	}
}

func (s *gormStore) FindMotorByPower(ctx context.Context, power string) (*model.NodeMotor, error) {
	return findMotorByPower(s.db.WithContext(ctx), power)
}

func (s *gormStore) UpdateMotorByPower(ctx context.Context, power string, patch MotorPatch) (*model.NodeMotor, error) {
	var motor *model.NodeMotor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMotorByPower(tx, power)
		if err != nil {
			return err
		}
		if patch.Power != nil {
			m.Power = *patch.Power
		}
		if patch.RPM != nil {
			m.RPM = *patch.RPM
		}
		if patch.Connection != nil {
			m.Connection = *patch.Connection
		}
		if patch.Amperage != nil {
			m.Amperage = *patch.Amperage
		}
		if err := validateMotor(m); err != nil {
			return err
		}
		if err := tx.Save(m).Error; err != nil {
			return fmt.Errorf("failed to update motor %d: %w", m.ID, err)
		}
		motor = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return motor, nil
}

// DeleteMotorByPower deletes the motor with the given power unless a node
// still uses it.
func (s *gormStore) DeleteMotorByPower(ctx context.Context, power string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findMotorByPower(tx, power)
		if err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&model.Node{}).Where("motor_id = ?", m.ID).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count nodes using motor %d: %w", m.ID, err)
		}
		if refs > 0 {
			return ErrMotorInUse
		}

		if err := tx.Delete(m).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrMotorInUse
			}
			return fmt.Errorf("failed to delete motor %d: %w", m.ID, err)
		}
		return nil
	})
}

func validateNode(tx *gorm.DB, n *model.Node) error {
	verr := &ValidationError{}
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		verr.Add("name", "this field is required")
	}
	if idx, err := parse.NodeIndex(n.Index); err != nil {
		verr.Add("index", err.Error())
	} else {
		n.Index = idx
	}
	if n.Level < 0 {
		verr.Add("level", "must not be negative")
	}
	if n.MCCID == 0 {
		verr.Add("mcc_id", "select an MCC")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if err := ensureExists(tx, &model.MotorControlCenter{}, n.MCCID, "MCC %d not found"); err != nil {
		return err
	}
	if n.MotorID != nil {
		if err := ensureExists(tx, &model.NodeMotor{}, *n.MotorID, "motor %d not found"); err != nil {
			return err
		}
	}

	var count int64
	if err := tx.Model(&model.Node{}).
		Where("node_index = ? AND id <> ?", n.Index, n.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check node index: %w", err)
	}
	if count > 0 {
		return ErrNodeIndexTaken
	}
	return nil
}

func (s *gormStore) CreateNode(ctx context.Context, n *model.Node) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateNode(tx, n); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(n).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNodeIndexTaken
			}
			return fmt.Errorf("failed to create node: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetNode(ctx context.Context, id int64) (*model.Node, error) {
	var n model.Node
	if err := s.db.WithContext(ctx).Preload("Motor").Preload("MCC").First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("node %d not found", id)
		}
		return nil, fmt.Errorf("failed to get node %d: %w", id, err)
	}
	return &n, nil
}

func findNodeByIndex(tx *gorm.DB, raw string) (*model.Node, error) {
	idx, err := parse.NodeIndex(raw)
	if err != nil {
		return nil, invalid("index", err.Error())
	}

	var n model.Node
	if err := tx.Where("node_index = ?", idx).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("node with index %s not found", idx)
		}
		return nil, fmt.Errorf("failed to get node by index: %w", err)
	}
	return &n, nil
}

// GetNodeByIndex looks a node up by its exact, normalized index.
func (s *gormStore) GetNodeByIndex(ctx context.Context, index string) (*model.Node, error) {
	return findNodeByIndex(s.db.WithContext(ctx).Preload("Motor").Preload("MCC"), index)
}

func (s *gormStore) UpdateNodeByIndex(ctx context.Context, index string, patch NodePatch) (*model.Node, error) {
	var node *model.Node
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := findNodeByIndex(tx, index)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			n.Name = *patch.Name
		}
		if patch.Index != nil {
			n.Index = *patch.Index
		}
		if patch.Level != nil {
			n.Level = *patch.Level
		}
		if patch.MCCID != nil {
			n.MCCID = *patch.MCCID
		}
		switch {
		case patch.ClearMotor:
			n.MotorID = nil
		case patch.MotorID != nil:
			n.MotorID = patch.MotorID
		}

		if err := validateNode(tx, n); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(n).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNodeIndexTaken
			}
			return fmt.Errorf("failed to update node %d: %w", n.ID, err)
		}
		node = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *gormStore) ListNodes(ctx context.Context, f NodeFilter) ([]model.Node, error) {
	q := s.db.WithContext(ctx).Preload("Motor")
	if f.MCCID != 0 {
		q = q.Where("mcc_id = ?", f.MCCID)
	}
	var nodes []model.Node
	if err := q.Order("node_index").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}
