package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/parse"
)

const maxNameLen = 30

func validateEmployee(e *model.Employee) error {
	verr := &ValidationError{}

	if phone, err := parse.Phone(e.Phone); err != nil {
		verr.Add("phone", err.Error())
	} else {
		e.Phone = phone
	}

	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	for field, v := range map[string]string{"first_name": e.FirstName, "last_name": e.LastName} {
		switch {
		case v == "":
			verr.Add(field, "this field is required")
		case utf8.RuneCountInString(v) > maxNameLen:
			verr.Add(field, fmt.Sprintf("must be at most %d characters", maxNameLen))
		}
	}

	if e.Role == "" {
		e.Role = model.RoleElectrician
	}
	if !e.Role.Valid() {
		verr.Add("role", "select a valid role")
	}
	if !e.Clearance.Valid() {
		verr.Add("clearance_group", "select a valid clearance group")
	}
	if e.PasswordHash == "" {
		verr.Add("password", "this field is required")
	}
	return verr.OrNil()
}

// CreateEmployee validates and inserts a new employee. The phone number is
// normalized before the uniqueness check.
func (s *gormStore) CreateEmployee(ctx context.Context, e *model.Employee) error {
	if err := validateEmployee(e); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePhoneFree(tx, e.Phone, 0); err != nil {
			return err
		}
		if err := tx.Create(e).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPhoneTaken
			}
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
}

func ensurePhoneFree(tx *gorm.DB, phone string, exceptID int64) error {
	var count int64
	err := tx.Model(&model.Employee{}).
		Where("phone = ? AND id <> ?", phone, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check phone: %w", err)
	}
	if count > 0 {
		return ErrPhoneTaken
	}
	return nil
}

func (s *gormStore) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	var e model.Employee
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("employee %d not found", id)
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return &e, nil
}

// GetEmployeeByPhone looks an employee up by login. The input is normalized
// the same way as on registration.
func (s *gormStore) GetEmployeeByPhone(ctx context.Context, phone string) (*model.Employee, error) {
	normalized, err := parse.Phone(phone)
	if err != nil {
		return nil, notFound("employee with phone %s not found", phone)
	}

	var e model.Employee
	if err := s.db.WithContext(ctx).Where("phone = ?", normalized).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("employee with phone %s not found", normalized)
		}
		return nil, fmt.Errorf("failed to get employee by phone: %w", err)
	}
	return &e, nil
}

// ListEmployees returns employees ordered by last then first name.
func (s *gormStore) ListEmployees(ctx context.Context, f EmployeeFilter) ([]model.Employee, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Employee{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	q, total, err := paginate(q, f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	var employees []model.Employee
	if err := q.Order("last_name, first_name, id").Find(&employees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}

func (s *gormStore) UpdateEmployeePhone(ctx context.Context, id int64, phone string) (*model.Employee, error) {
	normalized, err := parse.Phone(phone)
	if err != nil {
		return nil, invalid("phone", err.Error())
	}

	var e model.Employee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("employee %d not found", id)
			}
			return fmt.Errorf("failed to get employee %d: %w", id, err)
		}
		if err := ensurePhoneFree(tx, normalized, id); err != nil {
			return err
		}
		if err := tx.Model(&e).Update("phone", normalized).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPhoneTaken
			}
			return fmt.Errorf("failed to update phone: %w", err)
		}
		e.Phone = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEmployeePassword stores a new hash and bumps the token version so
// tokens issued before the change stop working. It returns the new version.
func (s *gormStore) UpdateEmployeePassword(ctx context.Context, id int64, hash string) (int64, error) {
	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Employee{}).Where("id = ?", id).Updates(map[string]any{
			"password_hash": hash,
			"token_version": gorm.Expr("token_version + 1"),
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update password: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("employee %d not found", id)
		}
		return tx.Model(&model.Employee{}).Where("id = ?", id).
			Select("token_version").Scan(&version).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// UpdateEmployeeRole changes the job role. Callers restrict this to admins.
func (s *gormStore) UpdateEmployeeRole(ctx context.Context, id int64, role model.Role) (*model.Employee, error) {
	if !role.Valid() {
		return nil, invalid("role", "select a valid role")
	}
	res := s.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update employee %d role: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("employee %d not found", id)
	}
	return s.GetEmployee(ctx, id)
}

func (s *gormStore) SetEmployeeActive(ctx context.Context, id int64, active bool) error {
	res := s.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update employee %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("employee %d not found", id)
	}
	return nil
}

func (s *gormStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to record login for employee %d: %w", id, err)
	}
	return nil
}

// DeleteEmployee removes the employee. Their tasks and assignments go with
// them through the foreign keys.
func (s *gormStore) DeleteEmployee(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Employee{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("employee %d not found", id)
	}
	return nil
}
