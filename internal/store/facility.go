package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/parse"
)

// CreateSubstation inserts a substation. An empty slug defaults to the
// site code's slug.
func (s *gormStore) CreateSubstation(ctx context.Context, sub *model.Substation) error {
	if !sub.Title.Valid() {
		return invalid("title", "select a valid substation")
	}
	if strings.TrimSpace(sub.Slug) == "" {
		sub.Slug = sub.Title.Slug()
	}
	slug, err := parse.Slug(sub.Slug)
	if err != nil {
		return invalid("slug", parse.ErrSlugFormat.Error())
	}
	sub.Slug = slug

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSlugFree(tx, &model.Substation{}, slug); err != nil {
			return err
		}
		return createOrConflict(tx, sub, ErrSlugTaken, "substation")
	})
}

func (s *gormStore) ListSubstations(ctx context.Context) ([]model.Substation, error) {
	var subs []model.Substation
	if err := s.db.WithContext(ctx).Order("title, id").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list substations: %w", err)
	}
	return subs, nil
}

// GetSubstationBySlug returns the substation with its MCCs.
func (s *gormStore) GetSubstationBySlug(ctx context.Context, slug string) (*model.Substation, error) {
	var sub model.Substation
	err := s.db.WithContext(ctx).
		Preload("MCCs", func(db *gorm.DB) *gorm.DB { return db.Order("title, id") }).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("substation %s not found", slug)
		}
		return nil, fmt.Errorf("failed to get substation %s: %w", slug, err)
	}
	return &sub, nil
}

func (s *gormStore) CreateMCC(ctx context.Context, m *model.MotorControlCenter) error {
	verr := &ValidationError{}
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		verr.Add("title", "this field is required")
	}
	if slug, err := parse.Slug(m.Slug); err != nil {
		verr.Add("slug", parse.ErrSlugFormat.Error())
	} else {
		m.Slug = slug
	}
	if m.SubstationID == 0 {
		verr.Add("substation_id", "select a substation")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &model.Substation{}, m.SubstationID, "substation %d not found"); err != nil {
			return err
		}
		if err := ensureSlugFree(tx, &model.MotorControlCenter{}, m.Slug); err != nil {
			return err
		}
		return createOrConflict(tx, m, ErrSlugTaken, "MCC")
	})
}

// ListMCCs returns the MCCs of one substation, or all of them for a zero id.
func (s *gormStore) ListMCCs(ctx context.Context, substationID int64) ([]model.MotorControlCenter, error) {
	q := s.db.WithContext(ctx)
	if substationID != 0 {
		q = q.Where("substation_id = ?", substationID)
	}
	var mccs []model.MotorControlCenter
	if err := q.Order("title, id").Find(&mccs).Error; err != nil {
		return nil, fmt.Errorf("failed to list MCCs: %w", err)
	}
	return mccs, nil
}

// GetMCCBySlug returns the MCC with its substation and its nodes ordered by
// index, each with its motor.
func (s *gormStore) GetMCCBySlug(ctx context.Context, slug string) (*model.MotorControlCenter, error) {
	var m model.MotorControlCenter
	err := s.db.WithContext(ctx).
		Preload("Substation").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("node_index") }).
		Preload("Nodes.Motor").
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("MCC %s not found", slug)
		}
		return nil, fmt.Errorf("failed to get MCC %s: %w", slug, err)
	}
	return &m, nil
}

func ensureSlugFree(tx *gorm.DB, table any, slug string) error {
	var count int64
	if err := tx.Model(table).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

func ensureExists(tx *gorm.DB, table any, id int64, notFoundFormat string) error {
	var count int64
	if err := tx.Model(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %T %d: %w", table, id, err)
	}
	if count == 0 {
		return notFound(notFoundFormat, id)
	}
	return nil
}

// createOrConflict inserts value and maps a unique violation to conflict.
func createOrConflict(tx *gorm.DB, value any, conflict error, what string) error {
	if err := tx.Create(value).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict
		}
		return fmt.Errorf("failed to create %s: %w", what, err)
	}
	return nil
}
