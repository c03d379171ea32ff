package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"substation-maintenance/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Employees
	CreateEmployee(ctx context.Context, e *model.Employee) error
	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
	GetEmployeeByPhone(ctx context.Context, phone string) (*model.Employee, error)
	ListEmployees(ctx context.Context, f EmployeeFilter) ([]model.Employee, int64, error)
	UpdateEmployeePhone(ctx context.Context, id int64, phone string) (*model.Employee, error)
	UpdateEmployeePassword(ctx context.Context, id int64, hash string) (int64, error)
	UpdateEmployeeRole(ctx context.Context, id int64, role model.Role) (*model.Employee, error)
	SetEmployeeActive(ctx context.Context, id int64, active bool) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	DeleteEmployee(ctx context.Context, id int64) error

	// Facility
	CreateSubstation(ctx context.Context, s *model.Substation) error
	ListSubstations(ctx context.Context) ([]model.Substation, error)
	GetSubstationBySlug(ctx context.Context, slug string) (*model.Substation, error)
	CreateMCC(ctx context.Context, m *model.MotorControlCenter) error
	ListMCCs(ctx context.Context, substationID int64) ([]model.MotorControlCenter, error)
	GetMCCBySlug(ctx context.Context, slug string) (*model.MotorControlCenter, error)

	// Equipment
	CreateMotor(ctx context.Context, m *model.NodeMotor) error
	ListMotors(ctx context.Context) ([]model.NodeMotor, error)
	FindMotorByPower(ctx context.Context, power string) (*model.NodeMotor, error)
	UpdateMotorByPower(ctx context.Context, power string, patch MotorPatch) (*model.NodeMotor, error)
	DeleteMotorByPower(ctx context.Context, power string) error
	CreateNode(ctx context.Context, n *model.Node) error
	GetNode(ctx context.Context, id int64) (*model.Node, error)
	GetNodeByIndex(ctx context.Context, index string) (*model.Node, error)
	UpdateNodeByIndex(ctx context.Context, index string, patch NodePatch) (*model.Node, error)
	ListNodes(ctx context.Context, f NodeFilter) ([]model.Node, error)

	// Tasks
	CreateTask(ctx context.Context, d TaskDraft) (*model.Task, error)
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, int64, error)
	UpdateTaskStatus(ctx context.Context, id int64, status model.TaskStatus) (*model.Task, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// Assignments
	CreateAssignment(ctx context.Context, doerID, taskID int64, nodeID *int64) (*model.Assignment, error)
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]model.Assignment, int64, error)
	EmployeeWorkloads(ctx context.Context) ([]EmployeeWorkload, error)
	NodeWorkloads(ctx context.Context) ([]NodeWorkload, error)

	// DB exposes the underlying handle for health checks.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

// Option customizes a gormStore.
type Option func(*gormStore)

// WithClock replaces time.Now, mostly for deadline checks in tests.
func WithClock(now func() time.Time) Option {
	return func(s *gormStore) { s.now = now }
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, log logrus.FieldLogger, opts ...Option) Store {
	s := &gormStore{db: db, log: log.WithField("component", "store"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// paginate applies the page window to q and returns the total row count
// before the window. Ordering and preloads go on the returned query.
func paginate(q *gorm.DB, p Page) (*gorm.DB, int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p = p.normalized()
	return q.Offset(p.offset()).Limit(p.Size), total, nil
}
