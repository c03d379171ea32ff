package store

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"substation-maintenance/internal/db"
	"substation-maintenance/internal/logger"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/parse"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSqliteStore returns a store over a fresh, migrated in-memory database.
func newSqliteStore(t *testing.T, opts ...Option) (Store, *gorm.DB) {
	gormDB, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return NewGormStore(gormDB, logger.Discard(), opts...), gormDB
}

type fixture struct {
	electrician *model.Employee
	engineer    *model.Employee
	substation  *model.Substation
	mcc         *model.MotorControlCenter
	motor       *model.NodeMotor
	node        *model.Node
}

var phoneSeq int

func newEmployee(t *testing.T, s Store, first, last string, role model.Role) *model.Employee {
	t.Helper()
	phoneSeq++
	e := &model.Employee{
		Phone:        fmt.Sprintf("+38050%07d", phoneSeq),
		FirstName:    first,
		LastName:     last,
		Role:         role,
		Clearance:    model.ClearanceIII,
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, s.CreateEmployee(context.Background(), e))
	return e
}

func seed(t *testing.T, s Store) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		electrician: newEmployee(t, s, "Taras", "Bondar", model.RoleElectrician),
		engineer:    newEmployee(t, s, "Olena", "Andriienko", model.RoleEngineer),
		substation:  &model.Substation{Title: model.SubstationRP4},
		motor:       &model.NodeMotor{Power: 7.5, RPM: 1450, Connection: "star", Amperage: 15.2},
	}
	require.NoError(t, s.CreateSubstation(ctx, f.substation))

	f.mcc = &model.MotorControlCenter{Title: "MCC-1", Slug: "mcc-1", SubstationID: f.substation.ID}
	require.NoError(t, s.CreateMCC(ctx, f.mcc))
	require.NoError(t, s.CreateMotor(ctx, f.motor))

	f.node = &model.Node{Name: "Pump", Index: "N-42", Level: 2, MCCID: f.mcc.ID, MotorID: &f.motor.ID}
	require.NoError(t, s.CreateNode(ctx, f.node))
	return f
}

func countAssignments(t *testing.T, gormDB *gorm.DB, where ...any) int64 {
	t.Helper()
	var n int64
	q := gormDB.Model(&model.Assignment{})
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestCreateTask_WithDoerAndNodeCreatesOneAssignment(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)

	task, err := s.CreateTask(context.Background(), TaskDraft{
		DoerID:      f.electrician.ID,
		NodeIndex:   "N-42",
		Description: "Replace bearing",
	})
	require.NoError(t, err)
	require.NotNil(t, task.NodeID)
	assert.Equal(t, f.node.ID, *task.NodeID)
	assert.Equal(t, model.TaskInProgress, task.Status)

	var assignments []model.Assignment
	require.NoError(t, gormDB.Find(&assignments).Error)
	require.Len(t, assignments, 1)
	assert.Equal(t, f.electrician.ID, assignments[0].DoerID)
	assert.Equal(t, task.ID, assignments[0].TaskID)
	require.NotNil(t, assignments[0].NodeID)
	assert.Equal(t, f.node.ID, *assignments[0].NodeID)
}

func TestCreateTask_WithoutNodeCreatesNoAssignment(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)

	task, err := s.CreateTask(context.Background(), TaskDraft{DoerID: f.electrician.ID, NodeIndex: "   "})
	require.NoError(t, err)
	assert.Nil(t, task.NodeID)
	assert.Equal(t, model.DefaultTaskDescription, task.Description)
	assert.Zero(t, countAssignments(t, gormDB))
}

func TestCreateTask_UnknownNodeIndexRollsBack(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)

	_, err := s.CreateTask(context.Background(), TaskDraft{DoerID: f.electrician.ID, NodeIndex: "N-404"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "N-404")

	var tasks int64
	require.NoError(t, gormDB.Model(&model.Task{}).Count(&tasks).Error)
	assert.Zero(t, tasks)
}

func TestCreateTask_Validation(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, _ := newSqliteStore(t, WithClock(func() time.Time { return now }))
	f := seed(t, s)
	ctx := context.Background()
	past := now.Add(-time.Hour)

	testCases := []struct {
		name  string
		draft TaskDraft
		field string
	}{
		{"deadline in the past", TaskDraft{DoerID: f.electrician.ID, Deadline: &past}, "deadline"},
		{"unknown status", TaskDraft{DoerID: f.electrician.ID, Status: "done"}, "status"},
		{"doer has the wrong role", TaskDraft{DoerID: f.engineer.ID, RequireRole: model.RoleElectrician}, "doer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateTask(ctx, tc.draft)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	_, err := s.CreateTask(ctx, TaskDraft{DoerID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)

	future := now.Add(24 * time.Hour)
	task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, Deadline: &future, Status: model.TaskPending})
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, task.Status)
}

func TestCreateAssignment_DuplicatePairRejected(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID})
	require.NoError(t, err)

	_, err = s.CreateAssignment(ctx, f.electrician.ID, task.ID, &f.node.ID)
	assert.ErrorIs(t, err, ErrAssignmentExists)

	_, err = s.CreateAssignment(ctx, f.engineer.ID, task.ID, &f.node.ID)
	require.NoError(t, err, "a different doer may be assigned to the same task")
	assert.Equal(t, int64(2), countAssignments(t, gormDB))
}

func TestCreateAssignment_UniqueIndexIsTheBackstop(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)

	task, err := s.CreateTask(context.Background(), TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID})
	require.NoError(t, err)

	err = gormDB.Create(&model.Assignment{DoerID: f.electrician.ID, TaskID: task.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDeleteTask_CascadesAssignments(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), countAssignments(t, gormDB))

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.Zero(t, countAssignments(t, gormDB))
	assert.ErrorIs(t, s.DeleteTask(ctx, task.ID), ErrNotFound)
}

func TestDeleteEmployee_CascadesTasksAndAssignments(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(ctx, f.electrician.ID))
	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countAssignments(t, gormDB))
}

func TestUpdateTask_StatusAndFields(t *testing.T) {
	s, gormDB := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID})
	require.NoError(t, err)

	for _, st := range []model.TaskStatus{model.TaskCompleted, model.TaskPending, model.TaskCanceled, model.TaskInProgress} {
		updated, err := s.UpdateTaskStatus(ctx, task.ID, st)
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	_, err = s.UpdateTaskStatus(ctx, task.ID, "archived")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.UpdateTaskStatus(ctx, 9999, model.TaskCompleted)
	assert.ErrorIs(t, err, ErrNotFound)

	desc := "Check insulation"
	updated, err := s.UpdateTask(ctx, task.ID, TaskPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, int64(1), countAssignments(t, gormDB), "editing a task never adds assignments")
}

func TestListTasks_OrderFiltersAndPages(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		task, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, Description: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	_, err := s.CreateTask(ctx, TaskDraft{DoerID: f.engineer.ID, NodeID: &f.node.ID, Status: model.TaskCompleted})
	require.NoError(t, err)

	tasks, total, err := s.ListTasks(ctx, TaskFilter{DoerID: f.electrician.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	require.NotNil(t, tasks[0].Doer)
	assert.Equal(t, "Bondar", tasks[0].Doer.LastName)

	page, total, err := s.ListTasks(ctx, TaskFilter{Page: Page{Number: 2, Size: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	done, _, err := s.ListTasks(ctx, TaskFilter{Status: model.TaskCompleted, NodeID: f.node.ID})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, f.engineer.ID, done[0].DoerID)

	far, total, err := s.ListTasks(ctx, TaskFilter{Page: Page{Number: math.MaxInt, Size: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, far, "an out-of-range page is empty, not wrapped around to page one")
}

func TestPage_NormalizedOffsetNeverOverflows(t *testing.T) {
	testCases := []struct {
		name   string
		page   Page
		number int
	}{
		{name: "Zero value", page: Page{}, number: 1},
		{name: "Negative", page: Page{Number: -5, Size: 10}, number: 1},
		{name: "In range", page: Page{Number: 7, Size: 10}, number: 7},
		{name: "Max int", page: Page{Number: math.MaxInt, Size: 20}, number: math.MaxInt32 / 20},
		{name: "Max int, default size", page: Page{Number: math.MaxInt}, number: math.MaxInt32 / DefaultPageSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.page.normalized()
			assert.Equal(t, tc.number, p.Number)
			assert.GreaterOrEqual(t, p.offset(), 0)
		})
	}
}

func TestDeleteMotorByPower(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	motor := &model.NodeMotor{Power: 10, RPM: 3000}
	require.NoError(t, s.CreateMotor(ctx, motor))
	require.NoError(t, s.DeleteMotorByPower(ctx, "10"), "an unused motor can be deleted")

	motor = &model.NodeMotor{Power: 10, RPM: 3000}
	require.NoError(t, s.CreateMotor(ctx, motor))
	require.NoError(t, s.CreateNode(ctx, &model.Node{Name: "Fan", Index: "N-7", MCCID: f.mcc.ID, MotorID: &motor.ID}))
	assert.ErrorIs(t, s.DeleteMotorByPower(ctx, "10,0"), ErrMotorInUse)

	_, err := s.FindMotorByPower(ctx, "10")
	assert.NoError(t, err, "a rejected delete leaves the motor in place")

	testCases := []struct {
		input string
		msg   string
	}{
		{"", parse.ErrPowerEmpty.Error()},
		{"abc", parse.ErrPowerInvalid.Error()},
	}
	for _, tc := range testCases {
		err := s.DeleteMotorByPower(ctx, tc.input)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %q", tc.input)
		assert.Equal(t, tc.msg, verr.Fields["power"])
	}

	err = s.DeleteMotorByPower(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "no motor with power 99 kW found", err.Error())
}

func TestMotorByPower_Ambiguous(t *testing.T) {
	s, _ := newSqliteStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateMotor(ctx, &model.NodeMotor{Power: 5.5, RPM: 1000}))
	require.NoError(t, s.CreateMotor(ctx, &model.NodeMotor{Power: 5.5, RPM: 3000}))

	assert.ErrorIs(t, s.DeleteMotorByPower(ctx, "5.5"), ErrMotorAmbiguous)

	rpm := 1500
	_, err := s.UpdateMotorByPower(ctx, "5,5", MotorPatch{RPM: &rpm})
	assert.ErrorIs(t, err, ErrMotorAmbiguous)
}

func TestUpdateMotorByPower(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	rpm := 2900
	updated, err := s.UpdateMotorByPower(ctx, "7,5", MotorPatch{RPM: &rpm})
	require.NoError(t, err)
	assert.Equal(t, f.motor.ID, updated.ID)
	assert.Equal(t, 2900, updated.RPM)

	negative := -1.0
	_, err = s.UpdateMotorByPower(ctx, "7.5", MotorPatch{Amperage: &negative})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNodes(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	err := s.CreateNode(ctx, &model.Node{Name: "Dup", Index: " N-42 ", MCCID: f.mcc.ID})
	assert.ErrorIs(t, err, ErrNodeIndexTaken)

	err = s.CreateNode(ctx, &model.Node{Name: "Orphan", Index: "N-1", MCCID: 9999})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.GetNodeByIndex(ctx, "  N-42")
	require.NoError(t, err)
	assert.Equal(t, f.node.ID, n.ID)
	require.NotNil(t, n.Motor)
	assert.Equal(t, 7.5, n.Motor.Power)

	_, err = s.GetNodeByIndex(ctx, "n-42")
	assert.ErrorIs(t, err, ErrNotFound, "lookups are exact")

	newIndex := "N-43"
	updated, err := s.UpdateNodeByIndex(ctx, "N-42", NodePatch{Index: &newIndex, ClearMotor: true})
	require.NoError(t, err)
	assert.Equal(t, "N-43", updated.Index)
	assert.Nil(t, updated.MotorID)

	nodes, err := s.ListNodes(ctx, NodeFilter{MCCID: f.mcc.ID})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "N-43", nodes[0].Index)

	assert.NoError(t, s.DeleteMotorByPower(ctx, "7.5"), "the motor is free once the node drops it")
}

func TestFacility(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	assert.Equal(t, "rp-4", f.substation.Slug)
	err := s.CreateSubstation(ctx, &model.Substation{Title: model.SubstationRP4})
	assert.ErrorIs(t, err, ErrSlugTaken)

	err = s.CreateSubstation(ctx, &model.Substation{Title: "РП-9"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	sub, err := s.GetSubstationBySlug(ctx, "RP-4")
	require.NoError(t, err)
	require.Len(t, sub.MCCs, 1)
	assert.Equal(t, "mcc-1", sub.MCCs[0].Slug)

	mcc, err := s.GetMCCBySlug(ctx, "mcc-1")
	require.NoError(t, err)
	require.NotNil(t, mcc.Substation)
	require.Len(t, mcc.Nodes, 1)
	require.NotNil(t, mcc.Nodes[0].Motor)

	_, err = s.GetMCCBySlug(ctx, "mcc-9")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CreateMCC(ctx, &model.MotorControlCenter{Title: "Dup", Slug: "mcc-1", SubstationID: sub.ID})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestEmployees(t *testing.T) {
	s, _ := newSqliteStore(t)
	ctx := context.Background()

	e := &model.Employee{
		Phone:        "+38 (050) 111-22-33",
		FirstName:    " Ivan ",
		LastName:     "Shevchuk",
		PasswordHash: "hash",
	}
	require.NoError(t, s.CreateEmployee(ctx, e))
	assert.Equal(t, "+380501112233", e.Phone)
	assert.Equal(t, "Ivan", e.FirstName)
	assert.Equal(t, model.RoleElectrician, e.Role)

	dup := &model.Employee{Phone: "+380501112233", FirstName: "A", LastName: "B", PasswordHash: "hash"}
	assert.ErrorIs(t, s.CreateEmployee(ctx, dup), ErrPhoneTaken)

	bad := &model.Employee{Phone: "0501112233", PasswordHash: "hash"}
	var verr *ValidationError
	require.ErrorAs(t, s.CreateEmployee(ctx, bad), &verr)
	assert.Contains(t, verr.Fields, "phone")
	assert.Contains(t, verr.Fields, "first_name")

	got, err := s.GetEmployeeByPhone(ctx, "+380 50 111 22 33")
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	version, err := s.UpdateEmployeePassword(ctx, e.ID, "hash2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	other := newEmployee(t, s, "Petro", "Antonenko", model.RoleEngineer)
	_, err = s.UpdateEmployeePhone(ctx, other.ID, "+380501112233")
	assert.ErrorIs(t, err, ErrPhoneTaken)

	updated, err := s.UpdateEmployeePhone(ctx, e.ID, "+380671112233")
	require.NoError(t, err)
	assert.Equal(t, "+380671112233", updated.Phone)

	electricians, total, err := s.ListEmployees(ctx, EmployeeFilter{Role: model.RoleElectrician})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, electricians, 1)
	assert.Equal(t, e.ID, electricians[0].ID)

	all, _, err := s.ListEmployees(ctx, EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Antonenko", all[0].LastName)

	require.NoError(t, s.DeleteEmployee(ctx, e.ID))
	_, err = s.GetEmployee(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkloads(t *testing.T) {
	s, _ := newSqliteStore(t)
	f := seed(t, s)
	ctx := context.Background()

	for _, st := range []model.TaskStatus{model.TaskInProgress, model.TaskCompleted, model.TaskCompleted} {
		_, err := s.CreateTask(ctx, TaskDraft{DoerID: f.electrician.ID, NodeID: &f.node.ID, Status: st})
		require.NoError(t, err)
	}
	_, err := s.CreateTask(ctx, TaskDraft{DoerID: f.engineer.ID})
	require.NoError(t, err)

	workloads, err := s.EmployeeWorkloads(ctx)
	require.NoError(t, err)
	require.Len(t, workloads, 1, "only assigned tasks count")
	assert.Equal(t, EmployeeWorkload{
		DoerID: f.electrician.ID, FirstName: "Taras", LastName: "Bondar",
		Total: 3, InProgress: 1, Completed: 2,
	}, workloads[0])

	nodes, err := s.NodeWorkloads(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeWorkload{NodeID: f.node.ID, NodeIndex: "N-42", NodeName: "Pump", Total: 3}, nodes[0])

	assignments, total, err := s.ListAssignments(ctx, AssignmentFilter{DoerID: f.electrician.ID, Page: Page{Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, assignments, 2)
	require.NotNil(t, assignments[0].Task)
	require.NotNil(t, assignments[0].Node)
}

func TestGormStore_DeleteMotorByPower_Mocked(t *testing.T) {
	testCases := []struct {
		name        string
		expect      func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "Motor referenced by a node is kept",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "node_motors" WHERE power = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "power"}).AddRow(3, 10.0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "nodes" WHERE motor_id = $1`)).
					WithArgs(3).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			expectedErr: ErrMotorInUse,
		},
		{
			name: "Two motors with the same power",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "node_motors" WHERE power = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "power"}).AddRow(3, 10.0).AddRow(4, 10.0))
				mock.ExpectRollback()
			},
			expectedErr: ErrMotorAmbiguous,
		},
		{
			name: "Unused motor is deleted",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "node_motors" WHERE power = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "power"}).AddRow(3, 10.0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "nodes" WHERE motor_id = $1`)).
					WithArgs(3).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "node_motors" WHERE "node_motors"."id" = $1`)).
					WithArgs(3).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			tc.expect(mock)

			s := NewGormStore(gormDB, logger.Discard())
			err := s.DeleteMotorByPower(context.Background(), "10")
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
