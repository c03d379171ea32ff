package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"substation-maintenance/config"
	"substation-maintenance/internal/api"
	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/db"
	"substation-maintenance/internal/logger"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

// TestMaintenanceLifecycle drives the API from an empty database to a
// completed task and verifies the database state at each step.
func TestMaintenanceLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---

	// 1. In-memory SQLite database with the full schema.
	testDB, err := db.OpenMemory("integration")
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	// 2. Store, auth and router wired the way serve does it.
	appStore := store.NewGormStore(testDB, logger.Discard())
	tokens := auth.NewTokenManager("integration-secret", "substationd", time.Hour)
	passwords := auth.NewPasswordManager(&auth.PasswordConfig{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	router := api.NewRouter(appStore, tokens, passwords, logger.Discard(), config.Default().Server)

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 3. The administrator exists before the API is used, as create-admin does.
	hash, err := passwords.HashPassword("admin-pass")
	require.NoError(t, err)
	admin := &model.Employee{
		Phone: "+380671112233", FirstName: "Olha", LastName: "Admin",
		Role: model.RoleEngineer, PasswordHash: hash, IsAdmin: true, IsActive: true,
	}
	require.NoError(t, appStore.CreateEmployee(context.Background(), admin))
	adminToken, _, err := tokens.Issue(admin)
	require.NoError(t, err)

	// --- Step 1: an electrician registers and logs in ---
	w := do(http.MethodPost, "/api/auth/register", "", gin.H{
		"phone": "+380501234567", "first_name": "Taras", "last_name": "Melnyk",
		"password": "breaker-42", "confirm_password": "breaker-42",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(http.MethodPost, "/api/auth/login", "", gin.H{"phone": "+380501234567", "password": "breaker-42"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login api.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	electrician := login.Employee
	assert.Equal(t, model.RoleElectrician, electrician.Role)

	// --- Step 2: the facility hierarchy ---
	w = do(http.MethodPost, "/api/substations", adminToken, gin.H{"title": "РП-4"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub model.Substation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))

	w = do(http.MethodPost, "/api/mccs", adminToken, gin.H{"title": "MCC-1", "slug": "rp4-mcc-1", "substation_id": sub.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mcc model.MotorControlCenter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mcc))

	// --- Step 3: an unused motor can be deleted ---
	w = do(http.MethodPost, "/api/motors", adminToken, gin.H{"power": 10.0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(http.MethodDelete, "/api/motors?power=10", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var motorCount int64
	require.NoError(t, testDB.Model(&model.NodeMotor{}).Count(&motorCount).Error)
	assert.Equal(t, int64(0), motorCount)

	// --- Step 4: a motor fitted to a node cannot ---
	w = do(http.MethodPost, "/api/motors", adminToken, gin.H{"power": 10.0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var motor model.NodeMotor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &motor))

	w = do(http.MethodPost, "/api/nodes", adminToken, gin.H{"name": "Breaker", "index": "node_1", "mcc_id": mcc.ID, "motor_id": motor.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var node model.Node
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &node))

	w = do(http.MethodDelete, "/api/motors?power=10.0", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, testDB.Model(&model.NodeMotor{}).Count(&motorCount).Error)
	assert.Equal(t, int64(1), motorCount)

	// --- Step 5: creating a task assigns it exactly once ---
	w = do(http.MethodPost, "/api/tasks", adminToken, gin.H{
		"doer_id": electrician.ID, "node_index": "node_1", "description": "inspect breaker",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, model.TaskInProgress, task.Status)

	var assignments []model.Assignment
	require.NoError(t, testDB.Where("task_id = ?", task.ID).Find(&assignments).Error)
	require.Len(t, assignments, 1)
	assert.Equal(t, electrician.ID, assignments[0].DoerID)
	require.NotNil(t, assignments[0].NodeID)
	assert.Equal(t, node.ID, *assignments[0].NodeID)

	// --- Step 6: the doer completes the task ---
	w = do(http.MethodPatch, "/api/tasks/"+strconv.FormatInt(task.ID, 10)+"/status", login.Token, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored model.Task
	require.NoError(t, testDB.First(&stored, task.ID).Error)
	assert.Equal(t, model.TaskCompleted, stored.Status)

	w = do(http.MethodGet, "/api/reports/workload", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var workload api.WorkloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &workload))
	require.Len(t, workload.Employees, 1)
	assert.Equal(t, int64(1), workload.Employees[0].Completed)

	// --- Step 7: deleting the task takes its assignment but not the node ---
	w = do(http.MethodDelete, "/api/tasks/"+strconv.FormatInt(task.ID, 10), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var remaining int64
	require.NoError(t, testDB.Model(&model.Assignment{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
	require.NoError(t, testDB.Model(&model.Node{}).Where("id = ?", node.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}
