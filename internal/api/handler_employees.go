package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

// ListEmployees handles GET /api/employees?role=.
func (h *Handler) ListEmployees(c *gin.Context) {
	f := store.EmployeeFilter{Page: h.pageFromQuery(c)}
	if raw := c.Query("role"); raw != "" {
		role, err := model.ParseRole(raw)
		if err != nil {
			fieldError(c, "role", "select a valid role")
			return
		}
		f.Role = role
	}

	employees, total, err := h.store.ListEmployees(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(f.Page, total, employees))
}

// GetEmployee handles GET /api/employees/:id.
func (h *Handler) GetEmployee(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	e, err := h.store.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// EmployeeTasks handles GET /api/employees/:id/tasks.
func (h *Handler) EmployeeTasks(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := h.store.GetEmployee(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	f := store.TaskFilter{DoerID: id, Page: h.pageFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		f.Status = model.TaskStatus(raw)
	}
	tasks, total, err := h.store.ListTasks(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(f.Page, total, tasks))
}

// CreateEmployeeTask handles POST /api/employees/:id/tasks. The employee in
// the path becomes the doer and must be an electrician.
func (h *Handler) CreateEmployeeTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req taskRequest
	if !bind(c, &req) {
		return
	}
	req.DoerID = id
	h.createTask(c, req, model.RoleElectrician)
}

// EmployeeAssignments handles GET /api/employees/:id/assignments.
func (h *Handler) EmployeeAssignments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	h.listAssignments(c, store.AssignmentFilter{DoerID: id, Page: h.pageFromQuery(c)})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateEmployeeRole handles PATCH /api/employees/:id/role.
func (h *Handler) UpdateEmployeeRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		fieldError(c, "role", "select a valid role")
		return
	}

	e, err := h.store.UpdateEmployeeRole(c.Request.Context(), id, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"employee_id": id, "role": role}).Info("Employee role changed")
	c.JSON(http.StatusOK, e)
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetEmployeeActive handles PATCH /api/employees/:id/active. A deactivated
// employee can no longer log in and their tokens are refused.
func (h *Handler) SetEmployeeActive(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req activeRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if err := h.store.SetEmployeeActive(ctx, id, *req.Active); err != nil {
		h.respondError(c, err)
		return
	}
	e, err := h.store.GetEmployee(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
