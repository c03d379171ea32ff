package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/mw"
	"substation-maintenance/internal/store"
)

type taskRequest struct {
	DoerID      int64      `json:"doer_id"`
	NodeID      *int64     `json:"node_id"`
	NodeIndex   string     `json:"node_index" binding:"max=64"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
}

func (h *Handler) createTask(c *gin.Context, req taskRequest, requireRole model.Role) {
	if req.DoerID <= 0 {
		fieldError(c, "doer_id", "this field is required")
		return
	}
	task, err := h.store.CreateTask(c.Request.Context(), store.TaskDraft{
		DoerID:      req.DoerID,
		NodeID:      req.NodeID,
		NodeIndex:   req.NodeIndex,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      model.TaskStatus(req.Status),
		RequireRole: requireRole,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(c *gin.Context) {
	var req taskRequest
	if !bind(c, &req) {
		return
	}
	h.createTask(c, req, "")
}

// ListTasks handles GET /api/tasks?status=&doer=&node=.
func (h *Handler) ListTasks(c *gin.Context) {
	doer, ok := int64Query(c, "doer")
	if !ok {
		return
	}
	node, ok := int64Query(c, "node")
	if !ok {
		return
	}

	f := store.TaskFilter{
		DoerID: doer,
		NodeID: node,
		Status: model.TaskStatus(c.Query("status")),
		Page:   h.pageFromQuery(c),
	}
	tasks, total, err := h.store.ListTasks(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(f.Page, total, tasks))
}

// GetTask handles GET /api/tasks/:id.
func (h *Handler) GetTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type taskPatchRequest struct {
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

// UpdateTask handles PATCH /api/tasks/:id.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req taskPatchRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), id, store.TaskPatch{
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type taskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status. The doer may move
// their own task; engineers and admins may move any.
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req taskStatusRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	me := mw.CurrentEmployee(c)
	if !me.IsAdmin && me.Role != model.RoleEngineer {
		task, err := h.store.GetTask(ctx, id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if task.DoerID != me.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the doer or an engineer may change this task"})
			return
		}
	}

	task, err := h.store.UpdateTaskStatus(ctx, id, model.TaskStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
