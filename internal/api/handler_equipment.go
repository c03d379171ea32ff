package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

// ListNodes handles GET /api/nodes?mcc=.
func (h *Handler) ListNodes(c *gin.Context) {
	mccID, ok := int64Query(c, "mcc")
	if !ok {
		return
	}
	nodes, err := h.store.ListNodes(c.Request.Context(), store.NodeFilter{MCCID: mccID})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

type nodeRequest struct {
	Name    string `json:"name" binding:"required,max=128"`
	Index   string `json:"index" binding:"required,max=64"`
	Level   int    `json:"level" binding:"gte=0"`
	MCCID   int64  `json:"mcc_id" binding:"required"`
	MotorID *int64 `json:"motor_id"`
}

// CreateNode handles POST /api/nodes.
func (h *Handler) CreateNode(c *gin.Context) {
	var req nodeRequest
	if !bind(c, &req) {
		return
	}
	n := &model.Node{Name: req.Name, Index: req.Index, Level: req.Level, MCCID: req.MCCID, MotorID: req.MotorID}
	if err := h.store.CreateNode(c.Request.Context(), n); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GetNode handles GET /api/nodes/:id.
func (h *Handler) GetNode(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	n, err := h.store.GetNode(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// GetNodeByIndex handles GET /api/nodes/by-index/:index.
func (h *Handler) GetNodeByIndex(c *gin.Context) {
	n, err := h.store.GetNodeByIndex(c.Request.Context(), c.Param("index"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

type nodePatchRequest struct {
	Name       *string `json:"name"`
	Index      *string `json:"index"`
	Level      *int    `json:"level"`
	MCCID      *int64  `json:"mcc_id"`
	MotorID    *int64  `json:"motor_id"`
	ClearMotor bool    `json:"clear_motor"`
}

// UpdateNodeByIndex handles PATCH /api/nodes/by-index/:index.
func (h *Handler) UpdateNodeByIndex(c *gin.Context) {
	var req nodePatchRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.store.UpdateNodeByIndex(c.Request.Context(), c.Param("index"), store.NodePatch{
		Name:       req.Name,
		Index:      req.Index,
		Level:      req.Level,
		MCCID:      req.MCCID,
		MotorID:    req.MotorID,
		ClearMotor: req.ClearMotor,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// NodeAssignments handles GET /api/nodes/:id/assignments.
func (h *Handler) NodeAssignments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	h.listAssignments(c, store.AssignmentFilter{NodeID: id, Page: h.pageFromQuery(c)})
}

// ListMotors handles GET /api/motors.
func (h *Handler) ListMotors(c *gin.Context) {
	motors, err := h.store.ListMotors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, motors)
}

type motorRequest struct {
	Power      float64 `json:"power" binding:"gt=0"`
	RPM        int     `json:"rpm" binding:"gte=0"`
	Connection string  `json:"connection" binding:"max=32"`
	Amperage   float64 `json:"amperage" binding:"gte=0"`
}

// CreateMotor handles POST /api/motors.
func (h *Handler) CreateMotor(c *gin.Context) {
	var req motorRequest
	if !bind(c, &req) {
		return
	}
	m := &model.NodeMotor{Power: req.Power, RPM: req.RPM, Connection: req.Connection, Amperage: req.Amperage}
	if err := h.store.CreateMotor(c.Request.Context(), m); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type motorPatchRequest struct {
	Power      *float64 `json:"power"`
	RPM        *int     `json:"rpm"`
	Connection *string  `json:"connection"`
	Amperage   *float64 `json:"amperage"`
}

// UpdateMotor handles PATCH /api/motors?power=. The motor is looked up by the
// power value as typed.
func (h *Handler) UpdateMotor(c *gin.Context) {
	var req motorPatchRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.store.UpdateMotorByPower(c.Request.Context(), c.Query("power"), store.MotorPatch{
		Power:      req.Power,
		RPM:        req.RPM,
		Connection: req.Connection,
		Amperage:   req.Amperage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMotor handles DELETE /api/motors?power=.
func (h *Handler) DeleteMotor(c *gin.Context) {
	if err := h.store.DeleteMotorByPower(c.Request.Context(), c.Query("power")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
