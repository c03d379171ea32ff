package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/model"
)

// ListSubstations handles GET /api/substations.
func (h *Handler) ListSubstations(c *gin.Context) {
	subs, err := h.store.ListSubstations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

type substationRequest struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug"`
}

// CreateSubstation handles POST /api/substations. The title may be given as
// the site code or its slug.
func (h *Handler) CreateSubstation(c *gin.Context) {
	var req substationRequest
	if !bind(c, &req) {
		return
	}
	code, err := model.ParseSubstationCode(req.Title)
	if err != nil {
		fieldError(c, "title", "select a valid substation")
		return
	}

	sub := &model.Substation{Title: code, Slug: req.Slug}
	if err := h.store.CreateSubstation(c.Request.Context(), sub); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// GetSubstation handles GET /api/substations/:slug.
func (h *Handler) GetSubstation(c *gin.Context) {
	sub, err := h.store.GetSubstationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ListMCCs handles GET /api/mccs?substation=.
func (h *Handler) ListMCCs(c *gin.Context) {
	substationID, ok := int64Query(c, "substation")
	if !ok {
		return
	}
	mccs, err := h.store.ListMCCs(c.Request.Context(), substationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mccs)
}

type mccRequest struct {
	Title        string `json:"title" binding:"required,max=64"`
	Slug         string `json:"slug" binding:"required,max=64"`
	SubstationID int64  `json:"substation_id" binding:"required"`
}

// CreateMCC handles POST /api/mccs.
func (h *Handler) CreateMCC(c *gin.Context) {
	var req mccRequest
	if !bind(c, &req) {
		return
	}
	m := &model.MotorControlCenter{Title: req.Title, Slug: req.Slug, SubstationID: req.SubstationID}
	if err := h.store.CreateMCC(c.Request.Context(), m); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GetMCC handles GET /api/mccs/:slug.
func (h *Handler) GetMCC(c *gin.Context) {
	m, err := h.store.GetMCCBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
