package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/store"
)

// PageResponse wraps one page of a listing.
type PageResponse struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Data        any   `json:"data"`
}

// pageFromQuery reads ?page= and ?page_size=, clamping bad values.
func (h *Handler) pageFromQuery(c *gin.Context) store.Page {
	p := store.Page{Number: 1, Size: h.pageSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		p.Size = n
	}
	if p.Size <= 0 {
		p.Size = store.DefaultPageSize
	}
	if h.maxPageSize > 0 && p.Size > h.maxPageSize {
		p.Size = h.maxPageSize
	}
	if limit := store.MaxPageNumber(p.Size); p.Number > limit {
		p.Number = limit
	}
	return p
}

func newPageResponse(p store.Page, total int64, data any) PageResponse {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return PageResponse{
		Total:       total,
		Page:        p.Number,
		PageSize:    p.Size,
		TotalPages:  pages,
		HasNext:     p.Number < pages,
		HasPrevious: p.Number > 1,
		Data:        data,
	}
}

// int64Query parses an optional numeric query parameter. Absent means zero.
func int64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		fieldError(c, name, "must be a positive number")
		return 0, false
	}
	return v, true
}

// idParam parses the :id path parameter and answers 404 when it is not a
// positive integer.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
