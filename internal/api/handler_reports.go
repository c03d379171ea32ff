package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/report"
	"substation-maintenance/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportPageSize bounds each query while collecting the full export.
const exportPageSize = 500

func (h *Handler) listAssignments(c *gin.Context, f store.AssignmentFilter) {
	assignments, total, err := h.store.ListAssignments(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(f.Page, total, assignments))
}

// ListAssignments handles GET /api/assignments?doer=&node=.
func (h *Handler) ListAssignments(c *gin.Context) {
	doer, ok := int64Query(c, "doer")
	if !ok {
		return
	}
	node, ok := int64Query(c, "node")
	if !ok {
		return
	}
	h.listAssignments(c, store.AssignmentFilter{DoerID: doer, NodeID: node, Page: h.pageFromQuery(c)})
}

// WorkloadResponse is the body of GET /api/reports/workload.
type WorkloadResponse struct {
	Employees []store.EmployeeWorkload `json:"employees"`
	Nodes     []store.NodeWorkload     `json:"nodes"`
}

// Workload handles GET /api/reports/workload.
func (h *Handler) Workload(c *gin.Context) {
	ctx := c.Request.Context()
	employees, err := h.store.EmployeeWorkloads(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	nodes, err := h.store.NodeWorkloads(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if nodes == nil {
		nodes = []store.NodeWorkload{}
	}
	c.JSON(http.StatusOK, WorkloadResponse{Employees: employees, Nodes: nodes})
}

// AssignmentsWorkbook handles GET /api/reports/assignments.xlsx.
func (h *Handler) AssignmentsWorkbook(c *gin.Context) {
	ctx := c.Request.Context()

	var all []model.Assignment
	for page := 1; ; page++ {
		batch, total, err := h.store.ListAssignments(ctx, store.AssignmentFilter{
			Page: store.Page{Number: page, Size: exportPageSize},
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			break
		}
	}

	workloads, err := h.store.EmployeeWorkloads(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := report.Workbook(all, workloads)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("assignments-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
