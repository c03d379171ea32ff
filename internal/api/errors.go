package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/store"
)

var conflicts = []error{
	store.ErrPhoneTaken,
	store.ErrNodeIndexTaken,
	store.ErrSlugTaken,
	store.ErrAssignmentExists,
	store.ErrMotorInUse,
	store.ErrMotorAmbiguous,
}

// respondError maps store and validation errors onto HTTP responses. Anything
// unexpected is logged and reported as a bare 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	for _, conflict := range conflicts {
		if errors.Is(err, conflict) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	h.log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// fieldError responds 400 with a single field message.
func fieldError(c *gin.Context, field, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":  "validation failed",
		"fields": map[string]string{field: msg},
	})
}
