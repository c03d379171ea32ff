package api

import (
	"time"

	"github.com/sirupsen/logrus"

	"substation-maintenance/config"
	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	tokens      *auth.TokenManager
	passwords   *auth.PasswordManager
	log         logrus.FieldLogger
	pageSize    int
	maxPageSize int
	now         func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, tokens *auth.TokenManager, passwords *auth.PasswordManager, log logrus.FieldLogger, cfg config.ServerConfig) *Handler {
	return &Handler{
		store:       s,
		tokens:      tokens,
		passwords:   passwords,
		log:         log.WithField("component", "api"),
		pageSize:    cfg.PageSize,
		maxPageSize: cfg.MaxPageSize,
		now:         time.Now,
	}
}
