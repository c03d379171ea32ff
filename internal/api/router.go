package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"substation-maintenance/config"
	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/mw"
	"substation-maintenance/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, tokens *auth.TokenManager, passwords *auth.PasswordManager, log logrus.FieldLogger, cfg config.ServerConfig) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), mw.RequestLogger(log))

	handler := NewHandler(s, tokens, passwords, log, cfg)

	// Rate limit applies to the unauthenticated entry points only.
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Facility lookups rarely change; any successful write clears the cache.
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	{
		api.POST("/auth/register", rateLimiter, handler.Register)
		api.POST("/auth/login", rateLimiter, handler.Login)
	}

	authed := api.Group("", mw.Auth(tokens, s, log), mw.Invalidate(cacheStore))
	admin := mw.RequireAdmin()
	engineer := mw.RequireRole(model.RoleEngineer)
	{
		authed.GET("/me", handler.Me)
		authed.PATCH("/me/phone", handler.ChangePhone)
		authed.PUT("/me/password", handler.ChangePassword)
		authed.DELETE("/me", handler.DeleteMe)

		authed.GET("/employees", handler.ListEmployees)
		authed.GET("/employees/:id", handler.GetEmployee)
		authed.PATCH("/employees/:id/role", admin, handler.UpdateEmployeeRole)
		authed.PATCH("/employees/:id/active", admin, handler.SetEmployeeActive)
		authed.GET("/employees/:id/tasks", handler.EmployeeTasks)
		authed.POST("/employees/:id/tasks", engineer, handler.CreateEmployeeTask)
		authed.GET("/employees/:id/assignments", handler.EmployeeAssignments)

		authed.GET("/substations", caching, handler.ListSubstations)
		authed.POST("/substations", admin, handler.CreateSubstation)
		authed.GET("/substations/:slug", caching, handler.GetSubstation)
		authed.GET("/mccs", caching, handler.ListMCCs)
		authed.POST("/mccs", admin, handler.CreateMCC)
		authed.GET("/mccs/:slug", caching, handler.GetMCC)

		authed.GET("/nodes", handler.ListNodes)
		authed.POST("/nodes", admin, handler.CreateNode)
		authed.GET("/nodes/:id", handler.GetNode)
		authed.GET("/nodes/:id/assignments", handler.NodeAssignments)
		authed.GET("/nodes/by-index/:index", handler.GetNodeByIndex)
		authed.PATCH("/nodes/by-index/:index", admin, handler.UpdateNodeByIndex)

		authed.GET("/motors", handler.ListMotors)
		authed.POST("/motors", admin, handler.CreateMotor)
		authed.PATCH("/motors", admin, handler.UpdateMotor)
		authed.DELETE("/motors", admin, handler.DeleteMotor)

		authed.GET("/tasks", handler.ListTasks)
		authed.POST("/tasks", engineer, handler.CreateTask)
		authed.GET("/tasks/:id", handler.GetTask)
		authed.PATCH("/tasks/:id", engineer, handler.UpdateTask)
		authed.PATCH("/tasks/:id/status", handler.UpdateTaskStatus)
		authed.DELETE("/tasks/:id", admin, handler.DeleteTask)

		authed.GET("/assignments", handler.ListAssignments)
		authed.GET("/reports/workload", handler.Workload)
		authed.GET("/reports/assignments.xlsx", handler.AssignmentsWorkbook)
	}

	return r
}
