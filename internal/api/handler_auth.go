package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/mw"
	"substation-maintenance/internal/store"
)

const errBadCredentials = "invalid phone number or password"

type registerRequest struct {
	Phone           string `json:"phone" binding:"required,phone"`
	FirstName       string `json:"first_name" binding:"required,max=30"`
	LastName        string `json:"last_name" binding:"required,max=30"`
	ClearanceGroup  string `json:"clearance_group"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by register, login and password change.
type TokenResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Employee  *model.Employee `json:"employee"`
}

func (h *Handler) issueToken(c *gin.Context, status int, e *model.Employee) {
	token, expires, err := h.tokens.Issue(e)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, TokenResponse{Token: token, ExpiresAt: expires, Employee: e})
}

func passwordFieldError(c *gin.Context, err error, field, confirmField string) {
	if errors.Is(err, auth.ErrPasswordMismatch) {
		fieldError(c, confirmField, err.Error())
		return
	}
	fieldError(c, field, err.Error())
}

// Register handles POST /api/auth/register. Every new account is an
// electrician; only an admin can change the role.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}

	verr := &store.ValidationError{}
	clearance, err := model.ParseClearanceGroup(req.ClearanceGroup)
	if err != nil {
		verr.Add("clearance_group", "select a valid clearance group")
	}
	if err := auth.CheckNewPassword(req.Password, req.ConfirmPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			verr.Add("confirm_password", err.Error())
		} else {
			verr.Add("password", err.Error())
		}
	}
	if err := verr.OrNil(); err != nil {
		h.respondError(c, err)
		return
	}

	hash, err := h.passwords.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	e := &model.Employee{
		Phone:        req.Phone,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleElectrician,
		Clearance:    clearance,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.store.CreateEmployee(c.Request.Context(), e); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.WithField("employee_id", e.ID).Info("Employee registered")
	h.issueToken(c, http.StatusCreated, e)
}

// Login handles POST /api/auth/login. Every failure gets the same answer.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	e, err := h.store.GetEmployeeByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errBadCredentials})
			return
		}
		h.respondError(c, err)
		return
	}

	ok, err := h.passwords.VerifyPassword(req.Password, e.PasswordHash)
	if err != nil || !ok || !e.IsActive {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errBadCredentials})
		return
	}

	now := h.now()
	if err := h.store.RecordLogin(ctx, e.ID, now); err != nil {
		h.log.WithError(err).WithField("employee_id", e.ID).Warn("Failed to record login time")
	} else {
		e.LastLoginAt = &now
	}
	h.issueToken(c, http.StatusOK, e)
}

// Me handles GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, mw.CurrentEmployee(c))
}

// checkPassword verifies the caller's current password and answers 400 on
// mismatch.
func (h *Handler) checkPassword(c *gin.Context, e *model.Employee, password, field string) bool {
	ok, err := h.passwords.VerifyPassword(password, e.PasswordHash)
	if err != nil || !ok {
		fieldError(c, field, "the password is incorrect")
		return false
	}
	return true
}

type changePhoneRequest struct {
	Phone    string `json:"phone" binding:"required,phone"`
	Password string `json:"password" binding:"required"`
}

// ChangePhone handles PATCH /api/me/phone.
func (h *Handler) ChangePhone(c *gin.Context) {
	var req changePhoneRequest
	if !bind(c, &req) {
		return
	}
	me := mw.CurrentEmployee(c)
	if !h.checkPassword(c, me, req.Password, "password") {
		return
	}

	e, err := h.store.UpdateEmployeePhone(c.Request.Context(), me.ID, req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword handles PUT /api/me/password. Tokens issued before the
// change stop working; the response carries a fresh one.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}
	me := mw.CurrentEmployee(c)
	if !h.checkPassword(c, me, req.OldPassword, "old_password") {
		return
	}
	if err := auth.CheckNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		passwordFieldError(c, err, "new_password", "confirm_password")
		return
	}

	hash, err := h.passwords.HashPassword(req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	version, err := h.store.UpdateEmployeePassword(c.Request.Context(), me.ID, hash)
	if err != nil {
		h.respondError(c, err)
		return
	}

	me.PasswordHash = hash
	me.TokenVersion = version
	h.log.WithField("employee_id", me.ID).Info("Password changed")
	h.issueToken(c, http.StatusOK, me)
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteMe handles DELETE /api/me.
func (h *Handler) DeleteMe(c *gin.Context) {
	var req deleteAccountRequest
	if !bind(c, &req) {
		return
	}
	me := mw.CurrentEmployee(c)
	if !h.checkPassword(c, me, req.Password, "password") {
		return
	}

	if err := h.store.DeleteEmployee(c.Request.Context(), me.ID); err != nil {
		h.respondError(c, err)
		return
	}
	h.log.WithField("employee_id", me.ID).Info("Employee deleted their account")
	c.Status(http.StatusNoContent)
}
