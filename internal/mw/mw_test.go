package mw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"substation-maintenance/internal/auth"
	"substation-maintenance/internal/logger"
	"substation-maintenance/internal/model"
	"substation-maintenance/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCache_HitMissAndInvalidate(t *testing.T) {
	responses := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.Use(Invalidate(responses))
	r.GET("/items", Cache(responses, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := do(r, http.MethodGet, "/items", "")
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	w = do(r, http.MethodGet, "/items", "")
	assert.Equal(t, "HIT", w.Header().Get(HeaderCache))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	do(r, http.MethodPost, "/fail", "")
	w = do(r, http.MethodGet, "/items", "")
	assert.Equal(t, "HIT", w.Header().Get(HeaderCache), "failed writes keep the cache")

	do(r, http.MethodPost, "/items", "")
	w = do(r, http.MethodGet, "/items", "")
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.JSONEq(t, `{"calls":2}`, w.Body.String())
}

func TestCache_SkipsErrors(t *testing.T) {
	responses := cache.New(time.Minute, time.Minute)
	r := gin.New()
	r.GET("/missing", Cache(responses, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	do(r, http.MethodGet, "/missing", "")
	assert.Zero(t, responses.ItemCount())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many requests")
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)
	assert.Same(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.1"))
	assert.NotSame(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.2"))
}

type fakeEmployees map[int64]*model.Employee

func (f fakeEmployees) GetEmployee(_ context.Context, id int64) (*model.Employee, error) {
	if id == 500 {
		return nil, errors.New("database is down")
	}
	e, ok := f[id]
	if !ok {
		return nil, &store.NotFoundError{What: "employee not found"}
	}
	copied := *e
	return &copied, nil
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	employees := fakeEmployees{
		1: {ID: 1, Role: model.RoleElectrician, IsActive: true},
		2: {ID: 2, Role: model.RoleEngineer, IsActive: true},
		3: {ID: 3, Role: model.RoleElectrician, IsActive: true, IsAdmin: true},
		4: {ID: 4, Role: model.RoleElectrician, IsActive: false},
		5: {ID: 5, Role: model.RoleElectrician, IsActive: true, TokenVersion: 2},
	}

	r := gin.New()
	g := r.Group("/", Auth(tokens, employees, logger.Discard()))
	g.GET("/me", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"id": CurrentEmployee(c).ID}) })
	g.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	g.GET("/engineers", RequireRole(model.RoleEngineer), func(c *gin.Context) { c.Status(http.StatusOK) })

	issue := func(e model.Employee) string {
		token, _, err := tokens.Issue(&e)
		require.NoError(t, err)
		return token
	}

	testCases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "garbage", http.StatusUnauthorized},
		{"valid token", "/me", issue(*employees[1]), http.StatusOK},
		{"unknown employee", "/me", issue(model.Employee{ID: 99}), http.StatusUnauthorized},
		{"inactive employee", "/me", issue(*employees[4]), http.StatusUnauthorized},
		{"token from before a password change", "/me", issue(model.Employee{ID: 5, TokenVersion: 1}), http.StatusUnauthorized},
		{"current token version", "/me", issue(*employees[5]), http.StatusOK},
		{"store failure", "/me", issue(model.Employee{ID: 500}), http.StatusInternalServerError},
		{"admin route as non-admin", "/admin", issue(*employees[1]), http.StatusForbidden},
		{"admin route as admin", "/admin", issue(*employees[3]), http.StatusOK},
		{"role route with other role", "/engineers", issue(*employees[1]), http.StatusForbidden},
		{"role route with the role", "/engineers", issue(*employees[2]), http.StatusOK},
		{"role route as admin", "/engineers", issue(*employees[3]), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(r, http.MethodGet, tc.path, tc.token).Code)
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/", "")
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))
}
