package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokens *auth.TokenService, req role.Requirement) *gin.Engine {
	r := gin.New()
	r.GET("/protected",
		AuthMiddleware(tokens),
		RequireRole(req),
		func(c *gin.Context) {
			id, _ := IdentityFrom(c)
			c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.Role})
		},
	)
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httperr.HTTPError {
	t.Helper()
	var body httperr.HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddlewareFailsClosed(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	r := newProtectedRouter(tokens, role.Requires(role.Admin))

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"no header", "", "MISSING_TOKEN"},
		{"wrong scheme", "Basic abc", "INVALID_TOKEN"},
		{"empty bearer", "Bearer ", "INVALID_TOKEN"},
		{"garbage token", "Bearer abc.def.ghi", "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, httperr.KindAuthentication, body.Kind)
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	old := auth.NewTokenService("secret", time.Hour, auth.WithClock(func() time.Time { return issued }))
	tok, err := old.Issue(1, role.Admin)
	require.NoError(t, err)

	r := newProtectedRouter(auth.NewTokenService("secret", time.Hour), role.Requires(role.Admin))
	w := doGet(r, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "EXPIRED_TOKEN", decodeError(t, w).Code)
}

func TestRequireRoleIsIndependentOfAuthentication(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	r := newProtectedRouter(tokens, role.Requires(role.Admin))

	patientTok, err := tokens.Issue(5, role.Patient)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+patientTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Equal(t, httperr.KindAuthorization, body.Kind)

	adminTok, err := tokens.Issue(9, role.Admin)
	require.NoError(t, err)

	w = doGet(r, "bearer "+adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":9`)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/protected", RequireRole(role.Requires(role.Admin)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", RateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":4321"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiterSweepsStaleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	require.Len(t, rl.clients, 1)

	now = now.Add(10 * time.Minute)
	rl.Allow("10.0.0.2")
	assert.Len(t, rl.clients, 1)
	_, kept := rl.clients["10.0.0.2"]
	assert.True(t, kept)
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, httperr.CodeInternal, decodeError(t, w).Code)
}
