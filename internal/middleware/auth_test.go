package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIdentifier struct {
	users map[string]*domain.User
	err   error
}

func (s stubIdentifier) Identify(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return nil, apperr.Unauthenticated("Could not validate credentials")
	}
	return u, nil
}

var testIdentifier = stubIdentifier{users: map[string]*domain.User{
	"user-token":  {ID: 42, Username: "alice", Role: domain.RoleUser},
	"admin-token": {ID: 1, Username: "prof", Role: domain.RoleAdmin},
}}

func newProtectedRouter(id Identifier, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(id))
	handlers := append(extra, func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": u.ID, "role": u.Role})
	})
	router.GET("/protected", handlers...)
	return router
}

func do(router http.Handler, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	w := do(newProtectedRouter(testIdentifier), "Bearer user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "user")
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	w := do(newProtectedRouter(testIdentifier), "Bearer invalid-jwt-here")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), "Could not validate credentials")
}

func TestJWTAuth_NoToken(t *testing.T) {
	w := do(newProtectedRouter(testIdentifier), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Authorization header")
}

func TestJWTAuth_WrongFormat(t *testing.T) {
	w := do(newProtectedRouter(testIdentifier), "Basic dGVzdA==")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Authorization header")

	w = do(newProtectedRouter(testIdentifier), "Bearer    ")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_StoreFailureIs500(t *testing.T) {
	w := do(newProtectedRouter(stubIdentifier{err: errors.New("db down")}), "Bearer user-token")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestAdminOnly(t *testing.T) {
	router := newProtectedRouter(testIdentifier, AdminOnly())

	assert.Equal(t, http.StatusForbidden, do(router, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, do(router, "Bearer admin-token").Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	router := gin.New()
	router.GET("/protected", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, do(router, "").Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/protected", func(c *gin.Context) { c.String(http.StatusOK, requestID(c)) })

	w := do(router, "")
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestCORS_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://labs.example"}))
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/protected", nil)
	req.Header.Set("Origin", "https://labs.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://labs.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorLogger_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestID(), ErrorLogger(log), RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/protected", func(c *gin.Context) { panic("kaboom") })

	w := do(router, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestRequestLogger_RecordsPanickingRequest(t *testing.T) {
	var access bytes.Buffer
	router := gin.New()
	router.Use(
		RequestID(),
		RequestLogger(slog.New(slog.NewJSONHandler(&access, nil))),
		ErrorLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	router.GET("/protected", func(c *gin.Context) { panic("kaboom") })

	w := do(router, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, access.String(), `"msg":"request completed"`)
	assert.Contains(t, access.String(), `"status":500`)
}
