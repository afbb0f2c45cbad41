package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"labbooking/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestFromError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apperr.NotFound("Booking not found"), http.StatusNotFound, "NOT_FOUND", "Booking not found"},
		{"conflict wrapped", fmt.Errorf("tx: %w", apperr.Conflict("slot taken")), http.StatusConflict, "CONFLICT", "slot taken"},
		{"forbidden", apperr.Forbidden("admins only"), http.StatusForbidden, "FORBIDDEN", "admins only"},
		{"unauthenticated", apperr.Unauthenticated("invalid token"), http.StatusUnauthorized, "UNAUTHORIZED", "invalid token"},
		{"validation", apperr.Validation("limit must be <= 100"), http.StatusBadRequest, "VALIDATION_ERROR", "limit must be <= 100"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.message, body.Error.Message)
		})
	}
}
