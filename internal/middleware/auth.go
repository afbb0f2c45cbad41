package middleware

import (
	"context"
	"net/http"
	"strings"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"
	"labbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey   = "user"
	ctxUserIDKey = "user_id"
	ctxRoleKey   = "role"
)

// Identifier resolves a bearer credential to a user.
type Identifier interface {
	Identify(ctx context.Context, token string) (*domain.User, error)
}

// JWTAuth requires "Authorization: Bearer <token>" and stores the resolved
// user in the gin context.
func JWTAuth(identifier Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			return
		}

		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			return
		}

		token = strings.TrimSpace(token)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
			return
		}

		user, err := identifier.Identify(c.Request.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthenticated {
				c.Header("WWW-Authenticate", "Bearer")
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", apperr.MessageOf(err))
				return
			}
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxRoleKey, string(user.Role))

		c.Next()
	}
}

// CurrentUser returns the user stored by JWTAuth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}
