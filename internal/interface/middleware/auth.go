package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
	"github.com/showbase/showbase/pkg/helpers"
	"github.com/showbase/showbase/pkg/response"
)

// CtxUserKey is the gin context key holding the authenticated user.
const CtxUserKey = "currentUser"

// Protect authenticates the request: bearer token from the Authorization
// header, signature/expiry check, principal lookup, and rejection of tokens
// issued before the last password change. On success the user is attached
// to the context for downstream handlers.
func Protect(jwt *helpers.JWTManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, "you are not logged in, please log in to get access", nil)
			return
		}

		claims, err := jwt.Verify(token)
		if err != nil {
			e, _ := apperrors.As(err)
			response.AbortFail(c, e.Status(), e.Message, nil)
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.AbortFail(c, http.StatusUnauthorized, "the user belonging to this token no longer exists", nil)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, "something went wrong", nil)
			return
		}

		if u.ChangedPasswordAfter(claims.IssuedAt) {
			response.AbortFail(c, http.StatusUnauthorized, "password was changed recently, please log in again", nil)
			return
		}

		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// RequireRole authorizes an already-authenticated user. It must be composed
// after Protect; a missing user in context is a programming error and panics.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[entity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if _, ok := allowed[u.Role]; !ok {
			response.AbortFail(c, http.StatusForbidden, "you do not have permission to perform this action", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Protect. Calling it on
// an unprotected route is a programming error.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		panic("middleware: CurrentUser called without Protect")
	}
	return v.(*entity.User)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
