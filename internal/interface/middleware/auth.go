package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meublog/blog-api/pkg/helpers"
	"github.com/meublog/blog-api/pkg/response"
)

// CtxUserIDKey is the gin context key carrying the authenticated principal.
const CtxUserIDKey = "userID"

// Auth validates the "Authorization: Bearer <token>" header and injects
// the principal id into the context. The header scheme is checked before
// any signature work. Forbidden is reserved for ownership failures, so
// every token failure here answers 401; an unset signing secret is a
// server configuration fault and answers 500.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing or malformed authorization header", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := jwt.Parse(token)
		if err != nil {
			switch {
			case errors.Is(err, helpers.ErrNoSecret):
				resp := response.Error[any](c, http.StatusInternalServerError, "authentication unavailable", nil)
				c.AbortWithStatusJSON(resp.Status, resp)
			case errors.Is(err, helpers.ErrTokenExpired):
				resp := response.Error[any](c, http.StatusUnauthorized, "token expired", nil)
				c.AbortWithStatusJSON(resp.Status, resp)
			default:
				resp := response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
				c.AbortWithStatusJSON(resp.Status, resp)
			}
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// Principal returns the authenticated user id set by Auth.
func Principal(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
