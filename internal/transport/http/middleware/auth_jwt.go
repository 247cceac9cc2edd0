package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classifieds-api/internal/core/auth"
	"classifieds-api/internal/domain"
	"classifieds-api/internal/transport/http/ez"
	resp "classifieds-api/internal/transport/http/response"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// TokenFrom 先读 cookie，再读 Authorization: Bearer
func TokenFrom(c *gin.Context, cookie string) string {
	if v, err := c.Cookie(cookie); err == nil && v != "" {
		return v
	}
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	return ""
}

// AuthJWT requireRole 非空时校验角色（403）
func AuthJWT(a Authenticator, cookie, requireRole string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.Authenticate(c.Request.Context(), TokenFrom(c, cookie))
		if err != nil {
			resp.Error(c, l, err)
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Error(c, l, domain.Forbidden("Access denied. Admin privileges required."))
			return
		}
		c.Set(ez.KeyClaims, claims)
		c.Set(ez.KeyUserID, claims.UID)
		c.Set(ez.KeyEmail, claims.Email)
		c.Set(ez.KeyRole, claims.Role)
		c.Next()
	}
}
