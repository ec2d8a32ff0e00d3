package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nravish/kanakam-backend/internal/errors"
	"github.com/nravish/kanakam-backend/pkg/util"
)

// Context keys set after successful authentication.
const (
	OperatorKey = "operator"
	RoleKey     = "role"
)

// AuthMiddleware guards the admin console's mutating endpoints. Identity
// issuance lives in the surrounding platform; this layer only verifies the
// bearer token it produced.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the bearer token and stores its claims in the
// request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.RespondWithError(c, 401, errors.AuthTokenInvalid, "authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			code := errors.AuthTokenInvalid
			if err == util.ErrTokenExpired {
				code = errors.AuthTokenExpired
			}
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.RespondWithError(c, 401, code, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(OperatorKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole allows only the listed roles past.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		errors.Forbidden(c, "")
		c.Abort()
	}
}
