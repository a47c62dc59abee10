package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// PermissionConfig configures the permission middleware.
type PermissionConfig struct {
	// Logger for middleware logging (optional)
	Logger *zap.Logger
	// OnDenied overrides the default denial response (optional)
	OnDenied func(c *gin.Context, requiredPerms []string)
}

// RequirePermission requires a single permission, e.g. "voucher:create".
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission lets the request proceed when the user holds at least
// one of the listed permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with a custom config.
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, permissions, "no authentication claims")
			return
		}

		if !claims.HasAnyPermission(permissions...) {
			handlePermissionDenied(c, cfg, permissions, "missing permission")
			return
		}

		c.Next()
	}
}

// RequireResource checks "<resource>:<action>" where the action is derived
// from the HTTP method (GET read, POST create, PUT/PATCH update, DELETE delete).
func RequireResource(resource string) gin.HandlerFunc {
	return RequireResourceWithConfig(resource, PermissionConfig{})
}

// RequireResourceWithConfig is RequireResource with a custom config.
func RequireResourceWithConfig(resource string, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		permission := resource + ":" + methodToAction(c.Request.Method)

		claims := GetJWTClaims(c)
		if claims == nil {
			handlePermissionDenied(c, cfg, []string{permission}, "no authentication claims")
			return
		}

		if !claims.HasPermission(permission) {
			handlePermissionDenied(c, cfg, []string{permission}, "missing permission")
			return
		}

		c.Next()
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "access"
	}
}

func handlePermissionDenied(c *gin.Context, cfg PermissionConfig, requiredPerms []string, reason string) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("Permission denied",
			zap.String("path", c.Request.URL.Path),
			zap.Strings("required", requiredPerms),
			zap.String("reason", reason),
		)
	}

	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredPerms)
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse("FORBIDDEN", "Insufficient permissions"))
}
