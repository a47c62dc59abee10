package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

const (
	// TenantIDKey is the gin context key for the resolved tenant ID
	TenantIDKey = "tenant_id"
	// TenantHeaderKey is the fallback HTTP header carrying the tenant ID
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig configures tenant resolution.
type TenantMiddlewareConfig struct {
	// Required rejects requests that carry no tenant when true
	Required bool
	// AllowHeader permits the X-Tenant-ID header as a fallback source.
	// Only enable for trusted internal traffic; authenticated requests
	// always take the tenant from the JWT claims first.
	AllowHeader bool
	// Logger for middleware logging (optional)
	Logger *zap.Logger
}

// TenantMiddleware resolves the tenant for each request. The JWT claims win
// over the X-Tenant-ID header so a client can never act on another tenant by
// sending a forged header.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := GetJWTTenantID(c)
		if tenantID == "" && cfg.AllowHeader {
			tenantID = c.GetHeader(TenantHeaderKey)
		}

		if tenantID == "" {
			if cfg.Required {
				respondTenantError(c, cfg, "TENANT_REQUIRED", "Tenant could not be determined")
				return
			}
			c.Next()
			return
		}

		if _, err := uuid.Parse(tenantID); err != nil {
			respondTenantError(c, cfg, "INVALID_TENANT", "Tenant ID is not a valid UUID")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

func respondTenantError(c *gin.Context, cfg TenantMiddlewareConfig, code, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("Tenant resolution failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", code),
		)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetTenantID returns the resolved tenant ID or "".
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID returns the resolved tenant ID parsed as a UUID.
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	id := GetTenantID(c)
	if id == "" {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
