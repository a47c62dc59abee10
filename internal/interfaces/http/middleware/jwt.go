package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/infrastructure/logger"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

const (
	// JWTClaimsKey is the gin context key for validated claims
	JWTClaimsKey = "jwt_claims"
	// JWTUserIDKey is the gin context key for the authenticated user ID
	JWTUserIDKey = "jwt_user_id"
	// JWTTenantIDKey is the gin context key for the authenticated tenant ID
	JWTTenantIDKey = "jwt_tenant_id"
	// JWTUsernameKey is the gin context key for the authenticated username
	JWTUsernameKey = "jwt_username"
	// JWTPermissionsKey is the gin context key for the user's permissions
	JWTPermissionsKey = "jwt_permissions"

	// AuthHeaderKey is the HTTP header carrying the bearer token
	AuthHeaderKey = "Authorization"
	// BearerPrefix is the expected scheme prefix of the auth header
	BearerPrefix = "Bearer "
)

// JWTMiddlewareConfig configures the JWT authentication middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates incoming tokens (required)
	JWTService *auth.JWTService
	// SkipPaths lists exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes lists path prefixes that bypass authentication
	SkipPathPrefixes []string
	// OnError overrides the default error response (optional)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging (optional)
	Logger *zap.Logger
}

// JWTAuthMiddleware validates the bearer token on each request and stores the
// resulting claims in the gin context. The tenant ID always comes from the
// token, never from the request payload.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.JWTService == nil {
		panic("middleware: JWTService is required")
	}

	return func(c *gin.Context) {
		if shouldSkipAuth(c.Request.URL.Path, cfg) {
			c.Next()
			return
		}

		token, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		setClaimsInContext(c, claims)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware validates a bearer token when one is present but
// lets unauthenticated requests through without claims.
func OptionalJWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.JWTService == nil {
		panic("middleware: JWTService is required")
	}

	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := cfg.JWTService.ValidateToken(token)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Optional auth token rejected", zap.Error(err))
			}
			c.Next()
			return
		}

		setClaimsInContext(c, claims)
		c.Next()
	}
}

func shouldSkipAuth(path string, cfg JWTMiddlewareConfig) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", auth.ErrInvalidToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func setClaimsInContext(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTTenantIDKey, claims.TenantID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTPermissionsKey, claims.Permissions)

	// Enrich the request context so downstream log lines carry identity.
	ctx := c.Request.Context()
	ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), claims.TenantID)
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("Authentication failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	code := "UNAUTHORIZED"
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = "TOKEN_EXPIRED"
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = "TOKEN_NOT_VALID"
		message = "Token is not valid yet"
	case errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidClaims):
		code = "INVALID_TOKEN"
		message = "Token claims are invalid"
	case errors.Is(err, auth.ErrInvalidToken):
		code = "INVALID_TOKEN"
		message = "Invalid or missing token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}

// GetJWTClaims returns the validated claims or nil when unauthenticated.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// MustGetJWTClaims returns the validated claims and panics when missing.
// Only call from handlers behind JWTAuthMiddleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("middleware: JWT claims not found in context")
	}
	return claims
}

// GetJWTUserID returns the authenticated user ID or "".
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTTenantID returns the authenticated tenant ID or "".
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}

// GetJWTPermissions returns the authenticated user's permissions.
func GetJWTPermissions(c *gin.Context) []string {
	v, ok := c.Get(JWTPermissionsKey)
	if !ok {
		return nil
	}
	perms, ok := v.([]string)
	if !ok {
		return nil
	}
	return perms
}
