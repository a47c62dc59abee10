package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T, expiration time.Duration) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-middleware",
		AccessTokenExpiration: expiration,
		Issuer:                "ledgerbook-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, perms ...string) (string, uuid.UUID, uuid.UUID) {
	t.Helper()
	tenantID := uuid.New()
	userID := uuid.New()
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		TenantID:    tenantID,
		UserID:      userID,
		Username:    "bookkeeper",
		Permissions: perms,
	})
	require.NoError(t, err)
	return token, tenantID, userID
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService(t, time.Hour)

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(JWTAuthMiddleware(JWTMiddlewareConfig{
			JWTService: svc,
			SkipPaths:  []string{"/health"},
		}))
		router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		router.GET("/protected", func(c *gin.Context) {
			claims := MustGetJWTClaims(c)
			c.String(http.StatusOK, claims.Username)
		})
		return router
	}

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		router := newRouter()
		token, tenantID, userID := issueToken(t, svc)

		var gotTenant, gotUser string
		router.GET("/ids", func(c *gin.Context) {
			gotTenant = GetJWTTenantID(c)
			gotUser = GetJWTUserID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/ids", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID.String(), gotTenant)
		assert.Equal(t, userID.String(), gotUser)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic abc123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token maps to TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := newTestJWTService(t, -time.Minute)
		token, _, _ := issueToken(t, expiredSvc)

		router := gin.New()
		router.Use(JWTAuthMiddleware(JWTMiddlewareConfig{JWTService: expiredSvc}))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService(t, time.Hour)

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(JWTMiddlewareConfig{JWTService: svc}))
	router.GET("/maybe", func(c *gin.Context) {
		if GetJWTClaims(c) != nil {
			c.String(http.StatusOK, "authenticated")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	t.Run("no token passes through anonymously", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/maybe", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		token, _, _ := issueToken(t, svc)
		req := httptest.NewRequest("GET", "/maybe", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "authenticated", w.Body.String())
	})
}
