package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findRequestEntry(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			e := entry
			return &e
		}
	}
	t.Fatal("no completion entry was logged")
	return nil
}

func fieldsByKey(entry *observer.LoggedEntry) map[string]zapcore.Field {
	fields := make(map[string]zapcore.Field, len(entry.Context))
	for _, field := range entry.Context {
		fields[field.Key] = field
	}
	return fields
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs a completion entry with the standard fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/accounts", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"items": []string{}})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/accounts", nil)
		req.Header.Set("User-Agent", "ledger-test/1.0")
		router.ServeHTTP(w, req)

		entry := findRequestEntry(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := fieldsByKey(entry)
		for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
			assert.Contains(t, fields, key)
		}
	})

	t.Run("carries the request ID set upstream", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-123")
		})
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/accounts", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/accounts", nil))

		fields := fieldsByKey(findRequestEntry(t, recorded))
		require.Contains(t, fields, "request_id")
		assert.Equal(t, "req-123", fields["request_id"].String)
	})

	t.Run("carries the tenant resolved during the request", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/vouchers", func(c *gin.Context) {
			c.Set("tenant_id", "tenant-1")
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/vouchers", nil))

		fields := fieldsByKey(findRequestEntry(t, recorded))
		require.Contains(t, fields, "tenant_id")
		assert.Equal(t, "tenant-1", fields["tenant_id"].String)
	})

	t.Run("includes the raw query when present", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/accounts", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/accounts?search=rent&page=1", nil))

		fields := fieldsByKey(findRequestEntry(t, recorded))
		require.Contains(t, fields, "query")
		assert.Contains(t, fields["query"].String, "search=rent")
	})

	t.Run("logs 4xx at warn and 5xx at error", func(t *testing.T) {
		for _, tc := range []struct {
			status int
			level  zapcore.Level
		}{
			{http.StatusNotFound, zapcore.WarnLevel},
			{http.StatusInternalServerError, zapcore.ErrorLevel},
		} {
			core, recorded := observer.New(zapcore.WarnLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/fail", func(c *gin.Context) {
				c.Status(tc.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/fail", nil))

			entry := findRequestEntry(t, recorded)
			assert.Equal(t, tc.level, entry.Level, "status %d", tc.status)
		}
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)
		var got *zap.Logger

		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/accounts", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/accounts", nil))
		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		var got *zap.Logger

		router := gin.New()
		router.GET("/accounts", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/accounts", nil))

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("noop") })
	})
}
