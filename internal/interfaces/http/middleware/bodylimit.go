package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body size. Voucher and invoice payloads are
// small, so anything past the cap is rejected outright.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		// Clients that stream without a Content-Length still hit the cap.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
