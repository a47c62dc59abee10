package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// RequestIDKey is the gin context key set by the RequestID middleware
const RequestIDKey = "request_id"

// dateLayout is the wire format for dates in request payloads
const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the tenant ID resolved by the middleware chain.
// There is no fallback: a request without a tenant never reaches the
// posting paths.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetTenantUUID(c); ok {
		return id, nil
	}
	if raw := middleware.GetJWTTenantID(c); raw != "" {
		return uuid.Parse(raw)
	}
	return uuid.Nil, errors.New("tenant ID not found in context")
}

// getUserID extracts the authenticated user ID from the JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(raw)
}

// parseAmount parses a wire amount into a positive decimal. Malformed and
// non-positive values both surface as the validation error the posting
// services use, so clients see one consistent message.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, appledger.ErrInvalidAmount
	}
	return amount, nil
}

// parseSignedAmount parses a wire amount that may be negative (journal legs)
func parseSignedAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsZero() {
		return decimal.Decimal{}, appledger.ErrInvalidAmount
	}
	return amount, nil
}

// parseDate parses a required yyyy-mm-dd date
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appledger.ErrAccountDateRequired
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appledger.ErrAccountDateRequired
	}
	return day, nil
}

// parseDateRange parses optional from/to query params into a DateRange
func parseDateRange(c *gin.Context) (shared.DateRange, error) {
	var r shared.DateRange
	if raw := c.Query("from"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return r, shared.NewDomainError("INVALID_DATE", "from must be yyyy-mm-dd")
		}
		r.From = &day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			return r, shared.NewDomainError("INVALID_DATE", "to must be yyyy-mm-dd")
		}
		r.To = &day
	}
	return r, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// HandleError converts service errors into HTTP responses. Domain errors
// keep their code and message; anything else is masked as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// requireIdentity resolves tenant and user or writes a 401 and returns false
func (h *BaseHandler) requireIdentity(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Unauthorized(c, "Invalid tenant")
		return uuid.Nil, uuid.Nil, false
	}
	userID, _ = getUserID(c)
	return tenantID, userID, true
}

// queryInt parses an integer query parameter with a default
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}

// bindUUIDParam parses a UUID path parameter or writes a 400 and returns false
func (h *BaseHandler) bindUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
