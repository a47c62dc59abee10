package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes. Codes
// not listed fall through the prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	// Request validation
	"VALIDATION_ERROR": http.StatusBadRequest,
	"COMPANY_REQUIRED": http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,

	// Auth
	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	// Lookups
	"NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"ACCOUNT_CODE_TAKEN":   http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Posting rules -> 422 Unprocessable Entity
	"UNBALANCED_ENTRIES": http.StatusUnprocessableEntity,
	"INVALID_PARTY":      http.StatusUnprocessableEntity,
	"ACCOUNT_REFERENCED": http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"TOO_FEW_ENTRIES":    http.StatusUnprocessableEntity,
	"ALREADY_CLOSED":     http.StatusUnprocessableEntity,
	"NOT_CLOSED":         http.StatusUnprocessableEntity,
	"INVALID_PAYLOAD":    http.StatusUnprocessableEntity,

	// Period lock -> 423 Locked
	"PERIOD_CLOSED": http.StatusLocked,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unlisted *_NOT_FOUND codes map to 404 and unlisted INVALID_* codes to 400;
// anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasSuffix(code, "_NOT_FOUND") {
		return http.StatusNotFound
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// FromError converts any error into a response body and HTTP status.
// Domain errors keep their code and message; everything else is masked as an
// internal error so storage details never leak to clients.
func FromError(err error) (Response, int) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return NewErrorResponse(domainErr.Code, domainErr.Message), GetHTTPStatus(domainErr.Code)
	}
	return NewErrorResponse(ErrCodeInternal, "Internal server error"), http.StatusInternalServerError
}
