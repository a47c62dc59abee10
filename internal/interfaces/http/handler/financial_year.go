package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// FinancialYearHandler handles accounting period endpoints
type FinancialYearHandler struct {
	BaseHandler
	service *appledger.FinancialYearService
}

// NewFinancialYearHandler creates a new FinancialYearHandler
func NewFinancialYearHandler(service *appledger.FinancialYearService) *FinancialYearHandler {
	return &FinancialYearHandler{service: service}
}

// FinancialYearRequest is the payload for opening a financial year
type FinancialYearRequest struct {
	Year      string `json:"year" binding:"required,max=20"`
	StartDate string `json:"start_date" binding:"required,isodate"`
	EndDate   string `json:"end_date" binding:"required,isodate"`
}

// CreateFinancialYear opens a new accounting period
func (h *FinancialYearHandler) CreateFinancialYear(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req FinancialYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	year, err := h.service.CreateFinancialYear(c.Request.Context(), tenantID, userID, appledger.FinancialYearRequest{
		Year:      req.Year,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, year)
}

// ListFinancialYears lists the tenant's accounting periods
func (h *FinancialYearHandler) ListFinancialYears(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	years, err := h.service.ListFinancialYears(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, years)
}

// CloseFinancialYear locks posting inside the period
func (h *FinancialYearHandler) CloseFinancialYear(c *gin.Context) {
	h.transition(c, h.service.CloseFinancialYear)
}

// ReopenFinancialYear lifts the posting lock
func (h *FinancialYearHandler) ReopenFinancialYear(c *gin.Context) {
	h.transition(c, h.service.ReopenFinancialYear)
}

func (h *FinancialYearHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, tenantID, actorID, yearID uuid.UUID) (*appledger.FinancialYearResponse, error),
) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	yearID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	year, err := apply(c.Request.Context(), tenantID, userID, yearID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, year)
}
