package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// SaleReturnHandler handles customer return endpoints
type SaleReturnHandler struct {
	BaseHandler
	service *appledger.SaleReturnService
}

// NewSaleReturnHandler creates a new SaleReturnHandler
func NewSaleReturnHandler(service *appledger.SaleReturnService) *SaleReturnHandler {
	return &SaleReturnHandler{service: service}
}

// SaleReturnRequest is the payload for posting a customer return
type SaleReturnRequest struct {
	CustomerAccountID string               `json:"customer_account_id" binding:"required,uuid"`
	Date              string               `json:"date" binding:"required,isodate"`
	Items             []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	Freight           string               `json:"freight"`
	Narration         string               `json:"narration"`
}

// CreateSaleReturn posts an SR with its reversing voucher and stock-in
// movements
func (h *SaleReturnHandler) CreateSaleReturn(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req SaleReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerAccountID)
	if err != nil {
		h.HandleError(c, appledger.ErrAccountDateRequired)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]appledger.InvoiceLineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		quantity, err := parseAmount(item.Quantity)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		rate, err := parseAmount(item.Rate)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		items = append(items, appledger.InvoiceLineRequest{
			ProductName: item.ProductName,
			Quantity:    quantity,
			Rate:        rate,
		})
	}

	freight, err := parseOptionalAmount(req.Freight)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	saleReturn, err := h.service.CreateSaleReturn(c.Request.Context(), tenantID, userID, appledger.SaleReturnRequest{
		CustomerAccountID: customerID,
		Date:              date,
		Items:             items,
		Freight:           freight,
		Narration:         req.Narration,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, saleReturn)
}

// DeleteSaleReturn removes a return, its voucher and its stock movements
func (h *SaleReturnHandler) DeleteSaleReturn(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	returnID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSaleReturn(c.Request.Context(), tenantID, userID, returnID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetSaleReturn returns one sale return with its items
func (h *SaleReturnHandler) GetSaleReturn(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	returnID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	saleReturn, err := h.service.GetSaleReturn(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, saleReturn)
}

// ListSaleReturns lists sale returns for an optional date range
func (h *SaleReturnHandler) ListSaleReturns(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	returns, err := h.service.ListSaleReturns(c.Request.Context(), tenantID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}
