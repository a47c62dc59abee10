package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles sales and purchase invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service *appledger.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *appledger.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// InvoiceLineRequest is one line of an invoice payload
type InvoiceLineRequest struct {
	ProductName string `json:"product_name" binding:"required,max=200"`
	Quantity    string `json:"quantity" binding:"required,money"`
	Rate        string `json:"rate" binding:"required,money"`
}

// InvoiceRequest is the payload shared by sales and purchase invoice
// posting. PurchaseOrderID only applies to purchase invoices.
type InvoiceRequest struct {
	PartyAccountID  string               `json:"party_account_id" binding:"required,uuid"`
	Date            string               `json:"date" binding:"required,isodate"`
	Lines           []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	TaxConfigID     *string              `json:"tax_config_id" binding:"omitempty,uuid"`
	TaxRate         string               `json:"tax_rate"`
	Freight         string               `json:"freight"`
	Narration       string               `json:"narration"`
	PurchaseOrderID *string              `json:"purchase_order_id" binding:"omitempty,uuid"`
}

func (h *InvoiceHandler) toServiceRequest(req InvoiceRequest) (appledger.InvoiceRequest, error) {
	var out appledger.InvoiceRequest

	partyID, err := uuid.Parse(req.PartyAccountID)
	if err != nil {
		return out, appledger.ErrAccountDateRequired
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return out, err
	}

	lines := make([]appledger.InvoiceLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		quantity, err := parseAmount(line.Quantity)
		if err != nil {
			return out, err
		}
		rate, err := parseAmount(line.Rate)
		if err != nil {
			return out, err
		}
		lines = append(lines, appledger.InvoiceLineRequest{
			ProductName: line.ProductName,
			Quantity:    quantity,
			Rate:        rate,
		})
	}

	out = appledger.InvoiceRequest{
		PartyAccountID: partyID,
		Date:           date,
		Lines:          lines,
		Narration:      req.Narration,
	}
	if out.TaxRate, err = parseOptionalAmount(req.TaxRate); err != nil {
		return out, err
	}
	if out.Freight, err = parseOptionalAmount(req.Freight); err != nil {
		return out, err
	}
	if req.TaxConfigID != nil {
		taxID, err := uuid.Parse(*req.TaxConfigID)
		if err != nil {
			return out, appledger.ErrInvalidAmount
		}
		out.TaxConfigID = &taxID
	}
	if req.PurchaseOrderID != nil {
		orderID, err := uuid.Parse(*req.PurchaseOrderID)
		if err != nil {
			return out, appledger.ErrPurchaseOrderNotFound
		}
		out.PurchaseOrderID = &orderID
	}
	return out, nil
}

// CreateSalesInvoice posts a sales invoice with its voucher and stock-out
// movements
func (h *InvoiceHandler) CreateSalesInvoice(c *gin.Context) {
	h.createInvoice(c, h.service.CreateSalesInvoice)
}

// CreatePurchaseInvoice posts a purchase invoice with its voucher,
// stock-in movements and purchase order progress
func (h *InvoiceHandler) CreatePurchaseInvoice(c *gin.Context) {
	h.createInvoice(c, h.service.CreatePurchaseInvoice)
}

func (h *InvoiceHandler) createInvoice(
	c *gin.Context,
	post func(ctx context.Context, tenantID, actorID uuid.UUID, req appledger.InvoiceRequest) (*appledger.InvoiceResponse, error),
) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toServiceRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := post(c.Request.Context(), tenantID, userID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// DeleteInvoice removes an invoice, its voucher and its stock movements
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	invoiceID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), tenantID, userID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetInvoice returns one invoice with its lines
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	invoiceID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListSalesInvoices lists sales invoices for an optional date range
func (h *InvoiceHandler) ListSalesInvoices(c *gin.Context) {
	h.listInvoices(c, ledger.InvoiceKindSales)
}

// ListPurchaseInvoices lists purchase invoices for an optional date range
func (h *InvoiceHandler) ListPurchaseInvoices(c *gin.Context) {
	h.listInvoices(c, ledger.InvoiceKindPurchase)
}

func (h *InvoiceHandler) listInvoices(c *gin.Context, kind ledger.InvoiceKind) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), tenantID, kind, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}
