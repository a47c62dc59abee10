package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// RecurringHandler handles recurring transaction template endpoints
type RecurringHandler struct {
	BaseHandler
	service *appledger.RecurringService
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(service *appledger.RecurringService) *RecurringHandler {
	return &RecurringHandler{service: service}
}

// RecurringPaymentRequest carries the replay details for CPV, CRV and
// EXPENSE templates
type RecurringPaymentRequest struct {
	AccountID     string  `json:"account_id" binding:"required,uuid"`
	PaymentMode   string  `json:"payment_mode" binding:"required,oneof=CASH BANK"`
	BankAccountID *string `json:"bank_account_id" binding:"omitempty,uuid"`
}

// RecurringInvoiceRequest carries the replay details for invoice templates
type RecurringInvoiceRequest struct {
	PartyAccountID string               `json:"party_account_id" binding:"required,uuid"`
	Items          []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
}

// RecurringRequest is the payload for creating a recurring template.
// Exactly one of payment or invoice must be set, matching the type.
type RecurringRequest struct {
	Type        string                   `json:"type" binding:"required"`
	Frequency   string                   `json:"frequency" binding:"required"`
	Amount      string                   `json:"amount" binding:"required,money"`
	Description string                   `json:"description"`
	StartDate   string                   `json:"start_date" binding:"required,isodate"`
	Payment     *RecurringPaymentRequest `json:"payment"`
	Invoice     *RecurringInvoiceRequest `json:"invoice"`
}

// SetActiveRequest toggles a template's active flag
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *RecurringHandler) toServiceRequest(req RecurringRequest) (appledger.RecurringRequest, error) {
	var out appledger.RecurringRequest

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return out, err
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return out, err
	}

	var payload ledger.RecurringPayload
	if req.Payment != nil {
		accountID, err := uuid.Parse(req.Payment.AccountID)
		if err != nil {
			return out, appledger.ErrAccountDateRequired
		}
		detail := &ledger.RecurringPaymentDetail{
			AccountID:   accountID,
			PaymentMode: ledger.PaymentMode(req.Payment.PaymentMode),
		}
		if req.Payment.BankAccountID != nil {
			bankID, err := uuid.Parse(*req.Payment.BankAccountID)
			if err != nil {
				return out, appledger.ErrBankAccountRequired
			}
			detail.BankAccountID = &bankID
		}
		payload.Payment = detail
	}
	if req.Invoice != nil {
		partyID, err := uuid.Parse(req.Invoice.PartyAccountID)
		if err != nil {
			return out, appledger.ErrAccountDateRequired
		}
		items := make([]ledger.RecurringItemDetail, 0, len(req.Invoice.Items))
		for _, item := range req.Invoice.Items {
			quantity, err := parseAmount(item.Quantity)
			if err != nil {
				return out, err
			}
			rate, err := parseAmount(item.Rate)
			if err != nil {
				return out, err
			}
			items = append(items, ledger.RecurringItemDetail{
				ProductName: item.ProductName,
				Quantity:    quantity,
				Rate:        rate,
			})
		}
		payload.Invoice = &ledger.RecurringInvoiceDetail{
			PartyAccountID: partyID,
			Items:          items,
		}
	}

	out = appledger.RecurringRequest{
		Type:        ledger.RecurringType(req.Type),
		Frequency:   ledger.Frequency(req.Frequency),
		Amount:      amount,
		Description: req.Description,
		Payload:     payload,
		StartDate:   startDate,
	}
	return out, nil
}

// CreateRecurring registers a new recurring template
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toServiceRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	recurring, err := h.service.CreateRecurring(c.Request.Context(), tenantID, userID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, recurring)
}

// ListRecurring lists the tenant's recurring templates
func (h *RecurringHandler) ListRecurring(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	templates, err := h.service.ListRecurring(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// SetActive pauses or resumes a template
func (h *RecurringHandler) SetActive(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	transactionID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	recurring, err := h.service.SetActive(c.Request.Context(), tenantID, transactionID, *req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recurring)
}

// DeleteRecurring removes a template; already-posted vouchers stay
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	transactionID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRecurring(c.Request.Context(), tenantID, transactionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ProcessDue runs a sweep immediately instead of waiting for the scheduler
// tick. The sweep spans all tenants; the per-result breakdown lets an
// operator see which templates replayed and which failed.
func (h *RecurringHandler) ProcessDue(c *gin.Context) {
	if _, _, ok := h.requireIdentity(c); !ok {
		return
	}

	summary, err := h.service.ProcessDue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
