package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// VoucherHandler handles cash payment, cash receipt and journal voucher
// endpoints
type VoucherHandler struct {
	BaseHandler
	service *appledger.PostingService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(service *appledger.PostingService) *VoucherHandler {
	return &VoucherHandler{service: service}
}

// CashVoucherRequest is the payload for CPV and CRV posting. Amounts travel
// as strings so clients never lose precision to float encoding.
type CashVoucherRequest struct {
	AccountID     string  `json:"account_id" binding:"required,uuid"`
	PaymentMode   string  `json:"payment_mode" binding:"required,oneof=CASH BANK"`
	BankAccountID *string `json:"bank_account_id" binding:"omitempty,uuid"`
	Amount        string  `json:"amount" binding:"required,money"`
	Date          string  `json:"date" binding:"required,isodate"`
	Narration     string  `json:"narration"`
	CurrencyCode  string  `json:"currency_code"`
	ExchangeRate  string  `json:"exchange_rate"`
}

// JournalEntryRequest is one signed leg of a journal voucher: positive for
// debit, negative for credit.
type JournalEntryRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required,money"`
}

// JournalRequest is the payload for journal voucher posting
type JournalRequest struct {
	Date      string                `json:"date" binding:"required,isodate"`
	Narration string                `json:"narration"`
	Entries   []JournalEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

func (h *VoucherHandler) toCashRequest(req CashVoucherRequest) (appledger.CashVoucherRequest, error) {
	var out appledger.CashVoucherRequest

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return out, appledger.ErrAccountDateRequired
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return out, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return out, err
	}

	out = appledger.CashVoucherRequest{
		AccountID:    accountID,
		PaymentMode:  ledger.PaymentMode(req.PaymentMode),
		Amount:       amount,
		Date:         date,
		Narration:    req.Narration,
		CurrencyCode: req.CurrencyCode,
	}
	if req.BankAccountID != nil {
		bankID, err := uuid.Parse(*req.BankAccountID)
		if err != nil {
			return out, appledger.ErrBankAccountRequired
		}
		out.BankAccountID = &bankID
	}
	if req.ExchangeRate != "" {
		rate, err := decimal.NewFromString(req.ExchangeRate)
		if err != nil {
			return out, appledger.ErrInvalidAmount
		}
		out.ExchangeRate = rate
	}
	return out, nil
}

func (h *VoucherHandler) toJournalRequest(req JournalRequest) (appledger.JournalRequest, error) {
	var out appledger.JournalRequest

	date, err := parseDate(req.Date)
	if err != nil {
		return out, err
	}

	entries := make([]appledger.JournalEntryRequest, 0, len(req.Entries))
	for _, entry := range req.Entries {
		accountID, err := uuid.Parse(entry.AccountID)
		if err != nil {
			return out, appledger.ErrAccountDateRequired
		}
		amount, err := parseSignedAmount(entry.Amount)
		if err != nil {
			return out, err
		}
		entries = append(entries, appledger.JournalEntryRequest{
			AccountID: accountID,
			Amount:    amount,
		})
	}

	out = appledger.JournalRequest{
		Date:      date,
		Narration: req.Narration,
		Entries:   entries,
	}
	return out, nil
}

// CreateCashPayment posts a CPV
func (h *VoucherHandler) CreateCashPayment(c *gin.Context) {
	h.createCashVoucher(c, h.service.CreateCashPayment)
}

// CreateCashReceipt posts a CRV
func (h *VoucherHandler) CreateCashReceipt(c *gin.Context) {
	h.createCashVoucher(c, h.service.CreateCashReceipt)
}

func (h *VoucherHandler) createCashVoucher(
	c *gin.Context,
	post func(ctx context.Context, tenantID, actorID uuid.UUID, req appledger.CashVoucherRequest) (*appledger.VoucherResponse, error),
) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req CashVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toCashRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	voucher, err := post(c.Request.Context(), tenantID, userID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// CreateJournal posts a JV
func (h *VoucherHandler) CreateJournal(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toJournalRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	voucher, err := h.service.CreateJournal(c.Request.Context(), tenantID, userID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// UpdateJournal rewrites a journal voucher's date, narration and legs
func (h *VoucherHandler) UpdateJournal(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	voucherID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toJournalRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	voucher, err := h.service.UpdateJournal(c.Request.Context(), tenantID, userID, voucherID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// UpdateCashVoucher rewrites a CPV or CRV, reversing and reapplying its
// bank balance effect when the payment side changes
func (h *VoucherHandler) UpdateCashVoucher(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	voucherID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req CashVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq, err := h.toCashRequest(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	voucher, err := h.service.UpdateCashVoucher(c.Request.Context(), tenantID, userID, voucherID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// DeleteVoucher removes a CPV, CRV or JV and undoes its bank effect
func (h *VoucherHandler) DeleteVoucher(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	voucherID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteVoucher(c.Request.Context(), tenantID, userID, voucherID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetVoucher returns one voucher with its entries
func (h *VoucherHandler) GetVoucher(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	voucherID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	voucher, err := h.service.GetVoucher(c.Request.Context(), tenantID, voucherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// ListVouchers lists vouchers, optionally filtered by type and date range
func (h *VoucherHandler) ListVouchers(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := ledger.VoucherFilter{
		Range:    dateRange,
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if raw := c.Query("type"); raw != "" {
		vtype := ledger.VoucherType(raw)
		filter.Type = &vtype
	}

	page, err := h.service.ListVouchers(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
