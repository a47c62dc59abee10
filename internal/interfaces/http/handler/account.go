package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// AccountHandler handles chart of accounts endpoints
type AccountHandler struct {
	BaseHandler
	service *appledger.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service *appledger.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccountRequest is the payload for opening a chart account
type CreateAccountRequest struct {
	Code          string `json:"code" binding:"required,max=20"`
	Name          string `json:"name" binding:"required,max=200"`
	Type          string `json:"type" binding:"required"`
	PartyType     string `json:"party_type"`
	OpeningDebit  string `json:"opening_debit"`
	OpeningCredit string `json:"opening_credit"`
}

// RenameAccountRequest is the payload for renaming an account
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// CreateAccount opens a new account in the chart
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	serviceReq := appledger.AccountRequest{
		Code:      req.Code,
		Name:      req.Name,
		Type:      ledger.AccountType(req.Type),
		PartyType: ledger.PartyType(req.PartyType),
	}
	var err error
	if serviceReq.OpeningDebit, err = parseOptionalAmount(req.OpeningDebit); err != nil {
		h.HandleError(c, err)
		return
	}
	if serviceReq.OpeningCredit, err = parseOptionalAmount(req.OpeningCredit); err != nil {
		h.HandleError(c, err)
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), tenantID, userID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// RenameAccount changes an account's display name
func (h *AccountHandler) RenameAccount(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	accountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.service.RenameAccount(c.Request.Context(), tenantID, userID, accountID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// DeleteAccount soft-deletes an account that has no voucher entries
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	accountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), tenantID, userID, accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetAccount returns one account
func (h *AccountHandler) GetAccount(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	accountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListAccounts lists accounts with optional party type, account type and
// search filters
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	filter := ledger.AccountFilter{
		Search:         c.Query("search"),
		IncludeDeleted: c.Query("include_deleted") == "true",
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "page_size", 20),
	}
	if raw := c.Query("party_type"); raw != "" {
		partyType := ledger.PartyType(raw)
		filter.PartyType = &partyType
	}
	if raw := c.Query("type"); raw != "" {
		accountType := ledger.AccountType(raw)
		filter.Type = &accountType
	}

	page, err := h.service.ListAccounts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetLedger returns the account's statement for an optional date range,
// with opening balance, running balances and closing balance
func (h *AccountHandler) GetLedger(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	accountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	statement, err := h.service.Ledger(c.Request.Context(), tenantID, accountID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}

// GetBalance returns the account's closing balance at the end of an
// optional date range
func (h *AccountHandler) GetBalance(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	accountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	balance, err := h.service.ClosingBalance(c.Request.Context(), tenantID, accountID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"account_id": accountID, "balance": balance})
}

// parseOptionalAmount parses an optional non-negative wire amount
func parseOptionalAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, appledger.ErrInvalidAmount
	}
	return amount, nil
}
