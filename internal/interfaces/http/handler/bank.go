package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// BankHandler handles bank account and statement endpoints
type BankHandler struct {
	BaseHandler
	service *appledger.BankService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(service *appledger.BankService) *BankHandler {
	return &BankHandler{service: service}
}

// ResolveBankAccountRequest points at a BANKS-type chart account
type ResolveBankAccountRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// ReconcileRequest lists the statements to mark reconciled
type ReconcileRequest struct {
	StatementIDs []string `json:"statement_ids" binding:"required,min=1,dive,uuid"`
}

// ResolveBankAccount materializes the bank account row behind a BANKS-type
// chart account, creating it on first use
func (h *BankHandler) ResolveBankAccount(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req ResolveBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "account_id must be a valid UUID")
		return
	}

	bank, err := h.service.ResolveOrCreate(c.Request.Context(), tenantID, userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bank)
}

// GetBankAccount returns one bank account with its cached balance
func (h *BankHandler) GetBankAccount(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	bankAccountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	bank, err := h.service.GetBankAccount(c.Request.Context(), tenantID, bankAccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bank)
}

// ListBankAccounts lists the tenant's bank accounts
func (h *BankHandler) ListBankAccounts(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	banks, err := h.service.ListBankAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banks)
}

// GetDerivedBalance recomputes the balance from statements, for checking
// the cached balance against the statement history
func (h *BankHandler) GetDerivedBalance(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	bankAccountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := h.service.DerivedBalance(c.Request.Context(), tenantID, bankAccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"bank_account_id": bankAccountID, "derived_balance": balance})
}

// ListStatements lists a bank account's statement lines for an optional
// date range
func (h *BankHandler) ListStatements(c *gin.Context) {
	tenantID, _, ok := h.requireIdentity(c)
	if !ok {
		return
	}
	bankAccountID, ok := h.bindUUIDParam(c, "id")
	if !ok {
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	statements, err := h.service.Statements(c.Request.Context(), tenantID, bankAccountID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statements)
}

// ReconcileStatements marks statement lines reconciled
func (h *BankHandler) ReconcileStatements(c *gin.Context) {
	tenantID, userID, ok := h.requireIdentity(c)
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	statementIDs := make([]uuid.UUID, 0, len(req.StatementIDs))
	for _, raw := range req.StatementIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "statement_ids must be valid UUIDs")
			return
		}
		statementIDs = append(statementIDs, id)
	}

	if err := h.service.ReconcileStatements(c.Request.Context(), tenantID, userID, statementIDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
