package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// AccountFilter narrows chart-of-accounts listings
type AccountFilter struct {
	PartyType      *PartyType
	Type           *AccountType
	Search         string
	IncludeDeleted bool
	Page           int
	PageSize       int
}

// VoucherFilter narrows voucher listings
type VoucherFilter struct {
	Type     *VoucherType
	Range    shared.DateRange
	Page     int
	PageSize int
}

// LedgerRow is one voucher leg joined with its header, used for account
// ledger listings and balance derivation.
type LedgerRow struct {
	EntryID       uuid.UUID       `json:"entry_id"`
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherType   VoucherType     `json:"voucher_type"`
	Date          time.Time       `json:"date"`
	Narration     string          `json:"narration"`
	Amount        decimal.Decimal `json:"amount"`
}

// AccountRepository persists chart-of-accounts nodes
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// FindByNameForTenant matches the account name case-insensitively among
	// non-deleted accounts.
	FindByNameForTenant(ctx context.Context, tenantID uuid.UUID, name string) (*Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]Account, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) (int64, error)
	Save(ctx context.Context, account *Account) error
}

// VoucherRepository persists vouchers together with their entries
type VoucherRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Voucher, error)
	FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, voucherNumber string) (*Voucher, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) ([]Voucher, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) (int64, error)
	// ExistingNumbers returns every voucher number for the tenant and type,
	// used for gap-tolerant sequence generation inside the posting
	// transaction.
	ExistingNumbers(ctx context.Context, tenantID uuid.UUID, voucherType VoucherType) ([]string, error)
	// Create inserts the voucher header together with its entries.
	Create(ctx context.Context, voucher *Voucher) error
	// UpdateHeader persists header fields (date, narration, version) without
	// touching entry rows.
	UpdateHeader(ctx context.Context, voucher *Voucher) error
	// ReplaceEntries deletes all prior entry rows of the voucher and inserts
	// the current in-memory set.
	ReplaceEntries(ctx context.Context, voucher *Voucher) error
	// DeleteWithEntries removes the voucher and all its entries.
	DeleteWithEntries(ctx context.Context, tenantID, id uuid.UUID) error
	// HasEntriesForAccount reports whether any voucher leg references the
	// account; soft-deleting a referenced account is blocked.
	HasEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID) (bool, error)
	// SumForAccount returns the signed entry sum posted against the account
	// over the range.
	SumForAccount(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) (decimal.Decimal, error)
	// LedgerRowsForAccount returns entry legs joined with voucher headers,
	// ordered by date.
	LedgerRowsForAccount(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) ([]LedgerRow, error)
}

// BankAccountRepository persists bank account projections
type BankAccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	FindByAccountIDForTenant(ctx context.Context, tenantID, accountID uuid.UUID) (*BankAccount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]BankAccount, error)
	Save(ctx context.Context, bankAccount *BankAccount) error
	// AdjustBalance applies the signed delta as an atomic in-database
	// increment, never a read-modify-write.
	AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// BankStatementRepository persists bank statement lines
type BankStatementRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankStatement, error)
	FindForBankAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID, dateRange shared.DateRange) ([]BankStatement, error)
	FindByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) ([]BankStatement, error)
	Save(ctx context.Context, statement *BankStatement) error
	DeleteByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) error
}

// FinancialYearRepository persists financial years
type FinancialYearRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*FinancialYear, error)
	// FindCovering returns the year whose range contains the date, or nil.
	FindCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) (*FinancialYear, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]FinancialYear, error)
	Save(ctx context.Context, year *FinancialYear) error
}

// RecurringTransactionRepository persists recurring templates
type RecurringTransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringTransaction, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]RecurringTransaction, error)
	// FindDue returns active templates across all tenants whose next date is
	// on or before the given day.
	FindDue(ctx context.Context, now time.Time) ([]RecurringTransaction, error)
	Save(ctx context.Context, transaction *RecurringTransaction) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InventoryTransactionRepository persists stock movements
type InventoryTransactionRepository interface {
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, productName string, dateRange shared.DateRange) ([]InventoryTransaction, error)
	Save(ctx context.Context, transaction *InventoryTransaction) error
	DeleteByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) error
}

// InvoiceRepository persists sales and purchase invoices
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, kind InvoiceKind, dateRange shared.DateRange) ([]Invoice, error)
	ExistingNumbers(ctx context.Context, tenantID uuid.UUID, kind InvoiceKind) ([]string, error)
	Save(ctx context.Context, invoice *Invoice) error
	DeleteWithLines(ctx context.Context, tenantID, id uuid.UUID) error
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
}

// SaleReturnRepository persists sale returns
type SaleReturnRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SaleReturn, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]SaleReturn, error)
	ExistingNumbers(ctx context.Context, tenantID uuid.UUID) ([]string, error)
	Save(ctx context.Context, saleReturn *SaleReturn) error
	DeleteWithItems(ctx context.Context, tenantID, id uuid.UUID) error
}

// ActivityLogRepository persists audit rows
type ActivityLogRepository interface {
	Save(ctx context.Context, log *ActivityLog) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ActivityLog, error)
}

// Repositories bundles every ledger repository bound to one transactional
// scope
type Repositories interface {
	Accounts() AccountRepository
	Vouchers() VoucherRepository
	BankAccounts() BankAccountRepository
	BankStatements() BankStatementRepository
	FinancialYears() FinancialYearRepository
	RecurringTransactions() RecurringTransactionRepository
	InventoryTransactions() InventoryTransactionRepository
	Invoices() InvoiceRepository
	PurchaseOrders() PurchaseOrderRepository
	SaleReturns() SaleReturnRepository
	ActivityLogs() ActivityLogRepository
}

// UnitOfWork runs a function against a repository bundle inside one atomic
// boundary: every write commits together or not at all. Posting operations
// put the voucher, its entries, bank deltas, statements and inventory rows
// inside a single Do call.
type UnitOfWork interface {
	Repositories
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
