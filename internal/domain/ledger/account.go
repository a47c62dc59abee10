package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// AccountType classifies a chart-of-accounts node by its accounting nature
type AccountType string

const (
	AccountTypeAsset       AccountType = "ASSET"
	AccountTypeLiability   AccountType = "LIABILITY"
	AccountTypeEquity      AccountType = "EQUITY"
	AccountTypeIncome      AccountType = "INCOME"
	AccountTypeExpense     AccountType = "EXPENSE"
	AccountTypeContraAsset AccountType = "CONTRA_ASSET"
)

// IsValid returns true if the account type is a known value
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeIncome, AccountTypeExpense, AccountTypeContraAsset:
		return true
	}
	return false
}

// PartyType classifies who or what an account represents. It gates which
// voucher families may target the account.
type PartyType string

const (
	PartyTypeCustomer PartyType = "CUSTOMER"
	PartyTypeSupplier PartyType = "SUPPLIER"
	PartyTypeBanks    PartyType = "BANKS"
	PartyTypeCash     PartyType = "CASH"
	PartyTypeGeneral  PartyType = "GENERAL"
	PartyTypeEmployee PartyType = "EMPLOYEE"
)

// IsValid returns true if the party type is a known value
func (p PartyType) IsValid() bool {
	switch p {
	case PartyTypeCustomer, PartyTypeSupplier, PartyTypeBanks,
		PartyTypeCash, PartyTypeGeneral, PartyTypeEmployee:
		return true
	}
	return false
}

// Well-known account names the posting engine auto-creates when missing
const (
	CashAccountName        = "Cash in hand"
	SalesAccountName       = "Sales"
	SalesReturnAccountName = "Sales Return"
	InventoryAccountName   = "Inventory"
)

// Account is a chart-of-accounts node. Code is unique per tenant among
// non-deleted accounts.
type Account struct {
	shared.TenantAggregateRoot
	Code          string          `gorm:"type:varchar(30);not null;index:idx_account_tenant_code,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Type          AccountType     `gorm:"type:varchar(20);not null;index"`
	PartyType     PartyType       `gorm:"type:varchar(20);not null;index"`
	OpeningDebit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningCredit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt     *time.Time      `gorm:"index"`
	DeletedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new chart-of-accounts node
func NewAccount(
	tenantID uuid.UUID,
	code string,
	name string,
	accountType AccountType,
	partyType PartyType,
	openingDebit decimal.Decimal,
	openingCredit decimal.Decimal,
) (*Account, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 30 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type is not valid")
	}
	if !partyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTY_TYPE", "Party type is not valid")
	}
	if openingDebit.IsNegative() || openingCredit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_OPENING_BALANCE", "Opening balances cannot be negative")
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		PartyType:           partyType,
		OpeningDebit:        openingDebit,
		OpeningCredit:       openingCredit,
	}, nil
}

// Rename updates the account name
func (a *Account) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// SoftDelete marks the account deleted. Accounts referenced by voucher
// entries must never be hard-deleted; the repository enforces the reference
// check before calling this.
func (a *Account) SoftDelete(deletedBy uuid.UUID) error {
	if a.DeletedAt != nil {
		return shared.NewDomainError("ALREADY_DELETED", "Account is already deleted")
	}
	now := time.Now()
	a.DeletedAt = &now
	a.DeletedBy = &deletedBy
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// IsDeleted returns true if the account has been soft-deleted
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// IsCustomer returns true if the account represents a customer
func (a *Account) IsCustomer() bool {
	return a.PartyType == PartyTypeCustomer
}

// IsBank returns true if the account represents a bank
func (a *Account) IsBank() bool {
	return a.PartyType == PartyTypeBanks
}

// OpeningBalance returns opening debit minus opening credit
func (a *Account) OpeningBalance() decimal.Decimal {
	return a.OpeningDebit.Sub(a.OpeningCredit)
}
