package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// BankAccount is the bank-specific projection of an Account with party type
// BANKS. Balance is a cached counter kept in sync by every posting and
// reversal that touches the account; drift against the applied deltas is a
// bug.
type BankAccount struct {
	shared.TenantAggregateRoot
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bank_tenant_account,priority:2"`
	AccountNo   string          `gorm:"type:varchar(50);not null"`
	BankName    string          `gorm:"type:varchar(100);not null"`
	AccountName string          `gorm:"type:varchar(200);not null"`
	Balance     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates a bank account linked to a ledger account
func NewBankAccount(
	tenantID uuid.UUID,
	accountID uuid.UUID,
	accountNo string,
	bankName string,
	accountName string,
	openingBalance decimal.Decimal,
) (*BankAccount, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Linked ledger account is required")
	}
	if strings.TrimSpace(bankName) == "" {
		return nil, shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}
	if strings.TrimSpace(accountNo) == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NO", "Account number cannot be empty")
	}
	return &BankAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccountID:           accountID,
		AccountNo:           strings.TrimSpace(accountNo),
		BankName:            strings.TrimSpace(bankName),
		AccountName:         strings.TrimSpace(accountName),
		Balance:             openingBalance,
	}, nil
}

// MaterializeBankAccount derives a BankAccount from a BANKS-type ledger
// account the first time it is referenced in a bank-mode posting. The
// account name is split on " - ": first segment is the bank name, second is
// the account number, falling back to the account code when absent. The
// cached balance is seeded from the account's opening debit.
func MaterializeBankAccount(account *Account) (*BankAccount, error) {
	if account == nil {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}
	if !account.IsBank() {
		return nil, shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	}

	bankName := account.Name
	accountNo := account.Code
	if before, after, found := strings.Cut(account.Name, " - "); found && strings.TrimSpace(after) != "" {
		bankName = strings.TrimSpace(before)
		accountNo = strings.TrimSpace(after)
	}

	return NewBankAccount(
		account.TenantID,
		account.ID,
		accountNo,
		bankName,
		account.Name,
		account.OpeningDebit,
	)
}

// ApplyDelta moves the cached balance by the signed amount. Persistence must
// apply the same delta atomically inside the posting transaction.
func (b *BankAccount) ApplyDelta(delta decimal.Decimal) {
	b.Balance = b.Balance.Add(delta)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// BankStatement is one external bank-movement record. Amount is signed:
// positive for credits/receipts, negative for debits/payments. ReferenceNo
// links back to the originating voucher number.
type BankStatement struct {
	shared.TenantAggregateRoot
	BankAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date          time.Time       `gorm:"not null;index"`
	Description   string          `gorm:"type:varchar(500)"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceNo   string          `gorm:"type:varchar(50);index"`
	IsReconciled  bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BankStatement) TableName() string {
	return "bank_statements"
}

// NewBankStatement creates an unreconciled statement line
func NewBankStatement(
	tenantID uuid.UUID,
	bankAccountID uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
	referenceNo string,
) (*BankStatement, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Statement date is required")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Statement amount cannot be zero")
	}
	return &BankStatement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BankAccountID:       bankAccountID,
		Date:                date,
		Description:         description,
		Amount:              amount,
		ReferenceNo:         referenceNo,
	}, nil
}

// Reconcile marks the statement line matched against the ledger
func (s *BankStatement) Reconcile() {
	if s.IsReconciled {
		return
	}
	s.IsReconciled = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
