package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// VoucherType names a transaction family with its own eligibility and
// posting rules
type VoucherType string

const (
	VoucherTypeCPV VoucherType = "CPV"
	VoucherTypeCRV VoucherType = "CRV"
	VoucherTypeJV  VoucherType = "JV"
	VoucherTypeSI  VoucherType = "SI"
	VoucherTypePI  VoucherType = "PI"
	VoucherTypeSR  VoucherType = "SR"
)

// IsValid returns true if the voucher type is a known value
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherTypeCPV, VoucherTypeCRV, VoucherTypeJV,
		VoucherTypeSI, VoucherTypePI, VoucherTypeSR:
		return true
	}
	return false
}

// VoucherEntry is one signed ledger leg. Positive amounts are debits,
// negative amounts are credits.
type VoucherEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	VoucherID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (VoucherEntry) TableName() string {
	return "voucher_entries"
}

// EntryInput is an (account, signed amount) pair used to build vouchers
type EntryInput struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// Voucher is one financial transaction header. It exists only together with
// at least two entries whose amounts net to zero within the balance
// tolerance.
type Voucher struct {
	shared.TenantAggregateRoot
	VoucherNumber string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_voucher_tenant_number,priority:2"`
	Type          VoucherType    `gorm:"type:varchar(10);not null;index"`
	Date          time.Time      `gorm:"not null;index"`
	Narration     string         `gorm:"type:text"`
	Entries       []VoucherEntry `gorm:"foreignKey:VoucherID;references:ID"`
}

// TableName returns the table name for GORM
func (Voucher) TableName() string {
	return "vouchers"
}

// NewVoucher creates a voucher with its entries, enforcing the double-entry
// balance law.
func NewVoucher(
	tenantID uuid.UUID,
	voucherNumber string,
	voucherType VoucherType,
	date time.Time,
	narration string,
	entries []EntryInput,
) (*Voucher, error) {
	if voucherNumber == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if !voucherType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_TYPE", "Voucher type is not valid")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Voucher date is required")
	}
	if len(entries) < 2 {
		return nil, shared.NewDomainError("TOO_FEW_ENTRIES", "A voucher needs at least two entries")
	}

	v := &Voucher{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VoucherNumber:       voucherNumber,
		Type:                voucherType,
		Date:                date,
		Narration:           narration,
	}
	if err := v.setEntries(entries); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Voucher) setEntries(entries []EntryInput) error {
	rows := make([]VoucherEntry, 0, len(entries))
	sum := decimal.Zero
	for _, in := range entries {
		if in.AccountID == uuid.Nil {
			return shared.NewDomainError("INVALID_ENTRY", "Entry account is required")
		}
		if in.Amount.IsZero() {
			return shared.NewDomainError("INVALID_ENTRY", "Entry amount cannot be zero")
		}
		sum = sum.Add(in.Amount)
		rows = append(rows, VoucherEntry{
			ID:        uuid.New(),
			VoucherID: v.ID,
			TenantID:  v.TenantID,
			AccountID: in.AccountID,
			Amount:    in.Amount,
		})
	}
	if !valueobject.NewMoneyPKR(sum).WithinTolerance() {
		debit, credit := splitTotals(entries)
		return shared.NewDomainError("UNBALANCED_ENTRIES",
			fmt.Sprintf("Entries do not balance: Debit(%s) != Credit(%s)", debit.StringFixed(2), credit.StringFixed(2)))
	}
	v.Entries = rows
	return nil
}

// ReplaceEntries swaps the voucher's entries for a new balanced set. Used by
// voucher edits, which delete and recreate all legs in one transaction.
func (v *Voucher) ReplaceEntries(entries []EntryInput) error {
	if len(entries) < 2 {
		return shared.NewDomainError("TOO_FEW_ENTRIES", "A voucher needs at least two entries")
	}
	if err := v.setEntries(entries); err != nil {
		return err
	}
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// SetHeader updates date and narration
func (v *Voucher) SetHeader(date time.Time, narration string) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Voucher date is required")
	}
	v.Date = date
	v.Narration = narration
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// EntriesTotal returns the signed sum of all entries. A balanced voucher
// nets to zero within tolerance.
func (v *Voucher) EntriesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range v.Entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// IsBalanced reports whether the entries net to zero within tolerance
func (v *Voucher) IsBalanced() bool {
	return valueobject.NewMoneyPKR(v.EntriesTotal()).WithinTolerance()
}

// SignedAmountFor returns the entry amount posted against the given account,
// or zero if the account has no leg on this voucher.
func (v *Voucher) SignedAmountFor(accountID uuid.UUID) decimal.Decimal {
	for _, e := range v.Entries {
		if e.AccountID == accountID {
			return e.Amount
		}
	}
	return decimal.Zero
}

// DebitTotal returns the sum of positive legs
func (v *Voucher) DebitTotal() decimal.Decimal {
	debit, _ := splitEntryTotals(v.Entries)
	return debit
}

// CreditTotal returns the absolute sum of negative legs
func (v *Voucher) CreditTotal() decimal.Decimal {
	_, credit := splitEntryTotals(v.Entries)
	return credit
}

func splitTotals(entries []EntryInput) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Amount.IsPositive() {
			debit = debit.Add(e.Amount)
		} else {
			credit = credit.Add(e.Amount.Abs())
		}
	}
	return debit, credit
}

func splitEntryTotals(entries []VoucherEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Amount.IsPositive() {
			debit = debit.Add(e.Amount)
		} else {
			credit = credit.Add(e.Amount.Abs())
		}
	}
	return debit, credit
}

// FormatVoucherNumber builds a type-prefixed voucher number, e.g. "CPV-7"
func FormatVoucherNumber(t VoucherType, seq int) string {
	return fmt.Sprintf("%s-%d", t, seq)
}

// NextNumberFromExisting parses the numeric suffix of every existing number
// with the given prefix and returns max+1. Gap-tolerant: deleting a voucher
// never causes a number to be reissued.
func NextNumberFromExisting(existing []string, prefix string) int {
	max := 0
	for _, n := range existing {
		rest, ok := strings.CutPrefix(n, prefix+"-")
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max + 1
}
