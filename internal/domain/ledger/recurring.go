package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// RecurringType selects which posting operation a template replays through
type RecurringType string

const (
	RecurringTypeCashPayment     RecurringType = "CPV"
	RecurringTypeCashReceipt     RecurringType = "CRV"
	RecurringTypeExpense         RecurringType = "EXPENSE"
	RecurringTypeSalesInvoice    RecurringType = "SALES_INVOICE"
	RecurringTypePurchaseInvoice RecurringType = "PURCHASE_INVOICE"
)

// IsValid returns true if the recurring type is a known value
func (t RecurringType) IsValid() bool {
	switch t {
	case RecurringTypeCashPayment, RecurringTypeCashReceipt, RecurringTypeExpense,
		RecurringTypeSalesInvoice, RecurringTypePurchaseInvoice:
		return true
	}
	return false
}

// Frequency is how often a recurring template fires
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// IsValid returns true if the frequency is a known value
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Advance moves a due date forward by one frequency step. Month and year
// steps use calendar arithmetic with day-of-month clamping, so 2024-01-31
// advanced MONTHLY lands on 2024-02-29 rather than overflowing into March
// the way a plain AddDate would. Unknown frequencies fall back to one day.
func Advance(date time.Time, frequency Frequency) time.Time {
	switch frequency {
	case FrequencyDaily:
		return date.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(date, 1)
	case FrequencyQuarterly:
		return addMonthsClamped(date, 3)
	case FrequencyYearly:
		return addMonthsClamped(date, 12)
	default:
		return date.AddDate(0, 0, 1)
	}
}

// addMonthsClamped adds months keeping the day of month, clamped to the last
// day of the target month.
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// PaymentMode selects the settlement leg of a cash voucher
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "CASH"
	PaymentModeBank PaymentMode = "BANK"
)

// RecurringPaymentDetail carries the extra fields a CPV/CRV/EXPENSE replay
// needs
type RecurringPaymentDetail struct {
	AccountID     uuid.UUID   `json:"account_id"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	BankAccountID *uuid.UUID  `json:"bank_account_id,omitempty"`
}

// RecurringItemDetail is one invoice line inside a recurring invoice payload
type RecurringItemDetail struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// RecurringInvoiceDetail carries the extra fields a SALES_INVOICE or
// PURCHASE_INVOICE replay needs
type RecurringInvoiceDetail struct {
	PartyAccountID uuid.UUID             `json:"party_account_id"`
	Items          []RecurringItemDetail `json:"items"`
}

// RecurringPayload is the tagged union of per-type replay details. Exactly
// one branch is set, selected by the template's Type; Validate enforces the
// pairing so the scheduler can dispatch exhaustively.
type RecurringPayload struct {
	Payment *RecurringPaymentDetail `json:"payment,omitempty"`
	Invoice *RecurringInvoiceDetail `json:"invoice,omitempty"`
}

// Validate checks the payload branch required by the recurring type is
// present and well-formed
func (p RecurringPayload) Validate(t RecurringType) error {
	switch t {
	case RecurringTypeCashPayment, RecurringTypeCashReceipt, RecurringTypeExpense:
		if p.Payment == nil {
			return shared.NewDomainError("INVALID_PAYLOAD", fmt.Sprintf("%s template requires payment details", t))
		}
		if p.Invoice != nil {
			return shared.NewDomainError("INVALID_PAYLOAD", fmt.Sprintf("%s template cannot carry invoice details", t))
		}
		if p.Payment.AccountID == uuid.Nil {
			return shared.NewDomainError("INVALID_PAYLOAD", "Payment details require an account")
		}
		if p.Payment.PaymentMode == PaymentModeBank && (p.Payment.BankAccountID == nil || *p.Payment.BankAccountID == uuid.Nil) {
			return shared.NewDomainError("INVALID_PAYLOAD", "Bank payment details require a bank account")
		}
	case RecurringTypeSalesInvoice, RecurringTypePurchaseInvoice:
		if p.Invoice == nil {
			return shared.NewDomainError("INVALID_PAYLOAD", fmt.Sprintf("%s template requires invoice details", t))
		}
		if p.Payment != nil {
			return shared.NewDomainError("INVALID_PAYLOAD", fmt.Sprintf("%s template cannot carry payment details", t))
		}
		if p.Invoice.PartyAccountID == uuid.Nil {
			return shared.NewDomainError("INVALID_PAYLOAD", "Invoice details require a party account")
		}
		if len(p.Invoice.Items) == 0 {
			return shared.NewDomainError("INVALID_PAYLOAD", "Invoice details require at least one item")
		}
	default:
		return shared.NewDomainError("INVALID_TYPE", "Recurring type is not valid")
	}
	return nil
}

// Value implements driver.Valuer, persisting the payload as JSON
func (p RecurringPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *RecurringPayload) Scan(value interface{}) error {
	if value == nil {
		*p = RecurringPayload{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for RecurringPayload")
	}
}

// RecurringTransaction is a posting template the scheduler replays on a
// frequency. NextDate is either in the future or exactly due until
// processed.
type RecurringTransaction struct {
	shared.TenantAggregateRoot
	Type        RecurringType    `gorm:"type:varchar(20);not null;index"`
	Frequency   Frequency        `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Description string           `gorm:"type:varchar(500)"`
	Payload     RecurringPayload `gorm:"type:jsonb"`
	NextDate    time.Time        `gorm:"not null;index"`
	LastRun     *time.Time
	IsActive    bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RecurringTransaction) TableName() string {
	return "recurring_transactions"
}

// NewRecurringTransaction creates a recurring posting template
func NewRecurringTransaction(
	tenantID uuid.UUID,
	recurringType RecurringType,
	frequency Frequency,
	amount decimal.Decimal,
	description string,
	payload RecurringPayload,
	startDate time.Time,
) (*RecurringTransaction, error) {
	if !recurringType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Recurring type is not valid")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", "Frequency is not valid")
	}
	if recurringType != RecurringTypeSalesInvoice && recurringType != RecurringTypePurchaseInvoice {
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
		}
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Start date is required")
	}
	if err := payload.Validate(recurringType); err != nil {
		return nil, err
	}

	return &RecurringTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                recurringType,
		Frequency:           frequency,
		Amount:              amount,
		Description:         description,
		Payload:             payload,
		NextDate:            truncateToDay(startDate),
		IsActive:            true,
	}, nil
}

// IsDue reports whether the template should fire at the given time
func (r *RecurringTransaction) IsDue(now time.Time) bool {
	return r.IsActive && !r.NextDate.After(truncateToDay(now))
}

// MarkProcessed records a successful replay and advances the next due date
func (r *RecurringTransaction) MarkProcessed(now time.Time) {
	r.LastRun = &now
	r.NextDate = Advance(r.NextDate, r.Frequency)
	r.UpdatedAt = now
	r.IncrementVersion()
}

// Deactivate stops the template from firing
func (r *RecurringTransaction) Deactivate() {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Activate resumes a stopped template
func (r *RecurringTransaction) Activate() {
	if r.IsActive {
		return
	}
	r.IsActive = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
