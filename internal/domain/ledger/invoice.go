package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// InvoiceKind distinguishes sales invoices from purchase invoices
type InvoiceKind string

const (
	InvoiceKindSales    InvoiceKind = "SALES"
	InvoiceKindPurchase InvoiceKind = "PURCHASE"
)

// InvoiceLine is one qty-times-rate invoice row
type InvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// LineInput is the caller-supplied shape of one invoice line
type LineInput struct {
	ProductName string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Invoice is a sales or purchase invoice header. Its number doubles as the
// voucher number of the ledger posting it generates.
type Invoice struct {
	shared.TenantAggregateRoot
	Kind            InvoiceKind     `gorm:"type:varchar(10);not null;index"`
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	PartyAccountID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date            time.Time       `gorm:"not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Freight         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Narration       string          `gorm:"type:text"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	Lines           []InvoiceLine   `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice, computing subtotal, tax and total from its
// lines. taxRate is a percentage; pass zero when no tax applies.
func NewInvoice(
	tenantID uuid.UUID,
	kind InvoiceKind,
	invoiceNumber string,
	partyAccountID uuid.UUID,
	date time.Time,
	lines []LineInput,
	taxRate decimal.Decimal,
	freight decimal.Decimal,
	narration string,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if kind != InvoiceKindSales && kind != InvoiceKindPurchase {
		return nil, shared.NewDomainError("INVALID_KIND", "Invoice kind is not valid")
	}
	if partyAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party account is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Invoice date is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "Invoice requires at least one line")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if freight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FREIGHT", "Freight cannot be negative")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		InvoiceNumber:       invoiceNumber,
		PartyAccountID:      partyAccountID,
		Date:                date,
		Freight:             freight,
		Narration:           narration,
	}

	subtotal := decimal.Zero
	for _, in := range lines {
		if strings.TrimSpace(in.ProductName) == "" {
			return nil, shared.NewDomainError("INVALID_LINE", "Line product name is required")
		}
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
		}
		if in.Rate.IsNegative() {
			return nil, shared.NewDomainError("INVALID_LINE", "Line rate cannot be negative")
		}
		lineTotal := in.Quantity.Mul(in.Rate)
		subtotal = subtotal.Add(lineTotal)
		inv.Lines = append(inv.Lines, InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			ProductName: strings.TrimSpace(in.ProductName),
			Quantity:    in.Quantity,
			Rate:        in.Rate,
			LineTotal:   lineTotal,
		})
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	inv.Total = subtotal.Add(inv.TaxAmount).Add(freight)
	return inv, nil
}

// LinkPurchaseOrder ties a purchase invoice to the order it fulfils
func (i *Invoice) LinkPurchaseOrder(orderID uuid.UUID) error {
	if i.Kind != InvoiceKindPurchase {
		return shared.NewDomainError("INVALID_KIND", "Only purchase invoices can reference a purchase order")
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Purchase order is required")
	}
	i.PurchaseOrderID = &orderID
	return nil
}

// StockDirection returns +1 for purchases (stock-in) and -1 for sales
// (stock-out)
func (i *Invoice) StockDirection() decimal.Decimal {
	if i.Kind == InvoiceKindPurchase {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}
