package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// PurchaseOrderStatus tracks how far an order has been invoiced
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen      PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "COMPLETED"
)

// PurchaseOrderLine is one ordered product with its invoiced progress
type PurchaseOrderLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	OrderedQty      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoicedQty     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Rate            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// IsFullyInvoiced reports whether every ordered unit has been invoiced
func (l *PurchaseOrderLine) IsFullyInvoiced() bool {
	return l.InvoicedQty.GreaterThanOrEqual(l.OrderedQty)
}

// PurchaseOrder is a pending order against a supplier. Purchase invoices
// increment line invoiced quantities; the order completes once every line is
// fully invoiced.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber       string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_po_tenant_number,priority:2"`
	SupplierAccountID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Date              time.Time           `gorm:"not null"`
	Status            PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Lines             []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// OrderLineInput is the caller-supplied shape of one order line
type OrderLineInput struct {
	ProductName string
	OrderedQty  decimal.Decimal
	Rate        decimal.Decimal
}

// NewPurchaseOrder creates an open purchase order
func NewPurchaseOrder(
	tenantID uuid.UUID,
	orderNumber string,
	supplierAccountID uuid.UUID,
	date time.Time,
	lines []OrderLineInput,
) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier account is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Order date is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "Order requires at least one line")
	}

	po := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierAccountID:   supplierAccountID,
		Date:                date,
		Status:              PurchaseOrderStatusOpen,
	}
	for _, in := range lines {
		if strings.TrimSpace(in.ProductName) == "" {
			return nil, shared.NewDomainError("INVALID_LINE", "Line product name is required")
		}
		if in.OrderedQty.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_LINE", "Ordered quantity must be positive")
		}
		po.Lines = append(po.Lines, PurchaseOrderLine{
			ID:              uuid.New(),
			PurchaseOrderID: po.ID,
			ProductName:     strings.TrimSpace(in.ProductName),
			OrderedQty:      in.OrderedQty,
			Rate:            in.Rate,
		})
	}
	return po, nil
}

// RecordInvoiced increments the invoiced quantity of the line matching the
// product name and flips the order to COMPLETED once every line is fully
// invoiced.
func (po *PurchaseOrder) RecordInvoiced(productName string, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QTY", "Invoiced quantity must be positive")
	}
	matched := false
	for i := range po.Lines {
		if strings.EqualFold(po.Lines[i].ProductName, strings.TrimSpace(productName)) {
			po.Lines[i].InvoicedQty = po.Lines[i].InvoicedQty.Add(qty)
			matched = true
			break
		}
	}
	if !matched {
		return shared.NewDomainError("LINE_NOT_FOUND", "No order line matches product "+productName)
	}

	po.refreshStatus()
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
	return nil
}

// UnrecordInvoiced subtracts a previously invoiced quantity, flooring at
// zero, and re-derives the order status. Used when a purchase invoice is
// deleted.
func (po *PurchaseOrder) UnrecordInvoiced(productName string, qty decimal.Decimal) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return
	}
	for i := range po.Lines {
		if strings.EqualFold(po.Lines[i].ProductName, strings.TrimSpace(productName)) {
			next := po.Lines[i].InvoicedQty.Sub(qty)
			if next.IsNegative() {
				next = decimal.Zero
			}
			po.Lines[i].InvoicedQty = next
			break
		}
	}
	po.refreshStatus()
	po.UpdatedAt = time.Now()
	po.IncrementVersion()
}

func (po *PurchaseOrder) refreshStatus() {
	for i := range po.Lines {
		if !po.Lines[i].IsFullyInvoiced() {
			po.Status = PurchaseOrderStatusOpen
			return
		}
	}
	po.Status = PurchaseOrderStatusCompleted
}

// IsCompleted reports whether every line has been fully invoiced
func (po *PurchaseOrder) IsCompleted() bool {
	return po.Status == PurchaseOrderStatusCompleted
}
