package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// InventoryTransaction is one signed stock movement. Positive quantity is
// stock-in (purchases, sale returns), negative is stock-out (sales).
// ReferenceNo links back to the originating invoice or return number.
type InventoryTransaction struct {
	shared.TenantAggregateRoot
	ProductName string          `gorm:"type:varchar(200);not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceNo string          `gorm:"type:varchar(50);index"`
	Date        time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction creates a signed stock movement
func NewInventoryTransaction(
	tenantID uuid.UUID,
	productName string,
	quantity decimal.Decimal,
	rate decimal.Decimal,
	referenceNo string,
	date time.Time,
) (*InventoryTransaction, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name is required")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QTY", "Quantity cannot be zero")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	return &InventoryTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductName:         productName,
		Quantity:            quantity,
		Rate:                rate,
		ReferenceNo:         referenceNo,
		Date:                date,
	}, nil
}
