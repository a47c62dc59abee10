package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// SaleReturnItem is one returned product row
type SaleReturnItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleReturnID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleReturnItem) TableName() string {
	return "sale_return_items"
}

// SaleReturn records stock coming back from a customer. Its return number
// uses the gap-tolerant max-suffix scheme ("SR-{max+1}").
type SaleReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber      string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_sr_tenant_number,priority:2"`
	CustomerAccountID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Date              time.Time        `gorm:"not null;index"`
	Freight           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Total             decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Narration         string           `gorm:"type:text"`
	Items             []SaleReturnItem `gorm:"foreignKey:SaleReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleReturn) TableName() string {
	return "sale_returns"
}

// NewSaleReturn creates a sale return with its items; Total is the item sum
// plus freight.
func NewSaleReturn(
	tenantID uuid.UUID,
	returnNumber string,
	customerAccountID uuid.UUID,
	date time.Time,
	items []LineInput,
	freight decimal.Decimal,
	narration string,
) (*SaleReturn, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if customerAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer account is required")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Return date is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Return requires at least one item")
	}
	if freight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FREIGHT", "Freight cannot be negative")
	}

	sr := &SaleReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		CustomerAccountID:   customerAccountID,
		Date:                date,
		Freight:             freight,
		Narration:           narration,
	}

	total := decimal.Zero
	for _, in := range items {
		if strings.TrimSpace(in.ProductName) == "" {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item product name is required")
		}
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
		}
		if in.Rate.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ITEM", "Item rate cannot be negative")
		}
		lineTotal := in.Quantity.Mul(in.Rate)
		total = total.Add(lineTotal)
		sr.Items = append(sr.Items, SaleReturnItem{
			ID:           uuid.New(),
			SaleReturnID: sr.ID,
			ProductName:  strings.TrimSpace(in.ProductName),
			Quantity:     in.Quantity,
			Rate:         in.Rate,
			LineTotal:    lineTotal,
		})
	}

	sr.Total = total.Add(freight)
	return sr, nil
}
