package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormInventoryTransactionRepository implements
// ledger.InventoryTransactionRepository using GORM
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// FindAllForTenant lists stock movements, optionally narrowed by product
// name and date range
func (r *GormInventoryTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, productName string, dateRange shared.DateRange) ([]ledger.InventoryTransaction, error) {
	var transactions []ledger.InventoryTransaction
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if strings.TrimSpace(productName) != "" {
		query = query.Where("LOWER(product_name) = ?", strings.ToLower(strings.TrimSpace(productName)))
	}
	if dateRange.From != nil {
		query = query.Where("date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("date <= ?", *dateRange.To)
	}
	if err := query.Order("date ASC, created_at ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Save creates or updates a stock movement
func (r *GormInventoryTransactionRepository) Save(ctx context.Context, transaction *ledger.InventoryTransaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

// DeleteByReferenceForTenant removes all stock movements sharing an invoice
// or return reference
func (r *GormInventoryTransactionRepository) DeleteByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_no = ?", tenantID, referenceNo).
		Delete(&ledger.InventoryTransaction{}).Error
}
