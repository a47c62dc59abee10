package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
)

// GormPurchaseOrderRepository implements ledger.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByIDForTenant finds a purchase order with its lines by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.PurchaseOrder, error) {
	var order ledger.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForTenant lists purchase orders with lines, newest first
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.PurchaseOrder, error) {
	var orders []ledger.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ?", tenantID).
		Order("date DESC, created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order with its lines. Line invoiced
// quantities change on every linked purchase invoice, so lines are saved
// with the header.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *ledger.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Omit("Lines").Save(order).Error; err != nil {
		return err
	}
	for i := range order.Lines {
		if err := r.db.WithContext(ctx).Save(&order.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
