package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormSaleReturnRepository implements ledger.SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

// FindByIDForTenant finds a sale return with its items by ID within a tenant
func (r *GormSaleReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.SaleReturn, error) {
	var saleReturn ledger.SaleReturn
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&saleReturn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &saleReturn, nil
}

// FindAllForTenant lists sale returns with items, newest first
func (r *GormSaleReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]ledger.SaleReturn, error) {
	var saleReturns []ledger.SaleReturn
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID)
	if dateRange.From != nil {
		query = query.Where("date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("date <= ?", *dateRange.To)
	}
	if err := query.Order("date DESC, created_at DESC").Find(&saleReturns).Error; err != nil {
		return nil, err
	}
	return saleReturns, nil
}

// ExistingNumbers returns all return numbers for the tenant
func (r *GormSaleReturnRepository) ExistingNumbers(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&ledger.SaleReturn{}).
		Where("tenant_id = ?", tenantID).
		Pluck("return_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// Save creates or updates a sale return with its items
func (r *GormSaleReturnRepository) Save(ctx context.Context, saleReturn *ledger.SaleReturn) error {
	return r.db.WithContext(ctx).Save(saleReturn).Error
}

// DeleteWithItems removes the sale return and all its items
func (r *GormSaleReturnRepository) DeleteWithItems(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("sale_return_id = ?", id).
		Delete(&ledger.SaleReturnItem{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&ledger.SaleReturn{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
