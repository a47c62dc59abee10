package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormRecurringTransactionRepository implements
// ledger.RecurringTransactionRepository using GORM
type GormRecurringTransactionRepository struct {
	db *gorm.DB
}

// NewGormRecurringTransactionRepository creates a new GormRecurringTransactionRepository
func NewGormRecurringTransactionRepository(db *gorm.DB) *GormRecurringTransactionRepository {
	return &GormRecurringTransactionRepository{db: db}
}

// FindByIDForTenant finds a recurring template by ID within a tenant
func (r *GormRecurringTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.RecurringTransaction, error) {
	var transaction ledger.RecurringTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// FindAllForTenant lists recurring templates for a tenant
func (r *GormRecurringTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.RecurringTransaction, error) {
	var transactions []ledger.RecurringTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("next_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindDue returns active templates across all tenants whose next date is on
// or before the given day. The scheduler sweep is the only cross-tenant
// read in the module.
func (r *GormRecurringTransactionRepository) FindDue(ctx context.Context, now time.Time) ([]ledger.RecurringTransaction, error) {
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	var transactions []ledger.RecurringTransaction
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND next_date <= ?", true, endOfDay).
		Order("next_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Save creates or updates a recurring template
func (r *GormRecurringTransactionRepository) Save(ctx context.Context, transaction *ledger.RecurringTransaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

// Delete removes a recurring template
func (r *GormRecurringTransactionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&ledger.RecurringTransaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
