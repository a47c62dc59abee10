package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
)

// GormFinancialYearRepository implements ledger.FinancialYearRepository using GORM
type GormFinancialYearRepository struct {
	db *gorm.DB
}

// NewGormFinancialYearRepository creates a new GormFinancialYearRepository
func NewGormFinancialYearRepository(db *gorm.DB) *GormFinancialYearRepository {
	return &GormFinancialYearRepository{db: db}
}

// FindByIDForTenant finds a financial year by ID within a tenant
func (r *GormFinancialYearRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.FinancialYear, error) {
	var year ledger.FinancialYear
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&year).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &year, nil
}

// FindCovering returns the year whose range contains the date, or nil when
// no year covers it. Range comparison ignores time-of-day.
func (r *GormFinancialYearRepository) FindCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) (*ledger.FinancialYear, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var years []ledger.FinancialYear
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&years).Error; err != nil {
		return nil, err
	}
	for i := range years {
		if years[i].Covers(day) {
			return &years[i], nil
		}
	}
	return nil, nil
}

// FindAllForTenant lists financial years, newest start date first
func (r *GormFinancialYearRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.FinancialYear, error) {
	var years []ledger.FinancialYear
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("start_date DESC").
		Find(&years).Error; err != nil {
		return nil, err
	}
	return years, nil
}

// Save creates or updates a financial year
func (r *GormFinancialYearRepository) Save(ctx context.Context, year *ledger.FinancialYear) error {
	return r.db.WithContext(ctx).Save(year).Error
}
