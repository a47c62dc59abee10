package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormVoucherRepository implements ledger.VoucherRepository using GORM.
// Vouchers and their entries are always written together inside the caller's
// transaction.
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByIDForTenant finds a voucher with its entries by ID within a tenant
func (r *GormVoucherRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Voucher, error) {
	var voucher ledger.Voucher
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// FindByNumberForTenant finds a voucher with its entries by voucher number
func (r *GormVoucherRepository) FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, voucherNumber string) (*ledger.Voucher, error) {
	var voucher ledger.Voucher
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("tenant_id = ? AND voucher_number = ?", tenantID, voucherNumber).
		First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// FindAllForTenant lists vouchers with entries, newest first
func (r *GormVoucherRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.VoucherFilter) ([]ledger.Voucher, error) {
	var vouchers []ledger.Voucher
	query := r.voucherQuery(ctx, tenantID, filter).
		Preload("Entries").
		Order("date DESC, created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

// CountForTenant counts vouchers matching the filter
func (r *GormVoucherRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.VoucherFilter) (int64, error) {
	var count int64
	if err := r.voucherQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormVoucherRepository) voucherQuery(ctx context.Context, tenantID uuid.UUID, filter ledger.VoucherFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&ledger.Voucher{}).Where("tenant_id = ?", tenantID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Range.From != nil {
		query = query.Where("date >= ?", *filter.Range.From)
	}
	if filter.Range.To != nil {
		query = query.Where("date <= ?", *filter.Range.To)
	}
	return query
}

// ExistingNumbers returns all voucher numbers for the tenant and type
func (r *GormVoucherRepository) ExistingNumbers(ctx context.Context, tenantID uuid.UUID, voucherType ledger.VoucherType) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&ledger.Voucher{}).
		Where("tenant_id = ? AND type = ?", tenantID, voucherType).
		Pluck("voucher_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// Create inserts the voucher header together with its entries
func (r *GormVoucherRepository) Create(ctx context.Context, voucher *ledger.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

// UpdateHeader persists header fields without touching entry rows
func (r *GormVoucherRepository) UpdateHeader(ctx context.Context, voucher *ledger.Voucher) error {
	return r.db.WithContext(ctx).
		Model(&ledger.Voucher{}).
		Where("tenant_id = ? AND id = ?", voucher.TenantID, voucher.ID).
		Updates(map[string]interface{}{
			"date":       voucher.Date,
			"narration":  voucher.Narration,
			"updated_at": voucher.UpdatedAt,
			"version":    voucher.Version,
		}).Error
}

// ReplaceEntries deletes all prior entry rows of the voucher and inserts the
// current in-memory set
func (r *GormVoucherRepository) ReplaceEntries(ctx context.Context, voucher *ledger.Voucher) error {
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND voucher_id = ?", voucher.TenantID, voucher.ID).
		Delete(&ledger.VoucherEntry{}).Error; err != nil {
		return err
	}
	if len(voucher.Entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&voucher.Entries).Error
}

// DeleteWithEntries removes the voucher and all its entries
func (r *GormVoucherRepository) DeleteWithEntries(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND voucher_id = ?", tenantID, id).
		Delete(&ledger.VoucherEntry{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&ledger.Voucher{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HasEntriesForAccount reports whether any voucher leg references the account
func (r *GormVoucherRepository) HasEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.VoucherEntry{}).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumForAccount returns the signed entry sum posted against the account over
// the range
func (r *GormVoucherRepository) SumForAccount(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) (decimal.Decimal, error) {
	var raw *string
	query := r.db.WithContext(ctx).
		Model(&ledger.VoucherEntry{}).
		Select("SUM(voucher_entries.amount)").
		Joins("JOIN vouchers ON vouchers.id = voucher_entries.voucher_id").
		Where("voucher_entries.tenant_id = ? AND voucher_entries.account_id = ?", tenantID, accountID)
	query = applyVoucherDateRange(query, dateRange)

	if err := query.Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

// LedgerRowsForAccount returns entry legs joined with voucher headers,
// ordered by date
func (r *GormVoucherRepository) LedgerRowsForAccount(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) ([]ledger.LedgerRow, error) {
	var rows []ledger.LedgerRow
	query := r.db.WithContext(ctx).
		Model(&ledger.VoucherEntry{}).
		Select(`voucher_entries.id AS entry_id,
			vouchers.id AS voucher_id,
			vouchers.voucher_number,
			vouchers.type AS voucher_type,
			vouchers.date,
			vouchers.narration,
			voucher_entries.amount`).
		Joins("JOIN vouchers ON vouchers.id = voucher_entries.voucher_id").
		Where("voucher_entries.tenant_id = ? AND voucher_entries.account_id = ?", tenantID, accountID)
	query = applyVoucherDateRange(query, dateRange)

	if err := query.Order("vouchers.date ASC, vouchers.created_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyVoucherDateRange(query *gorm.DB, dateRange shared.DateRange) *gorm.DB {
	if dateRange.From != nil {
		query = query.Where("vouchers.date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("vouchers.date <= ?", *dateRange.To)
	}
	return query
}
