package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormBankStatementRepository implements ledger.BankStatementRepository using GORM
type GormBankStatementRepository struct {
	db *gorm.DB
}

// NewGormBankStatementRepository creates a new GormBankStatementRepository
func NewGormBankStatementRepository(db *gorm.DB) *GormBankStatementRepository {
	return &GormBankStatementRepository{db: db}
}

// FindByIDForTenant finds a statement line by ID within a tenant
func (r *GormBankStatementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.BankStatement, error) {
	var statement ledger.BankStatement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&statement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &statement, nil
}

// FindForBankAccount lists statement lines for a bank account, newest first
func (r *GormBankStatementRepository) FindForBankAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID, dateRange shared.DateRange) ([]ledger.BankStatement, error) {
	var statements []ledger.BankStatement
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND bank_account_id = ?", tenantID, bankAccountID)
	if dateRange.From != nil {
		query = query.Where("date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("date <= ?", *dateRange.To)
	}
	if err := query.Order("date DESC, created_at DESC").Find(&statements).Error; err != nil {
		return nil, err
	}
	return statements, nil
}

// FindByReferenceForTenant lists statement lines sharing a voucher reference
func (r *GormBankStatementRepository) FindByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) ([]ledger.BankStatement, error) {
	var statements []ledger.BankStatement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_no = ?", tenantID, referenceNo).
		Find(&statements).Error; err != nil {
		return nil, err
	}
	return statements, nil
}

// Save creates or updates a statement line
func (r *GormBankStatementRepository) Save(ctx context.Context, statement *ledger.BankStatement) error {
	return r.db.WithContext(ctx).Save(statement).Error
}

// DeleteByReferenceForTenant removes all statement lines sharing a voucher
// reference
func (r *GormBankStatementRepository) DeleteByReferenceForTenant(ctx context.Context, tenantID uuid.UUID, referenceNo string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_no = ?", tenantID, referenceNo).
		Delete(&ledger.BankStatement{}).Error
}
