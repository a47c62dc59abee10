package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its lines by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	var invoice ledger.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForTenant lists invoices of one kind with lines, newest first
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, kind ledger.InvoiceKind, dateRange shared.DateRange) ([]ledger.Invoice, error) {
	var invoices []ledger.Invoice
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND kind = ?", tenantID, kind)
	if dateRange.From != nil {
		query = query.Where("date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("date <= ?", *dateRange.To)
	}
	if err := query.Order("date DESC, created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistingNumbers returns all invoice numbers for the tenant and kind
func (r *GormInvoiceRepository) ExistingNumbers(ctx context.Context, tenantID uuid.UUID, kind ledger.InvoiceKind) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&ledger.Invoice{}).
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		Pluck("invoice_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// Save creates or updates an invoice with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// DeleteWithLines removes the invoice and all its lines
func (r *GormInvoiceRepository) DeleteWithLines(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Delete(&ledger.InvoiceLine{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&ledger.Invoice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
