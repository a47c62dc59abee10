package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
)

// gormRepositories binds every ledger repository to one *gorm.DB, which is
// either the root connection or an open transaction.
type gormRepositories struct {
	accounts              *GormAccountRepository
	vouchers              *GormVoucherRepository
	bankAccounts          *GormBankAccountRepository
	bankStatements        *GormBankStatementRepository
	financialYears        *GormFinancialYearRepository
	recurringTransactions *GormRecurringTransactionRepository
	inventoryTransactions *GormInventoryTransactionRepository
	invoices              *GormInvoiceRepository
	purchaseOrders        *GormPurchaseOrderRepository
	saleReturns           *GormSaleReturnRepository
	activityLogs          *GormActivityLogRepository
}

func newGormRepositories(db *gorm.DB) *gormRepositories {
	return &gormRepositories{
		accounts:              NewGormAccountRepository(db),
		vouchers:              NewGormVoucherRepository(db),
		bankAccounts:          NewGormBankAccountRepository(db),
		bankStatements:        NewGormBankStatementRepository(db),
		financialYears:        NewGormFinancialYearRepository(db),
		recurringTransactions: NewGormRecurringTransactionRepository(db),
		inventoryTransactions: NewGormInventoryTransactionRepository(db),
		invoices:              NewGormInvoiceRepository(db),
		purchaseOrders:        NewGormPurchaseOrderRepository(db),
		saleReturns:           NewGormSaleReturnRepository(db),
		activityLogs:          NewGormActivityLogRepository(db),
	}
}

func (r *gormRepositories) Accounts() ledger.AccountRepository { return r.accounts }
func (r *gormRepositories) Vouchers() ledger.VoucherRepository { return r.vouchers }
func (r *gormRepositories) BankAccounts() ledger.BankAccountRepository {
	return r.bankAccounts
}
func (r *gormRepositories) BankStatements() ledger.BankStatementRepository {
	return r.bankStatements
}
func (r *gormRepositories) FinancialYears() ledger.FinancialYearRepository {
	return r.financialYears
}
func (r *gormRepositories) RecurringTransactions() ledger.RecurringTransactionRepository {
	return r.recurringTransactions
}
func (r *gormRepositories) InventoryTransactions() ledger.InventoryTransactionRepository {
	return r.inventoryTransactions
}
func (r *gormRepositories) Invoices() ledger.InvoiceRepository { return r.invoices }
func (r *gormRepositories) PurchaseOrders() ledger.PurchaseOrderRepository {
	return r.purchaseOrders
}
func (r *gormRepositories) SaleReturns() ledger.SaleReturnRepository { return r.saleReturns }
func (r *gormRepositories) ActivityLogs() ledger.ActivityLogRepository {
	return r.activityLogs
}

// GormUnitOfWork implements ledger.UnitOfWork. Calls outside Do run on the
// root connection; Do opens a database transaction and hands the callback a
// repository bundle bound to it.
type GormUnitOfWork struct {
	*gormRepositories
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work over the given connection
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		gormRepositories: newGormRepositories(db),
		db:               db,
	}
}

// Do runs fn inside one database transaction. Every write fn performs
// commits together or not at all.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepositories(tx))
	})
}

// AutoMigrate creates or updates every ledger table. Production deployments
// run versioned SQL migrations instead; this backs sqlite-based tests and
// local bootstrap.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ledger.Account{},
		&ledger.Voucher{},
		&ledger.VoucherEntry{},
		&ledger.BankAccount{},
		&ledger.BankStatement{},
		&ledger.FinancialYear{},
		&ledger.RecurringTransaction{},
		&ledger.InventoryTransaction{},
		&ledger.Invoice{},
		&ledger.InvoiceLine{},
		&ledger.PurchaseOrder{},
		&ledger.PurchaseOrderLine{},
		&ledger.SaleReturn{},
		&ledger.SaleReturnItem{},
		&ledger.ActivityLog{},
	)
}
