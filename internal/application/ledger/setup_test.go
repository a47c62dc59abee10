package ledger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
)

// serviceEnv wires every ledger service against a fresh in-memory database.
type serviceEnv struct {
	ctx       context.Context
	uow       *persistence.GormUnitOfWork
	tenantID  uuid.UUID
	actorID   uuid.UUID
	posting   *PostingService
	invoices  *InvoiceService
	returns   *SaleReturnService
	accounts  *AccountService
	banks     *BankService
	years     *FinancialYearService
	recurring *RecurringService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	// Each test gets its own named in-memory database; cache=shared keeps it
	// visible across the pooled connections gorm opens for transactions.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	log := zap.NewNop()
	uow := persistence.NewGormUnitOfWork(db)
	activity := NewActivityService(uow.ActivityLogs(), log)
	guard := NewPeriodGuard(uow.FinancialYears(), false)
	posting := NewPostingService(uow, guard, nil, activity, log)
	invoices := NewInvoiceService(uow, guard, nil, activity, log)

	return &serviceEnv{
		ctx:       context.Background(),
		uow:       uow,
		tenantID:  uuid.New(),
		actorID:   uuid.New(),
		posting:   posting,
		invoices:  invoices,
		returns:   NewSaleReturnService(uow, guard, activity, log),
		accounts:  NewAccountService(uow, activity, log),
		banks:     NewBankService(uow, activity, log),
		years:     NewFinancialYearService(uow, log),
		recurring: NewRecurringService(uow, posting, invoices, nil, activity, log),
	}
}

func (e *serviceEnv) seedAccount(t *testing.T, code, name string, accountType ledger.AccountType, partyType ledger.PartyType, openingDebit decimal.Decimal) uuid.UUID {
	t.Helper()
	account, err := ledger.NewAccount(e.tenantID, code, name, accountType, partyType, openingDebit, decimal.Zero)
	require.NoError(t, err)
	account.SetCreatedBy(e.actorID)
	require.NoError(t, e.uow.Accounts().Save(e.ctx, account))
	return account.ID
}

func (e *serviceEnv) seedCashAccount(t *testing.T) uuid.UUID {
	return e.seedAccount(t, "CASH-01", ledger.CashAccountName, ledger.AccountTypeAsset, ledger.PartyTypeCash, decimal.Zero)
}

func (e *serviceEnv) seedCustomer(t *testing.T) uuid.UUID {
	return e.seedAccount(t, "CUST-01", "Karachi Fabrics", ledger.AccountTypeAsset, ledger.PartyTypeCustomer, decimal.Zero)
}

func (e *serviceEnv) seedSupplier(t *testing.T) uuid.UUID {
	return e.seedAccount(t, "SUP-01", "Lahore Mills", ledger.AccountTypeLiability, ledger.PartyTypeSupplier, decimal.Zero)
}

func (e *serviceEnv) seedBankChartAccount(t *testing.T, opening decimal.Decimal) uuid.UUID {
	return e.seedAccount(t, "BANK-01", "HBL - 0012345", ledger.AccountTypeAsset, ledger.PartyTypeBanks, opening)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

// entryAmount returns the signed amount the voucher posts against the account.
func entryAmount(t *testing.T, resp *VoucherResponse, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	for _, entry := range resp.Entries {
		if entry.AccountID == accountID {
			return entry.Amount
		}
	}
	t.Fatalf("no entry for account %s", accountID)
	return decimal.Zero
}
