package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func TestBankService_ResolveOrCreate(t *testing.T) {
	env := newServiceEnv(t)
	bankChart := env.seedBankChartAccount(t, dec(1000))

	first, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, bankChart)
	require.NoError(t, err)
	assert.Equal(t, "HBL", first.BankName)
	assert.Equal(t, "0012345", first.AccountNo)
	assert.Equal(t, "HBL - 0012345", first.AccountName)
	assert.True(t, first.Balance.Equal(dec(1000)), "balance seeds from the opening debit")

	t.Run("repeat calls return the same record", func(t *testing.T) {
		second, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, bankChart)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.True(t, second.Balance.Equal(dec(1000)), "the cached balance is never re-seeded")
	})

	t.Run("resolution survives balance changes", func(t *testing.T) {
		customer := env.seedCustomer(t)
		_, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:     customer,
			PaymentMode:   ledger.PaymentModeBank,
			BankAccountID: &bankChart,
			Amount:        dec(200),
			Date:          day(2025, 4, 5),
		})
		require.NoError(t, err)

		again, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, bankChart)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.True(t, again.Balance.Equal(dec(1200)), "got %s", again.Balance)
	})

	t.Run("rejects non-bank chart accounts", func(t *testing.T) {
		general := env.seedAccount(t, "GEN-01", "Rent Expense", ledger.AccountTypeExpense, ledger.PartyTypeGeneral, dec(0))
		_, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, general)
		requireDomainCode(t, err, "BANK_ACCOUNT_NOT_FOUND")
	})

	t.Run("rejects unknown accounts", func(t *testing.T) {
		_, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, uuid.New())
		requireDomainCode(t, err, "BANK_ACCOUNT_NOT_FOUND")
	})
}

func TestBankService_DerivedBalance(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)
	supplier := env.seedSupplier(t)
	bankChart := env.seedBankChartAccount(t, dec(1000))

	_, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:     customer,
		PaymentMode:   ledger.PaymentModeBank,
		BankAccountID: &bankChart,
		Amount:        dec(500),
		Date:          day(2025, 4, 5),
	})
	require.NoError(t, err)
	_, err = env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:     supplier,
		PaymentMode:   ledger.PaymentModeBank,
		BankAccountID: &bankChart,
		Amount:        dec(300),
		Date:          day(2025, 4, 6),
	})
	require.NoError(t, err)

	bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
	require.NoError(t, err)
	require.NotNil(t, bank)
	require.True(t, bank.Balance.Equal(dec(1200)))

	derived, err := env.banks.DerivedBalance(env.ctx, env.tenantID, bank.ID)
	require.NoError(t, err)
	assert.True(t, derived.Equal(bank.Balance), "the ledger-derived balance must match the cached one: %s != %s", derived, bank.Balance)
}

func TestBankService_Statements(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)
	bankChart := env.seedBankChartAccount(t, dec(0))

	for _, d := range []int{5, 20} {
		_, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:     customer,
			PaymentMode:   ledger.PaymentModeBank,
			BankAccountID: &bankChart,
			Amount:        dec(100),
			Date:          day(2025, 4, d),
		})
		require.NoError(t, err)
	}

	bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
	require.NoError(t, err)
	require.NotNil(t, bank)

	all, err := env.banks.Statements(env.ctx, env.tenantID, bank.ID, shared.DateRange{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	from := day(2025, 4, 10)
	late, err := env.banks.Statements(env.ctx, env.tenantID, bank.ID, shared.DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "CRV-2", late[0].ReferenceNo)

	t.Run("reconciles selected lines", func(t *testing.T) {
		require.NoError(t, env.banks.ReconcileStatements(env.ctx, env.tenantID, env.actorID, []uuid.UUID{all[0].ID}))

		refreshed, err := env.banks.Statements(env.ctx, env.tenantID, bank.ID, shared.DateRange{})
		require.NoError(t, err)
		reconciled := 0
		for _, s := range refreshed {
			if s.IsReconciled {
				reconciled++
			}
		}
		assert.Equal(t, 1, reconciled)
	})

	t.Run("unknown statement ids fail the batch", func(t *testing.T) {
		err := env.banks.ReconcileStatements(env.ctx, env.tenantID, env.actorID, []uuid.UUID{uuid.New()})
		require.ErrorIs(t, err, ErrStatementNotFound)
	})
}

func TestBankService_ListBankAccounts(t *testing.T) {
	env := newServiceEnv(t)
	bankChart := env.seedBankChartAccount(t, dec(1000))
	_, err := env.banks.ResolveOrCreate(env.ctx, env.tenantID, env.actorID, bankChart)
	require.NoError(t, err)

	banks, err := env.banks.ListBankAccounts(env.ctx, env.tenantID)
	require.NoError(t, err)
	require.Len(t, banks, 1)

	other, err := env.banks.ListBankAccounts(env.ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
