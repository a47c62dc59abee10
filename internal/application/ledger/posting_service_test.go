package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func TestPostingService_CreateCashPayment(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	cash := env.seedCashAccount(t)

	t.Run("posts a balanced CPV", func(t *testing.T) {
		resp, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(500),
			Date:        day(2025, 3, 10),
			Narration:   "Cotton bales March",
		})
		require.NoError(t, err)

		assert.Equal(t, "CPV-1", resp.VoucherNumber)
		assert.Equal(t, ledger.VoucherTypeCPV, resp.Type)
		assert.True(t, resp.Amount.Equal(dec(500)))
		require.Len(t, resp.Entries, 2)
		assert.True(t, entryAmount(t, resp, supplier).Equal(dec(500)))
		assert.True(t, entryAmount(t, resp, cash).Equal(dec(-500)))
	})

	t.Run("numbers vouchers sequentially per type", func(t *testing.T) {
		resp, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(120),
			Date:        day(2025, 3, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, "CPV-2", resp.VoucherNumber)
	})

	t.Run("rejects a customer payee", func(t *testing.T) {
		customer := env.seedCustomer(t)
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   customer,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 3, 12),
		})
		requireDomainCode(t, err, "INVALID_PARTY")
		assert.EqualError(t, err, "CPV sirf Supplier/Bank/Expense ke liye hota hai")
	})

	t.Run("rejects missing account or date", func(t *testing.T) {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 3, 12),
		})
		require.ErrorIs(t, err, ErrAccountDateRequired)

		_, err = env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
		})
		require.ErrorIs(t, err, ErrAccountDateRequired)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      decimal.Zero,
			Date:        day(2025, 3, 12),
		})
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("requires a bank account in bank mode", func(t *testing.T) {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeBank,
			Amount:      dec(100),
			Date:        day(2025, 3, 12),
		})
		require.ErrorIs(t, err, ErrBankAccountRequired)
	})
}

func TestPostingService_CreateCashReceipt(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)
	cash := env.seedCashAccount(t)

	t.Run("posts a balanced CRV", func(t *testing.T) {
		resp, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   customer,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(300),
			Date:        day(2025, 4, 1),
			Narration:   "Invoice settlement",
		})
		require.NoError(t, err)

		assert.Equal(t, "CRV-1", resp.VoucherNumber)
		assert.True(t, entryAmount(t, resp, cash).Equal(dec(300)))
		assert.True(t, entryAmount(t, resp, customer).Equal(dec(-300)))
	})

	t.Run("rejects a non-customer party", func(t *testing.T) {
		supplier := env.seedSupplier(t)
		_, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(300),
			Date:        day(2025, 4, 1),
		})
		requireDomainCode(t, err, "INVALID_PARTY")
		assert.EqualError(t, err, "CRV sirf Customer ke liye hota hai")
	})
}

func TestPostingService_BankSideEffects(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)
	bankChart := env.seedBankChartAccount(t, dec(1000))

	resp, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:     customer,
		PaymentMode:   ledger.PaymentModeBank,
		BankAccountID: &bankChart,
		Amount:        dec(200),
		Date:          day(2025, 4, 5),
		Narration:     "Online transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, "CRV-1", resp.VoucherNumber)

	bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
	require.NoError(t, err)
	require.NotNil(t, bank, "bank record should be materialized on first use")
	assert.Equal(t, "HBL", bank.BankName)
	assert.Equal(t, "0012345", bank.AccountNo)
	assert.True(t, bank.Balance.Equal(dec(1200)), "balance should move 1000 -> 1200, got %s", bank.Balance)

	statements, err := env.uow.BankStatements().FindByReferenceForTenant(env.ctx, env.tenantID, "CRV-1")
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.True(t, statements[0].Amount.Equal(dec(200)))
	assert.Equal(t, bank.ID, statements[0].BankAccountID)
	assert.False(t, statements[0].IsReconciled)

	t.Run("delete restores the balance and removes statements", func(t *testing.T) {
		require.NoError(t, env.posting.DeleteVoucher(env.ctx, env.tenantID, env.actorID, resp.ID))

		bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
		require.NoError(t, err)
		require.NotNil(t, bank)
		assert.True(t, bank.Balance.Equal(dec(1000)), "balance should return to 1000, got %s", bank.Balance)

		statements, err := env.uow.BankStatements().FindByReferenceForTenant(env.ctx, env.tenantID, "CRV-1")
		require.NoError(t, err)
		assert.Empty(t, statements)
	})

	t.Run("repeat postings reuse the materialized bank record", func(t *testing.T) {
		supplier := env.seedSupplier(t)
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:     supplier,
			PaymentMode:   ledger.PaymentModeBank,
			BankAccountID: &bankChart,
			Amount:        dec(50),
			Date:          day(2025, 4, 6),
		})
		require.NoError(t, err)

		banks, err := env.uow.BankAccounts().FindAllForTenant(env.ctx, env.tenantID)
		require.NoError(t, err)
		require.Len(t, banks, 1, "posting against the same chart account must not materialize again")
		assert.Equal(t, bank.ID, banks[0].ID)
		assert.True(t, banks[0].Balance.Equal(dec(950)), "balance should move 1000 -> 950, got %s", banks[0].Balance)
	})
}

func TestPostingService_UpdateCashVoucher(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	cash := env.seedCashAccount(t)
	bankChart := env.seedBankChartAccount(t, dec(1000))

	resp, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:     supplier,
		PaymentMode:   ledger.PaymentModeBank,
		BankAccountID: &bankChart,
		Amount:        dec(300),
		Date:          day(2025, 5, 1),
	})
	require.NoError(t, err)

	bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
	require.NoError(t, err)
	require.NotNil(t, bank)
	require.True(t, bank.Balance.Equal(dec(700)))

	t.Run("moving the payment to cash unwinds the bank effect", func(t *testing.T) {
		updated, err := env.posting.UpdateCashVoucher(env.ctx, env.tenantID, env.actorID, resp.ID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(300),
			Date:        day(2025, 5, 2),
			Narration:   "Paid in cash after all",
		})
		require.NoError(t, err)
		assert.Equal(t, "CPV-1", updated.VoucherNumber, "voucher number survives edits")
		assert.True(t, entryAmount(t, updated, cash).Equal(dec(-300)))

		bank, err := env.uow.BankAccounts().FindByAccountIDForTenant(env.ctx, env.tenantID, bankChart)
		require.NoError(t, err)
		require.NotNil(t, bank)
		assert.True(t, bank.Balance.Equal(dec(1000)), "got %s", bank.Balance)

		statements, err := env.uow.BankStatements().FindByReferenceForTenant(env.ctx, env.tenantID, "CPV-1")
		require.NoError(t, err)
		assert.Empty(t, statements)
	})

	t.Run("rejects editing a journal through the cash path", func(t *testing.T) {
		a := env.seedAccount(t, "GEN-01", "Rent Expense", ledger.AccountTypeExpense, ledger.PartyTypeGeneral, decimal.Zero)
		b := env.seedAccount(t, "GEN-02", "Accrued Rent", ledger.AccountTypeLiability, ledger.PartyTypeGeneral, decimal.Zero)
		journal, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date: day(2025, 5, 3),
			Entries: []JournalEntryRequest{
				{AccountID: a, Amount: dec(50)},
				{AccountID: b, Amount: dec(-50)},
			},
		})
		require.NoError(t, err)

		_, err = env.posting.UpdateCashVoucher(env.ctx, env.tenantID, env.actorID, journal.ID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(50),
			Date:        day(2025, 5, 3),
		})
		requireDomainCode(t, err, "INVALID_VOUCHER_TYPE")
	})
}

func TestPostingService_CreateJournal(t *testing.T) {
	env := newServiceEnv(t)
	rent := env.seedAccount(t, "EXP-01", "Rent Expense", ledger.AccountTypeExpense, ledger.PartyTypeGeneral, decimal.Zero)
	accrued := env.seedAccount(t, "LIA-01", "Accrued Rent", ledger.AccountTypeLiability, ledger.PartyTypeGeneral, decimal.Zero)

	t.Run("posts a balanced journal", func(t *testing.T) {
		resp, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date:      day(2025, 6, 30),
			Narration: "June rent accrual",
			Entries: []JournalEntryRequest{
				{AccountID: rent, Amount: dec(250)},
				{AccountID: accrued, Amount: dec(-250)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "JV-1", resp.VoucherNumber)
		assert.Equal(t, ledger.VoucherTypeJV, resp.Type)
		assert.True(t, resp.Amount.Equal(dec(250)))
	})

	t.Run("rejects unbalanced entries", func(t *testing.T) {
		_, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date: day(2025, 6, 30),
			Entries: []JournalEntryRequest{
				{AccountID: rent, Amount: dec(250)},
				{AccountID: accrued, Amount: dec(-200)},
			},
		})
		requireDomainCode(t, err, "UNBALANCED_ENTRIES")
		assert.EqualError(t, err, "Entries do not balance: Debit(250.00) != Credit(200.00)")
	})

	t.Run("rejects fewer than two entries", func(t *testing.T) {
		_, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date: day(2025, 6, 30),
			Entries: []JournalEntryRequest{
				{AccountID: rent, Amount: dec(250)},
			},
		})
		requireDomainCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("rejects zero-amount legs", func(t *testing.T) {
		_, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date: day(2025, 6, 30),
			Entries: []JournalEntryRequest{
				{AccountID: rent, Amount: decimal.Zero},
				{AccountID: accrued, Amount: decimal.Zero},
			},
		})
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects unknown accounts", func(t *testing.T) {
		_, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
			Date: day(2025, 6, 30),
			Entries: []JournalEntryRequest{
				{AccountID: uuid.New(), Amount: dec(100)},
				{AccountID: accrued, Amount: dec(-100)},
			},
		})
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestPostingService_UpdateJournal(t *testing.T) {
	env := newServiceEnv(t)
	rent := env.seedAccount(t, "EXP-01", "Rent Expense", ledger.AccountTypeExpense, ledger.PartyTypeGeneral, decimal.Zero)
	accrued := env.seedAccount(t, "LIA-01", "Accrued Rent", ledger.AccountTypeLiability, ledger.PartyTypeGeneral, decimal.Zero)

	resp, err := env.posting.CreateJournal(env.ctx, env.tenantID, env.actorID, JournalRequest{
		Date: day(2025, 6, 30),
		Entries: []JournalEntryRequest{
			{AccountID: rent, Amount: dec(250)},
			{AccountID: accrued, Amount: dec(-250)},
		},
	})
	require.NoError(t, err)

	updated, err := env.posting.UpdateJournal(env.ctx, env.tenantID, env.actorID, resp.ID, JournalRequest{
		Date:      day(2025, 7, 1),
		Narration: "Corrected accrual",
		Entries: []JournalEntryRequest{
			{AccountID: rent, Amount: dec(400)},
			{AccountID: accrued, Amount: dec(-400)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "JV-1", updated.VoucherNumber)
	assert.True(t, updated.Amount.Equal(dec(400)))
	assert.Equal(t, "Corrected accrual", updated.Narration)

	reloaded, err := env.posting.GetVoucher(env.ctx, env.tenantID, resp.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Entries, 2)
	assert.True(t, entryAmount(t, reloaded, rent).Equal(dec(400)))
}

func TestPostingService_TenantIsolation(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	env.seedCashAccount(t)

	resp, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:   supplier,
		PaymentMode: ledger.PaymentModeCash,
		Amount:      dec(500),
		Date:        day(2025, 3, 10),
	})
	require.NoError(t, err)

	otherTenant := uuid.New()
	_, err = env.posting.GetVoucher(env.ctx, otherTenant, resp.ID)
	require.ErrorIs(t, err, ErrVoucherNotFound)

	err = env.posting.DeleteVoucher(env.ctx, otherTenant, env.actorID, resp.ID)
	require.ErrorIs(t, err, ErrVoucherNotFound)

	page, err := env.posting.ListVouchers(env.ctx, otherTenant, ledger.VoucherFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestPostingService_PeriodLock(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	env.seedCashAccount(t)

	year, err := env.years.CreateFinancialYear(env.ctx, env.tenantID, env.actorID, FinancialYearRequest{
		Year:      "FY2024-25",
		StartDate: day(2024, 7, 1),
		EndDate:   day(2025, 6, 30),
	})
	require.NoError(t, err)
	_, err = env.years.CloseFinancialYear(env.ctx, env.tenantID, env.actorID, year.ID)
	require.NoError(t, err)

	t.Run("rejects postings dated inside a closed year", func(t *testing.T) {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 1, 15),
		})
		requireDomainCode(t, err, "PERIOD_CLOSED")
	})

	t.Run("accepts dates outside the closed year", func(t *testing.T) {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 7, 15),
		})
		require.NoError(t, err)
	})

	t.Run("reopening unlocks the year", func(t *testing.T) {
		_, err := env.years.ReopenFinancialYear(env.ctx, env.tenantID, env.actorID, year.ID)
		require.NoError(t, err)

		_, err = env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 1, 15),
		})
		require.NoError(t, err)
	})

	t.Run("closing the year also blocks deletes inside it", func(t *testing.T) {
		resp, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(100),
			Date:        day(2025, 2, 1),
		})
		require.NoError(t, err)

		_, err = env.years.CloseFinancialYear(env.ctx, env.tenantID, env.actorID, year.ID)
		require.NoError(t, err)

		err = env.posting.DeleteVoucher(env.ctx, env.tenantID, env.actorID, resp.ID)
		requireDomainCode(t, err, "PERIOD_CLOSED")
	})
}

func TestPeriodGuard_Enforced(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	env.seedCashAccount(t)

	guard := NewPeriodGuard(env.uow.FinancialYears(), true)
	activity := NewActivityService(env.uow.ActivityLogs(), zap.NewNop())
	posting := NewPostingService(env.uow, guard, nil, activity, zap.NewNop())

	_, err := posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:   supplier,
		PaymentMode: ledger.PaymentModeCash,
		Amount:      dec(100),
		Date:        day(2025, 1, 15),
	})
	requireDomainCode(t, err, "PERIOD_CLOSED")

	_, err = env.years.CreateFinancialYear(env.ctx, env.tenantID, env.actorID, FinancialYearRequest{
		Year:      "FY2024-25",
		StartDate: day(2024, 7, 1),
		EndDate:   day(2025, 6, 30),
	})
	require.NoError(t, err)

	_, err = posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:   supplier,
		PaymentMode: ledger.PaymentModeCash,
		Amount:      dec(100),
		Date:        day(2025, 1, 15),
	})
	require.NoError(t, err)
}

func TestPostingService_ListVouchers(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)
	customer := env.seedCustomer(t)
	env.seedCashAccount(t)

	for i, d := range []time.Time{day(2025, 3, 1), day(2025, 3, 15)} {
		_, err := env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
			AccountID:   supplier,
			PaymentMode: ledger.PaymentModeCash,
			Amount:      dec(int64(100 * (i + 1))),
			Date:        d,
		})
		require.NoError(t, err)
	}
	_, err := env.posting.CreateCashReceipt(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:   customer,
		PaymentMode: ledger.PaymentModeCash,
		Amount:      dec(50),
		Date:        day(2025, 3, 20),
	})
	require.NoError(t, err)

	t.Run("filters by type with paging", func(t *testing.T) {
		cpv := ledger.VoucherTypeCPV
		page, err := env.posting.ListVouchers(env.ctx, env.tenantID, ledger.VoucherFilter{
			Type:     &cpv,
			Page:     1,
			PageSize: 1,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, ledger.VoucherTypeCPV, page.Items[0].Type)
	})

	t.Run("filters by date range", func(t *testing.T) {
		from := day(2025, 3, 16)
		page, err := env.posting.ListVouchers(env.ctx, env.tenantID, ledger.VoucherFilter{
			Range: shared.DateRange{From: &from},
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "CRV-1", page.Items[0].VoucherNumber)
	})
}
