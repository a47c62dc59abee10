package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func TestInvoiceService_CreateSalesInvoice(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)

	t.Run("posts invoice, voucher and stock movements", func(t *testing.T) {
		resp, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID: customer,
			Date:           day(2025, 4, 10),
			Lines: []InvoiceLineRequest{
				{ProductName: "Lawn Suit", Quantity: dec(2), Rate: dec(100)},
				{ProductName: "Dupatta", Quantity: dec(1), Rate: dec(50)},
			},
			TaxRate:   dec(10),
			Freight:   dec(20),
			Narration: "April order",
		})
		require.NoError(t, err)

		assert.Equal(t, "SI-1", resp.InvoiceNumber)
		assert.True(t, resp.Subtotal.Equal(dec(250)))
		assert.True(t, resp.TaxAmount.Equal(dec(25)))
		assert.True(t, resp.Total.Equal(dec(295)))
		assert.Equal(t, "Karachi Fabrics", resp.PartyName)

		voucher, err := env.uow.Vouchers().FindByNumberForTenant(env.ctx, env.tenantID, "SI-1")
		require.NoError(t, err)
		require.NotNil(t, voucher)
		assert.Equal(t, ledger.VoucherTypeSI, voucher.Type)
		require.Len(t, voucher.Entries, 2)

		sales, err := env.uow.Accounts().FindByNameForTenant(env.ctx, env.tenantID, ledger.SalesAccountName)
		require.NoError(t, err)
		require.NotNil(t, sales, "Sales account should be created on first invoice")
		assert.Equal(t, ledger.AccountTypeIncome, sales.Type)

		for _, entry := range voucher.Entries {
			switch entry.AccountID {
			case customer:
				assert.True(t, entry.Amount.Equal(dec(295)))
			case sales.ID:
				assert.True(t, entry.Amount.Equal(dec(-295)))
			default:
				t.Fatalf("unexpected entry account %s", entry.AccountID)
			}
		}

		movements, err := env.uow.InventoryTransactions().FindAllForTenant(env.ctx, env.tenantID, "", shared.DateRange{})
		require.NoError(t, err)
		require.Len(t, movements, 2)
		for _, m := range movements {
			assert.True(t, m.Quantity.IsNegative(), "sales move stock out")
			assert.Equal(t, "SI-1", m.ReferenceNo)
		}
	})

	t.Run("rejects a non-customer party", func(t *testing.T) {
		supplier := env.seedSupplier(t)
		_, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID: supplier,
			Date:           day(2025, 4, 10),
			Lines:          []InvoiceLineRequest{{ProductName: "Lawn Suit", Quantity: dec(1), Rate: dec(100)}},
		})
		require.ErrorIs(t, err, ErrSalesInvoiceParty)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID: customer,
			Date:           day(2025, 4, 10),
		})
		requireDomainCode(t, err, "INVALID_LINES")
	})
}

func TestInvoiceService_CreatePurchaseInvoice(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)

	resp, err := env.invoices.CreatePurchaseInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
		PartyAccountID: supplier,
		Date:           day(2025, 4, 12),
		Lines:          []InvoiceLineRequest{{ProductName: "Grey Cloth", Quantity: dec(10), Rate: dec(40)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PI-1", resp.InvoiceNumber)
	assert.True(t, resp.Total.Equal(dec(400)))

	voucher, err := env.uow.Vouchers().FindByNumberForTenant(env.ctx, env.tenantID, "PI-1")
	require.NoError(t, err)
	require.NotNil(t, voucher)
	assert.Equal(t, ledger.VoucherTypePI, voucher.Type)

	inventory, err := env.uow.Accounts().FindByNameForTenant(env.ctx, env.tenantID, ledger.InventoryAccountName)
	require.NoError(t, err)
	require.NotNil(t, inventory)
	for _, entry := range voucher.Entries {
		switch entry.AccountID {
		case supplier:
			assert.True(t, entry.Amount.Equal(dec(-400)), "purchase credits the supplier")
		case inventory.ID:
			assert.True(t, entry.Amount.Equal(dec(400)))
		}
	}

	movements, err := env.uow.InventoryTransactions().FindAllForTenant(env.ctx, env.tenantID, "Grey Cloth", shared.DateRange{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Quantity.Equal(dec(10)), "purchases move stock in")

	t.Run("rejects a non-supplier party", func(t *testing.T) {
		customer := env.seedCustomer(t)
		_, err := env.invoices.CreatePurchaseInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID: customer,
			Date:           day(2025, 4, 12),
			Lines:          []InvoiceLineRequest{{ProductName: "Grey Cloth", Quantity: dec(1), Rate: dec(40)}},
		})
		require.ErrorIs(t, err, ErrPurchaseInvoiceParty)
	})
}

func TestInvoiceService_PurchaseOrderLinkage(t *testing.T) {
	env := newServiceEnv(t)
	supplier := env.seedSupplier(t)

	order, err := ledger.NewPurchaseOrder(env.tenantID, "PO-1", supplier, day(2025, 4, 1), []ledger.OrderLineInput{
		{ProductName: "Grey Cloth", OrderedQty: dec(10), Rate: dec(40)},
	})
	require.NoError(t, err)
	require.NoError(t, env.uow.PurchaseOrders().Save(env.ctx, order))

	resp, err := env.invoices.CreatePurchaseInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
		PartyAccountID:  supplier,
		Date:            day(2025, 4, 12),
		Lines:           []InvoiceLineRequest{{ProductName: "Grey Cloth", Quantity: dec(10), Rate: dec(40)}},
		PurchaseOrderID: &order.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.PurchaseOrderID)

	reloaded, err := env.uow.PurchaseOrders().FindByIDForTenant(env.ctx, env.tenantID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, ledger.PurchaseOrderStatusCompleted, reloaded.Status)

	t.Run("deleting the invoice rolls the order back", func(t *testing.T) {
		require.NoError(t, env.invoices.DeleteInvoice(env.ctx, env.tenantID, env.actorID, resp.ID))

		reloaded, err := env.uow.PurchaseOrders().FindByIDForTenant(env.ctx, env.tenantID, order.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.Equal(t, ledger.PurchaseOrderStatusOpen, reloaded.Status)
	})

	t.Run("an unknown order fails the posting", func(t *testing.T) {
		missing := uuid.New()
		_, err := env.invoices.CreatePurchaseInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID:  supplier,
			Date:            day(2025, 4, 12),
			Lines:           []InvoiceLineRequest{{ProductName: "Grey Cloth", Quantity: dec(1), Rate: dec(40)}},
			PurchaseOrderID: &missing,
		})
		require.ErrorIs(t, err, ErrPurchaseOrderNotFound)
	})
}

func TestInvoiceService_DeleteInvoice(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)

	resp, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
		PartyAccountID: customer,
		Date:           day(2025, 4, 10),
		Lines:          []InvoiceLineRequest{{ProductName: "Lawn Suit", Quantity: dec(2), Rate: dec(100)}},
	})
	require.NoError(t, err)

	require.NoError(t, env.invoices.DeleteInvoice(env.ctx, env.tenantID, env.actorID, resp.ID))

	_, err = env.invoices.GetInvoice(env.ctx, env.tenantID, resp.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)

	voucher, err := env.uow.Vouchers().FindByNumberForTenant(env.ctx, env.tenantID, "SI-1")
	require.NoError(t, err)
	assert.Nil(t, voucher, "the invoice voucher should be unwound")

	movements, err := env.uow.InventoryTransactions().FindAllForTenant(env.ctx, env.tenantID, "", shared.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, movements)

	t.Run("the freed number is reused", func(t *testing.T) {
		resp, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
			PartyAccountID: customer,
			Date:           day(2025, 4, 11),
			Lines:          []InvoiceLineRequest{{ProductName: "Lawn Suit", Quantity: dec(1), Rate: dec(100)}},
		})
		require.NoError(t, err)
		assert.Equal(t, "SI-1", resp.InvoiceNumber)
	})
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	env := newServiceEnv(t)
	customer := env.seedCustomer(t)
	supplier := env.seedSupplier(t)

	_, err := env.invoices.CreateSalesInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
		PartyAccountID: customer,
		Date:           day(2025, 4, 10),
		Lines:          []InvoiceLineRequest{{ProductName: "Lawn Suit", Quantity: dec(1), Rate: dec(100)}},
	})
	require.NoError(t, err)
	_, err = env.invoices.CreatePurchaseInvoice(env.ctx, env.tenantID, env.actorID, InvoiceRequest{
		PartyAccountID: supplier,
		Date:           day(2025, 4, 12),
		Lines:          []InvoiceLineRequest{{ProductName: "Grey Cloth", Quantity: dec(1), Rate: dec(40)}},
	})
	require.NoError(t, err)

	sales, err := env.invoices.ListInvoices(env.ctx, env.tenantID, ledger.InvoiceKindSales, shared.DateRange{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "SI-1", sales[0].InvoiceNumber)
	assert.Equal(t, "Karachi Fabrics", sales[0].PartyName)

	purchases, err := env.invoices.ListInvoices(env.ctx, env.tenantID, ledger.InvoiceKindPurchase, shared.DateRange{})
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "PI-1", purchases[0].InvoiceNumber)

	other, err := env.invoices.ListInvoices(env.ctx, uuid.New(), ledger.InvoiceKindSales, shared.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, other)
}
