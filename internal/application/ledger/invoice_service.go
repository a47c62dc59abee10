package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

var (
	ErrInvoiceNotFound       = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrPurchaseOrderNotFound = shared.NewDomainError("PURCHASE_ORDER_NOT_FOUND", "Purchase order not found")
	ErrSalesInvoiceParty     = shared.NewDomainError("INVALID_PARTY", "Sales invoice party must be a customer")
	ErrPurchaseInvoiceParty  = shared.NewDomainError("INVALID_PARTY", "Purchase invoice party must be a supplier")
)

type InvoiceLineRequest struct {
	ProductName string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// InvoiceRequest is shared by sales and purchase invoice posting.
// PurchaseOrderID only applies to purchase invoices. Tax comes either from a
// configured tax lookup id or from an explicit rate; the lookup wins when
// both are set.
type InvoiceRequest struct {
	PartyAccountID  uuid.UUID
	Date            time.Time
	Lines           []InvoiceLineRequest
	TaxConfigID     *uuid.UUID
	TaxRate         decimal.Decimal
	Freight         decimal.Decimal
	Narration       string
	PurchaseOrderID *uuid.UUID
}

type InvoiceLineResponse struct {
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	Kind            ledger.InvoiceKind    `json:"kind"`
	InvoiceNumber   string                `json:"invoice_number"`
	PartyAccountID  uuid.UUID             `json:"party_account_id"`
	PartyName       string                `json:"party_name"`
	Date            time.Time             `json:"date"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	Freight         decimal.Decimal       `json:"freight"`
	Total           decimal.Decimal       `json:"total"`
	Narration       string                `json:"narration"`
	PurchaseOrderID *uuid.UUID            `json:"purchase_order_id,omitempty"`
	Lines           []InvoiceLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"created_at"`
}

// InvoiceService posts sales and purchase invoices: the invoice row, its
// balanced voucher, the stock movements, and for purchases the order
// progress.
type InvoiceService struct {
	uow      ledger.UnitOfWork
	guard    *PeriodGuard
	tax      TaxLookup
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewInvoiceService(uow ledger.UnitOfWork, guard *PeriodGuard, tax TaxLookup, activity ActivityRecorder, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{uow: uow, guard: guard, tax: tax, activity: activity, logger: logger}
}

// CreateSalesInvoice posts an SI: debit the customer for the grand total,
// credit the Sales account, and record one stock-out row per line.
func (s *InvoiceService) CreateSalesInvoice(ctx context.Context, tenantID, actorID uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	return s.createInvoice(ctx, tenantID, actorID, ledger.InvoiceKindSales, req)
}

// CreatePurchaseInvoice posts a PI: debit the Inventory account, credit the
// supplier, record stock-in rows, and advance any linked purchase order.
func (s *InvoiceService) CreatePurchaseInvoice(ctx context.Context, tenantID, actorID uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	return s.createInvoice(ctx, tenantID, actorID, ledger.InvoiceKindPurchase, req)
}

func (s *InvoiceService) createInvoice(ctx context.Context, tenantID, actorID uuid.UUID, kind ledger.InvoiceKind, req InvoiceRequest) (*InvoiceResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	if req.PartyAccountID == uuid.Nil || req.Date.IsZero() {
		return nil, ErrAccountDateRequired
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	taxRate, err := s.resolveTaxRate(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *InvoiceResponse
	err = s.uow.Do(ctx, func(repos ledger.Repositories) error {
		party, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, req.PartyAccountID)
		if err != nil {
			return err
		}
		if party == nil {
			return ErrAccountNotFound
		}
		if kind == ledger.InvoiceKindSales && party.PartyType != ledger.PartyTypeCustomer {
			return ErrSalesInvoiceParty
		}
		if kind == ledger.InvoiceKindPurchase && party.PartyType != ledger.PartyTypeSupplier {
			return ErrPurchaseInvoiceParty
		}

		number, err := nextInvoiceNumber(ctx, repos.Invoices(), tenantID, kind)
		if err != nil {
			return err
		}

		lines := make([]ledger.LineInput, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, ledger.LineInput{ProductName: l.ProductName, Quantity: l.Quantity, Rate: l.Rate})
		}
		invoice, err := ledger.NewInvoice(tenantID, kind, number, party.ID, req.Date, lines, taxRate, req.Freight, req.Narration)
		if err != nil {
			return err
		}
		invoice.SetCreatedBy(actorID)

		counter, err := s.counterpartAccount(ctx, repos, tenantID, actorID, kind)
		if err != nil {
			return err
		}

		if kind == ledger.InvoiceKindPurchase && req.PurchaseOrderID != nil {
			if err := s.advancePurchaseOrder(ctx, repos, tenantID, invoice, *req.PurchaseOrderID); err != nil {
				return err
			}
		}

		if err := repos.Invoices().Save(ctx, invoice); err != nil {
			return err
		}
		if err := s.postInvoiceVoucher(ctx, repos, tenantID, actorID, invoice, party, counter); err != nil {
			return err
		}
		if err := s.recordStockMovements(ctx, repos, tenantID, actorID, invoice); err != nil {
			return err
		}

		resp = invoiceResponse(invoice, party.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionInvoiceCreated, resp.InvoiceNumber)
	s.logger.Info("invoice posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", resp.InvoiceNumber),
		zap.String("kind", string(resp.Kind)))
	return resp, nil
}

// DeleteInvoice removes an invoice and unwinds everything it posted: the
// voucher with its entries, the stock rows, and for purchases the order
// progress it advanced.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, tenantID, actorID, invoiceID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	existing, err := s.uow.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvoiceNotFound
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, existing.Date); err != nil {
		return err
	}

	var number string
	err = s.uow.Do(ctx, func(repos ledger.Repositories) error {
		invoice, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return ErrInvoiceNotFound
		}

		voucher, err := repos.Vouchers().FindByNumberForTenant(ctx, tenantID, invoice.InvoiceNumber)
		if err != nil {
			return err
		}
		if voucher != nil {
			if err := repos.Vouchers().DeleteWithEntries(ctx, tenantID, voucher.ID); err != nil {
				return err
			}
		}
		if err := repos.InventoryTransactions().DeleteByReferenceForTenant(ctx, tenantID, invoice.InvoiceNumber); err != nil {
			return err
		}

		if invoice.Kind == ledger.InvoiceKindPurchase && invoice.PurchaseOrderID != nil {
			order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, *invoice.PurchaseOrderID)
			if err != nil {
				return err
			}
			if order != nil {
				for _, line := range invoice.Lines {
					order.UnrecordInvoiced(line.ProductName, line.Quantity)
				}
				if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
					return err
				}
			}
		}

		number = invoice.InvoiceNumber
		return repos.Invoices().DeleteWithLines(ctx, tenantID, invoice.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionInvoiceDeleted, number)
	s.logger.Info("invoice deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", number))
	return nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var resp *InvoiceResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		invoice, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return ErrInvoiceNotFound
		}
		resp = invoiceResponse(invoice, s.partyName(ctx, repos, tenantID, invoice.PartyAccountID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, kind ledger.InvoiceKind, dateRange shared.DateRange) ([]InvoiceResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var items []InvoiceResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		invoices, err := repos.Invoices().FindAllForTenant(ctx, tenantID, kind, dateRange)
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string)
		items = make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			inv := &invoices[i]
			if _, ok := names[inv.PartyAccountID]; !ok {
				names[inv.PartyAccountID] = s.partyName(ctx, repos, tenantID, inv.PartyAccountID)
			}
			items = append(items, *invoiceResponse(inv, names[inv.PartyAccountID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *InvoiceService) resolveTaxRate(ctx context.Context, req InvoiceRequest) (decimal.Decimal, error) {
	if req.TaxConfigID == nil || *req.TaxConfigID == uuid.Nil || s.tax == nil {
		return req.TaxRate, nil
	}
	cfg, err := s.tax.GetTaxConfig(ctx, *req.TaxConfigID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve tax config: %w", err)
	}
	return cfg.TaxRate, nil
}

// counterpartAccount returns the non-party leg of the invoice voucher: the
// Sales account for sales invoices, the Inventory account for purchases.
// Both are created on first use.
func (s *InvoiceService) counterpartAccount(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, kind ledger.InvoiceKind) (*ledger.Account, error) {
	if kind == ledger.InvoiceKindSales {
		return ensureNamedAccount(ctx, repos, tenantID, actorID, ledger.SalesAccountName, ledger.AccountTypeIncome)
	}
	return ensureNamedAccount(ctx, repos, tenantID, actorID, ledger.InventoryAccountName, ledger.AccountTypeAsset)
}

func (s *InvoiceService) postInvoiceVoucher(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, invoice *ledger.Invoice, party, counter *ledger.Account) error {
	partyAmount := invoice.Total
	if invoice.Kind == ledger.InvoiceKindPurchase {
		partyAmount = invoice.Total.Neg()
	}
	voucher, err := ledger.NewVoucher(tenantID, invoice.InvoiceNumber, voucherTypeFor(invoice.Kind), invoice.Date, invoice.Narration, []ledger.EntryInput{
		{AccountID: party.ID, Amount: partyAmount},
		{AccountID: counter.ID, Amount: partyAmount.Neg()},
	})
	if err != nil {
		return err
	}
	voucher.SetCreatedBy(actorID)
	return repos.Vouchers().Create(ctx, voucher)
}

func (s *InvoiceService) recordStockMovements(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, invoice *ledger.Invoice) error {
	direction := invoice.StockDirection()
	for _, line := range invoice.Lines {
		movement, err := ledger.NewInventoryTransaction(tenantID, line.ProductName, line.Quantity.Mul(direction), line.Rate, invoice.InvoiceNumber, invoice.Date)
		if err != nil {
			return err
		}
		movement.SetCreatedBy(actorID)
		if err := repos.InventoryTransactions().Save(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *InvoiceService) advancePurchaseOrder(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, invoice *ledger.Invoice, orderID uuid.UUID) error {
	order, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrPurchaseOrderNotFound
	}
	for _, line := range invoice.Lines {
		if err := order.RecordInvoiced(line.ProductName, line.Quantity); err != nil {
			return err
		}
	}
	if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
		return err
	}
	return invoice.LinkPurchaseOrder(order.ID)
}

func (s *InvoiceService) partyName(ctx context.Context, repos ledger.Repositories, tenantID, accountID uuid.UUID) string {
	account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil || account == nil {
		s.logger.Warn("invoice party account missing", zap.String("account_id", accountID.String()))
		return ""
	}
	return account.Name
}

func voucherTypeFor(kind ledger.InvoiceKind) ledger.VoucherType {
	if kind == ledger.InvoiceKindPurchase {
		return ledger.VoucherTypePI
	}
	return ledger.VoucherTypeSI
}

func nextInvoiceNumber(ctx context.Context, invoices ledger.InvoiceRepository, tenantID uuid.UUID, kind ledger.InvoiceKind) (string, error) {
	existing, err := invoices.ExistingNumbers(ctx, tenantID, kind)
	if err != nil {
		return "", err
	}
	prefix := string(voucherTypeFor(kind))
	return fmt.Sprintf("%s-%d", prefix, ledger.NextNumberFromExisting(existing, prefix)), nil
}

// ensureNamedAccount finds one of the well-known accounts by name, creating
// it with a name-derived code when the tenant does not have it yet.
func ensureNamedAccount(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, name string, accountType ledger.AccountType) (*ledger.Account, error) {
	account, err := repos.Accounts().FindByNameForTenant(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	code := strings.ToUpper(strings.ReplaceAll(name, " ", "-"))
	account, err = ledger.NewAccount(tenantID, code, name, accountType, ledger.PartyTypeGeneral, decimal.Zero, decimal.Zero)
	if err != nil {
		return nil, err
	}
	account.SetCreatedBy(actorID)
	if err := repos.Accounts().Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func invoiceResponse(invoice *ledger.Invoice, partyName string) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(invoice.Lines))
	for _, l := range invoice.Lines {
		lines = append(lines, InvoiceLineResponse{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			LineTotal:   l.LineTotal,
		})
	}
	return &InvoiceResponse{
		ID:              invoice.ID,
		Kind:            invoice.Kind,
		InvoiceNumber:   invoice.InvoiceNumber,
		PartyAccountID:  invoice.PartyAccountID,
		PartyName:       partyName,
		Date:            invoice.Date,
		Subtotal:        invoice.Subtotal,
		TaxAmount:       invoice.TaxAmount,
		Freight:         invoice.Freight,
		Total:           invoice.Total,
		Narration:       invoice.Narration,
		PurchaseOrderID: invoice.PurchaseOrderID,
		Lines:           lines,
		CreatedAt:       invoice.CreatedAt,
	}
}
