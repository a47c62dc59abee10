package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

var (
	ErrSaleReturnNotFound = shared.NewDomainError("SALE_RETURN_NOT_FOUND", "Sale return not found")
	ErrSaleReturnParty    = shared.NewDomainError("INVALID_PARTY", "Sale return party must be a customer")
)

type SaleReturnRequest struct {
	CustomerAccountID uuid.UUID
	Date              time.Time
	Items             []InvoiceLineRequest
	Freight           decimal.Decimal
	Narration         string
}

type SaleReturnResponse struct {
	ID                uuid.UUID             `json:"id"`
	ReturnNumber      string                `json:"return_number"`
	CustomerAccountID uuid.UUID             `json:"customer_account_id"`
	CustomerName      string                `json:"customer_name"`
	Date              time.Time             `json:"date"`
	Freight           decimal.Decimal       `json:"freight"`
	Total             decimal.Decimal       `json:"total"`
	Narration         string                `json:"narration"`
	Items             []InvoiceLineResponse `json:"items"`
	CreatedAt         time.Time             `json:"created_at"`
}

// SaleReturnService posts customer returns: the return row, the reversing
// voucher against the Sales Return account, and the stock-in movements.
type SaleReturnService struct {
	uow      ledger.UnitOfWork
	guard    *PeriodGuard
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewSaleReturnService(uow ledger.UnitOfWork, guard *PeriodGuard, activity ActivityRecorder, logger *zap.Logger) *SaleReturnService {
	return &SaleReturnService{uow: uow, guard: guard, activity: activity, logger: logger}
}

// CreateSaleReturn posts an SR: debit the Sales Return account, credit the
// customer, and record one stock-in row per returned item.
func (s *SaleReturnService) CreateSaleReturn(ctx context.Context, tenantID, actorID uuid.UUID, req SaleReturnRequest) (*SaleReturnResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	if req.CustomerAccountID == uuid.Nil || req.Date.IsZero() {
		return nil, ErrAccountDateRequired
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	var resp *SaleReturnResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		customer, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, req.CustomerAccountID)
		if err != nil {
			return err
		}
		if customer == nil {
			return ErrAccountNotFound
		}
		if !customer.IsCustomer() {
			return ErrSaleReturnParty
		}

		number, err := nextReturnNumber(ctx, repos.SaleReturns(), tenantID)
		if err != nil {
			return err
		}

		items := make([]ledger.LineInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, ledger.LineInput{ProductName: it.ProductName, Quantity: it.Quantity, Rate: it.Rate})
		}
		saleReturn, err := ledger.NewSaleReturn(tenantID, number, customer.ID, req.Date, items, req.Freight, req.Narration)
		if err != nil {
			return err
		}
		saleReturn.SetCreatedBy(actorID)
		if err := repos.SaleReturns().Save(ctx, saleReturn); err != nil {
			return err
		}

		returnAccount, err := ensureNamedAccount(ctx, repos, tenantID, actorID, ledger.SalesReturnAccountName, ledger.AccountTypeIncome)
		if err != nil {
			return err
		}
		voucher, err := ledger.NewVoucher(tenantID, number, ledger.VoucherTypeSR, req.Date, req.Narration, []ledger.EntryInput{
			{AccountID: returnAccount.ID, Amount: saleReturn.Total},
			{AccountID: customer.ID, Amount: saleReturn.Total.Neg()},
		})
		if err != nil {
			return err
		}
		voucher.SetCreatedBy(actorID)
		if err := repos.Vouchers().Create(ctx, voucher); err != nil {
			return err
		}

		for _, item := range saleReturn.Items {
			movement, err := ledger.NewInventoryTransaction(tenantID, item.ProductName, item.Quantity, item.Rate, number, req.Date)
			if err != nil {
				return err
			}
			movement.SetCreatedBy(actorID)
			if err := repos.InventoryTransactions().Save(ctx, movement); err != nil {
				return err
			}
		}

		resp = saleReturnResponse(saleReturn, customer.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionSaleReturnCreated, resp.ReturnNumber)
	s.logger.Info("sale return posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_number", resp.ReturnNumber))
	return resp, nil
}

// DeleteSaleReturn removes a return and unwinds its voucher and stock rows.
func (s *SaleReturnService) DeleteSaleReturn(ctx context.Context, tenantID, actorID, returnID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	existing, err := s.uow.SaleReturns().FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSaleReturnNotFound
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, existing.Date); err != nil {
		return err
	}

	var number string
	err = s.uow.Do(ctx, func(repos ledger.Repositories) error {
		saleReturn, err := repos.SaleReturns().FindByIDForTenant(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if saleReturn == nil {
			return ErrSaleReturnNotFound
		}

		voucher, err := repos.Vouchers().FindByNumberForTenant(ctx, tenantID, saleReturn.ReturnNumber)
		if err != nil {
			return err
		}
		if voucher != nil {
			if err := repos.Vouchers().DeleteWithEntries(ctx, tenantID, voucher.ID); err != nil {
				return err
			}
		}
		if err := repos.InventoryTransactions().DeleteByReferenceForTenant(ctx, tenantID, saleReturn.ReturnNumber); err != nil {
			return err
		}

		number = saleReturn.ReturnNumber
		return repos.SaleReturns().DeleteWithItems(ctx, tenantID, saleReturn.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionSaleReturnDeleted, number)
	return nil
}

func (s *SaleReturnService) GetSaleReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*SaleReturnResponse, error) {
	var resp *SaleReturnResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		saleReturn, err := repos.SaleReturns().FindByIDForTenant(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if saleReturn == nil {
			return ErrSaleReturnNotFound
		}
		resp = saleReturnResponse(saleReturn, s.customerName(ctx, repos, tenantID, saleReturn.CustomerAccountID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SaleReturnService) ListSaleReturns(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) ([]SaleReturnResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var items []SaleReturnResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		returns, err := repos.SaleReturns().FindAllForTenant(ctx, tenantID, dateRange)
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string)
		items = make([]SaleReturnResponse, 0, len(returns))
		for i := range returns {
			sr := &returns[i]
			if _, ok := names[sr.CustomerAccountID]; !ok {
				names[sr.CustomerAccountID] = s.customerName(ctx, repos, tenantID, sr.CustomerAccountID)
			}
			items = append(items, *saleReturnResponse(sr, names[sr.CustomerAccountID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SaleReturnService) customerName(ctx context.Context, repos ledger.Repositories, tenantID, accountID uuid.UUID) string {
	account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil || account == nil {
		return ""
	}
	return account.Name
}

func nextReturnNumber(ctx context.Context, returns ledger.SaleReturnRepository, tenantID uuid.UUID) (string, error) {
	existing, err := returns.ExistingNumbers(ctx, tenantID)
	if err != nil {
		return "", err
	}
	prefix := string(ledger.VoucherTypeSR)
	return fmt.Sprintf("%s-%d", prefix, ledger.NextNumberFromExisting(existing, prefix)), nil
}

func saleReturnResponse(saleReturn *ledger.SaleReturn, customerName string) *SaleReturnResponse {
	items := make([]InvoiceLineResponse, 0, len(saleReturn.Items))
	for _, it := range saleReturn.Items {
		items = append(items, InvoiceLineResponse{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			LineTotal:   it.LineTotal,
		})
	}
	return &SaleReturnResponse{
		ID:                saleReturn.ID,
		ReturnNumber:      saleReturn.ReturnNumber,
		CustomerAccountID: saleReturn.CustomerAccountID,
		CustomerName:      customerName,
		Date:              saleReturn.Date,
		Freight:           saleReturn.Freight,
		Total:             saleReturn.Total,
		Narration:         saleReturn.Narration,
		Items:             items,
		CreatedAt:         saleReturn.CreatedAt,
	}
}
