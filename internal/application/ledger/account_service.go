package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

var (
	ErrAccountCodeTaken  = shared.NewDomainError("ACCOUNT_CODE_TAKEN", "Account code already exists")
	ErrAccountReferenced = shared.NewDomainError("ACCOUNT_REFERENCED", "Account has voucher entries and cannot be deleted")
)

type AccountRequest struct {
	Code          string
	Name          string
	Type          ledger.AccountType
	PartyType     ledger.PartyType
	OpeningDebit  decimal.Decimal
	OpeningCredit decimal.Decimal
}

type AccountResponse struct {
	ID            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Type          ledger.AccountType `json:"type"`
	PartyType     ledger.PartyType   `json:"party_type"`
	OpeningDebit  decimal.Decimal    `json:"opening_debit"`
	OpeningCredit decimal.Decimal    `json:"opening_credit"`
	IsDeleted     bool               `json:"is_deleted"`
	CreatedAt     time.Time          `json:"created_at"`
}

// LedgerLineResponse is one account ledger row with its running balance.
type LedgerLineResponse struct {
	VoucherID     uuid.UUID          `json:"voucher_id"`
	VoucherNumber string             `json:"voucher_number"`
	VoucherType   ledger.VoucherType `json:"voucher_type"`
	Date          time.Time          `json:"date"`
	Narration     string             `json:"narration"`
	Debit         decimal.Decimal    `json:"debit"`
	Credit        decimal.Decimal    `json:"credit"`
	Balance       decimal.Decimal    `json:"balance"`
}

type AccountLedgerResponse struct {
	Account        AccountResponse      `json:"account"`
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	ClosingBalance decimal.Decimal      `json:"closing_balance"`
	Lines          []LedgerLineResponse `json:"lines"`
}

// AccountService manages the chart of accounts and derives account balances
// from posted entries.
type AccountService struct {
	uow      ledger.UnitOfWork
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewAccountService(uow ledger.UnitOfWork, activity ActivityRecorder, logger *zap.Logger) *AccountService {
	return &AccountService{uow: uow, activity: activity, logger: logger}
}

// CreateAccount adds a chart node. Codes are unique per tenant among live
// accounts.
func (s *AccountService) CreateAccount(ctx context.Context, tenantID, actorID uuid.UUID, req AccountRequest) (*AccountResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var resp *AccountResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		existing, err := repos.Accounts().FindByCodeForTenant(ctx, tenantID, req.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAccountCodeTaken
		}
		account, err := ledger.NewAccount(tenantID, req.Code, req.Name, req.Type, req.PartyType, req.OpeningDebit, req.OpeningCredit)
		if err != nil {
			return err
		}
		account.SetCreatedBy(actorID)
		if err := repos.Accounts().Save(ctx, account); err != nil {
			return err
		}
		resp = accountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionAccountCreated, resp.Code)
	s.logger.Info("account created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", resp.Code))
	return resp, nil
}

// RenameAccount updates the account display name. Code and classification
// are immutable once entries may reference them.
func (s *AccountService) RenameAccount(ctx context.Context, tenantID, actorID, accountID uuid.UUID, name string) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		if err := account.Rename(name); err != nil {
			return err
		}
		if err := repos.Accounts().Save(ctx, account); err != nil {
			return err
		}
		resp = accountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAccount soft-deletes a chart node. Accounts referenced by any
// voucher entry stay; history depends on them.
func (s *AccountService) DeleteAccount(ctx context.Context, tenantID, actorID, accountID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	var code string
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		referenced, err := repos.Vouchers().HasEntriesForAccount(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if referenced {
			return ErrAccountReferenced
		}
		if err := account.SoftDelete(actorID); err != nil {
			return err
		}
		code = account.Code
		return repos.Accounts().Save(ctx, account)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionAccountDeleted, code)
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	var resp *AccountResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		resp = accountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) (*shared.Paginated[AccountResponse], error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var page shared.Paginated[AccountResponse]
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		accounts, err := repos.Accounts().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.Accounts().CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		items := make([]AccountResponse, 0, len(accounts))
		for i := range accounts {
			items = append(items, *accountResponse(&accounts[i]))
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ClosingBalance derives the account balance up to the end of the range:
// opening balance plus the signed sum of posted entries. The chart is the
// source of truth; no cached counter is consulted.
func (s *AccountService) ClosingBalance(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		sum, err := repos.Vouchers().SumForAccount(ctx, tenantID, accountID, dateRange)
		if err != nil {
			return err
		}
		balance = account.OpeningBalance().Add(sum)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Ledger lists an account's entries inside the range with a running balance
// seeded from the opening balance plus everything posted before the range.
func (s *AccountService) Ledger(ctx context.Context, tenantID, accountID uuid.UUID, dateRange shared.DateRange) (*AccountLedgerResponse, error) {
	var resp *AccountLedgerResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		opening := account.OpeningBalance()
		if dateRange.From != nil {
			before := *dateRange.From
			prior, err := repos.Vouchers().SumForAccount(ctx, tenantID, accountID, shared.DateRange{To: dayBefore(before)})
			if err != nil {
				return err
			}
			opening = opening.Add(prior)
		}

		rows, err := repos.Vouchers().LedgerRowsForAccount(ctx, tenantID, accountID, dateRange)
		if err != nil {
			return err
		}

		running := opening
		lines := make([]LedgerLineResponse, 0, len(rows))
		for _, row := range rows {
			running = running.Add(row.Amount)
			line := LedgerLineResponse{
				VoucherID:     row.VoucherID,
				VoucherNumber: row.VoucherNumber,
				VoucherType:   row.VoucherType,
				Date:          row.Date,
				Narration:     row.Narration,
				Balance:       running,
			}
			if row.Amount.Sign() >= 0 {
				line.Debit = row.Amount
			} else {
				line.Credit = row.Amount.Neg()
			}
			lines = append(lines, line)
		}

		resp = &AccountLedgerResponse{
			Account:        *accountResponse(account),
			OpeningBalance: opening,
			ClosingBalance: running,
			Lines:          lines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func dayBefore(t time.Time) *time.Time {
	d := t.AddDate(0, 0, -1)
	return &d
}

func accountResponse(account *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:            account.ID,
		Code:          account.Code,
		Name:          account.Name,
		Type:          account.Type,
		PartyType:     account.PartyType,
		OpeningDebit:  account.OpeningDebit,
		OpeningCredit: account.OpeningCredit,
		IsDeleted:     account.IsDeleted(),
		CreatedAt:     account.CreatedAt,
	}
}
