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

var ErrStatementNotFound = shared.NewDomainError("STATEMENT_NOT_FOUND", "Bank statement not found")

type BankAccountResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountNo   string          `json:"account_no"`
	BankName    string          `json:"bank_name"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

type BankStatementResponse struct {
	ID            uuid.UUID       `json:"id"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	ReferenceNo   string          `json:"reference_no"`
	IsReconciled  bool            `json:"is_reconciled"`
}

// BankService materializes bank accounts from BANKS-type chart nodes and
// serves their cached balances and statement history.
type BankService struct {
	uow      ledger.UnitOfWork
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewBankService(uow ledger.UnitOfWork, activity ActivityRecorder, logger *zap.Logger) *BankService {
	return &BankService{uow: uow, activity: activity, logger: logger}
}

// ResolveOrCreate returns the bank record for a BANKS-type chart account,
// materializing it on first use. Repeated calls return the same record; the
// cached balance is never re-seeded.
func (s *BankService) ResolveOrCreate(ctx context.Context, tenantID, actorID, accountID uuid.UUID) (*BankAccountResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var resp *BankAccountResponse
	created := false
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		bank, err := repos.BankAccounts().FindByAccountIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if bank == nil {
			account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, accountID)
			if err != nil {
				return err
			}
			bank, err = ledger.MaterializeBankAccount(account)
			if err != nil {
				return err
			}
			bank.SetCreatedBy(actorID)
			if err := repos.BankAccounts().Save(ctx, bank); err != nil {
				return err
			}
			created = true
		}
		resp = bankAccountResponse(bank)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.activity.Record(ctx, tenantID, actorID, ActionBankAccountCreated, resp.AccountNo)
		s.logger.Info("bank account materialized",
			zap.String("tenant_id", tenantID.String()),
			zap.String("account_no", resp.AccountNo))
	}
	return resp, nil
}

func (s *BankService) GetBankAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) (*BankAccountResponse, error) {
	var resp *BankAccountResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		bank, err := repos.BankAccounts().FindByIDForTenant(ctx, tenantID, bankAccountID)
		if err != nil {
			return err
		}
		if bank == nil {
			return ErrBankAccountNotFound
		}
		resp = bankAccountResponse(bank)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *BankService) ListBankAccounts(ctx context.Context, tenantID uuid.UUID) ([]BankAccountResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var items []BankAccountResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		banks, err := repos.BankAccounts().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		items = make([]BankAccountResponse, 0, len(banks))
		for i := range banks {
			items = append(items, *bankAccountResponse(&banks[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DerivedBalance recomputes the bank balance from the ledger: the linked
// chart account's opening balance plus all posted entries. Drift against the
// cached counter indicates a posting path that skipped AdjustBalance.
func (s *BankService) DerivedBalance(ctx context.Context, tenantID, bankAccountID uuid.UUID) (decimal.Decimal, error) {
	var derived decimal.Decimal
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		bank, err := repos.BankAccounts().FindByIDForTenant(ctx, tenantID, bankAccountID)
		if err != nil {
			return err
		}
		if bank == nil {
			return ErrBankAccountNotFound
		}
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, bank.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrBankAccountNotFound
		}
		sum, err := repos.Vouchers().SumForAccount(ctx, tenantID, account.ID, shared.DateRange{})
		if err != nil {
			return err
		}
		derived = account.OpeningBalance().Add(sum)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return derived, nil
}

func (s *BankService) Statements(ctx context.Context, tenantID, bankAccountID uuid.UUID, dateRange shared.DateRange) ([]BankStatementResponse, error) {
	var items []BankStatementResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		statements, err := repos.BankStatements().FindForBankAccount(ctx, tenantID, bankAccountID, dateRange)
		if err != nil {
			return err
		}
		items = make([]BankStatementResponse, 0, len(statements))
		for i := range statements {
			items = append(items, *statementResponse(&statements[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReconcileStatements marks the given statement lines as matched against the
// ledger. Already reconciled lines are left untouched.
func (s *BankService) ReconcileStatements(ctx context.Context, tenantID, actorID uuid.UUID, statementIDs []uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		for _, id := range statementIDs {
			statement, err := repos.BankStatements().FindByIDForTenant(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if statement == nil {
				return ErrStatementNotFound
			}
			statement.Reconcile()
			if err := repos.BankStatements().Save(ctx, statement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionStatementsReconciled, "")
	return nil
}

func bankAccountResponse(bank *ledger.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		ID:          bank.ID,
		AccountID:   bank.AccountID,
		AccountNo:   bank.AccountNo,
		BankName:    bank.BankName,
		AccountName: bank.AccountName,
		Balance:     bank.Balance,
		CreatedAt:   bank.CreatedAt,
	}
}

func statementResponse(statement *ledger.BankStatement) *BankStatementResponse {
	return &BankStatementResponse{
		ID:            statement.ID,
		BankAccountID: statement.BankAccountID,
		Date:          statement.Date,
		Description:   statement.Description,
		Amount:        statement.Amount,
		ReferenceNo:   statement.ReferenceNo,
		IsReconciled:  statement.IsReconciled,
	}
}
