package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/domain/shared/valueobject"
)

// Exact error values returned by voucher validation. Handlers map parse
// failures onto the same values so the API surface stays uniform.
var (
	ErrCompanyRequired     = shared.NewDomainError("COMPANY_REQUIRED", "Company required")
	ErrAccountDateRequired = shared.NewDomainError("VALIDATION_ERROR", "Account & date required")
	ErrInvalidAmount       = shared.NewDomainError("VALIDATION_ERROR", "Valid amount required")
	ErrBankAccountRequired = shared.NewDomainError("VALIDATION_ERROR", "Bank account required for bank payment")
	ErrCPVPartyNotAllowed  = shared.NewDomainError("INVALID_PARTY", "CPV sirf Supplier/Bank/Expense ke liye hota hai")
	ErrCRVPartyNotAllowed  = shared.NewDomainError("INVALID_PARTY", "CRV sirf Customer ke liye hota hai")
	ErrBankAccountNotFound = shared.NewDomainError("BANK_ACCOUNT_NOT_FOUND", "Bank account not found")
	ErrCashAccountNotFound = shared.NewDomainError("CASH_ACCOUNT_NOT_FOUND", "Cash account not found")
	ErrVoucherNotFound     = shared.NewDomainError("VOUCHER_NOT_FOUND", "Voucher not found")
	ErrAccountNotFound     = shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
)

// CashVoucherRequest carries the fields shared by cash payment (CPV) and
// cash receipt (CRV) posting.
type CashVoucherRequest struct {
	AccountID     uuid.UUID
	PaymentMode   ledger.PaymentMode
	BankAccountID *uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Narration     string
	CurrencyCode  string
	ExchangeRate  decimal.Decimal
}

// JournalEntryRequest is one signed leg of a journal voucher.
type JournalEntryRequest struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

type JournalRequest struct {
	Date      time.Time
	Narration string
	Entries   []JournalEntryRequest
}

// EntryResponse is an entry leg with its account resolved for display.
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type VoucherResponse struct {
	ID            uuid.UUID          `json:"id"`
	VoucherNumber string             `json:"voucher_number"`
	Type          ledger.VoucherType `json:"type"`
	Date          time.Time          `json:"date"`
	Narration     string             `json:"narration"`
	Amount        decimal.Decimal    `json:"amount"`
	Entries       []EntryResponse    `json:"entries"`
	CreatedAt     time.Time          `json:"created_at"`
}

// PostingService is the write path for cash payment, cash receipt and
// journal vouchers, including their bank balance side effects.
type PostingService struct {
	uow      ledger.UnitOfWork
	guard    *PeriodGuard
	currency CurrencyRecorder
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewPostingService(uow ledger.UnitOfWork, guard *PeriodGuard, currency CurrencyRecorder, activity ActivityRecorder, logger *zap.Logger) *PostingService {
	if currency == nil {
		currency = NoopCurrencyRecorder{}
	}
	return &PostingService{uow: uow, guard: guard, currency: currency, activity: activity, logger: logger}
}

func validateCashVoucher(tenantID uuid.UUID, req CashVoucherRequest) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	if req.AccountID == uuid.Nil || req.Date.IsZero() {
		return ErrAccountDateRequired
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if req.PaymentMode == ledger.PaymentModeBank && (req.BankAccountID == nil || *req.BankAccountID == uuid.Nil) {
		return ErrBankAccountRequired
	}
	return nil
}

// CreateCashPayment posts a CPV: debit the payee, credit the cash or bank
// account the money left from.
func (s *PostingService) CreateCashPayment(ctx context.Context, tenantID, actorID uuid.UUID, req CashVoucherRequest) (*VoucherResponse, error) {
	return s.createCashVoucher(ctx, tenantID, actorID, ledger.VoucherTypeCPV, req)
}

// CreateCashReceipt posts a CRV: debit the cash or bank account the money
// arrived into, credit the customer.
func (s *PostingService) CreateCashReceipt(ctx context.Context, tenantID, actorID uuid.UUID, req CashVoucherRequest) (*VoucherResponse, error) {
	return s.createCashVoucher(ctx, tenantID, actorID, ledger.VoucherTypeCRV, req)
}

func (s *PostingService) createCashVoucher(ctx context.Context, tenantID, actorID uuid.UUID, vtype ledger.VoucherType, req CashVoucherRequest) (*VoucherResponse, error) {
	if err := validateCashVoucher(tenantID, req); err != nil {
		return nil, err
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	var resp *VoucherResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		party, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, req.AccountID)
		if err != nil {
			return err
		}
		if party == nil {
			return ErrAccountNotFound
		}
		if err := checkPartyEligibility(vtype, party); err != nil {
			return err
		}

		paymentAccount, bank, err := s.resolvePaymentSide(ctx, repos, tenantID, actorID, req.PaymentMode, req.BankAccountID)
		if err != nil {
			return err
		}

		number, err := nextVoucherNumber(ctx, repos.Vouchers(), tenantID, vtype)
		if err != nil {
			return err
		}

		partySign, paySign := entrySigns(vtype)
		voucher, err := ledger.NewVoucher(tenantID, number, vtype, req.Date, req.Narration, []ledger.EntryInput{
			{AccountID: party.ID, Amount: req.Amount.Mul(partySign)},
			{AccountID: paymentAccount.ID, Amount: req.Amount.Mul(paySign)},
		})
		if err != nil {
			return err
		}
		voucher.SetCreatedBy(actorID)
		if err := repos.Vouchers().Create(ctx, voucher); err != nil {
			return err
		}

		if bank != nil {
			if err := s.applyBankEffect(ctx, repos, tenantID, actorID, bank, voucher, req.Amount.Mul(paySign)); err != nil {
				return err
			}
		}

		resp = s.buildResponse(ctx, repos, tenantID, voucher)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCurrency(ctx, tenantID, resp.VoucherNumber, req)
	s.activity.Record(ctx, tenantID, actorID, ActionVoucherCreated, resp.VoucherNumber)
	s.logger.Info("voucher posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", resp.VoucherNumber),
		zap.String("type", string(vtype)))
	return resp, nil
}

// CreateJournal posts a free-form balanced voucher.
func (s *PostingService) CreateJournal(ctx context.Context, tenantID, actorID uuid.UUID, req JournalRequest) (*VoucherResponse, error) {
	if err := validateJournal(tenantID, req); err != nil {
		return nil, err
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	var resp *VoucherResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		inputs, err := s.resolveJournalEntries(ctx, repos, tenantID, req.Entries)
		if err != nil {
			return err
		}
		number, err := nextVoucherNumber(ctx, repos.Vouchers(), tenantID, ledger.VoucherTypeJV)
		if err != nil {
			return err
		}
		voucher, err := ledger.NewVoucher(tenantID, number, ledger.VoucherTypeJV, req.Date, req.Narration, inputs)
		if err != nil {
			return err
		}
		voucher.SetCreatedBy(actorID)
		if err := repos.Vouchers().Create(ctx, voucher); err != nil {
			return err
		}
		resp = s.buildResponse(ctx, repos, tenantID, voucher)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionVoucherCreated, resp.VoucherNumber)
	s.logger.Info("journal posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", resp.VoucherNumber))
	return resp, nil
}

// UpdateJournal replaces the entry set and header of an existing JV.
func (s *PostingService) UpdateJournal(ctx context.Context, tenantID, actorID, voucherID uuid.UUID, req JournalRequest) (*VoucherResponse, error) {
	if err := validateJournal(tenantID, req); err != nil {
		return nil, err
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	var resp *VoucherResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		voucher, err := repos.Vouchers().FindByIDForTenant(ctx, tenantID, voucherID)
		if err != nil {
			return err
		}
		if voucher == nil {
			return ErrVoucherNotFound
		}
		if voucher.Type != ledger.VoucherTypeJV {
			return shared.NewDomainError("INVALID_VOUCHER_TYPE", "Not a journal voucher")
		}
		inputs, err := s.resolveJournalEntries(ctx, repos, tenantID, req.Entries)
		if err != nil {
			return err
		}
		if err := voucher.SetHeader(req.Date, req.Narration); err != nil {
			return err
		}
		if err := voucher.ReplaceEntries(inputs); err != nil {
			return err
		}
		if err := repos.Vouchers().UpdateHeader(ctx, voucher); err != nil {
			return err
		}
		if err := repos.Vouchers().ReplaceEntries(ctx, voucher); err != nil {
			return err
		}
		resp = s.buildResponse(ctx, repos, tenantID, voucher)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionVoucherUpdated, resp.VoucherNumber)
	return resp, nil
}

// UpdateCashVoucher edits a CPV or CRV. Prior bank effects are reversed in
// full and the new effects reapplied, so moving the payment between bank and
// cash, or between two bank accounts, leaves every cached balance consistent.
func (s *PostingService) UpdateCashVoucher(ctx context.Context, tenantID, actorID, voucherID uuid.UUID, req CashVoucherRequest) (*VoucherResponse, error) {
	if err := validateCashVoucher(tenantID, req); err != nil {
		return nil, err
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, req.Date); err != nil {
		return nil, err
	}

	var resp *VoucherResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		voucher, err := repos.Vouchers().FindByIDForTenant(ctx, tenantID, voucherID)
		if err != nil {
			return err
		}
		if voucher == nil {
			return ErrVoucherNotFound
		}
		if voucher.Type != ledger.VoucherTypeCPV && voucher.Type != ledger.VoucherTypeCRV {
			return shared.NewDomainError("INVALID_VOUCHER_TYPE", "Not a cash voucher")
		}

		party, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, req.AccountID)
		if err != nil {
			return err
		}
		if party == nil {
			return ErrAccountNotFound
		}
		if err := checkPartyEligibility(voucher.Type, party); err != nil {
			return err
		}

		if err := s.reverseBankEffect(ctx, repos, tenantID, voucher); err != nil {
			return err
		}

		paymentAccount, bank, err := s.resolvePaymentSide(ctx, repos, tenantID, actorID, req.PaymentMode, req.BankAccountID)
		if err != nil {
			return err
		}

		partySign, paySign := entrySigns(voucher.Type)
		if err := voucher.SetHeader(req.Date, req.Narration); err != nil {
			return err
		}
		if err := voucher.ReplaceEntries([]ledger.EntryInput{
			{AccountID: party.ID, Amount: req.Amount.Mul(partySign)},
			{AccountID: paymentAccount.ID, Amount: req.Amount.Mul(paySign)},
		}); err != nil {
			return err
		}
		if err := repos.Vouchers().UpdateHeader(ctx, voucher); err != nil {
			return err
		}
		if err := repos.Vouchers().ReplaceEntries(ctx, voucher); err != nil {
			return err
		}

		if bank != nil {
			if err := s.applyBankEffect(ctx, repos, tenantID, actorID, bank, voucher, req.Amount.Mul(paySign)); err != nil {
				return err
			}
		}

		resp = s.buildResponse(ctx, repos, tenantID, voucher)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCurrency(ctx, tenantID, resp.VoucherNumber, req)
	s.activity.Record(ctx, tenantID, actorID, ActionVoucherUpdated, resp.VoucherNumber)
	return resp, nil
}

// DeleteVoucher removes a CPV, CRV or JV and unwinds any bank balance and
// statement rows it produced. Invoice and return vouchers are deleted through
// their own services so stock and order linkage unwind together.
func (s *PostingService) DeleteVoucher(ctx context.Context, tenantID, actorID, voucherID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	existing, err := s.uow.Vouchers().FindByIDForTenant(ctx, tenantID, voucherID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrVoucherNotFound
	}
	if err := s.guard.EnsureOpen(ctx, tenantID, existing.Date); err != nil {
		return err
	}

	var number string
	err = s.uow.Do(ctx, func(repos ledger.Repositories) error {
		voucher, err := repos.Vouchers().FindByIDForTenant(ctx, tenantID, voucherID)
		if err != nil {
			return err
		}
		if voucher == nil {
			return ErrVoucherNotFound
		}
		switch voucher.Type {
		case ledger.VoucherTypeCPV, ledger.VoucherTypeCRV:
			if err := s.reverseBankEffect(ctx, repos, tenantID, voucher); err != nil {
				return err
			}
		case ledger.VoucherTypeJV:
		default:
			return shared.NewDomainError("INVALID_VOUCHER_TYPE", "Use the invoice or return endpoints to delete this voucher")
		}
		number = voucher.VoucherNumber
		return repos.Vouchers().DeleteWithEntries(ctx, tenantID, voucher.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, tenantID, actorID, ActionVoucherDeleted, number)
	s.logger.Info("voucher deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("voucher_number", number))
	return nil
}

// GetVoucher loads one voucher with account names resolved.
func (s *PostingService) GetVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (*VoucherResponse, error) {
	var resp *VoucherResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		voucher, err := repos.Vouchers().FindByIDForTenant(ctx, tenantID, voucherID)
		if err != nil {
			return err
		}
		if voucher == nil {
			return ErrVoucherNotFound
		}
		resp = s.buildResponse(ctx, repos, tenantID, voucher)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListVouchers pages through a tenant's vouchers, optionally narrowed by
// type and date range.
func (s *PostingService) ListVouchers(ctx context.Context, tenantID uuid.UUID, filter ledger.VoucherFilter) (*shared.Paginated[VoucherResponse], error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var page shared.Paginated[VoucherResponse]
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		vouchers, err := repos.Vouchers().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.Vouchers().CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		names := s.collectAccountNames(ctx, repos, tenantID, vouchers)
		items := make([]VoucherResponse, 0, len(vouchers))
		for i := range vouchers {
			items = append(items, *voucherResponse(&vouchers[i], names))
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// recordCurrency forwards the optional foreign-currency annotation. A
// failure here never fails the posting.
func (s *PostingService) recordCurrency(ctx context.Context, tenantID uuid.UUID, referenceNo string, req CashVoucherRequest) {
	if req.CurrencyCode == "" || req.CurrencyCode == string(valueobject.PKR) {
		return
	}
	if err := s.currency.RecordCurrencyTransaction(ctx, tenantID, referenceNo, req.CurrencyCode, req.ExchangeRate); err != nil {
		s.logger.Warn("failed to record currency transaction",
			zap.String("reference_no", referenceNo),
			zap.Error(err))
	}
}

// entrySigns returns the multipliers for the party and payment legs. A CPV
// debits the payee and credits the payment account; a CRV is the mirror.
func entrySigns(vtype ledger.VoucherType) (party, payment decimal.Decimal) {
	one := decimal.NewFromInt(1)
	if vtype == ledger.VoucherTypeCRV {
		return one.Neg(), one
	}
	return one, one.Neg()
}

func checkPartyEligibility(vtype ledger.VoucherType, party *ledger.Account) error {
	switch vtype {
	case ledger.VoucherTypeCPV:
		if party.IsCustomer() {
			return ErrCPVPartyNotAllowed
		}
	case ledger.VoucherTypeCRV:
		if !party.IsCustomer() {
			return ErrCRVPartyNotAllowed
		}
	}
	return nil
}

func validateJournal(tenantID uuid.UUID, req JournalRequest) error {
	if tenantID == uuid.Nil {
		return ErrCompanyRequired
	}
	if req.Date.IsZero() {
		return ErrAccountDateRequired
	}
	if len(req.Entries) < 2 {
		return shared.NewDomainError("VALIDATION_ERROR", "At least two entries required")
	}
	for _, e := range req.Entries {
		if e.AccountID == uuid.Nil {
			return ErrAccountDateRequired
		}
		if e.Amount.IsZero() {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (s *PostingService) resolveJournalEntries(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, entries []JournalEntryRequest) ([]ledger.EntryInput, error) {
	inputs := make([]ledger.EntryInput, 0, len(entries))
	for _, e := range entries {
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, e.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		inputs = append(inputs, ledger.EntryInput{AccountID: account.ID, Amount: e.Amount})
	}
	return inputs, nil
}

// resolvePaymentSide returns the ledger account the payment leg posts to and,
// for bank mode, the bank record. Bank accounts referenced by their chart
// account id are materialized on first use.
func (s *PostingService) resolvePaymentSide(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, mode ledger.PaymentMode, bankAccountID *uuid.UUID) (*ledger.Account, *ledger.BankAccount, error) {
	if mode != ledger.PaymentModeBank {
		cash, err := repos.Accounts().FindByNameForTenant(ctx, tenantID, ledger.CashAccountName)
		if err != nil {
			return nil, nil, err
		}
		if cash == nil {
			return nil, nil, ErrCashAccountNotFound
		}
		return cash, nil, nil
	}

	bank, err := repos.BankAccounts().FindByIDForTenant(ctx, tenantID, *bankAccountID)
	if err != nil {
		return nil, nil, err
	}
	if bank == nil {
		// The id may be a chart account rather than a bank account id.
		// A projection may already exist for it from an earlier posting.
		account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, *bankAccountID)
		if err != nil {
			return nil, nil, err
		}
		bank, err = repos.BankAccounts().FindByAccountIDForTenant(ctx, tenantID, *bankAccountID)
		if err != nil {
			return nil, nil, err
		}
		if bank != nil {
			if account == nil {
				return nil, nil, ErrBankAccountNotFound
			}
			return account, bank, nil
		}
		bank, err = ledger.MaterializeBankAccount(account)
		if err != nil {
			return nil, nil, err
		}
		bank.SetCreatedBy(actorID)
		if err := repos.BankAccounts().Save(ctx, bank); err != nil {
			return nil, nil, err
		}
		return account, bank, nil
	}

	account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, bank.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, ErrBankAccountNotFound
	}
	return account, bank, nil
}

// applyBankEffect adjusts the cached bank balance by the signed payment leg
// amount and writes the matching statement row keyed by voucher number.
func (s *PostingService) applyBankEffect(ctx context.Context, repos ledger.Repositories, tenantID, actorID uuid.UUID, bank *ledger.BankAccount, voucher *ledger.Voucher, signedAmount decimal.Decimal) error {
	if err := repos.BankAccounts().AdjustBalance(ctx, tenantID, bank.ID, signedAmount); err != nil {
		return err
	}
	statement, err := ledger.NewBankStatement(tenantID, bank.ID, voucher.Date, voucher.Narration, signedAmount, voucher.VoucherNumber)
	if err != nil {
		return err
	}
	statement.SetCreatedBy(actorID)
	return repos.BankStatements().Save(ctx, statement)
}

// reverseBankEffect undoes what applyBankEffect did for this voucher, if
// anything. Cash vouchers leave no statement rows and nothing happens.
func (s *PostingService) reverseBankEffect(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, voucher *ledger.Voucher) error {
	_, paySign := entrySigns(voucher.Type)
	for _, entry := range voucher.Entries {
		if entry.Amount.Sign() != paySign.Sign() {
			continue
		}
		bank, err := repos.BankAccounts().FindByAccountIDForTenant(ctx, tenantID, entry.AccountID)
		if err != nil {
			return err
		}
		if bank == nil {
			continue
		}
		if err := repos.BankAccounts().AdjustBalance(ctx, tenantID, bank.ID, entry.Amount.Neg()); err != nil {
			return err
		}
		if err := repos.BankStatements().DeleteByReferenceForTenant(ctx, tenantID, voucher.VoucherNumber); err != nil {
			return err
		}
	}
	return nil
}

func nextVoucherNumber(ctx context.Context, vouchers ledger.VoucherRepository, tenantID uuid.UUID, vtype ledger.VoucherType) (string, error) {
	existing, err := vouchers.ExistingNumbers(ctx, tenantID, vtype)
	if err != nil {
		return "", err
	}
	return ledger.FormatVoucherNumber(vtype, ledger.NextNumberFromExisting(existing, string(vtype))), nil
}

func (s *PostingService) buildResponse(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, voucher *ledger.Voucher) *VoucherResponse {
	names := s.collectAccountNames(ctx, repos, tenantID, []ledger.Voucher{*voucher})
	return voucherResponse(voucher, names)
}

func (s *PostingService) collectAccountNames(ctx context.Context, repos ledger.Repositories, tenantID uuid.UUID, vouchers []ledger.Voucher) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)
	for _, v := range vouchers {
		for _, entry := range v.Entries {
			if _, ok := names[entry.AccountID]; ok {
				continue
			}
			account, err := repos.Accounts().FindByIDForTenant(ctx, tenantID, entry.AccountID)
			if err != nil || account == nil {
				s.logger.Warn("entry account missing", zap.String("account_id", entry.AccountID.String()))
				names[entry.AccountID] = ""
				continue
			}
			names[entry.AccountID] = account.Name
		}
	}
	return names
}

func voucherResponse(voucher *ledger.Voucher, names map[uuid.UUID]string) *VoucherResponse {
	entries := make([]EntryResponse, 0, len(voucher.Entries))
	for _, e := range voucher.Entries {
		entries = append(entries, EntryResponse{
			ID:          e.ID,
			AccountID:   e.AccountID,
			AccountName: names[e.AccountID],
			Amount:      e.Amount,
		})
	}
	return &VoucherResponse{
		ID:            voucher.ID,
		VoucherNumber: voucher.VoucherNumber,
		Type:          voucher.Type,
		Date:          voucher.Date,
		Narration:     strings.TrimSpace(voucher.Narration),
		Amount:        voucher.DebitTotal(),
		Entries:       entries,
		CreatedAt:     voucher.CreatedAt,
	}
}
