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

var ErrRecurringNotFound = shared.NewDomainError("RECURRING_NOT_FOUND", "Recurring transaction not found")

// ReplayGuard deduplicates scheduler runs: TryAcquire returns false when the
// key was already claimed, so overlapping ticks or multiple instances never
// replay the same template occurrence twice. Release hands a claimed key
// back when the replay failed, keeping the occurrence retryable on the
// next sweep.
type ReplayGuard interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// NoopReplayGuard always acquires; single-instance deployments need nothing
// stronger because FindDue advances NextDate inside the same transaction.
type NoopReplayGuard struct{}

func (NoopReplayGuard) TryAcquire(context.Context, string) (bool, error) { return true, nil }

func (NoopReplayGuard) Release(context.Context, string) error { return nil }

type RecurringRequest struct {
	Type        ledger.RecurringType
	Frequency   ledger.Frequency
	Amount      decimal.Decimal
	Description string
	Payload     ledger.RecurringPayload
	StartDate   time.Time
}

type RecurringResponse struct {
	ID          uuid.UUID               `json:"id"`
	Type        ledger.RecurringType    `json:"type"`
	Frequency   ledger.Frequency        `json:"frequency"`
	Amount      decimal.Decimal         `json:"amount"`
	Description string                  `json:"description"`
	Payload     ledger.RecurringPayload `json:"payload"`
	NextDate    time.Time               `json:"next_date"`
	LastRun     *time.Time              `json:"last_run,omitempty"`
	IsActive    bool                    `json:"is_active"`
}

// ProcessResult is the outcome of replaying one due template.
type ProcessResult struct {
	ID          uuid.UUID            `json:"id"`
	TenantID    uuid.UUID            `json:"tenant_id"`
	Type        ledger.RecurringType `json:"type"`
	ReferenceNo string               `json:"reference_no,omitempty"`
	Error       string               `json:"error,omitempty"`
}

type ProcessSummary struct {
	Processed int             `json:"processed"`
	Failed    int             `json:"failed"`
	Results   []ProcessResult `json:"results"`
}

// RecurringService manages posting templates and replays the due ones
// through the regular posting paths, so every replay gets the same
// validation, numbering and side effects as a hand-entered voucher.
type RecurringService struct {
	uow      ledger.UnitOfWork
	posting  *PostingService
	invoices *InvoiceService
	replay   ReplayGuard
	activity ActivityRecorder
	logger   *zap.Logger
}

func NewRecurringService(uow ledger.UnitOfWork, posting *PostingService, invoices *InvoiceService, replay ReplayGuard, activity ActivityRecorder, logger *zap.Logger) *RecurringService {
	if replay == nil {
		replay = NoopReplayGuard{}
	}
	return &RecurringService{uow: uow, posting: posting, invoices: invoices, replay: replay, activity: activity, logger: logger}
}

func (s *RecurringService) CreateRecurring(ctx context.Context, tenantID, actorID uuid.UUID, req RecurringRequest) (*RecurringResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var resp *RecurringResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		transaction, err := ledger.NewRecurringTransaction(tenantID, req.Type, req.Frequency, req.Amount, req.Description, req.Payload, req.StartDate)
		if err != nil {
			return err
		}
		transaction.SetCreatedBy(actorID)
		if err := repos.RecurringTransactions().Save(ctx, transaction); err != nil {
			return err
		}
		resp = recurringResponse(transaction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *RecurringService) ListRecurring(ctx context.Context, tenantID uuid.UUID) ([]RecurringResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var items []RecurringResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		transactions, err := repos.RecurringTransactions().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		items = make([]RecurringResponse, 0, len(transactions))
		for i := range transactions {
			items = append(items, *recurringResponse(&transactions[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SetActive starts or stops a template without losing its schedule.
func (s *RecurringService) SetActive(ctx context.Context, tenantID, transactionID uuid.UUID, active bool) (*RecurringResponse, error) {
	var resp *RecurringResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		transaction, err := repos.RecurringTransactions().FindByIDForTenant(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if transaction == nil {
			return ErrRecurringNotFound
		}
		if active {
			transaction.Activate()
		} else {
			transaction.Deactivate()
		}
		if err := repos.RecurringTransactions().Save(ctx, transaction); err != nil {
			return err
		}
		resp = recurringResponse(transaction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *RecurringService) DeleteRecurring(ctx context.Context, tenantID, transactionID uuid.UUID) error {
	return s.uow.Do(ctx, func(repos ledger.Repositories) error {
		transaction, err := repos.RecurringTransactions().FindByIDForTenant(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if transaction == nil {
			return ErrRecurringNotFound
		}
		return repos.RecurringTransactions().Delete(ctx, tenantID, transactionID)
	})
}

// ProcessDue replays every due template across all tenants. One template
// failing is recorded and skipped; the rest of the batch still runs. Each
// occurrence is claimed through the replay guard before posting.
func (s *RecurringService) ProcessDue(ctx context.Context, now time.Time) (*ProcessSummary, error) {
	due, err := s.uow.RecurringTransactions().FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due recurring transactions: %w", err)
	}

	summary := &ProcessSummary{Results: make([]ProcessResult, 0, len(due))}
	for i := range due {
		transaction := &due[i]
		result := ProcessResult{ID: transaction.ID, TenantID: transaction.TenantID, Type: transaction.Type}

		key := fmt.Sprintf("recurring:%s:%s", transaction.ID, transaction.NextDate.Format("2006-01-02"))
		acquired, err := s.replay.TryAcquire(ctx, key)
		if err != nil {
			result.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, result)
			s.logger.Warn("replay guard unavailable, skipping occurrence",
				zap.String("key", key), zap.Error(err))
			continue
		}
		if !acquired {
			continue
		}

		reference, err := s.replayOne(ctx, transaction)
		if err != nil {
			// Nothing was posted, so hand the key back and let the
			// next sweep retry this occurrence.
			if releaseErr := s.replay.Release(ctx, key); releaseErr != nil {
				s.logger.Warn("failed to release replay key",
					zap.String("key", key), zap.Error(releaseErr))
			}
			result.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, result)
			s.logger.Warn("recurring replay failed",
				zap.String("recurring_id", transaction.ID.String()),
				zap.String("tenant_id", transaction.TenantID.String()),
				zap.Error(err))
			continue
		}

		transaction.MarkProcessed(now)
		if err := s.uow.RecurringTransactions().Save(ctx, transaction); err != nil {
			// The voucher is already posted. Keeping the key claimed
			// means the unadvanced NextDate cannot cause a duplicate
			// posting on the next sweep.
			result.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, result)
			continue
		}

		result.ReferenceNo = reference
		summary.Processed++
		summary.Results = append(summary.Results, result)
		s.activity.Record(ctx, transaction.TenantID, actorFor(transaction), ActionRecurringProcessed, reference)
	}

	s.logger.Info("recurring batch processed",
		zap.Int("due", len(due)),
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *RecurringService) replayOne(ctx context.Context, transaction *ledger.RecurringTransaction) (string, error) {
	actor := actorFor(transaction)
	switch transaction.Type {
	case ledger.RecurringTypeCashPayment, ledger.RecurringTypeExpense:
		resp, err := s.posting.CreateCashPayment(ctx, transaction.TenantID, actor, cashRequestFrom(transaction))
		if err != nil {
			return "", err
		}
		return resp.VoucherNumber, nil
	case ledger.RecurringTypeCashReceipt:
		resp, err := s.posting.CreateCashReceipt(ctx, transaction.TenantID, actor, cashRequestFrom(transaction))
		if err != nil {
			return "", err
		}
		return resp.VoucherNumber, nil
	case ledger.RecurringTypeSalesInvoice:
		resp, err := s.invoices.CreateSalesInvoice(ctx, transaction.TenantID, actor, invoiceRequestFrom(transaction))
		if err != nil {
			return "", err
		}
		return resp.InvoiceNumber, nil
	case ledger.RecurringTypePurchaseInvoice:
		resp, err := s.invoices.CreatePurchaseInvoice(ctx, transaction.TenantID, actor, invoiceRequestFrom(transaction))
		if err != nil {
			return "", err
		}
		return resp.InvoiceNumber, nil
	default:
		return "", shared.NewDomainError("INVALID_TYPE", "Recurring type is not valid")
	}
}

func cashRequestFrom(transaction *ledger.RecurringTransaction) CashVoucherRequest {
	payment := transaction.Payload.Payment
	return CashVoucherRequest{
		AccountID:     payment.AccountID,
		PaymentMode:   payment.PaymentMode,
		BankAccountID: payment.BankAccountID,
		Amount:        transaction.Amount,
		Date:          transaction.NextDate,
		Narration:     transaction.Description,
	}
}

func invoiceRequestFrom(transaction *ledger.RecurringTransaction) InvoiceRequest {
	invoice := transaction.Payload.Invoice
	lines := make([]InvoiceLineRequest, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, InvoiceLineRequest{ProductName: item.ProductName, Quantity: item.Quantity, Rate: item.Rate})
	}
	return InvoiceRequest{
		PartyAccountID: invoice.PartyAccountID,
		Date:           transaction.NextDate,
		Lines:          lines,
		Narration:      transaction.Description,
	}
}

func actorFor(transaction *ledger.RecurringTransaction) uuid.UUID {
	if transaction.CreatedBy != nil {
		return *transaction.CreatedBy
	}
	return uuid.Nil
}

func recurringResponse(transaction *ledger.RecurringTransaction) *RecurringResponse {
	return &RecurringResponse{
		ID:          transaction.ID,
		Type:        transaction.Type,
		Frequency:   transaction.Frequency,
		Amount:      transaction.Amount,
		Description: transaction.Description,
		Payload:     transaction.Payload,
		NextDate:    transaction.NextDate,
		LastRun:     transaction.LastRun,
		IsActive:    transaction.IsActive,
	}
}
