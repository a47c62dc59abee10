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

// PermissionChecker answers whether an actor may perform an operation. It is
// an external collaborator; the HTTP layer adapts it into middleware.
type PermissionChecker interface {
	IsAllowed(ctx context.Context, userID uuid.UUID, role string, permission string, tenantID uuid.UUID) bool
}

// TaxConfig is the answer of a tax configuration lookup
type TaxConfig struct {
	TaxRate decimal.Decimal
	TaxType string
}

// TaxLookup resolves a tax configuration id to its rate. External
// collaborator; the posting engine only consumes the rate number.
type TaxLookup interface {
	GetTaxConfig(ctx context.Context, taxConfigID uuid.UUID) (TaxConfig, error)
}

// CurrencyRecorder records a currency side-row when a posting carries a
// non-base currency and exchange rate. Optional; no conversion math happens
// in posting itself.
type CurrencyRecorder interface {
	RecordCurrencyTransaction(ctx context.Context, tenantID uuid.UUID, referenceNo string, currency string, exchangeRate decimal.Decimal) error
}

// NoopCurrencyRecorder satisfies CurrencyRecorder for deployments without
// multi-currency bookkeeping
type NoopCurrencyRecorder struct{}

// RecordCurrencyTransaction does nothing
func (NoopCurrencyRecorder) RecordCurrencyTransaction(context.Context, uuid.UUID, string, string, decimal.Decimal) error {
	return nil
}

// ActivityRecorder writes fire-and-forget audit rows. Failures are logged
// and swallowed; posting correctness never depends on the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, tenantID, userID uuid.UUID, action, details string)
}

// ActivityService is the default ActivityRecorder backed by the activity log
// repository
type ActivityService struct {
	logs   ledger.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityService creates an ActivityService
func NewActivityService(logs ledger.ActivityLogRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{logs: logs, logger: logger}
}

// Record writes one audit row, logging and swallowing any failure
func (s *ActivityService) Record(ctx context.Context, tenantID, userID uuid.UUID, action, details string) {
	if err := s.logs.Save(ctx, ledger.NewActivityLog(tenantID, userID, action, details)); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("tenant_id", tenantID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// ActivityResponse is one audit row for display
type ActivityResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the tenant's audit trail, newest first
func (s *ActivityService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ActivityResponse, error) {
	logs, err := s.logs.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, ActivityResponse{
			ID:        log.ID,
			UserID:    log.UserID,
			Action:    log.Action,
			Details:   log.Details,
			CreatedAt: log.CreatedAt,
		})
	}
	return out, nil
}

// Audit actions recorded by the ledger services
const (
	ActionVoucherCreated       = "voucher.created"
	ActionVoucherUpdated       = "voucher.updated"
	ActionVoucherDeleted       = "voucher.deleted"
	ActionInvoiceCreated       = "invoice.created"
	ActionInvoiceDeleted       = "invoice.deleted"
	ActionSaleReturnCreated    = "sale_return.created"
	ActionSaleReturnDeleted    = "sale_return.deleted"
	ActionAccountCreated       = "account.created"
	ActionAccountDeleted       = "account.deleted"
	ActionBankAccountCreated   = "bank_account.created"
	ActionStatementsReconciled = "bank_statements.reconciled"
	ActionRecurringProcessed   = "recurring.processed"
)
