package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

func TestActivityService_RecordAndList(t *testing.T) {
	env := newServiceEnv(t)
	env.seedSupplier(t)
	env.seedCashAccount(t)

	supplier, err := env.uow.Accounts().FindByCodeForTenant(env.ctx, env.tenantID, "SUP-01")
	require.NoError(t, err)
	require.NotNil(t, supplier)

	// Posting operations leave audit rows behind.
	_, err = env.posting.CreateCashPayment(env.ctx, env.tenantID, env.actorID, CashVoucherRequest{
		AccountID:   supplier.ID,
		PaymentMode: ledger.PaymentModeCash,
		Amount:      dec(100),
		Date:        day(2025, 3, 10),
	})
	require.NoError(t, err)

	activity := NewActivityService(env.uow.ActivityLogs(), zap.NewNop())
	rows, err := activity.List(env.ctx, env.tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, ActionVoucherCreated, rows[0].Action)
	assert.Equal(t, "CPV-1", rows[0].Details)
	assert.Equal(t, env.actorID, rows[0].UserID)

	other, err := activity.List(env.ctx, uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, other)
}
