package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
)

type fakeProcessor struct {
	calls   atomic.Int32
	summary *appledger.ProcessSummary
	err     error
}

func (f *fakeProcessor) ProcessDue(ctx context.Context, now time.Time) (*appledger.ProcessSummary, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func TestRecurringTrigger_SweepsOnStart(t *testing.T) {
	processor := &fakeProcessor{summary: &appledger.ProcessSummary{Processed: 2}}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{PollInterval: time.Hour}, processor, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return processor.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, trigger.IsRunning())
}

func TestRecurringTrigger_Polls(t *testing.T) {
	processor := &fakeProcessor{summary: &appledger.ProcessSummary{}}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{PollInterval: 20 * time.Millisecond}, processor, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return processor.calls.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestRecurringTrigger_StopHaltsSweeps(t *testing.T) {
	processor := &fakeProcessor{summary: &appledger.ProcessSummary{}}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{PollInterval: 10 * time.Millisecond}, processor, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
	assert.False(t, trigger.IsRunning())

	calls := processor.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, processor.calls.Load())
}

func TestRecurringTrigger_StartIdempotent(t *testing.T) {
	processor := &fakeProcessor{summary: &appledger.ProcessSummary{}}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{PollInterval: time.Hour}, processor, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
}

func TestRecurringTrigger_SweepErrorDoesNotStopLoop(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database unavailable")}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{PollInterval: 15 * time.Millisecond}, processor, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	defer trigger.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return processor.calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestRecurringTrigger_TriggerNow(t *testing.T) {
	processor := &fakeProcessor{summary: &appledger.ProcessSummary{Processed: 1, Failed: 1}}
	trigger := NewRecurringTrigger(RecurringTriggerConfig{}, processor, zap.NewNop())

	summary, err := trigger.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
}
