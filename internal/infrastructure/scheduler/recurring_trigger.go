package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
)

// RecurringTriggerConfig holds configuration for the recurring transaction
// trigger
type RecurringTriggerConfig struct {
	// PollInterval is how often the due-template sweep runs
	PollInterval time.Duration
}

// DefaultRecurringTriggerConfig returns default configuration
func DefaultRecurringTriggerConfig() RecurringTriggerConfig {
	return RecurringTriggerConfig{
		PollInterval: time.Hour,
	}
}

// RecurringProcessor runs one due-template sweep. Implemented by
// appledger.RecurringService.
type RecurringProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (*appledger.ProcessSummary, error)
}

// RecurringTrigger periodically sweeps due recurring templates and replays
// them through the posting services. One failing template never stops the
// sweep; per-item outcomes come back in the summary.
type RecurringTrigger struct {
	config    RecurringTriggerConfig
	processor RecurringProcessor
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRecurringTrigger creates a new recurring transaction trigger
func NewRecurringTrigger(config RecurringTriggerConfig, processor RecurringProcessor, logger *zap.Logger) *RecurringTrigger {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultRecurringTriggerConfig().PollInterval
	}
	return &RecurringTrigger{
		config:    config,
		processor: processor,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *RecurringTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Recurring transaction trigger started",
		zap.Duration("poll_interval", t.config.PollInterval),
	)

	return nil
}

// Stop stops the trigger loop, waiting for an in-flight sweep to finish
func (t *RecurringTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Recurring transaction trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *RecurringTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	t.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

func (t *RecurringTrigger) sweep(ctx context.Context) {
	summary, err := t.processor.ProcessDue(ctx, time.Now())
	if err != nil {
		t.logger.Error("Recurring sweep failed", zap.Error(err))
		return
	}

	if summary.Processed == 0 && summary.Failed == 0 {
		t.logger.Debug("Recurring sweep found nothing due")
		return
	}

	t.logger.Info("Recurring sweep completed",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
	)

	for _, result := range summary.Results {
		if result.Error != "" {
			t.logger.Warn("Recurring replay failed",
				zap.String("template_id", result.ID.String()),
				zap.String("tenant_id", result.TenantID.String()),
				zap.String("type", string(result.Type)),
				zap.String("error", result.Error),
			)
		}
	}
}

// TriggerNow runs one sweep immediately, outside the poll schedule
func (t *RecurringTrigger) TriggerNow(ctx context.Context) (*appledger.ProcessSummary, error) {
	return t.processor.ProcessDue(ctx, time.Now())
}

// IsRunning reports whether the trigger loop is active
func (t *RecurringTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}
