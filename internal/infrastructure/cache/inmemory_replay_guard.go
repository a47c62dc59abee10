package cache

import (
	"context"
	"sync"
	"time"

	appledger "github.com/ledgerbook/backend/internal/application/ledger"
)

// entry represents an acquired replay key with expiration
type entry struct {
	expiresAt time.Time
}

// InMemoryReplayGuard implements the recurring replay guard using an
// in-memory map. Suitable for single-instance deployments and testing; a
// multi-instance deployment needs the Redis guard so concurrent sweeps
// cannot both replay the same template occurrence.
type InMemoryReplayGuard struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryReplayGuard creates a new in-memory replay guard. It starts a
// background goroutine to clean up expired entries.
func NewInMemoryReplayGuard(ttl time.Duration) *InMemoryReplayGuard {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	guard := &InMemoryReplayGuard{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	guard.wg.Add(1)
	go guard.cleanupLoop()

	return guard
}

// TryAcquire claims a replay key. Returns true if the key was newly claimed,
// false if the occurrence was already replayed.
func (g *InMemoryReplayGuard) TryAcquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil
		}
	}

	g.entries[key] = entry{expiresAt: time.Now().Add(g.ttl)}
	return true, nil
}

// Release hands a claimed key back so the occurrence can be retried.
func (g *InMemoryReplayGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources. Safe to call
// multiple times.
func (g *InMemoryReplayGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *InMemoryReplayGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemoryReplayGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, e := range g.entries {
		if now.After(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of entries in the guard (for testing/monitoring)
func (g *InMemoryReplayGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Ensure InMemoryReplayGuard implements ReplayGuard
var _ appledger.ReplayGuard = (*InMemoryReplayGuard)(nil)
