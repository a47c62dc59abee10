package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// PeriodGuard rejects postings dated inside a closed financial year. Every
// posting family runs the same check, deletes included.
type PeriodGuard struct {
	years ledger.FinancialYearRepository
	// Enforce controls whether a date with no covering year is rejected.
	// When false, only explicitly closed years block posting.
	Enforce bool
}

// NewPeriodGuard creates a PeriodGuard
func NewPeriodGuard(years ledger.FinancialYearRepository, enforce bool) *PeriodGuard {
	return &PeriodGuard{years: years, Enforce: enforce}
}

// EnsureOpen fails when the date falls inside a closed year, or outside any
// year while enforcement is on.
func (g *PeriodGuard) EnsureOpen(ctx context.Context, tenantID uuid.UUID, date time.Time) error {
	year, err := g.years.FindCovering(ctx, tenantID, date)
	if err != nil {
		return fmt.Errorf("failed to look up financial year: %w", err)
	}
	if year == nil {
		if g.Enforce {
			return shared.NewDomainError("PERIOD_CLOSED",
				fmt.Sprintf("No open financial year covers %s", date.Format("2006-01-02")))
		}
		return nil
	}
	if year.IsClosed {
		return shared.NewDomainError("PERIOD_CLOSED",
			fmt.Sprintf("Financial year %s is closed for posting", year.Year))
	}
	return nil
}
