package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// FinancialYear is one accounting period for a tenant. Posting into a
// closed year is rejected by the period guard.
type FinancialYear struct {
	shared.TenantAggregateRoot
	Year      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_fy_tenant_year,priority:2"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:false"`
	IsClosed  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (FinancialYear) TableName() string {
	return "financial_years"
}

// NewFinancialYear creates a financial year for a tenant
func NewFinancialYear(
	tenantID uuid.UUID,
	year string,
	startDate time.Time,
	endDate time.Time,
) (*FinancialYear, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year label cannot be empty")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Start and end dates are required")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_DATE", "End date must be after start date")
	}
	return &FinancialYear{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Year:                year,
		StartDate:           startDate,
		EndDate:             endDate,
		IsActive:            true,
	}, nil
}

// Covers reports whether the date falls inside the year, inclusive on both
// ends; comparison ignores time-of-day.
func (y *FinancialYear) Covers(date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(truncateToDay(y.StartDate)) && !d.After(truncateToDay(y.EndDate))
}

// Close locks the year against new postings
func (y *FinancialYear) Close() error {
	if y.IsClosed {
		return shared.NewDomainError("ALREADY_CLOSED", "Financial year is already closed")
	}
	y.IsClosed = true
	y.UpdatedAt = time.Now()
	y.IncrementVersion()
	return nil
}

// Reopen unlocks a closed year
func (y *FinancialYear) Reopen() error {
	if !y.IsClosed {
		return shared.NewDomainError("NOT_CLOSED", "Financial year is not closed")
	}
	y.IsClosed = false
	y.UpdatedAt = time.Now()
	y.IncrementVersion()
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
