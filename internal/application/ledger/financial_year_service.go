package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

var ErrFinancialYearNotFound = shared.NewDomainError("FINANCIAL_YEAR_NOT_FOUND", "Financial year not found")

type FinancialYearRequest struct {
	Year      string
	StartDate time.Time
	EndDate   time.Time
}

type FinancialYearResponse struct {
	ID        uuid.UUID `json:"id"`
	Year      string    `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	IsClosed  bool      `json:"is_closed"`
}

// FinancialYearService manages accounting periods and their posting locks.
type FinancialYearService struct {
	uow    ledger.UnitOfWork
	logger *zap.Logger
}

func NewFinancialYearService(uow ledger.UnitOfWork, logger *zap.Logger) *FinancialYearService {
	return &FinancialYearService{uow: uow, logger: logger}
}

func (s *FinancialYearService) CreateFinancialYear(ctx context.Context, tenantID, actorID uuid.UUID, req FinancialYearRequest) (*FinancialYearResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var resp *FinancialYearResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		year, err := ledger.NewFinancialYear(tenantID, req.Year, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		year.SetCreatedBy(actorID)
		if err := repos.FinancialYears().Save(ctx, year); err != nil {
			return err
		}
		resp = financialYearResponse(year)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *FinancialYearService) ListFinancialYears(ctx context.Context, tenantID uuid.UUID) ([]FinancialYearResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var items []FinancialYearResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		years, err := repos.FinancialYears().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		items = make([]FinancialYearResponse, 0, len(years))
		for i := range years {
			items = append(items, *financialYearResponse(&years[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CloseFinancialYear locks the year; every posting family rejects dates
// inside it from then on.
func (s *FinancialYearService) CloseFinancialYear(ctx context.Context, tenantID, actorID, yearID uuid.UUID) (*FinancialYearResponse, error) {
	return s.transition(ctx, tenantID, yearID, func(year *ledger.FinancialYear) error { return year.Close() })
}

// ReopenFinancialYear unlocks a closed year.
func (s *FinancialYearService) ReopenFinancialYear(ctx context.Context, tenantID, actorID, yearID uuid.UUID) (*FinancialYearResponse, error) {
	return s.transition(ctx, tenantID, yearID, func(year *ledger.FinancialYear) error { return year.Reopen() })
}

func (s *FinancialYearService) transition(ctx context.Context, tenantID, yearID uuid.UUID, apply func(*ledger.FinancialYear) error) (*FinancialYearResponse, error) {
	if tenantID == uuid.Nil {
		return nil, ErrCompanyRequired
	}
	var resp *FinancialYearResponse
	err := s.uow.Do(ctx, func(repos ledger.Repositories) error {
		year, err := repos.FinancialYears().FindByIDForTenant(ctx, tenantID, yearID)
		if err != nil {
			return err
		}
		if year == nil {
			return ErrFinancialYearNotFound
		}
		if err := apply(year); err != nil {
			return err
		}
		if err := repos.FinancialYears().Save(ctx, year); err != nil {
			return err
		}
		resp = financialYearResponse(year)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("financial year state changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("year", resp.Year),
		zap.Bool("is_closed", resp.IsClosed))
	return resp, nil
}

func financialYearResponse(year *ledger.FinancialYear) *FinancialYearResponse {
	return &FinancialYearResponse{
		ID:        year.ID,
		Year:      year.Year,
		StartDate: year.StartDate,
		EndDate:   year.EndDate,
		IsActive:  year.IsActive,
		IsClosed:  year.IsClosed,
	}
}
