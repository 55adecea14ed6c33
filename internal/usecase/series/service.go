package series

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// Earliest and latest years accepted for a yearly return
const (
	MinYear = 1900
	MaxYear = 2200
)

// Service handles reference return data
type Service struct {
	InstrumentRepo domain.InstrumentRepository
	SeriesRepo     domain.ReturnSeriesRepository
}

// NewService creates a new Service instance
func NewService(instrumentRepo domain.InstrumentRepository, seriesRepo domain.ReturnSeriesRepository) *Service {
	return &Service{
		InstrumentRepo: instrumentRepo,
		SeriesRepo:     seriesRepo,
	}
}

// RecordReturn stores the yearly return of an instrument
// Logic: Upsert one (instrument, year) row; a second call for the same year replaces the value
func (s *Service) RecordReturn(ctx context.Context, instrumentID string, year int, value decimal.Decimal) error {
	// Validate year is in a plausible range
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("invalid year %d: must be between %d and %d", year, MinYear, MaxYear)
	}

	// A return below -100% would mean losing more than the whole investment
	if value.LessThan(decimal.NewFromInt(-100)) {
		return errors.New("invalid return: cannot be below -100")
	}

	// Verify instrument exists (we don't need to use it, just verify it exists)
	if _, err := s.InstrumentRepo.GetByID(ctx, instrumentID); err != nil {
		return err
	}

	return s.SeriesRepo.Upsert(ctx, instrumentID, year, value)
}

// ImportSeries records every point of the given series
// Stops at the first failing point
func (s *Service) ImportSeries(ctx context.Context, series []domain.ReturnSeries) (int, error) {
	recorded := 0
	for _, rs := range series {
		if err := rs.Validate(); err != nil {
			return recorded, err
		}
		for _, p := range rs.Points {
			if err := s.RecordReturn(ctx, rs.InstrumentID, p.Year, p.Value); err != nil {
				return recorded, fmt.Errorf("failed to record %s/%d: %w", rs.InstrumentID, p.Year, err)
			}
			recorded++
		}
	}
	return recorded, nil
}

// GetSeries retrieves the series of an instrument
// Logic: unknown instruments are reported as not found, known ones without data as an empty series
func (s *Service) GetSeries(ctx context.Context, instrumentID string) (*domain.ReturnSeries, error) {
	if _, err := s.InstrumentRepo.GetByID(ctx, instrumentID); err != nil {
		return nil, err
	}

	series, err := s.SeriesRepo.GetByInstrument(ctx, instrumentID)
	if err != nil {
		if errors.Is(err, domain.ErrSeriesNotFound) {
			return &domain.ReturnSeries{InstrumentID: instrumentID, Points: []domain.YearReturn{}}, nil
		}
		return nil, err
	}

	return series, nil
}
