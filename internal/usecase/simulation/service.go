// Package simulation answers "how would this allocation have performed" over historical returns.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/compounder"
)

// SimulateInput represents the input for a simulation
// StartYear and EndYear both zero means the coverage window of the allocated instruments
type SimulateInput struct {
	Allocation domain.AllocationSet
	StartYear  int
	EndYear    int
}

// SimulationResult is everything a growth chart needs
type SimulationResult struct {
	StartYear   int                            `json:"start_year"`
	EndYear     int                            `json:"end_year"`
	Blended     []domain.YearReturn            `json:"blended"`
	Portfolio   []domain.CurvePoint            `json:"portfolio"`
	Instruments map[string][]domain.CurvePoint `json:"instruments"`
	Summary     compounder.Summary             `json:"summary"`
	Unknown     []string                       `json:"unknown,omitempty"`
}

// Service handles portfolio simulations
type Service struct {
	Instruments domain.InstrumentRepository
	Series      domain.SeriesLookup
	log         zerolog.Logger
}

// NewService creates a new Service instance
func NewService(instruments domain.InstrumentRepository, series domain.SeriesLookup, log zerolog.Logger) *Service {
	return &Service{
		Instruments: instruments,
		Series:      series,
		log:         log.With().Str("component", "simulation").Logger(),
	}
}

// Simulate blends and compounds the allocation over a window of years
// Logic:
//  1. Validate the allocation (an empty allocation is allowed and simulates nothing)
//  2. Drop buckets whose instrument is not in the catalogue (logged, reported in Unknown)
//  3. Resolve the window: explicit years, or the coverage of the funded instruments
//  4. Blend the funded instruments, compound the blend and each instrument's own series
//  5. Summarize the blended series
func (s *Service) Simulate(ctx context.Context, input SimulateInput) (*SimulationResult, error) {
	if err := input.Allocation.Validate(); err != nil {
		return nil, err
	}

	if input.StartYear > input.EndYear {
		return nil, fmt.Errorf("invalid window: start year %d is after end year %d", input.StartYear, input.EndYear)
	}

	// Step 1: Keep only catalogued instruments
	known := make(domain.AllocationSet, 0, len(input.Allocation))
	var unknown []string
	for _, a := range input.Allocation {
		if _, err := s.Instruments.GetByID(ctx, a.ID); err != nil {
			if errors.Is(err, domain.ErrInstrumentNotFound) {
				s.log.Warn().Str("instrument_id", a.ID).Int("value", a.Value).Msg("Unknown instrument ignored in simulation")
				unknown = append(unknown, a.ID)
				continue
			}
			return nil, fmt.Errorf("failed to get instrument %s: %w", a.ID, err)
		}
		known = append(known, a)
	}

	result := &SimulationResult{
		StartYear:   input.StartYear,
		EndYear:     input.EndYear,
		Blended:     []domain.YearReturn{},
		Portfolio:   []domain.CurvePoint{},
		Instruments: make(map[string][]domain.CurvePoint, len(known)),
		Unknown:     unknown,
	}

	// Step 2: Resolve the window
	if input.StartYear == 0 && input.EndYear == 0 {
		start, end, ok := s.Coverage(fundedIDs(known))
		if !ok {
			result.Summary = compounder.Summarize(nil)
			return result, nil
		}
		result.StartYear, result.EndYear = start, end
	}

	// Step 3: Blend and compound
	result.Blended = compounder.BlendPortfolio(known, s.Series, result.StartYear, result.EndYear)
	result.Portfolio = compounder.Compound(result.Blended)

	for _, a := range known {
		series, ok := s.Series(a.ID)
		if !ok {
			continue
		}
		result.Instruments[a.ID] = compounder.Compound(series.Window(result.StartYear, result.EndYear))
	}

	result.Summary = compounder.Summarize(result.Blended)

	s.log.Debug().
		Int("start_year", result.StartYear).
		Int("end_year", result.EndYear).
		Int("years", len(result.Blended)).
		Msg("Simulation computed")

	return result, nil
}

// Coverage returns the widest window covered by any of the given instruments
// ok is false when none of them has data
func (s *Service) Coverage(ids []string) (start, end int, ok bool) {
	for _, id := range ids {
		series, found := s.Series(id)
		if !found || len(series.Points) == 0 {
			continue
		}
		if !ok || series.FirstYear() < start {
			start = series.FirstYear()
		}
		if !ok || series.LastYear() > end {
			end = series.LastYear()
		}
		ok = true
	}
	return start, end, ok
}

func fundedIDs(set domain.AllocationSet) []string {
	ids := make([]string, 0, len(set))
	for _, a := range set {
		if a.Value > 0 {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
