// Package memory keeps reference data in process memory.
// It backs tests and deployments that run without postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// InstrumentRepository implements domain.InstrumentRepository
type InstrumentRepository struct {
	mu          sync.RWMutex
	instruments map[string]domain.Instrument
}

// NewInstrumentRepository creates an empty instrument repository
func NewInstrumentRepository() *InstrumentRepository {
	return &InstrumentRepository{instruments: make(map[string]domain.Instrument)}
}

// GetByID retrieves an instrument by its ID
func (r *InstrumentRepository) GetByID(_ context.Context, id string) (*domain.Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instrument, ok := r.instruments[id]
	if !ok {
		return nil, fmt.Errorf("instrument %q: %w", id, domain.ErrInstrumentNotFound)
	}
	return &instrument, nil
}

// Create creates a new instrument
func (r *InstrumentRepository) Create(_ context.Context, instrument *domain.Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[instrument.ID]; exists {
		return fmt.Errorf("failed to create instrument: %q already exists", instrument.ID)
	}
	r.instruments[instrument.ID] = *instrument
	return nil
}

// List retrieves instruments ordered by ID, optionally filtered by kind
func (r *InstrumentRepository) List(_ context.Context, kindFilter domain.InstrumentKind) ([]*domain.Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Instrument, 0, len(r.instruments))
	for _, instrument := range r.instruments {
		if kindFilter != "" && instrument.Kind != kindFilter {
			continue
		}
		instrument := instrument
		out = append(out, &instrument)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReturnSeriesRepository implements domain.ReturnSeriesRepository
type ReturnSeriesRepository struct {
	mu     sync.RWMutex
	values map[string]map[int]decimal.Decimal
}

// NewReturnSeriesRepository creates an empty return series repository
func NewReturnSeriesRepository() *ReturnSeriesRepository {
	return &ReturnSeriesRepository{values: make(map[string]map[int]decimal.Decimal)}
}

// Upsert stores the return of an instrument for one year
func (r *ReturnSeriesRepository) Upsert(_ context.Context, instrumentID string, year int, value decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	years, ok := r.values[instrumentID]
	if !ok {
		years = make(map[int]decimal.Decimal)
		r.values[instrumentID] = years
	}
	years[year] = value
	return nil
}

// GetByInstrument retrieves the series of an instrument ordered by year
func (r *ReturnSeriesRepository) GetByInstrument(_ context.Context, instrumentID string) (*domain.ReturnSeries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	years, ok := r.values[instrumentID]
	if !ok || len(years) == 0 {
		return nil, fmt.Errorf("instrument %q: %w", instrumentID, domain.ErrSeriesNotFound)
	}
	return buildSeries(instrumentID, years), nil
}

// ListAll retrieves every stored series ordered by instrument ID
func (r *ReturnSeriesRepository) ListAll(_ context.Context) ([]*domain.ReturnSeries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.values))
	for id := range r.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*domain.ReturnSeries, 0, len(ids))
	for _, id := range ids {
		out = append(out, buildSeries(id, r.values[id]))
	}
	return out, nil
}

func buildSeries(instrumentID string, years map[int]decimal.Decimal) *domain.ReturnSeries {
	series := &domain.ReturnSeries{
		InstrumentID: instrumentID,
		Points:       make([]domain.YearReturn, 0, len(years)),
	}
	for year, value := range years {
		series.Points = append(series.Points, domain.YearReturn{Year: year, Value: value})
	}
	sort.Slice(series.Points, func(i, j int) bool { return series.Points[i].Year < series.Points[j].Year })
	return series
}
