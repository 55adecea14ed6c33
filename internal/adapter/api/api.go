// Package api is the request/response contract shared by the gRPC and HTTP transports.
// Both transports decode JSON-shaped payloads into these types and call Service.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/allocator"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/simulation"
)

// ErrInvalidRequest marks errors caused by the caller's payload
var ErrInvalidRequest = errors.New("invalid request")

// SetAllocationRequest moves one slider
type SetAllocationRequest struct {
	Allocation domain.AllocationSet `json:"allocation"`
	ID         string               `json:"id"`
	Value      int                  `json:"value"`
	Locked     bool                 `json:"locked"`
}

// BucketRequest targets one bucket of an allocation (lock toggle, add/remove instrument)
type BucketRequest struct {
	Allocation domain.AllocationSet `json:"allocation"`
	ID         string               `json:"id"`
}

// EqualizeRequest resets an allocation to equal shares
type EqualizeRequest struct {
	Allocation domain.AllocationSet `json:"allocation"`
}

// SplitRequest splits a contribution across an allocation
type SplitRequest struct {
	Allocation domain.AllocationSet `json:"allocation"`
	Amount     decimal.Decimal      `json:"amount"`
}

// SimulateRequest runs a historical simulation; zero years mean the full coverage window
type SimulateRequest struct {
	Allocation domain.AllocationSet `json:"allocation"`
	StartYear  int                  `json:"start_year"`
	EndYear    int                  `json:"end_year"`
}

// ListInstrumentsRequest lists the catalogue, optionally by kind
type ListInstrumentsRequest struct {
	Kind domain.InstrumentKind `json:"kind"`
}

// AllocationResponse carries the allocation after a balancer step
type AllocationResponse struct {
	Allocation domain.AllocationSet `json:"allocation"`
}

// SplitResponse maps bucket ID to amount
type SplitResponse struct {
	Split map[string]decimal.Decimal `json:"split"`
}

// Instrument is the wire form of domain.Instrument
type Instrument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
}

// InstrumentsResponse lists instruments
type InstrumentsResponse struct {
	Instruments []Instrument `json:"instruments"`
}

// SeriesResponse carries the yearly returns of one instrument
type SeriesResponse struct {
	InstrumentID string              `json:"instrument_id"`
	Points       []domain.YearReturn `json:"points"`
}

// Service dispatches requests to the use cases
type Service struct {
	Instruments domain.InstrumentRepository
	Series      *series.Service
	Simulation  *simulation.Service
}

// NewService creates a new Service instance
func NewService(instruments domain.InstrumentRepository, seriesService *series.Service, simulationService *simulation.Service) *Service {
	return &Service{
		Instruments: instruments,
		Series:      seriesService,
		Simulation:  simulationService,
	}
}

// SetAllocation runs one slider move
func (s *Service) SetAllocation(_ context.Context, req SetAllocationRequest) (*AllocationResponse, error) {
	if err := validateAllocation(req.Allocation); err != nil {
		return nil, err
	}

	out, err := allocator.SetAllocation(req.Allocation, req.ID, req.Value, req.Locked)
	if err != nil {
		return nil, err
	}
	return &AllocationResponse{Allocation: out}, nil
}

// ToggleLock flips the lock of one bucket
func (s *Service) ToggleLock(_ context.Context, req BucketRequest) (*AllocationResponse, error) {
	if err := validateAllocation(req.Allocation); err != nil {
		return nil, err
	}

	out, err := allocator.ToggleLock(req.Allocation, req.ID)
	if err != nil {
		return nil, err
	}
	return &AllocationResponse{Allocation: out}, nil
}

// ToggleInstrument adds or removes a catalogued instrument
func (s *Service) ToggleInstrument(ctx context.Context, req BucketRequest) (*AllocationResponse, error) {
	if err := validateAllocation(req.Allocation); err != nil {
		return nil, err
	}

	// Removing never needs the catalogue; adding only accepts known instruments
	if req.Allocation.IndexOf(req.ID) < 0 {
		if _, err := s.Instruments.GetByID(ctx, req.ID); err != nil {
			return nil, err
		}
	}

	return &AllocationResponse{Allocation: allocator.ToggleInstrument(req.Allocation, req.ID)}, nil
}

// Equalize resets the allocation to equal shares
func (s *Service) Equalize(_ context.Context, req EqualizeRequest) (*AllocationResponse, error) {
	if err := validateIDs(req.Allocation); err != nil {
		return nil, err
	}
	return &AllocationResponse{Allocation: allocator.Equalize(req.Allocation)}, nil
}

// SplitAmount splits a contribution across the allocation
func (s *Service) SplitAmount(_ context.Context, req SplitRequest) (*SplitResponse, error) {
	split, err := allocator.SplitAmount(req.Amount, req.Allocation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &SplitResponse{Split: split}, nil
}

// Simulate runs a historical simulation
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (*simulation.SimulationResult, error) {
	if err := validateAllocation(req.Allocation); err != nil {
		return nil, err
	}

	return s.Simulation.Simulate(ctx, simulation.SimulateInput{
		Allocation: req.Allocation,
		StartYear:  req.StartYear,
		EndYear:    req.EndYear,
	})
}

// ListInstruments lists the catalogue
func (s *Service) ListInstruments(ctx context.Context, req ListInstrumentsRequest) (*InstrumentsResponse, error) {
	instruments, err := s.Instruments.List(ctx, req.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}

	resp := &InstrumentsResponse{Instruments: make([]Instrument, 0, len(instruments))}
	for _, inst := range instruments {
		resp.Instruments = append(resp.Instruments, Instrument{
			ID:       inst.ID,
			Name:     inst.Name,
			Kind:     string(inst.Kind),
			Currency: inst.Currency,
		})
	}
	return resp, nil
}

// GetSeries returns the yearly returns of one instrument
func (s *Service) GetSeries(ctx context.Context, instrumentID string) (*SeriesResponse, error) {
	rs, err := s.Series.GetSeries(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	return &SeriesResponse{InstrumentID: rs.InstrumentID, Points: rs.Points}, nil
}

func validateAllocation(set domain.AllocationSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// validateIDs checks everything but the total, which Equalize resets anyway
func validateIDs(set domain.AllocationSet) error {
	seen := make(map[string]bool, len(set))
	for _, a := range set {
		if a.ID == "" {
			return fmt.Errorf("%w: allocation bucket id cannot be empty", ErrInvalidRequest)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: allocation bucket %q is duplicated", ErrInvalidRequest, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// ErrorKind classifies an error for the transports
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindNotFound
	KindConflict
)

// Classify maps an error to the kind of failure the caller sees
// Sentinels win; the message checks cover validation errors from the use cases
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, domain.ErrBalancingDeadlock):
		return KindConflict
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalid
	case errors.Is(err, domain.ErrInstrumentNotFound), errors.Is(err, domain.ErrSeriesNotFound):
		return KindNotFound
	}

	errorMsg := err.Error()
	if strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "must be") ||
		strings.Contains(errorMsg, "cannot be") {
		return KindInvalid
	}
	if strings.Contains(errorMsg, "not found") {
		return KindNotFound
	}

	return KindInternal
}
