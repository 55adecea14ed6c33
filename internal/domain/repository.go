package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// InstrumentRepository defines the interface for instrument catalogue persistence
type InstrumentRepository interface {
	// GetByID retrieves an instrument by its ID
	// Returns an error wrapping ErrInstrumentNotFound when it does not exist
	GetByID(ctx context.Context, id string) (*Instrument, error)

	// Create creates a new instrument
	Create(ctx context.Context, instrument *Instrument) error

	// List retrieves instruments, optionally filtered by kind
	// If kindFilter is empty, returns all instruments
	List(ctx context.Context, kindFilter InstrumentKind) ([]*Instrument, error)
}

// ReturnSeriesRepository defines the interface for yearly return persistence
type ReturnSeriesRepository interface {
	// Upsert stores the return of an instrument for one year, replacing any previous value
	Upsert(ctx context.Context, instrumentID string, year int, value decimal.Decimal) error

	// GetByInstrument retrieves the full series of an instrument ordered by year
	// Returns an error wrapping ErrSeriesNotFound when no year is stored
	GetByInstrument(ctx context.Context, instrumentID string) (*ReturnSeries, error)

	// ListAll retrieves every stored series
	ListAll(ctx context.Context) ([]*ReturnSeries, error)
}
