package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// returnSeriesRepository implements domain.ReturnSeriesRepository
type returnSeriesRepository struct {
	db *DB
}

// NewReturnSeriesRepository creates a new return series repository
func NewReturnSeriesRepository(db *DB) domain.ReturnSeriesRepository {
	return &returnSeriesRepository{db: db}
}

// Upsert stores the return of an instrument for one year
func (r *returnSeriesRepository) Upsert(ctx context.Context, instrumentID string, year int, value decimal.Decimal) error {
	query := `
		INSERT INTO return_series (instrument_id, year, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (instrument_id, year) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := r.db.ExecContext(ctx, query, instrumentID, year, value.String())
	if err != nil {
		return fmt.Errorf("failed to upsert return for %s/%d: %w", instrumentID, year, err)
	}

	return nil
}

// GetByInstrument retrieves the series of an instrument ordered by year
func (r *returnSeriesRepository) GetByInstrument(ctx context.Context, instrumentID string) (*domain.ReturnSeries, error) {
	query := `
		SELECT instrument_id, year, value
		FROM return_series
		WHERE instrument_id = $1
		ORDER BY year
	`

	series, err := r.query(ctx, query, instrumentID)
	if err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("instrument %q: %w", instrumentID, domain.ErrSeriesNotFound)
	}

	return series[0], nil
}

// ListAll retrieves every stored series, ordered by instrument then year
func (r *returnSeriesRepository) ListAll(ctx context.Context) ([]*domain.ReturnSeries, error) {
	query := `
		SELECT instrument_id, year, value
		FROM return_series
		ORDER BY instrument_id, year
	`

	return r.query(ctx, query)
}

// query groups consecutive rows of the same instrument into one series
// Rows must be ordered by instrument_id, year
func (r *returnSeriesRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.ReturnSeries, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query return series: %w", err)
	}
	defer rows.Close()

	var out []*domain.ReturnSeries
	var current *domain.ReturnSeries
	for rows.Next() {
		var instrumentID string
		var year int
		var valueStr string

		if err := rows.Scan(&instrumentID, &year, &valueStr); err != nil {
			return nil, fmt.Errorf("failed to scan return series row: %w", err)
		}

		// Parse value (NUMERIC)
		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse return value: %w", err)
		}

		if current == nil || current.InstrumentID != instrumentID {
			current = &domain.ReturnSeries{InstrumentID: instrumentID}
			out = append(out, current)
		}
		current.Points = append(current.Points, domain.YearReturn{Year: year, Value: value})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate return series: %w", err)
	}

	return out, nil
}
