package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	db *DB
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *DB) domain.InstrumentRepository {
	return &instrumentRepository{db: db}
}

// GetByID retrieves an instrument by its ID
func (r *instrumentRepository) GetByID(ctx context.Context, id string) (*domain.Instrument, error) {
	query := `
		SELECT id, name, kind, currency
		FROM instruments
		WHERE id = $1
	`

	var instrument domain.Instrument
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&instrument.ID,
		&instrument.Name,
		&instrument.Kind,
		&instrument.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instrument %q: %w", id, domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("failed to get instrument by ID: %w", err)
	}

	return &instrument, nil
}

// Create creates a new instrument
func (r *instrumentRepository) Create(ctx context.Context, instrument *domain.Instrument) error {
	query := `
		INSERT INTO instruments (id, name, kind, currency)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		instrument.ID,
		instrument.Name,
		string(instrument.Kind),
		instrument.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to create instrument: %w", err)
	}

	return nil
}

// List retrieves instruments ordered by ID, optionally filtered by kind
func (r *instrumentRepository) List(ctx context.Context, kindFilter domain.InstrumentKind) ([]*domain.Instrument, error) {
	query := `
		SELECT id, name, kind, currency
		FROM instruments
		WHERE ($1 = '' OR kind = $1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, string(kindFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []*domain.Instrument
	for rows.Next() {
		var instrument domain.Instrument
		if err := rows.Scan(&instrument.ID, &instrument.Name, &instrument.Kind, &instrument.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, &instrument)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruments: %w", err)
	}

	return instruments, nil
}
