package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// Fixed IDs of the instruments offered on the "UA Market" page
// They are the allocation bucket IDs the widgets send, so they never change
const (
	UAHDeposit = "uah-deposit"
	USDDeposit = "usd-deposit"
	EURDeposit = "eur-deposit"
	UABonds    = "ua-bonds"
	SP500      = "sp500"
	MSCIWorld  = "msci-world"
)

// Catalog is the instrument catalogue seeded on start-up
var Catalog = []domain.Instrument{
	{ID: UAHDeposit, Name: "UAH Deposit", Kind: domain.InstrumentKindDeposit, Currency: "UAH"},
	{ID: USDDeposit, Name: "USD Deposit", Kind: domain.InstrumentKindDeposit, Currency: "USD"},
	{ID: EURDeposit, Name: "EUR Deposit", Kind: domain.InstrumentKindDeposit, Currency: "EUR"},
	{ID: UABonds, Name: "UA Government Bonds", Kind: domain.InstrumentKindBond, Currency: "UAH"},
	{ID: SP500, Name: "S&P 500", Kind: domain.InstrumentKindIndex, Currency: "USD"},
	{ID: MSCIWorld, Name: "MSCI World", Kind: domain.InstrumentKindIndex, Currency: "USD"},
}

// CatalogSeeder handles seeding of the instrument catalogue
type CatalogSeeder struct {
	repo    domain.InstrumentRepository
	catalog []domain.Instrument
}

// NewCatalogSeeder creates a new CatalogSeeder for the default catalogue
func NewCatalogSeeder(repo domain.InstrumentRepository) *CatalogSeeder {
	return &CatalogSeeder{
		repo:    repo,
		catalog: Catalog,
	}
}

// Seed ensures all catalogue instruments exist
// If an instrument doesn't exist, it creates it; existing ones are left untouched
func (s *CatalogSeeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, entry := range s.catalog {
		_, err := s.repo.GetByID(ctx, entry.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrInstrumentNotFound) {
			return created, fmt.Errorf("failed to check instrument %s: %w", entry.ID, err)
		}

		instrument := entry

		// Validate before creating
		if err := instrument.Validate(); err != nil {
			return created, err
		}

		if err := s.repo.Create(ctx, &instrument); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
