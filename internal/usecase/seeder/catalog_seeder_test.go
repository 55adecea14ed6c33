package seeder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockInstrumentRepository is a mock implementation of InstrumentRepository
type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) GetByID(ctx context.Context, id string) (*domain.Instrument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) Create(ctx context.Context, instrument *domain.Instrument) error {
	args := m.Called(ctx, instrument)
	return args.Error(0)
}

func (m *MockInstrumentRepository) List(ctx context.Context, kindFilter domain.InstrumentKind) ([]*domain.Instrument, error) {
	args := m.Called(ctx, kindFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

func notFound(id string) error {
	return fmt.Errorf("instrument %q: %w", id, domain.ErrInstrumentNotFound)
}

func TestCatalogSeeder_Seed_InstrumentsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockInstrumentRepository)
	seeder := NewCatalogSeeder(mockRepo)

	// Mock GetByID to return "not found" errors for every instrument
	for _, entry := range Catalog {
		mockRepo.On("GetByID", ctx, entry.ID).Return(nil, notFound(entry.ID))
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(instrument *domain.Instrument) bool {
		return instrument.ID == UABonds &&
			instrument.Name == "UA Government Bonds" &&
			instrument.Kind == domain.InstrumentKindBond &&
			instrument.Currency == "UAH"
	})).Return(nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)

	// Execute
	created, err := seeder.Seed(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, len(Catalog), created)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", len(Catalog))
}

func TestCatalogSeeder_Seed_InstrumentsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockInstrumentRepository)
	seeder := NewCatalogSeeder(mockRepo)

	for i := range Catalog {
		mockRepo.On("GetByID", ctx, Catalog[i].ID).Return(&Catalog[i], nil)
	}

	// Execute
	created, err := seeder.Seed(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Zero(t, created)
	mockRepo.AssertExpectations(t)
	// Verify Create was NOT called (instruments already exist)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogSeeder_Seed_PartialInstrumentsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockInstrumentRepository)
	seeder := NewCatalogSeeder(mockRepo)

	// Mock: deposits exist, the rest is missing
	missing := 0
	for i := range Catalog {
		if Catalog[i].Kind == domain.InstrumentKindDeposit {
			mockRepo.On("GetByID", ctx, Catalog[i].ID).Return(&Catalog[i], nil)
			continue
		}
		mockRepo.On("GetByID", ctx, Catalog[i].ID).Return(nil, notFound(Catalog[i].ID))
		missing++
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(instrument *domain.Instrument) bool {
		return instrument.Kind != domain.InstrumentKindDeposit
	})).Return(nil)

	// Execute
	created, err := seeder.Seed(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, missing, created)
	mockRepo.AssertNumberOfCalls(t, "Create", missing)
}

func TestCatalogSeeder_Seed_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockInstrumentRepository)
	seeder := NewCatalogSeeder(mockRepo)

	mockRepo.On("GetByID", ctx, Catalog[0].ID).Return(nil, errors.New("connection refused"))

	// Execute
	created, err := seeder.Seed(ctx)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Zero(t, created)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
