package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/series"
	"github.com/simaogato/wealthflow-widgets/internal/usecase/simulation"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	instruments := memory.NewInstrumentRepository()
	require.NoError(t, instruments.Create(ctx, &domain.Instrument{ID: "sp500", Name: "S&P 500", Kind: domain.InstrumentKindIndex, Currency: "USD"}))
	require.NoError(t, instruments.Create(ctx, &domain.Instrument{ID: "ua-bonds", Name: "UA Bonds", Kind: domain.InstrumentKindBond, Currency: "UAH"}))

	seriesRepo := memory.NewReturnSeriesRepository()
	require.NoError(t, seriesRepo.Upsert(ctx, "sp500", 2020, decimal.NewFromInt(20)))

	cache := series.NewCache(seriesRepo, zerolog.Nop())
	require.NoError(t, cache.Refresh(ctx))

	return NewService(
		instruments,
		series.NewService(instruments, seriesRepo),
		simulation.NewService(instruments, cache.Lookup, zerolog.Nop()),
	)
}

func TestService_SetAllocation(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.SetAllocation(context.Background(), SetAllocationRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 50}, {ID: "b", Value: 30}, {ID: "c", Value: 20}},
		ID:         "a",
		Value:      20,
	})

	require.NoError(t, err)
	assert.Equal(t, []int{20, 45, 35}, values(resp.Allocation))
}

func TestService_SetAllocation_InvalidAllocation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetAllocation(context.Background(), SetAllocationRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 50}},
		ID:         "a",
		Value:      20,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, KindInvalid, Classify(err))
}

func TestService_SetAllocation_Deadlock(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetAllocation(context.Background(), SetAllocationRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 50}, {ID: "b", Value: 50, Locked: true}},
		ID:         "a",
		Value:      20,
	})

	require.Error(t, err)
	assert.Equal(t, KindConflict, Classify(err))
}

func TestService_ToggleInstrument(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.ToggleInstrument(ctx, BucketRequest{
		Allocation: domain.AllocationSet{{ID: "sp500", Value: 100}},
		ID:         "ua-bonds",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50}, values(resp.Allocation))

	// removing works even for instruments no longer in the catalogue
	resp, err = svc.ToggleInstrument(ctx, BucketRequest{
		Allocation: domain.AllocationSet{{ID: "sp500", Value: 60}, {ID: "retired", Value: 40}},
		ID:         "retired",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AllocationSet{{ID: "sp500", Value: 100}}, resp.Allocation)

	_, err = svc.ToggleInstrument(ctx, BucketRequest{
		Allocation: domain.AllocationSet{{ID: "sp500", Value: 100}},
		ID:         "btc",
	})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, Classify(err))
}

func TestService_Equalize(t *testing.T) {
	svc := newTestService(t)

	// Equalize repairs a total that does not add up
	resp, err := svc.Equalize(context.Background(), EqualizeRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 10}, {ID: "b", Value: 10, Locked: true}, {ID: "c"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{34, 33, 33}, values(resp.Allocation))

	_, err = svc.Equalize(context.Background(), EqualizeRequest{
		Allocation: domain.AllocationSet{{ID: "a"}, {ID: "a"}},
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalid, Classify(err))
}

func TestService_SplitAmount(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.SplitAmount(context.Background(), SplitRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 50}, {ID: "b", Value: 50}},
		Amount:     decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.True(t, resp.Split["a"].Equal(decimal.NewFromInt(500)))

	_, err = svc.SplitAmount(context.Background(), SplitRequest{
		Allocation: domain.AllocationSet{{ID: "a", Value: 100}},
		Amount:     decimal.Zero,
	})
	assert.Equal(t, KindInvalid, Classify(err))
}

func TestService_SimulateAndCatalogue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.Simulate(ctx, SimulateRequest{Allocation: domain.AllocationSet{{ID: "sp500", Value: 100}}})
	require.NoError(t, err)
	require.Len(t, result.Portfolio, 1)
	assert.Equal(t, 2020, result.Portfolio[0].Period)

	list, err := svc.ListInstruments(ctx, ListInstrumentsRequest{Kind: domain.InstrumentKindBond})
	require.NoError(t, err)
	require.Len(t, list.Instruments, 1)
	assert.Equal(t, "ua-bonds", list.Instruments[0].ID)

	rs, err := svc.GetSeries(ctx, "ua-bonds")
	require.NoError(t, err)
	assert.Empty(t, rs.Points)

	_, err = svc.GetSeries(ctx, "btc")
	assert.Equal(t, KindNotFound, Classify(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadlock", &domain.BalancingDeadlockError{BucketID: "a", Remaining: 3, Increase: true}, KindConflict},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrInstrumentNotFound), KindNotFound},
		{"series not found", domain.ErrSeriesNotFound, KindNotFound},
		{"validation message", errors.New("invalid year 1800: must be between 1900 and 2200"), KindInvalid},
		{"unknown", errors.New("connection refused"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func values(set domain.AllocationSet) []int {
	out := make([]int, len(set))
	for i, a := range set {
		out[i] = a.Value
	}
	return out
}
