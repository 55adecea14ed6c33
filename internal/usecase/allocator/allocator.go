package allocator

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// SplitAmount splits a contribution across the buckets of an allocation
// Returns a map of bucket ID to amount
// Logic:
//  1. Every bucket gets total * value / 100, truncated to cents
//  2. The cents lost to truncation go to the first bucket with a non-zero value
//
// Safety: Ensures the split equals the total exactly (no penny lost)
func SplitAmount(totalAmount decimal.Decimal, set domain.AllocationSet) (map[string]decimal.Decimal, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("total amount must be positive")
	}

	if len(set) == 0 {
		return nil, errors.New("allocation cannot be empty")
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Truncated share per bucket
	split := make(map[string]decimal.Decimal, len(set))
	allocatedSoFar := decimal.Zero
	for _, a := range set {
		share := totalAmount.Mul(decimal.NewFromInt(int64(a.Value))).Div(hundred).Truncate(2)
		split[a.ID] = share
		allocatedSoFar = allocatedSoFar.Add(share)
	}

	// Step 2: Assign the truncation leftover to the first funded bucket
	leftover := totalAmount.Sub(allocatedSoFar)
	if !leftover.IsZero() {
		first := firstFunded(set)
		split[first] = split[first].Add(leftover)
	}

	// Safety check: Ensure the split equals the total exactly
	totalAllocated := decimal.Zero
	for _, amount := range split {
		totalAllocated = totalAllocated.Add(amount)
	}

	if !totalAllocated.Equal(totalAmount) {
		return nil, errors.New("total split does not equal total amount")
	}

	return split, nil
}

// firstFunded returns the ID of the first bucket holding a non-zero value
// A validated set sums to 100, so such a bucket always exists
func firstFunded(set domain.AllocationSet) string {
	for _, a := range set {
		if a.Value > 0 {
			return a.ID
		}
	}
	return set[0].ID
}
