package allocator

import (
	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// SetAllocation changes one bucket and redistributes the difference across the other unlocked buckets
// Returns a new set; the input set is never modified
// Logic:
//  1. Clamp the requested value into [0, 100]
//  2. Unknown bucket: return the set unchanged (no error)
//  3. A single bucket always holds 100, only its lock state changes
//  4. Apply the requested lock state, then cap the value at 100 - sum(other locked values)
//  5. Move the difference one point at a time across the other unlocked buckets, in set order,
//     pass after pass, until nothing is left to move
//  6. Store the new value on the changed bucket
//
// Safety: A pass that cannot move a single point returns *domain.BalancingDeadlockError
func SetAllocation(set domain.AllocationSet, changedID string, newValue int, newLocked bool) (domain.AllocationSet, error) {
	newValue = clamp(newValue, 0, domain.MaxAllocation)

	idx := set.IndexOf(changedID)
	if idx < 0 {
		return set.Clone(), nil
	}

	out := set.Clone()

	if len(out) == 1 {
		out[0].Value = domain.MaxAllocation
		out[0].Locked = newLocked
		return out, nil
	}

	// Step 1: Apply the lock state
	out[idx].Locked = newLocked

	// Step 2: Cap at the room left by every lock, the changed bucket's current value included when it is now locked
	maxValue := domain.MaxAllocation - out.LockedSum()
	if newValue > maxValue {
		newValue = max(maxValue, 0)
	}

	// Step 3: Redistribute the difference
	oldValue := out[idx].Value
	if err := redistribute(out, idx, newValue-oldValue); err != nil {
		return nil, err
	}

	out[idx].Value = newValue

	return out, nil
}

// ToggleLock flips the lock of a bucket and re-clamps its value against the new lock total
// Locking a bucket counts its own value as locked, so it shrinks to 100 - sum(locked values) when over it
// Unknown bucket: the set is returned unchanged
func ToggleLock(set domain.AllocationSet, id string) (domain.AllocationSet, error) {
	idx := set.IndexOf(id)
	if idx < 0 {
		return set.Clone(), nil
	}

	return SetAllocation(set, id, set[idx].Value, !set[idx].Locked)
}

// ToggleInstrument removes the bucket if present, otherwise appends an empty one
// Structural changes always reset the whole set with Equalize
func ToggleInstrument(set domain.AllocationSet, id string) domain.AllocationSet {
	out := make(domain.AllocationSet, 0, len(set)+1)
	removed := false
	for _, a := range set {
		if a.ID == id {
			removed = true
			continue
		}
		out = append(out, a)
	}

	if !removed {
		out = append(out, domain.Allocatable{ID: id})
	}

	return Equalize(out)
}

// Equalize resets every bucket to an equal share and clears all locks
// Each bucket gets floor(100/n); the leftover points go one by one to the first buckets,
// so the first bucket always carries the remainder and the total is exactly 100
func Equalize(set domain.AllocationSet) domain.AllocationSet {
	out := make(domain.AllocationSet, len(set))
	if len(set) == 0 {
		return out
	}

	share := domain.MaxAllocation / len(set)
	remainder := domain.MaxAllocation - share*len(set)

	for i, a := range set {
		value := share
		if i < remainder {
			value++
		}
		out[i] = domain.Allocatable{ID: a.ID, Value: value}
	}

	return out
}

// redistribute moves |change| points across the unlocked buckets other than skip
// A positive change takes points from buckets above 0, a negative change gives points to buckets below 100
// Buckets are visited in set order, one point per bucket per pass
func redistribute(set domain.AllocationSet, skip int, change int) error {
	increase := change > 0
	remaining := change
	if remaining < 0 {
		remaining = -remaining
	}

	for remaining > 0 {
		moved := false

		for i := range set {
			if remaining == 0 {
				break
			}
			if i == skip || set[i].Locked {
				continue
			}

			if increase && set[i].Value > 0 {
				set[i].Value--
			} else if !increase && set[i].Value < domain.MaxAllocation {
				set[i].Value++
			} else {
				continue
			}

			remaining--
			moved = true
		}

		if !moved {
			return &domain.BalancingDeadlockError{
				BucketID:  set[skip].ID,
				Remaining: remaining,
				Increase:  increase,
			}
		}
	}

	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
