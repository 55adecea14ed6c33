package domain

import (
	"errors"
	"fmt"
)

// MaxAllocation is the total every allocation set must add up to
const MaxAllocation = 100

// Allocatable represents one bucket of a percentage allocation
// Value is an integer percentage in [0, 100]; a Locked bucket is skipped by redistribution
type Allocatable struct {
	ID     string `json:"id"`
	Value  int    `json:"value"`
	Locked bool   `json:"locked"`
}

// AllocationSet is an ordered collection of buckets
// Order is insertion order. It drives presentation (colours) but not balancing.
type AllocationSet []Allocatable

// Sum returns the total value of all buckets
func (s AllocationSet) Sum() int {
	total := 0
	for _, a := range s {
		total += a.Value
	}
	return total
}

// LockedSum returns the total value of the locked buckets
func (s AllocationSet) LockedSum() int {
	total := 0
	for _, a := range s {
		if a.Locked {
			total += a.Value
		}
	}
	return total
}

// IndexOf returns the position of the bucket with the given ID, or -1
func (s AllocationSet) IndexOf(id string) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no memory with s
func (s AllocationSet) Clone() AllocationSet {
	if s == nil {
		return nil
	}
	out := make(AllocationSet, len(s))
	copy(out, s)
	return out
}

// IDs returns the bucket IDs in set order
func (s AllocationSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, a := range s {
		ids = append(ids, a.ID)
	}
	return ids
}

// Validate ensures the set is consistent
// Returns an error if an ID is empty or duplicated, a value is out of range,
// or a non-empty set does not sum to exactly 100
func (s AllocationSet) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, a := range s {
		if a.ID == "" {
			return errors.New("allocation bucket id cannot be empty")
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("allocation bucket %q is duplicated", a.ID)
		}
		seen[a.ID] = struct{}{}

		if a.Value < 0 || a.Value > MaxAllocation {
			return fmt.Errorf("allocation bucket %q value must be between 0 and 100, got %d", a.ID, a.Value)
		}
	}

	if len(s) > 0 && s.Sum() != MaxAllocation {
		return fmt.Errorf("allocation must sum to 100, got %d", s.Sum())
	}

	return nil
}
