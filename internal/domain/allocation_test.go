package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationSet_Sums(t *testing.T) {
	set := AllocationSet{
		{ID: "a", Value: 50, Locked: true},
		{ID: "b", Value: 30},
		{ID: "c", Value: 20, Locked: true},
	}

	assert.Equal(t, 100, set.Sum())
	assert.Equal(t, 70, set.LockedSum())
	assert.Equal(t, 0, AllocationSet{}.Sum())
}

func TestAllocationSet_IndexOf(t *testing.T) {
	set := AllocationSet{{ID: "a", Value: 60}, {ID: "b", Value: 40}}

	assert.Equal(t, 0, set.IndexOf("a"))
	assert.Equal(t, 1, set.IndexOf("b"))
	assert.Equal(t, -1, set.IndexOf("missing"))
	assert.Equal(t, []string{"a", "b"}, set.IDs())
}

func TestAllocationSet_CloneDoesNotShareMemory(t *testing.T) {
	set := AllocationSet{{ID: "a", Value: 60}, {ID: "b", Value: 40}}

	clone := set.Clone()
	clone[0].Value = 10
	clone[1].Locked = true

	assert.Equal(t, 60, set[0].Value)
	assert.False(t, set[1].Locked)
	assert.Nil(t, AllocationSet(nil).Clone())
}

func TestAllocationSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     AllocationSet
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Empty set should pass",
			set:     AllocationSet{},
			wantErr: false,
		},
		{
			name:    "Set summing to 100 should pass",
			set:     AllocationSet{{ID: "a", Value: 34}, {ID: "b", Value: 33}, {ID: "c", Value: 33, Locked: true}},
			wantErr: false,
		},
		{
			name:    "Set not summing to 100 should fail",
			set:     AllocationSet{{ID: "a", Value: 50}, {ID: "b", Value: 40}},
			wantErr: true,
			errMsg:  "allocation must sum to 100, got 90",
		},
		{
			name:    "Negative value should fail",
			set:     AllocationSet{{ID: "a", Value: 110}, {ID: "b", Value: -10}},
			wantErr: true,
			errMsg:  "value must be between 0 and 100",
		},
		{
			name:    "Duplicate ID should fail",
			set:     AllocationSet{{ID: "a", Value: 50}, {ID: "a", Value: 50}},
			wantErr: true,
			errMsg:  "is duplicated",
		},
		{
			name:    "Empty ID should fail",
			set:     AllocationSet{{ID: "", Value: 100}},
			wantErr: true,
			errMsg:  "id cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBalancingDeadlockError_IsSentinel(t *testing.T) {
	var err error = &BalancingDeadlockError{BucketID: "a", Remaining: 30, Increase: true}

	assert.True(t, errors.Is(err, ErrBalancingDeadlock))
	assert.False(t, errors.Is(err, ErrInstrumentNotFound))
	assert.Equal(t, `balancing deadlock: increase of "a" stalled with 30 points left to redistribute`, err.Error())
}
