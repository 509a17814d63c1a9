package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkersFromDevices(t *testing.T) {
	workers, err := NewWorkers([]int{2, 5, 7}, 0)
	require.NoError(t, err)

	assert.Equal(t, []Worker{
		{Slot: 1, Device: 2},
		{Slot: 2, Device: 5},
		{Slot: 3, Device: 7},
	}, workers)
}

func TestNewWorkersFromCount(t *testing.T) {
	workers, err := NewWorkers(nil, 3)
	require.NoError(t, err)

	assert.Equal(t, []Worker{{Slot: 1}, {Slot: 2}, {Slot: 3}}, workers)
}

func TestNewWorkersErrors(t *testing.T) {
	tests := []struct {
		name    string
		devices []int
		count   int
	}{
		{name: "both", devices: []int{1}, count: 2},
		{name: "neither"},
		{name: "negative count", count: -1},
		{name: "zero device", devices: []int{0}},
		{name: "negative device", devices: []int{1, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWorkers(tt.devices, tt.count)

			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
