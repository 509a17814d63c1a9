package sweep

import (
	"fmt"
)

// NewWorkers builds the worker table of a run. Exactly one of devices and
// count must be given:
//   - devices: one worker per id, ids must be positive
//   - count: that many workers without a device (id 0)
//
// Slots are numbered from 1 in table order. The table is never modified once
// a run starts.
func NewWorkers(devices []int, count int) ([]Worker, error) {
	switch {
	case len(devices) > 0 && count != 0:
		return nil, fmt.Errorf("%w: devices and worker count are mutually exclusive", ErrConfiguration)
	case len(devices) == 0 && count == 0:
		return nil, fmt.Errorf("%w: one of devices or worker count is required", ErrConfiguration)
	case count < 0:
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrConfiguration, count)
	}

	if count > 0 {
		workers := make([]Worker, count)
		for i := range workers {
			workers[i] = Worker{Slot: i + 1}
		}

		return workers, nil
	}

	workers := make([]Worker, len(devices))

	for i, device := range devices {
		if device <= 0 {
			return nil, fmt.Errorf("%w: device ids must be positive, got %d", ErrConfiguration, device)
		}

		workers[i] = Worker{Slot: i + 1, Device: device}
	}

	return workers, nil
}
