package sweep

import (
	"fmt"
)

// Plan is an expanded Spec, ready for dispatch.
type Plan struct {
	// Mode the plan was built for.
	Mode Mode

	// Common holds the parameters shared by every task.
	Common Params

	// Tasks holds the per-task parameters with Common stripped. In random
	// mode they are templates whose Range markers are sampled per draw.
	Tasks []Params

	// Units is the number of units of work: len(Tasks) in grid mode, the
	// iteration count in random mode.
	Units int
}

// NewPlan expands spec and extracts its common parameters. Every task is
// rendered once so that unsupported values fail here, before any dispatch.
//
// Parameters:
//   - spec: the raw parameter space
//   - iterations: 0 for grid mode, the number of draws for random mode
func NewPlan(spec Spec, iterations int) (*Plan, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", ErrConfiguration, iterations)
	}

	mode := Grid
	if iterations > 0 {
		mode = Random
	}

	tasks, err := Expand(spec, mode)
	if err != nil {
		return nil, err
	}

	common, stripped := ExtractCommon(tasks)

	plan := &Plan{
		Mode:   mode,
		Common: common,
		Tasks:  stripped,
		Units:  len(stripped),
	}

	if mode == Random {
		plan.Units = iterations
	}

	if _, err := Name(common, Compact); err != nil {
		return nil, err
	}

	if _, err := plan.Names(Compact); err != nil {
		return nil, err
	}

	return plan, nil
}

// Names renders every task, or template in random mode, in the given style.
func (p *Plan) Names(style Style) ([]string, error) {
	names := make([]string, len(p.Tasks))

	for i, task := range p.Tasks {
		name, err := Name(task, style)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}

		names[i] = name
	}

	return names, nil
}
