package sweep

import (
	"fmt"
)

//////
// Space expansion.
//////

// Expand turns spec into the list of concrete tasks it describes.
//
// The expansion is depth-first and left-to-right: the first Enum found is
// replaced by each of its alternatives in turn, and the result is expanded
// again. Independent enumerations therefore multiply, and the output order is
// the declaration order. Fragment alternatives (Spec) are spliced in place of
// the slot, so what follows a choice can depend on it.
//
// In Random mode Range markers are kept as-is, to be resolved per draw by
// Sample. In Grid mode a Range is an error.
//
// Parameters:
//   - spec: the raw name/value list
//   - mode: Grid or Random
//
// Returns:
//   - []Params: one entry per task, in expansion order
//   - error: ErrMalformedSpecification if a completed task does not alternate
//     string names and values
//
// Usage example:
//
//	tasks, err := sweep.Expand(sweep.Spec{
//	    "lr", sweep.OneOf(0.01, 0.001),
//	    "bn", sweep.OneOf(true, false),
//	}, sweep.Grid)
//	// 4 tasks: lr=0.01,bn=1 / lr=0.01,bn=0 / lr=0.001,bn=1 / lr=0.001,bn=0
func Expand(spec Spec, mode Mode) ([]Params, error) {
	tasks := []Params{}

	if err := expand([]any(spec), 0, mode, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// expand scans entries from position from onward. Entries before from are
// known to hold no enumeration.
func expand(entries []any, from int, mode Mode, out *[]Params) error {
	for i := from; i < len(entries); i++ {
		alternatives, ok := enumeration(entries[i])
		if !ok {
			continue
		}

		for _, alternative := range alternatives {
			fragment, isFragment := alternative.(Spec)

			next := make([]any, 0, len(entries)+len(fragment))
			next = append(next, entries[:i]...)

			if isFragment {
				next = append(next, fragment...)
			} else {
				next = append(next, alternative)
			}

			next = append(next, entries[i+1:]...)

			if err := expand(next, i, mode, out); err != nil {
				return err
			}
		}

		return nil
	}

	task, err := complete(entries, mode)
	if err != nil {
		return err
	}

	*out = append(*out, task)

	return nil
}

// complete validates a fully expanded entry list and converts it to Params.
func complete(entries []any, mode Mode) (Params, error) {
	if len(entries)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of entries (%d) in %v", ErrMalformedSpecification, len(entries), entries)
	}

	task := make(Params, 0, len(entries)/2)

	for i := 0; i < len(entries); i += 2 {
		name, ok := entries[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d (%v) is not a name in %v", ErrMalformedSpecification, i, entries[i], entries)
		}

		value := entries[i+1]

		if _, isRange := value.(Range); isRange && mode != Random {
			return nil, fmt.Errorf("%w: range %q is only valid in random mode", ErrMalformedSpecification, name)
		}

		task = append(task, Param{Name: name, Value: value})
	}

	return task, nil
}

// enumeration reports whether v must be expanded, and into what.
func enumeration(v any) ([]any, bool) {
	switch e := v.(type) {
	case Enum:
		return e, len(e) > 0
	case []int:
		return sliceToAny(e)
	case []int64:
		return sliceToAny(e)
	case []float64:
		return sliceToAny(e)
	}

	return nil, false
}

func sliceToAny[T any](s []T) ([]any, bool) {
	if len(s) == 0 {
		return nil, false
	}

	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out, true
}
