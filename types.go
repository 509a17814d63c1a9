package sweep

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

//////
// Const, vars, types.
//////

// Mode selects how a Spec is turned into units of work.
type Mode int

const (
	// Grid runs every combination of the declared alternatives exactly once.
	Grid Mode = iota

	// Random runs a fixed number of iterations, each drawing one expanded
	// combination at random and sampling its Range markers.
	Random
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Random {
		return "random"
	}

	return "grid"
}

// Spec is the raw, declarative description of a parameter space: a flat list
// alternating names (string) and values.
//
// A value may be:
//   - Enum: ordered alternatives, see OneOf
//   - a numeric slice ([]int, []int64, []float64): shorthand for an Enum of its elements
//   - Range: a uniform [lo, hi) marker, random mode only, see Uniform
//   - NamedFunc: a callable rendered by its name, see Func
//   - anything else: an opaque scalar
//
// An Enum may also stand in a name slot. Alternatives of type Spec are
// fragments: their entries are spliced in place of the slot, which lets a
// later branch depend on an earlier choice.
//
// Usage:
//
//	spec := sweep.Spec{
//	    "lr", sweep.OneOf(0.01, 0.001),
//	    sweep.OneOf(
//	        sweep.Spec{"optimizer", "sgd"},
//	        sweep.Spec{"optimizer", "adam", "beta1", sweep.OneOf(0.8, 0.9)},
//	    ),
//	}
type Spec []any

// Enum is an ordered list of alternatives for a single slot. An empty Enum
// is not expanded; it is kept as an empty value and rendered as "[]".
type Enum []any

// OneOf builds an Enum from its arguments.
func OneOf(alternatives ...any) Enum {
	return Enum(alternatives)
}

// Range designates uniform sampling between two endpoints. It is valid only in
// random mode, where it stays an unresolved marker until sampled. The
// endpoints may be given in any order.
type Range struct {
	Lo float64
	Hi float64
}

// Uniform builds a Range from two endpoints of any numeric type.
//
// Usage:
//
//	sweep.Uniform(0, 5)          // ints
//	sweep.Uniform(1e-4, 1e-1)    // floats
func Uniform[T constraints.Integer | constraints.Float](lo, hi T) Range {
	return Range{Lo: float64(lo), Hi: float64(hi)}
}

// Min returns the smaller endpoint.
func (r Range) Min() float64 { return min(r.Lo, r.Hi) }

// Max returns the larger endpoint.
func (r Range) Max() float64 { return max(r.Lo, r.Hi) }

// NamedFunc is a callable parameter value. Only Name takes part in naming and
// equality, Fn is passed through to the task untouched.
type NamedFunc struct {
	Name string
	Fn   any
}

// Func wraps fn so that it can be used as a parameter value.
func Func(name string, fn any) NamedFunc {
	return NamedFunc{Name: name, Fn: fn}
}

// Param is a single resolved name/value pair.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered parameter list. Names may repeat, in which case the
// later occurrence is the effective one.
type Params []Param

// Lookup returns the effective value of name.
func (p Params) Lookup(name string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Name == name {
			return p[i].Value, true
		}
	}

	return nil, false
}

// Has reports whether name is present.
func (p Params) Has(name string) bool {
	_, ok := p.Lookup(name)

	return ok
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	out := make(Params, len(p))
	copy(out, p)

	return out
}

// Map returns the effective values keyed by name.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}

	return m
}

// Worker is a logical execution slot bound to a device for the lifetime of a
// run.
type Worker struct {
	// Slot is the 1-based worker id.
	Slot int

	// Device is the accelerator index, 0 means no device.
	Device int
}

// Args is the parameter bag handed to a TaskFunc for one unit of work.
type Args struct {
	// Index is the unit index: the task index in grid mode, the iteration
	// number in random mode.
	Index int

	// OutputDir is unique per unit. It is not created by the dispatcher.
	OutputDir string

	// DeviceID is the device of the worker executing the unit, 0 means none.
	DeviceID int

	// Common holds the parameters shared by every task of the run.
	Common Params

	// Task holds the parameters specific to this unit.
	Task Params
}

// Lookup returns the effective value of name, task parameters taking
// precedence over common ones.
func (a Args) Lookup(name string) (any, bool) {
	if v, ok := a.Task.Lookup(name); ok {
		return v, true
	}

	return a.Common.Lookup(name)
}

// Float returns name as a float64. Integer values are converted.
func (a Args) Float(name string) (float64, bool) {
	v, ok := a.Lookup(name)
	if !ok {
		return 0, false
	}

	return toFloat(v)
}

// String returns name as a string.
func (a Args) String(name string) (string, bool) {
	v, ok := a.Lookup(name)
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// All returns Common followed by Task, the order in which a callee should
// apply them.
func (a Args) All() Params {
	out := make(Params, 0, len(a.Common)+len(a.Task))
	out = append(out, a.Common...)

	return append(out, a.Task...)
}

// TaskFunc is the user function executed once per unit of work. A returned
// error, or a panic, marks the unit as failed.
//
// Usage example:
//
//	fn := sweep.TaskFunc(func(ctx context.Context, args sweep.Args) error {
//	    lr, _ := args.Float("lr")
//
//	    return train(ctx, args.OutputDir, args.DeviceID, lr)
//	})
type TaskFunc func(ctx context.Context, args Args) error

// ProgressUpdate is emitted after each unit of work completes.
type ProgressUpdate struct {
	// Index of the unit that completed.
	Index int

	// Done is the number of units completed so far, including this one.
	Done int

	// Total is the number of units of the run.
	Total int

	// Name is the spaced rendering of the unit's parameters.
	Name string

	// Worker is the slot that executed the unit.
	Worker Worker

	// Err is the unit's failure, nil on success.
	Err error
}

// Rand is the random source used for template draws and Range sampling.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Config holds everything a run needs besides the task function and the
// Spec.
//
// Exactly one of Devices and Workers must be set:
//   - Devices: one worker per entry, bound to that device id (positive)
//   - Workers: that many workers, all with device id 0
//
// Usage example:
//
//	config := sweep.DefaultConfig()
//	config.Root = "runs/resnet"
//	config.Devices = []int{1, 2, 3, 4}
//	config.Iterations = 50 // Random search, 50 draws.
//
//	report, err := sweep.Run(ctx, config, fn, spec)
type Config struct {
	// Root is the directory under which every unit's OutputDir is composed.
	// Required.
	Root string

	// Devices lists the device ids, one worker per entry.
	Devices []int

	// Workers is the number of device-less workers.
	Workers int

	// Iterations switches to random mode when positive.
	Iterations int

	// FailFast stops dispatching new units after the first failure and
	// returns it. Default is to isolate failures and keep going.
	FailFast bool

	// RandomState drives template draws and Range sampling. Access is
	// serialized by the dispatcher, so one source may serve all workers.
	RandomState *rand.Rand

	// Logger receives run and unit events. Nil means no logging.
	Logger *zap.Logger

	// ProgressChan receives one update per completed unit. Updates are
	// dropped when the channel is full. If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate
}

// Mode returns the mode the configuration selects.
func (c Config) Mode() Mode {
	if c.Iterations > 0 {
		return Random
	}

	return Grid
}
