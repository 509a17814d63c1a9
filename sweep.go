package sweep

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//////
// Exported functionalities.
//////

// DefaultConfig returns a configuration with its own random source and no
// logging. Root and one of Devices or Workers still have to be set.
func DefaultConfig() Config {
	return Config{
		RandomState:  rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:       zap.NewNop(),
		ProgressChan: nil, // Default to no progress updates.
	}
}

// Run expands spec and executes fn once per unit of work.
//
// Grid mode (config.Iterations == 0) runs every task once. Random mode runs
// config.Iterations units, each drawing a task uniformly and sampling its
// Range markers.
//
// With a single worker, units run in order in the calling goroutine. With
// more, each worker pulls the next pending unit when free, and the unit gets
// the device bound to the worker that runs it.
//
// Parameters:
//   - ctx: passed to fn. Once done, no new unit starts
//   - config: run configuration, see Config
//   - fn: the task function
//   - spec: the parameter space
//
// Returns:
//   - *Report: the outcome of every executed unit
//   - error: ErrConfiguration, ErrMalformedSpecification or ErrValueFormat
//     before any dispatch, with a nil report. In fail-fast mode, the first
//     failure as a *TaskError along with the partial report. If ctx ends
//     before every unit ran, its error along with the partial report.
//
// Usage example:
//
//	config := sweep.DefaultConfig()
//	config.Root = "runs"
//	config.Devices = []int{1, 2}
//
//	report, err := sweep.Run(ctx, config, train, sweep.Spec{
//	    "lr", sweep.OneOf(0.01, 0.001, 0.0001),
//	})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(report.Summary())
func Run(ctx context.Context, config Config, fn TaskFunc, spec Spec) (*Report, error) {
	if err := validate(config, fn); err != nil {
		return nil, err
	}

	plan, err := NewPlan(spec, config.Iterations)
	if err != nil {
		return nil, err
	}

	return Dispatch(ctx, config, fn, plan)
}

// Dispatch executes an already built plan. See Run.
func Dispatch(ctx context.Context, config Config, fn TaskFunc, plan *Plan) (*Report, error) {
	if err := validate(config, fn); err != nil {
		return nil, err
	}

	workers, err := NewWorkers(config.Devices, config.Workers)
	if err != nil {
		return nil, err
	}

	if plan.Mode != config.Mode() {
		return nil, fmt.Errorf("%w: plan built for %s mode, configuration selects %s", ErrConfiguration, plan.Mode, config.Mode())
	}

	rng := config.RandomState
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := uuid.NewString()

	d := &dispatcher{
		config:  config,
		fn:      fn,
		plan:    plan,
		workers: workers,
		rng:     newLockedRand(rng),
		agg:     newAggregator(runID, plan.Mode, plan.Units),
		logger:  logger.With(zap.String("run_id", runID)),
	}

	return d.run(ctx)
}

//////
// Dispatcher.
//////

// dispatcher holds the state of one run. Everything but agg and rng is
// read-only once the run starts.
type dispatcher struct {
	config  Config
	fn      TaskFunc
	plan    *Plan
	workers []Worker
	rng     *lockedRand
	agg     *aggregator
	logger  *zap.Logger
}

func (d *dispatcher) run(ctx context.Context) (*Report, error) {
	common, _ := Name(d.plan.Common, Spaced)

	d.logger.Info("Starting run",
		zap.Stringer("mode", d.plan.Mode),
		zap.Int("units", d.plan.Units),
		zap.Int("workers", len(d.workers)),
		zap.String("common", common))

	start := time.Now()

	var err error
	if len(d.workers) == 1 {
		err = d.sequential(ctx)
	} else {
		err = d.parallel(ctx)
	}

	report := d.agg.finish()

	d.logger.Info("Run finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	return report, err
}

// sequential runs every unit in order on the only worker.
func (d *dispatcher) sequential(ctx context.Context) error {
	worker := d.workers[0]

	for index := 0; index < d.plan.Units; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.execute(ctx, worker, index); err != nil {
			return err
		}
	}

	return nil
}

// parallel runs one goroutine per worker, each pulling the next pending unit
// until none is left or the group is cancelled.
func (d *dispatcher) parallel(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	var next atomic.Int64

	for _, worker := range d.workers {
		worker := worker
		g.Go(func() error {
			for {
				// Stop pulling after a fail-fast failure or cancellation,
				// the unit in flight has already completed.
				if gctx.Err() != nil {
					return nil
				}

				index, ok := d.claim(gctx, &next)
				if !ok {
					return nil
				}

				// In-flight units get the caller's context, so a sibling's
				// failure does not cut them short.
				if err := d.execute(ctx, worker, index); err != nil {
					return err
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if d.agg.completed() < d.plan.Units {
		return ctx.Err()
	}

	return nil
}

// claim takes the next pending unit. A unit claimed after the group was
// cancelled is dropped, so nothing starts once a fail-fast failure is in.
func (d *dispatcher) claim(gctx context.Context, next *atomic.Int64) (int, bool) {
	index := int(next.Add(1)) - 1
	if index >= d.plan.Units {
		return 0, false
	}

	if gctx.Err() != nil {
		return 0, false
	}

	return index, true
}

// execute runs a single unit on worker. It returns an error only when the
// run must stop: fail-fast failures and naming errors.
func (d *dispatcher) execute(ctx context.Context, worker Worker, index int) error {
	var task Params
	if d.plan.Mode == Random {
		_, task = d.rng.draw(d.plan.Tasks)
	} else {
		task = d.plan.Tasks[index].Clone()
	}

	dir, err := OutputDir(d.config.Root, d.plan.Common, task)
	if err != nil {
		return err
	}

	name, err := Name(task, Spaced)
	if err != nil {
		return err
	}

	d.logger.Debug("Starting unit",
		zap.Int("index", index),
		zap.Int("worker", worker.Slot),
		zap.Int("device", worker.Device),
		zap.String("name", name))

	start := time.Now()

	taskErr := d.call(ctx, Args{
		Index:     index,
		OutputDir: dir,
		DeviceID:  worker.Device,
		Common:    d.plan.Common.Clone(),
		Task:      task,
	})

	took := time.Since(start)
	done := d.agg.record(index, name, took, taskErr)

	d.sendProgress(ProgressUpdate{
		Index:  index,
		Done:   done,
		Total:  d.plan.Units,
		Name:   name,
		Worker: worker,
		Err:    taskErr,
	})

	if taskErr == nil {
		d.logger.Debug("Unit finished",
			zap.Int("index", index),
			zap.Duration("took", took))

		return nil
	}

	d.logger.Warn("Unit failed",
		zap.Int("index", index),
		zap.Int("device", worker.Device),
		zap.String("name", name),
		zap.Error(taskErr))

	if d.config.FailFast {
		return &TaskError{Failure: Failure{Index: index, Name: name, Err: taskErr}}
	}

	return nil
}

// call invokes the task function, turning a panic into an error.
func (d *dispatcher) call(ctx context.Context, args Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()

	return d.fn(ctx, args)
}

// sendProgress never blocks: the update is dropped if the channel is full.
func (d *dispatcher) sendProgress(update ProgressUpdate) {
	if d.config.ProgressChan == nil {
		return
	}

	select {
	case d.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

//////
// Helper functions.
//////

// validate checks the configuration before anything is expanded.
func validate(config Config, fn TaskFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: task function is required", ErrConfiguration)
	}

	if config.Root == "" {
		return fmt.Errorf("%w: root output directory is required", ErrConfiguration)
	}

	if config.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrConfiguration, config.Iterations)
	}

	_, err := NewWorkers(config.Devices, config.Workers)

	return err
}
