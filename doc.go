// Package sweep runs a task function once per combination of a declared
// parameter space, spreading the runs over a fixed pool of workers, each bound
// to a device. A failing combination is recorded and does not stop the batch.
//
// # Features
//
// The package includes the following key features:
//
//   - Grid search: exhaustive Cartesian product of the declared alternatives
//   - Random search: a fixed number of draws, each picking one combination
//     and sampling its uniform ranges
//   - Asymmetric grids: alternatives may be whole fragments of the space, so
//     what follows a choice can depend on it
//   - Compact naming: parameters shared by every task are factored out, the
//     rest name the task's output directory
//   - Static device affinity: each worker keeps its device for the whole run,
//     a task gets the device of whichever worker picks it up
//   - Failure isolation: errors and panics become failure records, or stop
//     dispatch with FailFast
//   - Progress Monitoring: per-unit updates via channels
//   - YAML specs: see ParseSpec
//
// # Declaring a space
//
// A Spec is a flat list alternating names and values:
//
//	spec := sweep.Spec{
//	    "model", "resnet50",                      // Scalar.
//	    "lr", sweep.OneOf(0.1, 0.01, 0.001),      // Enumeration.
//	    "bn", sweep.OneOf(true, false),
//	    sweep.OneOf(                              // Fragments.
//	        sweep.Spec{"optimizer", "sgd"},
//	        sweep.Spec{"optimizer", "adam", "beta1", sweep.OneOf(0.8, 0.9)},
//	    ),
//	}
//
// This expands to 3 * 2 * (1 + 2) = 18 tasks. In random mode, values may also
// be uniform ranges:
//
//	spec := sweep.Spec{"lr", sweep.Uniform(1e-4, 1e-1)}
//
// # Running
//
//	config := sweep.DefaultConfig()
//	config.Root = "runs/resnet"
//	config.Devices = []int{1, 2}   // Or config.Workers = 4 for device-less workers.
//	config.Iterations = 0          // Grid search. Positive for random search.
//
//	report, err := sweep.Run(ctx, config, func(ctx context.Context, args sweep.Args) error {
//	    lr, _ := args.Float("lr")
//
//	    return train(ctx, args.OutputDir, args.DeviceID, lr)
//	}, spec)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println(report.Summary())
//
// Each unit's OutputDir is Root joined with the compact name of its
// parameters, e.g. "runs/resnet/model=resnet50,lr=0.1,bn=1,optimizer=sgd".
// The directory is not created by the package.
//
// # Thread Safety
//
//   - With one worker, units run in order in the calling goroutine
//   - With more, each unit runs exactly once, completion order is unspecified
//   - The random source is shared by all workers behind a mutex
//   - The task function receives its own copies of the parameters
package sweep
