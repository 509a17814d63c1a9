package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/thalesfsp/sweep"
	"github.com/thalesfsp/sweep/internal/config"
	"go.uber.org/zap"
)

// runFlags mirror the run file; set flags override it.
type runFlags struct {
	spec       string
	root       string
	devices    []int
	workers    int
	iterations int
	failFast   bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run COMMAND once per unit of the sweep",
		Long: `Run COMMAND once per unit of work. Each invocation gets
--out_dir=<root>/<name> and --device=<id> followed by one --name=value flag
per parameter, common parameters first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, flags, args)
			if err != nil {
				return err
			}

			if err := applyLogLevel(cfg); err != nil {
				return err
			}

			return runSweep(cmd.Context(), cfg)
		},
	}

	bindRunFlags(cmd, flags)

	return cmd
}

func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVar(&flags.spec, "spec", "", "parameter space (YAML)")
	cmd.Flags().StringVar(&flags.root, "root", "", "root output directory")
	cmd.Flags().IntSliceVar(&flags.devices, "devices", nil, "device ids, one worker per id")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of workers without a device")
	cmd.Flags().IntVar(&flags.iterations, "iterations", 0, "random search with this many draws")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop dispatching after the first failure")
}

// loadRunConfig merges the run file, if any, with the set flags.
func loadRunConfig(cmd *cobra.Command, flags *runFlags, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if cfgFile != "" {
		var err error

		cfg, err = config.LoadFile(cfgFile)
		if err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed

	if set("spec") {
		cfg.Spec = flags.spec
	}

	if set("root") {
		cfg.Root = flags.root
	}

	if set("devices") {
		cfg.Devices = flags.devices
		cfg.Workers = 0
	}

	if set("workers") {
		cfg.Workers = flags.workers
		if !set("devices") {
			cfg.Devices = nil
		}
	}

	if set("iterations") {
		cfg.Iterations = flags.iterations
	}

	if set("fail-fast") {
		cfg.FailFast = flags.failFast
	}

	if len(args) > 0 {
		cfg.Command = args
	}

	if len(cfg.Command) == 0 {
		return nil, fmt.Errorf("%w: a command to run is required", sweep.ErrConfiguration)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyLogLevel rebuilds the logger at the run file's level.
func applyLogLevel(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	l, err := newLogger(level)
	if err != nil {
		return err
	}

	if logger != nil {
		_ = logger.Sync()
	}

	logger = l

	return nil
}

func runSweep(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	spec, err := sweep.LoadSpec(cfg.Spec)
	if err != nil {
		return err
	}

	report, err := sweep.Run(ctx, cfg.Sweep(logger), commandTask(cfg.Command), spec)
	if report != nil {
		fmt.Println(report.Summary())
	}

	if err != nil {
		return err
	}

	if report.Failed() {
		return fmt.Errorf("%d of %d units failed", len(report.Failures), report.Total)
	}

	return nil
}

// commandTask runs command as a child process for every unit.
func commandTask(command []string) sweep.TaskFunc {
	return func(ctx context.Context, args sweep.Args) error {
		argv, err := commandArgs(command[1:], args)
		if err != nil {
			return err
		}

		logger.Debug("Executing command",
			zap.String("command", command[0]),
			zap.Strings("args", argv))

		c := exec.CommandContext(ctx, command[0], argv...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		c.Env = append(os.Environ(), "SWEEP_DEVICE="+strconv.Itoa(args.DeviceID))

		return c.Run()
	}
}

// commandArgs appends the unit's flags to base.
func commandArgs(base []string, args sweep.Args) ([]string, error) {
	argv := append([]string{}, base...)
	argv = append(argv,
		"--out_dir="+args.OutputDir,
		"--device="+strconv.Itoa(args.DeviceID))

	for _, p := range args.All() {
		value, err := sweep.FormatValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}

		argv = append(argv, "--"+p.Name+"="+value)
	}

	return argv, nil
}
