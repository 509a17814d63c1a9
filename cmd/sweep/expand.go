package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thalesfsp/sweep"
)

func newExpandCmd() *cobra.Command {
	var (
		specPath   string
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the tasks a parameter space expands to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := sweep.LoadSpec(specPath)
			if err != nil {
				return err
			}

			plan, err := sweep.NewPlan(spec, iterations)
			if err != nil {
				return err
			}

			return printPlan(cmd, plan)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "parameter space (YAML)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "random search with this many draws")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func printPlan(cmd *cobra.Command, plan *sweep.Plan) error {
	common, err := sweep.Name(plan.Common, sweep.Spaced)
	if err != nil {
		return err
	}

	names, err := plan.Names(sweep.Spaced)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "mode: %s, units: %d\n", plan.Mode, plan.Units)
	fmt.Fprintf(out, "common: %s\n", common)

	for i, name := range names {
		if sweep.HasRange(plan.Tasks[i]) {
			name += "  (sampled per draw)"
		}

		fmt.Fprintf(out, "%4d  %s\n", i, name)
	}

	return nil
}
