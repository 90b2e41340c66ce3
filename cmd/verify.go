package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/bnbsched/core/scheduler"
)

type verifyOptions struct {
	runs  int
	tasks int
	seed  uint64
}

// verifyReport summarizes a randomized cross-check.
type verifyReport struct {
	Runs       int
	Feasible   int
	Mismatches []string
	MeanNodes  float64
	StdNodes   float64
}

func newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Cross-check both engines against brute force on random instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.tasks < 0 || opts.tasks > scheduler.MaxBruteForceTasks {
				return fmt.Errorf("--tasks must be between 0 and %d", scheduler.MaxBruteForceTasks)
			}
			if opts.runs <= 0 {
				return fmt.Errorf("--runs must be positive")
			}
			rep, err := verify(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range rep.Mismatches {
				fmt.Fprintln(out, m)
			}
			fmt.Fprintf(out, "checked %d instances of %d tasks: %d feasible, %d mismatches\n",
				rep.Runs, opts.tasks, rep.Feasible, len(rep.Mismatches))
			fmt.Fprintf(out, "search nodes: mean %.1f, stddev %.1f\n", rep.MeanNodes, rep.StdNodes)
			if len(rep.Mismatches) > 0 {
				return fmt.Errorf("%d mismatches", len(rep.Mismatches))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.runs, "runs", "n", 200, "number of random instances")
	f.IntVarP(&opts.tasks, "tasks", "t", 6, "tasks per instance")
	f.Uint64Var(&opts.seed, "seed", 1, "random seed")
	return cmd
}

func verify(ctx context.Context, opts verifyOptions) (verifyReport, error) {
	r := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	solvers := []*scheduler.Solver{
		scheduler.NewSolver(scheduler.WithMode(scheduler.ModeRecursive)),
		scheduler.NewSolver(scheduler.WithMode(scheduler.ModeIterative)),
	}
	rep := verifyReport{Runs: opts.runs}
	nodes := make([]float64, 0, opts.runs)
	for i := range opts.runs {
		inst := scheduler.RandomInstance(r, opts.tasks, scheduler.DefaultGeneratorConfig)
		oracle, err := scheduler.BruteForce(inst.Tasks)
		if err != nil {
			return rep, err
		}
		oracleFeasible := oracle.UpperBound < scheduler.NewBestSolution(inst.Tasks).UpperBound
		if oracleFeasible {
			rep.Feasible++
		}
		for _, s := range solvers {
			res, err := s.Solve(ctx, inst.Tasks)
			if err != nil {
				return rep, fmt.Errorf("instance %d: %w", i, err)
			}
			if s.Mode() == scheduler.ModeRecursive {
				nodes = append(nodes, float64(res.Stats.Nodes))
			}
			switch {
			case res.Feasible != oracleFeasible:
				rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("instance %d (%s): feasible=%t, brute force says %t: %+v",
					i, s.Mode(), res.Feasible, oracleFeasible, inst.Tasks))
			case res.Feasible && res.Makespan != oracle.UpperBound:
				rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("instance %d (%s): makespan %d, brute force %d: %+v",
					i, s.Mode(), res.Makespan, oracle.UpperBound, inst.Tasks))
			}
		}
	}
	if len(nodes) > 1 {
		rep.MeanNodes, rep.StdNodes = stat.MeanStdDev(nodes, nil)
	} else if len(nodes) == 1 {
		rep.MeanNodes = nodes[0]
	}
	return rep, nil
}
