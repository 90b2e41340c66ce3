package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bnbsched/app"
	"github.com/kilianp07/bnbsched/core/scheduler"
	"github.com/kilianp07/bnbsched/infra/logger"
	"github.com/kilianp07/bnbsched/internal/watch"
	"github.com/kilianp07/bnbsched/pkg/export"
)

type solveOptions struct {
	format      string
	iterative   bool
	watch       bool
	metricsAddr string
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Solve an instance file (yaml or json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(export.FormatText), "output format: text, json or csv")
	f.BoolVar(&opts.iterative, "iterative", false, "use the explicit stack engine")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-solve whenever the file changes")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
	return cmd
}

func runSolve(cmd *cobra.Command, root *rootOptions, opts *solveOptions, path string) error {
	format := export.Format(opts.format)
	switch format {
	case export.FormatText, export.FormatJSON, export.FormatCSV:
	default:
		return fmt.Errorf("%w: %q", scheduler.ErrUnsupportedFormat, opts.format)
	}
	cfg, err := root.load()
	if err != nil {
		return err
	}
	if opts.iterative {
		cfg.Solver.Mode = string(scheduler.ModeIterative)
	}
	svc, closeFn, err := root.service(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	inst, err := scheduler.LoadInstance(path)
	if err != nil {
		return err
	}
	if err := solveAndWrite(cmd.Context(), svc, out, format, inst); err != nil {
		if !opts.watch {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "solve %s: %v\n", path, err)
	}
	if !opts.watch {
		return nil
	}
	return watchAndSolve(cmd, svc, opts, format, path)
}

func watchAndSolve(cmd *cobra.Command, svc *app.Service, opts *solveOptions, format export.Format, path string) error {
	ctx := cmd.Context()
	log := logger.New("watch")
	if opts.metricsAddr != "" {
		go func() {
			if err := svc.ServeMetrics(ctx, opts.metricsAddr); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}
	w := watch.New(path, watch.WithLogger(log))
	changes := w.Changes()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for c := range changes {
		if c.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "reload %s: %v\n", c.Path, c.Err)
			continue
		}
		if err := solveAndWrite(ctx, svc, cmd.OutOrStdout(), format, c.Instance); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "solve %s: %v\n", c.Path, err)
		}
	}
	return <-done
}

func solveAndWrite(ctx context.Context, svc *app.Service, w io.Writer, format export.Format, inst scheduler.Instance) error {
	rec, err := svc.Solve(ctx, inst)
	if err != nil && !rec.Result.Interrupted {
		return err
	}
	if werr := export.Write(w, format, export.Report{Instance: inst.Name, Tasks: inst.Tasks, Result: rec.Result}); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}
