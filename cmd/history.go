package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bnbsched/api/runs"
	"github.com/kilianp07/bnbsched/core/runlog"
	"github.com/kilianp07/bnbsched/infra/logger"
)

type historyOptions struct {
	since    time.Duration
	feasible bool
	instance string
	limit    int
	serve    string
	token    string
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored solve runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			svc, closeFn, err := root.service(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if opts.serve != "" {
				return serveHistory(cmd.Context(), opts.serve, runs.NewHandler(runs.QuerierFunc(svc.History), opts.token))
			}
			q := runlog.RunQuery{Instance: opts.instance, FeasibleOnly: opts.feasible, Limit: opts.limit}
			if opts.since > 0 {
				q.Start = time.Now().Add(-opts.since)
			}
			recs, err := svc.History(cmd.Context(), q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tID\tINSTANCE\tMODE\tTASKS\tMAKESPAN\tNODES")
			for _, r := range recs {
				makespan := "-"
				if r.Result.Feasible {
					makespan = fmt.Sprint(r.Result.Makespan)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n",
					r.Timestamp.Local().Format(time.DateTime), r.ID, r.Instance, r.Mode,
					len(r.Tasks), makespan, r.Result.Stats.Nodes)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.DurationVar(&opts.since, "since", 0, "only runs newer than this (e.g. 24h)")
	f.BoolVar(&opts.feasible, "feasible", false, "only runs with a feasible schedule")
	f.StringVar(&opts.instance, "instance", "", "only runs of this instance")
	f.IntVar(&opts.limit, "limit", 0, "show at most this many recent runs")
	f.StringVar(&opts.serve, "serve", "", "serve GET /api/runs on this address instead of printing")
	f.StringVar(&opts.token, "token", "", "bearer token required by the HTTP endpoint")
	return cmd
}

func serveHistory(ctx context.Context, addr string, h http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/api/runs", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.New("history_api").Infof("serving run history on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
