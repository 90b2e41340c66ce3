package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/bnbsched/core/scheduler"
	"github.com/kilianp07/bnbsched/pkg/export"
)

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Solve the built-in four task instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			svc, closeFn, err := opts.service(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			inst := scheduler.DefaultInstance()
			rec, err := svc.Solve(cmd.Context(), inst)
			if err != nil {
				return err
			}
			return export.WriteText(cmd.OutOrStdout(), export.Report{Instance: inst.Name, Tasks: inst.Tasks, Result: rec.Result})
		},
	}
}
