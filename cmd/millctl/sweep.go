package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ricemill/internal/infrastructure/notify"
	"ricemill/internal/scheduler"
	"ricemill/pkg/logger"
)

func sweepCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the low stock sweep once",
		Long: `Lists every lot below the low stock threshold and posts them to
ALERT_WEBHOOK_URL when it is set. The cron schedule is ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			sched, err := scheduler.New(cfg.Scheduler, a.Stocks, notify.New(cfg.Alerts), logger.Default())
			if err != nil {
				return err
			}
			alerts, err := sched.SweepLowStock(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d lots need attention\n", len(alerts))
			for _, al := range alerts {
				fmt.Fprintf(out, "  %-6s %-14s %-10s %s kg (%s)\n", al.Family, al.Type, al.Warehouse, al.Quantity, al.Status)
			}
			return nil
		},
	}
}
