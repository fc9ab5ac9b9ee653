package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/app"
	"github.com/iho/smartlink/internal/infrastructure/scheduler"
)

var errInconsistent = errors.New("ledger is inconsistent")

func campaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Campaign maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate-expired",
		Short: "Deactivate expired or exhausted campaigns and refund their budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Campaigns.DeactivateExpired(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %d campaign(s)\n", n)
				return err
			})
		},
	})
	return cmd
}

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget monitoring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Run the budget scan once, unless another instance holds it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				jobs := scheduler.New(a.Locker, a.Config.JobLockTTL, a.Metrics, a.Logger)
				if err := jobs.Add(scheduler.JobBudgetScan, a.Config.BudgetScanSchedule, scheduler.BudgetScan(a.Campaigns, a.Logger)); err != nil {
					return err
				}
				return jobs.RunNow(ctx, scheduler.JobBudgetScan)
			})
		},
	})
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Ledger.CheckConsistency(ctx)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), dto.ConsistencyFromReport(report)); err != nil {
					return err
				}
				if !report.Consistent {
					return errInconsistent
				}
				return nil
			})
		},
	})
	return cmd
}
