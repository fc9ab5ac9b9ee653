package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/app"
	"github.com/iho/smartlink/internal/domain"
)

type reviewFunc func(a *app.App) func(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error)

func withdrawalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdrawals",
		Short: "Review withdrawal requests",
	}

	cmd.AddCommand(
		reviewCmd("approve", "Approve a pending withdrawal", func(a *app.App) func(context.Context, int64, string, domain.RequestMeta) (*domain.Withdrawal, error) {
			return a.Withdrawals.ApproveWithdrawal
		}),
		reviewCmd("reject", "Reject a pending withdrawal and refund the frozen amount", func(a *app.App) func(context.Context, int64, string, domain.RequestMeta) (*domain.Withdrawal, error) {
			return a.Withdrawals.RejectWithdrawal
		}),
		reviewCmd("process", "Mark an approved withdrawal as paid out", func(a *app.App) func(context.Context, int64, string, domain.RequestMeta) (*domain.Withdrawal, error) {
			return a.Withdrawals.ProcessWithdrawal
		}),
	)
	return cmd
}

func reviewCmd(use, short string, review reviewFunc) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   use + " <withdrawal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				w, err := review(a)(ctx, id, notes, domain.RequestMeta{UserAgent: cliName})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.WithdrawalFromDomain(w))
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Admin notes stored on the withdrawal")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
