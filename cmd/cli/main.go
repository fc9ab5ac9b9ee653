package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/smartlink/internal/app"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/config"
	"github.com/iho/smartlink/internal/infrastructure/logger"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

const cliName = "smartlink-cli"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           cliName,
		Short:         "SmartLink maintenance tool",
		Long:          `Runs migrations, budget jobs, withdrawal reviews and ledger checks against the SmartLink database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		campaignsCmd(),
		budgetCmd(),
		ledgerCmd(),
		withdrawalsCmd(),
		tokenCmd(),
	)
	return rootCmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  "console",
		Service: cliName,
		Output:  os.Stderr,
	})
}

// withApp loads configuration, connects and runs fn as an administrator.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, cliName, metrics.NewWithRegisterer(prometheus.NewRegistry()), newLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = domain.ContextWithPrincipal(ctx, domain.Principal{Role: domain.RoleAdmin})
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
