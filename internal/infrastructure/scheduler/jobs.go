package scheduler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// JobBudgetScan is the name of the campaign budget monitoring job.
const JobBudgetScan = "budget-scan"

// BudgetMonitor is the campaign service surface the budget scan needs.
type BudgetMonitor interface {
	DeactivateExpired(ctx context.Context) (int, error)
	WarnLowBudget(ctx context.Context) (int, error)
}

// BudgetScan deactivates expired or exhausted campaigns and then warns owners of
// campaigns running low. The warning pass runs even when deactivation failed.
func BudgetScan(monitor BudgetMonitor, logger zerolog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		deactivated, errDeactivate := monitor.DeactivateExpired(ctx)
		warned, errWarn := monitor.WarnLowBudget(ctx)

		logger.Info().
			Int("deactivated", deactivated).
			Int("warned", warned).
			Msg("budget scan")

		return errors.Join(errDeactivate, errWarn)
	}
}
