package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db querier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: pool}
}

// Totals sums balances, budgets and money flows in a single statement so every sum comes
// from the same snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (*usecase.LedgerTotals, error) {
	var balance, frozen, budget, spent, deposits, withdrawals, referrals pgtype.Numeric
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM users),
			(SELECT COALESCE(SUM(frozen_balance), 0) FROM users),
			(SELECT COALESCE(SUM(budget), 0) FROM campaigns),
			(SELECT COALESCE(SUM(spent), 0) FROM campaigns),
			(SELECT COALESCE(SUM(amount), 0) FROM transaction_logs WHERE type = 'deposit' AND status = 'completed'),
			(SELECT COALESCE(SUM(amount), 0) FROM transaction_logs WHERE type = 'withdrawal' AND status = 'completed'),
			(SELECT COALESCE(SUM(amount), 0) FROM referral_earnings)`,
	).Scan(&balance, &frozen, &budget, &spent, &deposits, &withdrawals, &referrals)
	if err != nil {
		return nil, err
	}

	return &usecase.LedgerTotals{
		UserBalance:         numericToDecimal(balance),
		UserFrozen:          numericToDecimal(frozen),
		CampaignBudget:      numericToDecimal(budget),
		CampaignSpent:       numericToDecimal(spent),
		CompletedDeposits:   numericToDecimal(deposits),
		ProcessedWithdrawal: numericToDecimal(withdrawals),
		ReferralEarnings:    numericToDecimal(referrals),
	}, nil
}

// CountViolations counts users with a negative balance and campaigns spent past budget.
func (r *LedgerRepository) CountViolations(ctx context.Context) (negativeBalances, overspent int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE balance < 0 OR frozen_balance < 0),
			(SELECT COUNT(*) FROM campaigns WHERE spent > budget)`,
	).Scan(&negativeBalances, &overspent)
	return negativeBalances, overspent, err
}
