package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
)

// LedgerTotals are system-wide sums used by the consistency report.
type LedgerTotals struct {
	UserBalance         decimal.Decimal
	UserFrozen          decimal.Decimal
	CampaignBudget      decimal.Decimal
	CampaignSpent       decimal.Decimal
	CompletedDeposits   decimal.Decimal
	ProcessedWithdrawal decimal.Decimal
	ReferralEarnings    decimal.Decimal
}

// ConsistencyReport is the result of a ledger consistency check.
type ConsistencyReport struct {
	Totals             LedgerTotals
	Holdings           decimal.Decimal
	NetInflow          decimal.Decimal
	Difference         decimal.Decimal
	NegativeBalances   int64
	OverspentCampaigns int64
	Consistent         bool
	CheckedAt          time.Time
}

// LedgerUseCase checks system-wide money conservation.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	logger     zerolog.Logger
}

func NewLedgerUseCase(ledgerRepo LedgerRepository, logger zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		logger:     logger.With().Str("component", "ledger").Logger(),
	}
}

// CheckConsistency compares the money held in the system with the money that entered it.
//
// Holdings are balances, frozen balances and campaign budgets (spent included). Net inflow
// is completed deposits plus referral earnings minus processed withdrawals. They must match,
// and no user or campaign may violate its bounds.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	if p, ok := domain.PrincipalFromContext(ctx); ok && !p.Role.CanRunMaintenance() {
		return nil, domain.ErrInsufficientRole
	}

	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to load ledger totals")
		return nil, domain.ErrInternal
	}
	negative, overspent, err := uc.ledgerRepo.CountViolations(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to count ledger violations")
		return nil, domain.ErrInternal
	}

	holdings := totals.UserBalance.Add(totals.UserFrozen).Add(totals.CampaignBudget)
	inflow := totals.CompletedDeposits.Add(totals.ReferralEarnings).Sub(totals.ProcessedWithdrawal)
	diff := holdings.Sub(inflow)

	report := &ConsistencyReport{
		Totals:             *totals,
		Holdings:           holdings,
		NetInflow:          inflow,
		Difference:         diff,
		NegativeBalances:   negative,
		OverspentCampaigns: overspent,
		Consistent:         diff.IsZero() && negative == 0 && overspent == 0,
		CheckedAt:          time.Now().UTC(),
	}

	if !report.Consistent {
		uc.logger.Warn().
			Str("holdings", holdings.String()).
			Str("net_inflow", inflow.String()).
			Int64("negative_balances", negative).
			Int64("overspent_campaigns", overspent).
			Msg("ledger inconsistency detected")
	}
	return report, nil
}
