package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// CampaignUseCase moves money between user balances and campaign budgets and drives the
// campaign lifecycle.
type CampaignUseCase struct {
	uow            unitOfWork
	userRepo       UserRepository
	campaignRepo   CampaignRepository
	logRepo        TransactionLogRepository
	idGen          IDGenerator
	notifier       Notifier
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	lowBudgetRatio decimal.Decimal
	now            func() time.Time
}

func NewCampaignUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos Repositories,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *CampaignUseCase {
	return &CampaignUseCase{
		uow:            unitOfWork{txManager: txManager, retrier: retrier},
		userRepo:       repos.Users,
		campaignRepo:   repos.Campaigns,
		logRepo:        repos.Logs,
		idGen:          idGen,
		notifier:       notifier,
		metrics:        metrics,
		logger:         logger.With().Str("component", "campaign").Logger(),
		lowBudgetRatio: decimal.RequireFromString(DefaultLowBudgetThreshold),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetLowBudgetThreshold overrides the spent/budget ratio used by WarnLowBudget.
func (uc *CampaignUseCase) SetLowBudgetThreshold(ratio decimal.Decimal) {
	uc.lowBudgetRatio = ratio
}

// CreateCampaign stores a new inactive campaign owned by campaign.UserID. A positive
// initialBudget is allocated from the owner's balance in the same transaction.
func (uc *CampaignUseCase) CreateCampaign(ctx context.Context, campaign *domain.Campaign, initialBudget decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error) {
	campaign.Budget = decimal.Zero
	campaign.Spent = decimal.Zero
	campaign.IsActive = false
	if campaign.StartDate.IsZero() {
		campaign.StartDate = uc.now()
	}
	if err := domain.ValidateCampaign(campaign); err != nil {
		return nil, err
	}
	if initialBudget.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if initialBudget.IsPositive() {
		if err := domain.ValidateAmount(initialBudget); err != nil {
			return nil, err
		}
	}

	log := uc.logger.With().Int64("user_id", campaign.UserID).Str("amount", initialBudget.String()).Logger()

	err := uc.uow.run(ctx, log, "create_campaign", func(ctx context.Context, tx Transaction) error {
		now := uc.now()
		campaign.CreatedAt = now
		campaign.UpdatedAt = now
		if err := uc.campaignRepo.Create(ctx, tx, campaign); err != nil {
			return err
		}
		if !initialBudget.IsPositive() {
			return nil
		}
		return uc.allocateLocked(ctx, tx, campaign, initialBudget, meta)
	})
	if err != nil {
		return nil, err
	}

	if initialBudget.IsPositive() && uc.metrics != nil {
		uc.metrics.BudgetAllocations.Inc()
		uc.metrics.BudgetAmount.WithLabelValues("allocate").Observe(initialBudget.InexactFloat64())
	}

	return campaign, nil
}

// GetCampaign returns the campaign if the caller may see it.
func (uc *CampaignUseCase) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	campaign, err := uc.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(ctx, campaign.UserID); err != nil {
		return nil, err
	}
	return campaign, nil
}

// ListCampaigns lists the campaigns owned by userID.
func (uc *CampaignUseCase) ListCampaigns(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.campaignRepo.ListByUser(ctx, userID, limit, offset)
}

// UpdateCampaign changes the descriptive fields and the date window. Budget fields are
// never touched here.
func (uc *CampaignUseCase) UpdateCampaign(ctx context.Context, id int64, name, description string, startDate time.Time, endDate *time.Time) (*domain.Campaign, error) {
	var updated *domain.Campaign
	log := uc.logger.With().Int64("campaign_id", id).Logger()

	err := uc.uow.run(ctx, log, "update_campaign", func(ctx context.Context, tx Transaction) error {
		campaign, err := uc.lockOwned(ctx, tx, id)
		if err != nil {
			return err
		}
		campaign.Name = name
		campaign.Description = description
		if !startDate.IsZero() {
			campaign.StartDate = startDate
		}
		campaign.EndDate = endDate
		if err := domain.ValidateCampaign(campaign); err != nil {
			return err
		}
		campaign.UpdatedAt = uc.now()
		if err := uc.campaignRepo.Update(ctx, tx, campaign); err != nil {
			return err
		}
		updated = campaign
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AllocateBudget moves amount from the owner's balance into the campaign budget.
func (uc *CampaignUseCase) AllocateBudget(ctx context.Context, campaignID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	start := time.Now()
	var campaign *domain.Campaign
	log := uc.logger.With().Int64("campaign_id", campaignID).Str("amount", amount.String()).Logger()

	err := uc.uow.run(ctx, log, "allocate_budget", func(ctx context.Context, tx Transaction) error {
		c, err := uc.lockOwned(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if err := uc.allocateLocked(ctx, tx, c, amount, meta); err != nil {
			return err
		}
		campaign = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BudgetAllocations.Inc()
		uc.metrics.BudgetAmount.WithLabelValues("allocate").Observe(amount.InexactFloat64())
		uc.metrics.OperationDuration.WithLabelValues("allocate_budget").Observe(time.Since(start).Seconds())
	}

	return campaign, nil
}

func (uc *CampaignUseCase) allocateLocked(ctx context.Context, tx Transaction, c *domain.Campaign, amount decimal.Decimal, meta domain.RequestMeta) error {
	ok, err := uc.userRepo.DeductBalance(ctx, tx, c.UserID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientFunds
	}

	if err := uc.campaignRepo.AddBudget(ctx, tx, c.ID, amount); err != nil {
		return err
	}
	c.Budget = c.Budget.Add(amount)

	return uc.logRepo.Create(ctx, tx, &domain.TransactionLog{
		UserID:      c.UserID,
		Amount:      amount,
		Type:        domain.TransactionTypeBudgetAllocation,
		Reference:   newReference(uc.idGen, domain.ReferencePrefixAllocation, c.UserID),
		Status:      domain.TransactionStatusCompleted,
		Description: fmt.Sprintf("Budget allocated to campaign: %s", c.Name),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		CreatedAt:   uc.now(),
	})
}

// ReleaseBudget returns the unused budget to the owner and returns the released amount.
// Releasing a campaign with nothing unused is a successful no-op.
func (uc *CampaignUseCase) ReleaseBudget(ctx context.Context, campaignID int64, meta domain.RequestMeta) (decimal.Decimal, error) {
	released := decimal.Zero
	log := uc.logger.With().Int64("campaign_id", campaignID).Logger()

	err := uc.uow.run(ctx, log, "release_budget", func(ctx context.Context, tx Transaction) error {
		c, err := uc.lockOwned(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		released, err = uc.releaseLocked(ctx, tx, c, meta)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	uc.observeRelease(released)
	return released, nil
}

func (uc *CampaignUseCase) releaseLocked(ctx context.Context, tx Transaction, c *domain.Campaign, meta domain.RequestMeta) (decimal.Decimal, error) {
	if !c.RemainingBudget().IsPositive() {
		return decimal.Zero, nil
	}

	unused, err := uc.campaignRepo.ShrinkBudget(ctx, tx, c.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if !unused.IsPositive() {
		return decimal.Zero, nil
	}

	if err := uc.userRepo.AddBalance(ctx, tx, c.UserID, unused); err != nil {
		return decimal.Zero, err
	}
	c.Budget = c.Budget.Sub(unused)

	err = uc.logRepo.Create(ctx, tx, &domain.TransactionLog{
		UserID:      c.UserID,
		Amount:      unused,
		Type:        domain.TransactionTypeBudgetReturn,
		Reference:   newReference(uc.idGen, domain.ReferencePrefixReturn, c.UserID),
		Status:      domain.TransactionStatusCompleted,
		Description: fmt.Sprintf("Unused budget returned from campaign: %s", c.Name),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		CreatedAt:   uc.now(),
	})
	if err != nil {
		return decimal.Zero, err
	}
	return unused, nil
}

func (uc *CampaignUseCase) observeRelease(released decimal.Decimal) {
	if uc.metrics == nil || !released.IsPositive() {
		return
	}
	uc.metrics.BudgetReleases.Inc()
	uc.metrics.BudgetAmount.WithLabelValues("release").Observe(released.InexactFloat64())
}

// CanActivate reports whether the campaign is running and has budget left.
func (uc *CampaignUseCase) CanActivate(ctx context.Context, campaignID int64) (bool, error) {
	campaign, err := uc.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return false, err
	}
	return campaign.CanActivate(uc.now()), nil
}

// CheckBudget reports whether the campaign's remaining budget covers amount.
func (uc *CampaignUseCase) CheckBudget(ctx context.Context, campaignID int64, amount decimal.Decimal) (bool, error) {
	campaign, err := uc.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return false, err
	}
	return campaign.HasBudget(amount), nil
}

// Activate turns a runnable campaign on.
func (uc *CampaignUseCase) Activate(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	return uc.setActive(ctx, campaignID, true)
}

// Deactivate turns a campaign off. Its budget stays allocated.
func (uc *CampaignUseCase) Deactivate(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	return uc.setActive(ctx, campaignID, false)
}

func (uc *CampaignUseCase) setActive(ctx context.Context, campaignID int64, active bool) (*domain.Campaign, error) {
	var campaign *domain.Campaign
	log := uc.logger.With().Int64("campaign_id", campaignID).Bool("active", active).Logger()

	err := uc.uow.run(ctx, log, "set_campaign_active", func(ctx context.Context, tx Transaction) error {
		c, err := uc.lockOwned(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if active && !c.CanActivate(uc.now()) {
			return domain.ErrCampaignNotRunnable
		}
		if err := uc.campaignRepo.SetActive(ctx, tx, c.ID, active); err != nil {
			return err
		}
		c.IsActive = active
		campaign = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign releases the unused budget and deletes the campaign in one transaction.
func (uc *CampaignUseCase) DeleteCampaign(ctx context.Context, campaignID int64, meta domain.RequestMeta) error {
	released := decimal.Zero
	log := uc.logger.With().Int64("campaign_id", campaignID).Logger()

	err := uc.uow.run(ctx, log, "delete_campaign", func(ctx context.Context, tx Transaction) error {
		c, err := uc.lockOwned(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if released, err = uc.releaseLocked(ctx, tx, c, meta); err != nil {
			return err
		}
		return uc.campaignRepo.Delete(ctx, tx, c.ID)
	})
	if err != nil {
		return err
	}

	uc.observeRelease(released)
	return nil
}

// DeactivateExpired deactivates every active campaign that is past its end date or has
// exhausted its budget, releasing what is left of each budget. Rows that fail are logged
// and skipped. It returns the number of campaigns deactivated.
func (uc *CampaignUseCase) DeactivateExpired(ctx context.Context) (int, error) {
	now := uc.now()
	candidates, err := uc.campaignRepo.ListExpiredOrExhausted(ctx, now)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to list expired campaigns")
		return 0, domain.ErrInternal
	}

	count := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}

		log := uc.logger.With().Int64("campaign_id", candidate.ID).Int64("user_id", candidate.UserID).Logger()
		var (
			deactivated *domain.Campaign
			released    decimal.Decimal
		)

		err := uc.uow.run(ctx, log, "deactivate_expired", func(ctx context.Context, tx Transaction) error {
			deactivated = nil
			c, err := uc.campaignRepo.GetByIDForUpdate(ctx, tx, candidate.ID)
			if err != nil {
				return err
			}
			// A concurrent allocation may have refilled the campaign since the scan.
			if !c.IsActive || (!c.IsExpired(now) && !c.IsExhausted()) {
				return nil
			}
			if err := uc.campaignRepo.SetActive(ctx, tx, c.ID, false); err != nil {
				return err
			}
			c.IsActive = false
			if released, err = uc.releaseLocked(ctx, tx, c, domain.RequestMeta{}); err != nil {
				return err
			}
			deactivated = c
			return nil
		})
		if err != nil {
			if !errors.Is(err, domain.ErrInternal) {
				log.Warn().Err(err).Msg("skipping campaign")
			}
			continue
		}
		if deactivated == nil {
			continue
		}

		count++
		uc.observeRelease(released)
		if uc.metrics != nil {
			uc.metrics.CampaignsDeactivated.Inc()
		}
		notify(ctx, uc.notifier, log, &domain.Notification{
			Kind:   domain.NotificationCampaignExhausted,
			UserID: deactivated.UserID,
			Payload: map[string]any{
				"campaign_id":     deactivated.ID,
				"campaign_name":   deactivated.Name,
				"released_budget": released.StringFixed(2),
			},
			CreatedAt: uc.now(),
		})
	}

	uc.logger.Info().Int("deactivated", count).Int("scanned", len(candidates)).Msg("expired campaign scan finished")
	return count, nil
}

// WarnLowBudget notifies owners of active campaigns whose spend passed the low budget
// threshold. It returns the number of warnings sent.
func (uc *CampaignUseCase) WarnLowBudget(ctx context.Context) (int, error) {
	campaigns, err := uc.campaignRepo.ListAboveSpendRatio(ctx, uc.lowBudgetRatio)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to list low budget campaigns")
		return 0, domain.ErrInternal
	}

	for _, c := range campaigns {
		notify(ctx, uc.notifier, uc.logger, &domain.Notification{
			Kind:      domain.NotificationBudgetWarning,
			UserID:    c.UserID,
			Payload:   domain.BudgetWarningPayload(c),
			CreatedAt: uc.now(),
		})
	}

	if uc.metrics != nil {
		uc.metrics.BudgetWarnings.Add(float64(len(campaigns)))
	}
	return len(campaigns), nil
}

func (uc *CampaignUseCase) lockOwned(ctx context.Context, tx Transaction, id int64) (*domain.Campaign, error) {
	c, err := uc.campaignRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(ctx, c.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

// authorizeOwner allows admins, the owner, and callers without a principal (jobs, CLI).
func authorizeOwner(ctx context.Context, ownerID int64) error {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok || p.Role == domain.RoleAdmin || p.UserID == ownerID {
		return nil
	}
	return domain.ErrNotCampaignOwner
}
