package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// AdResponse is a served creative and the campaign charged for it.
type AdResponse struct {
	Creative   *domain.Creative
	CampaignID int64
	Cost       string
}

// AdServingUseCase selects a creative for an ad slot and charges the impression.
type AdServingUseCase struct {
	uow          unitOfWork
	adSlotRepo   AdSlotRepository
	campaignRepo CampaignRepository
	creativeRepo CreativeRepository
	logRepo      TransactionLogRepository
	analytics    AnalyticsRepository
	selector     CampaignSelector
	picker       CreativePicker
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

func NewAdServingUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos Repositories,
	selector CampaignSelector,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AdServingUseCase {
	if selector == nil {
		selector = UniformSelector{}
	}
	return &AdServingUseCase{
		uow:          unitOfWork{txManager: txManager, retrier: retrier},
		adSlotRepo:   repos.AdSlots,
		campaignRepo: repos.Campaigns,
		creativeRepo: repos.Creatives,
		logRepo:      repos.Logs,
		analytics:    repos.Analytics,
		selector:     selector,
		picker:       RandomCreativePicker{},
		idGen:        idGen,
		metrics:      metrics,
		logger:       logger.With().Str("component", "adserving").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ProcessAdRequest serves one impression for the slot.
//
// Candidate filtering is only a pre-check; the conditional budget deduction at charge time
// decides whether the impression is paid for.
func (uc *AdServingUseCase) ProcessAdRequest(ctx context.Context, adSlotID int64) (*AdResponse, error) {
	resp, err := uc.processAdRequest(ctx, adSlotID)
	if err != nil && uc.metrics != nil {
		uc.metrics.AdRequestFailures.WithLabelValues(failureReason(err)).Inc()
	}
	return resp, err
}

func (uc *AdServingUseCase) processAdRequest(ctx context.Context, adSlotID int64) (*AdResponse, error) {
	slot, err := uc.adSlotRepo.GetByID(ctx, adSlotID)
	if err != nil {
		return nil, uc.storageError(err, adSlotID, "load ad slot")
	}
	if !slot.CanDisplayAds() {
		return nil, domain.ErrAdSlotInactive
	}

	now := uc.now()
	campaigns, err := uc.campaignRepo.ListServable(ctx, slot.ID, now)
	if err != nil {
		return nil, uc.storageError(err, adSlotID, "list campaigns")
	}
	servable := make([]*domain.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.IsActive && c.IsRunning(now) && !c.IsExhausted() {
			servable = append(servable, c)
		}
	}
	if len(servable) == 0 {
		return nil, domain.ErrNoActiveCampaigns
	}

	ids := make([]int64, 0, len(servable))
	for _, c := range servable {
		ids = append(ids, c.ID)
	}
	creatives, err := uc.creativeRepo.ListActiveByCampaigns(ctx, ids)
	if err != nil {
		return nil, uc.storageError(err, adSlotID, "list creatives")
	}

	compatible := make(map[int64][]*domain.Creative, len(servable))
	candidates := make([]*domain.Campaign, 0, len(servable))
	for _, c := range servable {
		for _, cr := range creatives[c.ID] {
			if cr.IsActive && cr.IsCompatibleWith(slot) {
				compatible[c.ID] = append(compatible[c.ID], cr)
			}
		}
		if len(compatible[c.ID]) > 0 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoCompatibleCampaigns
	}

	campaign := uc.selector.Select(candidates)
	creative := uc.picker.Pick(compatible[campaign.ID])
	price := slot.PricePerImpression

	log := uc.logger.With().
		Int64("ad_slot_id", slot.ID).
		Int64("campaign_id", campaign.ID).
		Int64("user_id", campaign.UserID).
		Str("amount", price.String()).
		Logger()

	err = uc.uow.run(ctx, log, "charge_impression", func(ctx context.Context, tx Transaction) error {
		ok, err := uc.campaignRepo.DeductBudget(ctx, tx, campaign.ID, price)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientCampaignBudget
		}

		err = uc.logRepo.Create(ctx, tx, &domain.TransactionLog{
			UserID:      campaign.UserID,
			Amount:      price,
			Type:        domain.TransactionTypeImpressionCharge,
			Reference:   newReference(uc.idGen, domain.ReferencePrefixImpression, campaign.UserID),
			Status:      domain.TransactionStatusCompleted,
			Description: fmt.Sprintf("Impression charge for campaign %d on ad slot %d", campaign.ID, slot.ID),
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		return uc.analytics.Create(ctx, tx, &domain.AnalyticsEvent{
			UserID:  campaign.UserID,
			Type:    domain.AnalyticsEventImpression,
			Related: &domain.RelatedRef{Type: domain.RelatedCampaign, ID: campaign.ID},
			Cost:    price,
			Metadata: map[string]any{
				"ad_slot_id":  slot.ID,
				"creative_id": creative.ID,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ImpressionsCharged.Inc()
		uc.metrics.ImpressionCost.Observe(price.InexactFloat64())
	}

	return &AdResponse{Creative: creative, CampaignID: campaign.ID, Cost: price.String()}, nil
}

func (uc *AdServingUseCase) storageError(err error, adSlotID int64, what string) error {
	if domain.IsExpected(err) {
		return err
	}
	uc.logger.Error().Err(err).Int64("ad_slot_id", adSlotID).Msg("failed to " + what)
	return domain.ErrInternal
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAdSlotInactive):
		return "slot_inactive"
	case errors.Is(err, domain.ErrAdSlotNotFound):
		return "slot_not_found"
	case errors.Is(err, domain.ErrNoActiveCampaigns):
		return "no_active_campaigns"
	case errors.Is(err, domain.ErrNoCompatibleCampaigns):
		return "no_compatible_campaigns"
	case errors.Is(err, domain.ErrInsufficientCampaignBudget):
		return "insufficient_budget"
	}
	return "internal"
}
