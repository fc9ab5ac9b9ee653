package usecase

import (
	"context"

	"github.com/iho/smartlink/internal/domain"
)

// AnalyticsUseCase reads analytics events and resolves their related entities.
type AnalyticsUseCase struct {
	analytics   AnalyticsRepository
	campaigns   CampaignRepository
	withdrawals WithdrawalRepository
	adSlots     AdSlotRepository
	sites       SiteRepository
}

func NewAnalyticsUseCase(repos Repositories) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		analytics:   repos.Analytics,
		campaigns:   repos.Campaigns,
		withdrawals: repos.Withdrawals,
		adSlots:     repos.AdSlots,
		sites:       repos.Sites,
	}
}

// ListEvents lists a user's events, optionally restricted to one type.
func (uc *AnalyticsUseCase) ListEvents(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.analytics.ListByUser(ctx, userID, eventType, limit, offset)
}

// ResolveRelated loads the entity ref points to. A nil ref resolves to nil.
func (uc *AnalyticsUseCase) ResolveRelated(ctx context.Context, ref *domain.RelatedRef) (*domain.Related, error) {
	if ref == nil {
		return nil, nil
	}

	var (
		related domain.Related
		err     error
	)
	switch ref.Type {
	case domain.RelatedCampaign:
		related.Campaign, err = uc.campaigns.GetByID(ctx, ref.ID)
	case domain.RelatedWithdrawal:
		related.Withdrawal, err = uc.withdrawals.GetByID(ctx, ref.ID)
	case domain.RelatedAdSlot:
		related.AdSlot, err = uc.adSlots.GetByID(ctx, ref.ID)
	case domain.RelatedSite:
		related.Site, err = uc.sites.GetByID(ctx, ref.ID)
	default:
		return nil, domain.ErrInvalidRelatedType
	}
	if err != nil {
		return nil, err
	}
	return &related, nil
}
