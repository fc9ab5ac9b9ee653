package usecase

import (
	"context"

	"github.com/iho/smartlink/internal/domain"
)

// AdSlotUseCase manages which campaigns may serve on which ad slots.
type AdSlotUseCase struct {
	adSlotRepo   AdSlotRepository
	campaignRepo CampaignRepository
}

func NewAdSlotUseCase(repos Repositories) *AdSlotUseCase {
	return &AdSlotUseCase{
		adSlotRepo:   repos.AdSlots,
		campaignRepo: repos.Campaigns,
	}
}

// GetAdSlot returns an ad slot with its site's state.
func (uc *AdSlotUseCase) GetAdSlot(ctx context.Context, id int64) (*domain.AdSlot, error) {
	return uc.adSlotRepo.GetByID(ctx, id)
}

// AssociateCampaign lets the campaign serve on the slot. Associating twice is a no-op.
func (uc *AdSlotUseCase) AssociateCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	if err := uc.authorize(ctx, adSlotID, campaignID); err != nil {
		return err
	}
	return uc.adSlotRepo.AttachCampaign(ctx, adSlotID, campaignID)
}

// DissociateCampaign stops the campaign from serving on the slot. Missing links are ignored.
func (uc *AdSlotUseCase) DissociateCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	if err := uc.authorize(ctx, adSlotID, campaignID); err != nil {
		return err
	}
	return uc.adSlotRepo.DetachCampaign(ctx, adSlotID, campaignID)
}

func (uc *AdSlotUseCase) authorize(ctx context.Context, adSlotID, campaignID int64) error {
	if _, err := uc.adSlotRepo.GetByID(ctx, adSlotID); err != nil {
		return err
	}
	campaign, err := uc.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	return authorizeOwner(ctx, campaign.UserID)
}
