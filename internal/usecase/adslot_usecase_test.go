package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

func TestAdSlotUseCase_AssociateAndDissociate(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAdSlotUseCase(f.repos)
	owner := f.user("0")
	site := f.store.AddSite(domain.Site{UserID: owner, IsActive: true})
	slot := f.store.AddAdSlot(domain.AdSlot{SiteID: site, Type: domain.AdFormatLink, IsActive: true})
	campaign := f.campaign(owner, "0", "0", false)
	ctx := domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: owner, Role: domain.RoleUser})

	require.NoError(t, uc.AssociateCampaign(ctx, slot, campaign))
	require.NoError(t, uc.AssociateCampaign(ctx, slot, campaign))
	assert.True(t, f.store.Linked(slot, campaign))

	require.NoError(t, uc.DissociateCampaign(ctx, slot, campaign))
	require.NoError(t, uc.DissociateCampaign(ctx, slot, campaign))
	assert.False(t, f.store.Linked(slot, campaign))
}

func TestAdSlotUseCase_AssociateFailures(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAdSlotUseCase(f.repos)
	owner := f.user("0")
	site := f.store.AddSite(domain.Site{UserID: owner, IsActive: true})
	slot := f.store.AddAdSlot(domain.AdSlot{SiteID: site, Type: domain.AdFormatLink, IsActive: true})
	campaign := f.campaign(owner, "0", "0", false)

	stranger := domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: owner + 1, Role: domain.RoleUser})
	require.ErrorIs(t, uc.AssociateCampaign(stranger, slot, campaign), domain.ErrNotCampaignOwner)
	require.ErrorIs(t, uc.AssociateCampaign(context.Background(), slot+100, campaign), domain.ErrAdSlotNotFound)
	require.ErrorIs(t, uc.AssociateCampaign(context.Background(), slot, campaign+100), domain.ErrCampaignNotFound)
	assert.False(t, f.store.Linked(slot, campaign))
}
