package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

func TestAdSlotHandler_Serve(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"inactive slot", domain.ErrAdSlotInactive, http.StatusGone, "Ad slot is not active"},
		{"no campaigns", domain.ErrNoActiveCampaigns, http.StatusNotFound, "No active campaigns available"},
		{"no compatible", domain.ErrNoCompatibleCampaigns, http.StatusNotFound, "No campaigns with compatible ad formats available"},
		{"budget race", domain.ErrInsufficientCampaignBudget, http.StatusBadRequest, "Insufficient campaign budget"},
		{"slot missing", domain.ErrAdSlotNotFound, http.StatusNotFound, "ad slot not found"},
		{"storage fault", errors.New("conn reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdSlotHandler(&adSlotServiceStub{}, &adServerStub{
				serveFn: func(ctx context.Context, slotID int64) (*usecase.AdResponse, error) {
					return nil, tt.err
				},
			})

			req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "3"})
			rec := httptest.NewRecorder()
			h.Serve(rec, req)

			require.Equal(t, tt.status, rec.Code)
			var resp dto.AdServeResponse
			decodeBody(t, rec, &resp)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestAdSlotHandler_Serve_Success(t *testing.T) {
	h := NewAdSlotHandler(&adSlotServiceStub{}, &adServerStub{
		serveFn: func(ctx context.Context, slotID int64) (*usecase.AdResponse, error) {
			assert.Equal(t, int64(3), slotID)
			return &usecase.AdResponse{
				Creative:   &domain.Creative{ID: 8, Name: "hero", Type: domain.AdFormat("banner"), URL: "https://example.com"},
				CampaignID: 12,
				Cost:       "0.05",
			}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "3"})
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AdServeResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(12), resp.CampaignID)
	require.NotNil(t, resp.Creative)
	assert.Equal(t, int64(8), resp.Creative.ID)
}

func TestAdSlotHandler_Get(t *testing.T) {
	h := NewAdSlotHandler(&adSlotServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.AdSlot, error) {
			return &domain.AdSlot{ID: id, IsActive: true, SiteActive: false, PricePerImpression: decimal.RequireFromString("0.01")}, nil
		},
	}, &adServerStub{})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "3"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AdSlotResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.IsActive)
	assert.False(t, resp.CanDisplayAds)
}

func TestAdSlotHandler_AttachDetach(t *testing.T) {
	var attached, detached [2]int64
	h := NewAdSlotHandler(&adSlotServiceStub{
		attachFn: func(ctx context.Context, slotID, campaignID int64) error {
			attached = [2]int64{slotID, campaignID}
			return nil
		},
		detachFn: func(ctx context.Context, slotID, campaignID int64) error {
			detached = [2]int64{slotID, campaignID}
			return domain.ErrNotCampaignOwner
		},
	}, &adServerStub{})

	params := map[string]string{"id": "3", "campaignID": "9"}

	rec := httptest.NewRecorder()
	h.AttachCampaign(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), params))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, [2]int64{3, 9}, attached)

	rec = httptest.NewRecorder()
	h.DetachCampaign(rec, withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), params))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, [2]int64{3, 9}, detached)

	rec = httptest.NewRecorder()
	h.AttachCampaign(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"id": "3", "campaignID": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
