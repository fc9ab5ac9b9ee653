package handler

import (
	"context"
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

func newReportHandler(s *reportStub) *ReportHandler {
	return NewReportHandler(s, s, s, s)
}

func TestReportHandler_Transactions_Filter(t *testing.T) {
	var got domain.TransactionLogFilter
	h := newReportHandler(&reportStub{
		listLogsFn: func(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error) {
			got = filter
			return []*domain.TransactionLog{{ID: 1, Type: domain.TransactionTypeDeposit, Status: domain.TransactionStatusCompleted}}, nil
		},
	})

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/transactions?type=deposit&status=completed&limit=5", nil), 8, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.Transactions(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TransactionLogFilter{
		UserID: 8,
		Type:   domain.TransactionTypeDeposit,
		Status: domain.TransactionStatusCompleted,
		Limit:  5,
	}, got)
}

func TestReportHandler_ReferralEarnings(t *testing.T) {
	h := newReportHandler(&reportStub{
		listEarningsFn: func(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error) {
			return []*domain.ReferralEarning{{ID: 1, UserID: userID, Amount: decimal.RequireFromString("0.5"), Type: domain.ReferralTypeDeposit}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ReferralEarnings(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), 8, domain.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListResponse[dto.ReferralEarningResponse]
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "deposit", resp.Items[0].Type)
}

func TestReportHandler_AnalyticsEvents(t *testing.T) {
	h := newReportHandler(&reportStub{
		listEventsFn: func(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error) {
			assert.Equal(t, domain.AnalyticsEventImpression, eventType)
			return []*domain.AnalyticsEvent{{ID: 3, Type: eventType}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.AnalyticsEvents(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/?type=impression", nil), 8, domain.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportHandler_Related(t *testing.T) {
	h := newReportHandler(&reportStub{
		resolveFn: func(ctx context.Context, ref *domain.RelatedRef) (*domain.Related, error) {
			if ref.ID == 404 {
				return nil, domain.ErrCampaignNotFound
			}
			return &domain.Related{Campaign: &domain.Campaign{ID: ref.ID, Name: "c"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Related(rec, httptest.NewRequest(http.MethodGet, "/?type=campaign&id=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RelatedResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Campaign)
	assert.Equal(t, int64(4), resp.Campaign.ID)

	rec = httptest.NewRecorder()
	h.Related(rec, httptest.NewRequest(http.MethodGet, "/?type=campaign&id=404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Related(rec, httptest.NewRequest(http.MethodGet, "/?type=user&id=4", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Related(rec, httptest.NewRequest(http.MethodGet, "/?type=site", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_LedgerConsistency(t *testing.T) {
	consistent := true
	h := newReportHandler(&reportStub{
		consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
			return &usecase.ConsistencyReport{Consistent: consistent, Difference: decimal.Zero}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.LedgerConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	consistent = false
	rec = httptest.NewRecorder()
	h.LedgerConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
