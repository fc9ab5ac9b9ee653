package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
)

func TestWithdrawalHandler_Create(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		createFn: func(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Withdrawal, error) {
			if amount.GreaterThan(decimal.NewFromInt(100)) {
				return nil, domain.ErrInsufficientFunds
			}
			return &domain.Withdrawal{ID: 1, UserID: userID, Amount: amount, Status: domain.WithdrawalStatusPending}, nil
		},
	})

	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/withdrawals", strings.NewReader(`{"amount":"50"}`)), 2, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.WithdrawalResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(2), resp.UserID)

	req = withPrincipal(httptest.NewRequest(http.MethodPost, "/withdrawals", strings.NewReader(`{"amount":"500"}`)), 2, domain.RoleUser)
	rec = httptest.NewRecorder()
	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithdrawalHandler_Review(t *testing.T) {
	var notes string
	transition := func(status domain.WithdrawalStatus) withdrawalTransition {
		return func(ctx context.Context, id int64, n string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
			notes = n
			return &domain.Withdrawal{ID: id, Status: status}, nil
		}
	}
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		approveFn: transition(domain.WithdrawalStatusApproved),
		rejectFn:  transition(domain.WithdrawalStatusRejected),
		processFn: func(ctx context.Context, id int64, n string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
			return nil, domain.ErrWithdrawalNotApproved
		},
	})
	params := map[string]string{"id": "6"}

	rec := httptest.NewRecorder()
	h.Approve(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), params))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.WithdrawalResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "approved", resp.Status)
	assert.Empty(t, notes)

	rec = httptest.NewRecorder()
	h.Reject(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"notes":"kyc missing"}`)), params))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kyc missing", notes)

	rec = httptest.NewRecorder()
	h.Process(rec, withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithdrawalHandler_GetAndList(t *testing.T) {
	h := NewWithdrawalHandler(&withdrawalServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Withdrawal, error) {
			return nil, domain.ErrWithdrawalNotFound
		},
		listFn: func(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error) {
			return []*domain.Withdrawal{{ID: 1, UserID: userID}, {ID: 2, UserID: userID}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), 3, domain.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListResponse[dto.WithdrawalResponse]
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Items, 2)
}
