package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/adapter/http/dto"
	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

func newWebhookRequest(fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/deposit/payeer-webhook", strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDepositHandler_Webhook(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		want    string
		message string
	}{
		{"credited", nil, http.StatusOK, "success", ""},
		{"duplicate", domain.ErrDuplicateDeposit, http.StatusOK, "success", "already_processed"},
		{"bad signature", domain.ErrInvalidSignature, http.StatusBadRequest, "error", "Invalid signature"},
		{"bad currency", domain.ErrInvalidCurrency, http.StatusBadRequest, "error", "Invalid currency"},
		{"fault", errors.New("db down"), http.StatusInternalServerError, "error", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]string
			h := NewDepositHandler(&depositServiceStub{
				webhookFn: func(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*usecase.DepositResult, error) {
					got = fields
					if tt.err != nil {
						return nil, tt.err
					}
					return &usecase.DepositResult{UserID: 5}, nil
				},
			}, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Webhook(rec, newWebhookRequest(url.Values{
				usecase.FieldOperationID: {"op-1"},
				usecase.FieldOrderID:     {"DEP_5_01HZX"},
				usecase.FieldAmount:      {"10.00"},
				usecase.FieldCurrency:    {"USD"},
				usecase.FieldSign:        {"abc"},
			}))

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "DEP_5_01HZX", got[usecase.FieldOrderID])
			assert.Equal(t, "abc", got[usecase.FieldSign])

			var resp dto.WebhookResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestDepositHandler_Balance(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		balanceFn: func(ctx context.Context, userID int64) (*domain.User, error) {
			return &domain.User{ID: userID, Balance: decimal.NewFromInt(80), FrozenBalance: decimal.NewFromInt(20)}, nil
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Balance(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/balance", nil), 4, domain.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.BalanceResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(4), resp.UserID)
	assert.Equal(t, "80", resp.Available.String())
	assert.Equal(t, "20", resp.FrozenBalance.String())
}

func TestDepositHandler_Initiate(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		initiateFn: func(ctx context.Context, userID int64, amount decimal.Decimal, desc string, meta domain.RequestMeta) (*usecase.DepositCheckout, error) {
			assert.Equal(t, int64(4), userID)
			assert.Equal(t, "Top up", desc)
			return &usecase.DepositCheckout{
				OrderID:     "DEP_4_X",
				RedirectURL: "https://payeer.com/merchant/",
				Fields:      map[string]string{"m_orderid": "DEP_4_X"},
			}, nil
		},
	}, zerolog.Nop())

	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/deposits/payeer", strings.NewReader(`{"amount":"15","description":"Top up"}`)), 4, domain.RoleUser)
	rec := httptest.NewRecorder()
	h.Initiate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.CheckoutResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "DEP_4_X", resp.OrderID)
	assert.Equal(t, "DEP_4_X", resp.Fields["m_orderid"])
}

func TestDepositHandler_Manual(t *testing.T) {
	h := NewDepositHandler(&depositServiceStub{
		depositFn: func(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*usecase.DepositResult, error) {
			if userID == 404 {
				return nil, domain.ErrUserNotFound
			}
			return &usecase.DepositResult{UserID: userID, Amount: amount, Reference: "DEP_9_X", Balance: amount}, nil
		},
	}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Manual(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":9,"amount":"30"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.DepositResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "DEP_9_X", resp.Reference)

	rec = httptest.NewRecorder()
	h.Manual(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":404,"amount":"30"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
