package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withPrincipal(r *http.Request, userID int64, role domain.Role) *http.Request {
	return r.WithContext(domain.ContextWithPrincipal(r.Context(), domain.Principal{UserID: userID, Role: role}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

type campaignServiceStub struct {
	createFn      func(ctx context.Context, c *domain.Campaign, budget decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error)
	getFn         func(ctx context.Context, id int64) (*domain.Campaign, error)
	listFn        func(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error)
	updateFn      func(ctx context.Context, id int64, name, description string, start time.Time, end *time.Time) (*domain.Campaign, error)
	allocateFn    func(ctx context.Context, id int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error)
	releaseFn     func(ctx context.Context, id int64, meta domain.RequestMeta) (decimal.Decimal, error)
	canActivateFn func(ctx context.Context, id int64) (bool, error)
	checkFn       func(ctx context.Context, id int64, amount decimal.Decimal) (bool, error)
	activateFn    func(ctx context.Context, id int64) (*domain.Campaign, error)
	deactivateFn  func(ctx context.Context, id int64) (*domain.Campaign, error)
	deleteFn      func(ctx context.Context, id int64, meta domain.RequestMeta) error
}

func (s *campaignServiceStub) CreateCampaign(ctx context.Context, c *domain.Campaign, budget decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error) {
	return s.createFn(ctx, c, budget, meta)
}

func (s *campaignServiceStub) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.getFn(ctx, id)
}

func (s *campaignServiceStub) ListCampaigns(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *campaignServiceStub) UpdateCampaign(ctx context.Context, id int64, name, description string, start time.Time, end *time.Time) (*domain.Campaign, error) {
	return s.updateFn(ctx, id, name, description, start, end)
}

func (s *campaignServiceStub) AllocateBudget(ctx context.Context, id int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Campaign, error) {
	return s.allocateFn(ctx, id, amount, meta)
}

func (s *campaignServiceStub) ReleaseBudget(ctx context.Context, id int64, meta domain.RequestMeta) (decimal.Decimal, error) {
	return s.releaseFn(ctx, id, meta)
}

func (s *campaignServiceStub) CanActivate(ctx context.Context, id int64) (bool, error) {
	return s.canActivateFn(ctx, id)
}

func (s *campaignServiceStub) CheckBudget(ctx context.Context, id int64, amount decimal.Decimal) (bool, error) {
	return s.checkFn(ctx, id, amount)
}

func (s *campaignServiceStub) Activate(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.activateFn(ctx, id)
}

func (s *campaignServiceStub) Deactivate(ctx context.Context, id int64) (*domain.Campaign, error) {
	return s.deactivateFn(ctx, id)
}

func (s *campaignServiceStub) DeleteCampaign(ctx context.Context, id int64, meta domain.RequestMeta) error {
	return s.deleteFn(ctx, id, meta)
}

type adSlotServiceStub struct {
	getFn    func(ctx context.Context, id int64) (*domain.AdSlot, error)
	attachFn func(ctx context.Context, slotID, campaignID int64) error
	detachFn func(ctx context.Context, slotID, campaignID int64) error
}

func (s *adSlotServiceStub) GetAdSlot(ctx context.Context, id int64) (*domain.AdSlot, error) {
	return s.getFn(ctx, id)
}

func (s *adSlotServiceStub) AssociateCampaign(ctx context.Context, slotID, campaignID int64) error {
	return s.attachFn(ctx, slotID, campaignID)
}

func (s *adSlotServiceStub) DissociateCampaign(ctx context.Context, slotID, campaignID int64) error {
	return s.detachFn(ctx, slotID, campaignID)
}

type adServerStub struct {
	serveFn func(ctx context.Context, slotID int64) (*usecase.AdResponse, error)
}

func (s *adServerStub) ProcessAdRequest(ctx context.Context, slotID int64) (*usecase.AdResponse, error) {
	return s.serveFn(ctx, slotID)
}

type depositServiceStub struct {
	balanceFn  func(ctx context.Context, userID int64) (*domain.User, error)
	depositFn  func(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*usecase.DepositResult, error)
	initiateFn func(ctx context.Context, userID int64, amount decimal.Decimal, desc string, meta domain.RequestMeta) (*usecase.DepositCheckout, error)
	webhookFn  func(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*usecase.DepositResult, error)
}

func (s *depositServiceStub) GetBalance(ctx context.Context, userID int64) (*domain.User, error) {
	return s.balanceFn(ctx, userID)
}

func (s *depositServiceStub) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*usecase.DepositResult, error) {
	return s.depositFn(ctx, userID, amount, meta)
}

func (s *depositServiceStub) InitiateDeposit(ctx context.Context, userID int64, amount decimal.Decimal, desc string, meta domain.RequestMeta) (*usecase.DepositCheckout, error) {
	return s.initiateFn(ctx, userID, amount, desc, meta)
}

func (s *depositServiceStub) ProcessWebhook(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*usecase.DepositResult, error) {
	return s.webhookFn(ctx, fields, meta)
}

type withdrawalServiceStub struct {
	createFn  func(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Withdrawal, error)
	getFn     func(ctx context.Context, id int64) (*domain.Withdrawal, error)
	listFn    func(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error)
	approveFn withdrawalTransition
	rejectFn  withdrawalTransition
	processFn withdrawalTransition
}

func (s *withdrawalServiceStub) CreateWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	return s.createFn(ctx, userID, amount, meta)
}

func (s *withdrawalServiceStub) GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	return s.getFn(ctx, id)
}

func (s *withdrawalServiceStub) ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *withdrawalServiceStub) ApproveWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	return s.approveFn(ctx, id, notes, meta)
}

func (s *withdrawalServiceStub) RejectWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	return s.rejectFn(ctx, id, notes, meta)
}

func (s *withdrawalServiceStub) ProcessWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	return s.processFn(ctx, id, notes, meta)
}

type reportStub struct {
	listLogsFn     func(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error)
	listEarningsFn func(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error)
	listEventsFn   func(ctx context.Context, userID int64, t domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error)
	resolveFn      func(ctx context.Context, ref *domain.RelatedRef) (*domain.Related, error)
	consistencyFn  func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *reportStub) List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error) {
	return s.listLogsFn(ctx, filter)
}

func (s *reportStub) ListEarnings(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error) {
	return s.listEarningsFn(ctx, userID, limit, offset)
}

func (s *reportStub) ListEvents(ctx context.Context, userID int64, t domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error) {
	return s.listEventsFn(ctx, userID, t, limit, offset)
}

func (s *reportStub) ResolveRelated(ctx context.Context, ref *domain.RelatedRef) (*domain.Related, error) {
	return s.resolveFn(ctx, ref)
}

func (s *reportStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}
