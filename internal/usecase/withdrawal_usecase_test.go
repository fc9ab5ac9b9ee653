package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
	"github.com/iho/smartlink/internal/usecase/mocks"
)

func newWithdrawalUseCase(f *fixture, notifier usecase.Notifier) *usecase.WithdrawalUseCase {
	uc := usecase.NewWithdrawalUseCase(f.txm, nil, f.repos, f.idGen, notifier, nil, f.log)
	uc.SetClock(func() time.Time { return testNow })
	return uc
}

func adminContext() context.Context {
	return domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: 1, Role: domain.RoleAdmin})
}

func TestWithdrawalUseCase_Lifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	f := newFixture(t)
	uc := newWithdrawalUseCase(f, notifier)
	userID := f.user("500.00")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("200"), domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusPending, w.Status)
	assert.Contains(t, w.TransactionID, "WTH_")

	u := f.store.User(userID)
	assert.True(t, u.Balance.Equal(d("300")))
	assert.True(t, u.FrozenBalance.Equal(d("200")))

	var kinds []string
	notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			kinds = append(kinds, n.Kind)
			assert.Equal(t, userID, n.UserID)
			return nil
		}).
		Times(2)

	w, err = uc.ApproveWithdrawal(adminContext(), w.ID, "looks fine", domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, w.Status)
	require.NotNil(t, w.ProcessedAt)
	u = f.store.User(userID)
	assert.True(t, u.FrozenBalance.Equal(d("200")), "approval must not move funds")

	w, err = uc.ProcessWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusProcessed, w.Status)

	u = f.store.User(userID)
	assert.True(t, u.Balance.Equal(d("300")))
	assert.True(t, u.FrozenBalance.IsZero())
	assert.Equal(t, []string{domain.NotificationWithdrawalApproved, domain.NotificationWithdrawalProcessed}, kinds)

	logs := f.store.Logs(domain.TransactionTypeWithdrawal)
	require.Len(t, logs, 3)
	statuses := []domain.TransactionStatus{logs[0].Status, logs[1].Status, logs[2].Status}
	assert.Equal(t, []domain.TransactionStatus{
		domain.TransactionStatusPending,
		domain.TransactionStatusPending,
		domain.TransactionStatusCompleted,
	}, statuses)
	for _, l := range logs {
		assert.Equal(t, w.TransactionID, l.Reference)
	}

	spend := f.store.Events(domain.AnalyticsEventSpend)
	require.Len(t, spend, 1)
	assert.Equal(t, domain.RelatedWithdrawal, spend[0].Related.Type)
	assert.Equal(t, w.ID, spend[0].Related.ID)

	_, err = uc.ProcessWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrWithdrawalNotApproved)
}

func TestWithdrawalUseCase_RejectReturnsFunds(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)
	userID := f.user("500")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("200"), domain.RequestMeta{})
	require.NoError(t, err)

	w, err = uc.RejectWithdrawal(adminContext(), w.ID, "insufficient KYC", domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, w.Status)
	assert.Equal(t, "insufficient KYC", w.Notes)
	assert.Nil(t, w.ProcessedAt)

	u := f.store.User(userID)
	assert.True(t, u.Balance.Equal(d("500")))
	assert.True(t, u.FrozenBalance.IsZero())

	logs := f.store.Logs(domain.TransactionTypeWithdrawal)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.TransactionStatusFailed, logs[1].Status)

	_, err = uc.ApproveWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrWithdrawalNotPending)
}

func TestWithdrawalUseCase_CreateFailures(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "zero", amount: "0", wantErr: domain.ErrInvalidAmount},
		{name: "negative", amount: "-5", wantErr: domain.ErrInvalidAmount},
		{name: "below minimum", amount: "0.5", wantErr: domain.ErrAmountTooSmall},
		{name: "finer than stored scale", amount: "10.00005", wantErr: domain.ErrInvalidAmount},
		{name: "above maximum", amount: "10000000000000000", wantErr: domain.ErrAmountTooLarge},
		{name: "over balance", amount: "100.01", wantErr: domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			uc := newWithdrawalUseCase(f, nil)
			userID := f.user("100")

			_, err := uc.CreateWithdrawal(context.Background(), userID, d(tt.amount), domain.RequestMeta{})
			require.ErrorIs(t, err, tt.wantErr)

			u := f.store.User(userID)
			assert.True(t, u.Balance.Equal(d("100")))
			assert.True(t, u.FrozenBalance.IsZero())
			assert.Empty(t, f.store.Logs(domain.TransactionTypeWithdrawal))
		})
	}
}

func TestWithdrawalUseCase_CreateUnknownUser(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)

	_, err := uc.CreateWithdrawal(context.Background(), 42, d("1"), domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestWithdrawalUseCase_TransitionsRequireReviewer(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)
	userID := f.user("100")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("10"), domain.RequestMeta{})
	require.NoError(t, err)

	ctx := domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: userID, Role: domain.RoleUser})
	_, err = uc.ApproveWithdrawal(ctx, w.ID, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrInsufficientRole)
	assert.Equal(t, domain.WithdrawalStatusPending, f.store.Withdrawal(w.ID).Status)

	_, err = uc.GetWithdrawal(ctx, w.ID)
	require.NoError(t, err)

	other := domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: userID + 1, Role: domain.RoleUser})
	_, err = uc.GetWithdrawal(other, w.ID)
	require.ErrorIs(t, err, domain.ErrWithdrawalNotFound)
}

func TestWithdrawalUseCase_ProcessRequiresApproval(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)
	userID := f.user("100")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("10"), domain.RequestMeta{})
	require.NoError(t, err)

	_, err = uc.ProcessWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrWithdrawalNotApproved)
	assert.True(t, f.store.User(userID).FrozenBalance.Equal(d("10")))

	_, err = uc.ApproveWithdrawal(adminContext(), 9999, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrWithdrawalNotFound)
}

func TestWithdrawalUseCase_RollbackOnLogFailure(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)
	userID := f.user("100")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("10"), domain.RequestMeta{})
	require.NoError(t, err)

	f.store.FailOn["logs.Create"] = errors.New("constraint violation")
	_, err = uc.RejectWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.ErrorIs(t, err, domain.ErrInternal)

	u := f.store.User(userID)
	assert.True(t, u.Balance.Equal(d("90")))
	assert.True(t, u.FrozenBalance.Equal(d("10")))
	assert.Equal(t, domain.WithdrawalStatusPending, f.store.Withdrawal(w.ID).Status)
}

func TestWithdrawalUseCase_NotifierFailureKeepsTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	f := newFixture(t)
	uc := newWithdrawalUseCase(f, notifier)
	userID := f.user("100")

	w, err := uc.CreateWithdrawal(context.Background(), userID, d("10"), domain.RequestMeta{})
	require.NoError(t, err)

	_, err = uc.ApproveWithdrawal(adminContext(), w.ID, "", domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusApproved, f.store.Withdrawal(w.ID).Status)
}

func TestWithdrawalUseCase_ValidateWithdrawalAmount(t *testing.T) {
	f := newFixture(t)
	uc := newWithdrawalUseCase(f, nil)
	userID := f.user("50")

	tests := []struct {
		amount string
		want   bool
	}{
		{"50", true},
		{"50.01", false},
		{"0", false},
		{"-1", false},
		{"0.5", false},
		{"1.00001", false},
	}
	for _, tt := range tests {
		ok, err := uc.ValidateWithdrawalAmount(context.Background(), userID, d(tt.amount))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, tt.amount)
	}
}
