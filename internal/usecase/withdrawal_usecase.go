package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// WithdrawalUseCase drives the withdrawal state machine and the frozen balance that
// backs each pending withdrawal.
type WithdrawalUseCase struct {
	uow            unitOfWork
	userRepo       UserRepository
	withdrawalRepo WithdrawalRepository
	logRepo        TransactionLogRepository
	analytics      AnalyticsRepository
	idGen          IDGenerator
	notifier       Notifier
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	now            func() time.Time
}

func NewWithdrawalUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos Repositories,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		uow:            unitOfWork{txManager: txManager, retrier: retrier},
		userRepo:       repos.Users,
		withdrawalRepo: repos.Withdrawals,
		logRepo:        repos.Logs,
		analytics:      repos.Analytics,
		idGen:          idGen,
		notifier:       notifier,
		metrics:        metrics,
		logger:         logger.With().Str("component", "withdrawal").Logger(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ValidateWithdrawalAmount reports whether amount is a valid withdrawal covered by the balance.
func (uc *WithdrawalUseCase) ValidateWithdrawalAmount(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error) {
	if domain.ValidateMinAmount(amount, domain.MinWithdrawalAmount) != nil {
		return false, nil
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.HasBalance(amount), nil
}

// CreateWithdrawal freezes amount and records a pending withdrawal.
func (uc *WithdrawalUseCase) CreateWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	if err := domain.ValidateMinAmount(amount, domain.MinWithdrawalAmount); err != nil {
		return nil, err
	}

	var withdrawal *domain.Withdrawal
	log := uc.logger.With().Int64("user_id", userID).Str("amount", amount.String()).Logger()

	err := uc.uow.run(ctx, log, "create_withdrawal", func(ctx context.Context, tx Transaction) error {
		if _, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID); err != nil {
			return err
		}

		ok, err := uc.userRepo.FreezeBalance(ctx, tx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientFunds
		}

		now := uc.now()
		w := &domain.Withdrawal{
			UserID:        userID,
			Amount:        amount,
			Status:        domain.WithdrawalStatusPending,
			TransactionID: newReference(uc.idGen, domain.ReferencePrefixWithdrawal, userID),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.withdrawalRepo.Create(ctx, tx, w); err != nil {
			return err
		}

		if err := uc.writeLog(ctx, tx, w, domain.TransactionStatusPending, "Withdrawal request created", meta); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observe(domain.WithdrawalStatusPending)
	return withdrawal, nil
}

// GetWithdrawal returns a withdrawal visible to the caller.
func (uc *WithdrawalUseCase) GetWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	w, err := uc.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p, ok := domain.PrincipalFromContext(ctx); ok && p.UserID != w.UserID && !p.Role.CanReviewWithdrawals() {
		return nil, domain.ErrWithdrawalNotFound
	}
	return w, nil
}

// ListWithdrawals lists a user's withdrawals, newest first.
func (uc *WithdrawalUseCase) ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.withdrawalRepo.ListByUser(ctx, userID, limit, offset)
}

// ApproveWithdrawal moves a pending withdrawal to approved. Balances are unchanged.
func (uc *WithdrawalUseCase) ApproveWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	w, err := uc.transition(ctx, id, domain.WithdrawalStatusPending, domain.WithdrawalStatusApproved, notes, meta,
		func(ctx context.Context, tx Transaction, w *domain.Withdrawal) error { return nil })
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, domain.NotificationWithdrawalApproved, w)
	return w, nil
}

// RejectWithdrawal returns the frozen amount to the balance and closes the withdrawal.
func (uc *WithdrawalUseCase) RejectWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	w, err := uc.transition(ctx, id, domain.WithdrawalStatusPending, domain.WithdrawalStatusRejected, notes, meta,
		func(ctx context.Context, tx Transaction, w *domain.Withdrawal) error {
			ok, err := uc.userRepo.UnfreezeBalance(ctx, tx, w.UserID, w.Amount)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInsufficientFrozen
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, domain.NotificationWithdrawalRejected, w)
	return w, nil
}

// ProcessWithdrawal removes the frozen amount permanently; the funds leave the system.
func (uc *WithdrawalUseCase) ProcessWithdrawal(ctx context.Context, id int64, notes string, meta domain.RequestMeta) (*domain.Withdrawal, error) {
	w, err := uc.transition(ctx, id, domain.WithdrawalStatusApproved, domain.WithdrawalStatusProcessed, notes, meta,
		func(ctx context.Context, tx Transaction, w *domain.Withdrawal) error {
			ok, err := uc.userRepo.BurnFrozen(ctx, tx, w.UserID, w.Amount)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInsufficientFrozen
			}
			return uc.analytics.Create(ctx, tx, &domain.AnalyticsEvent{
				UserID:    w.UserID,
				Type:      domain.AnalyticsEventSpend,
				Related:   &domain.RelatedRef{Type: domain.RelatedWithdrawal, ID: w.ID},
				Cost:      w.Amount,
				Metadata:  map[string]any{"transaction_id": w.TransactionID},
				CreatedAt: uc.now(),
			})
		})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, domain.NotificationWithdrawalProcessed, w)
	return w, nil
}

func (uc *WithdrawalUseCase) transition(
	ctx context.Context,
	id int64,
	from, to domain.WithdrawalStatus,
	notes string,
	meta domain.RequestMeta,
	apply func(ctx context.Context, tx Transaction, w *domain.Withdrawal) error,
) (*domain.Withdrawal, error) {
	if p, ok := domain.PrincipalFromContext(ctx); ok && !p.Role.CanReviewWithdrawals() {
		return nil, domain.ErrInsufficientRole
	}

	start := time.Now()
	wrongState := domain.ErrWithdrawalNotPending
	if from == domain.WithdrawalStatusApproved {
		wrongState = domain.ErrWithdrawalNotApproved
	}

	var result *domain.Withdrawal
	log := uc.logger.With().Int64("withdrawal_id", id).Str("to", string(to)).Logger()

	err := uc.uow.run(ctx, log, "withdrawal_"+string(to), func(ctx context.Context, tx Transaction) error {
		w, err := uc.withdrawalRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if w.Status != from || !from.CanTransitionTo(to) {
			return wrongState
		}

		if err := apply(ctx, tx, w); err != nil {
			return err
		}

		now := uc.now()
		var processedAt *time.Time
		if to == domain.WithdrawalStatusApproved || to == domain.WithdrawalStatusProcessed {
			processedAt = &now
		}
		ok, err := uc.withdrawalRepo.UpdateStatus(ctx, tx, w.ID, from, to, notes, processedAt)
		if err != nil {
			return err
		}
		if !ok {
			return wrongState
		}

		w.Status = to
		w.Notes = notes
		w.UpdatedAt = now
		if processedAt != nil {
			w.ProcessedAt = processedAt
		}

		if err := uc.writeLog(ctx, tx, w, logStatusFor(to), "Withdrawal "+string(to), meta); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.observe(to)
	if uc.metrics != nil {
		uc.metrics.OperationDuration.WithLabelValues("withdrawal_" + string(to)).Observe(time.Since(start).Seconds())
	}
	return result, nil
}

// logStatusFor maps a withdrawal status onto the transaction log status set.
func logStatusFor(s domain.WithdrawalStatus) domain.TransactionStatus {
	switch s {
	case domain.WithdrawalStatusProcessed:
		return domain.TransactionStatusCompleted
	case domain.WithdrawalStatusRejected:
		return domain.TransactionStatusFailed
	}
	return domain.TransactionStatusPending
}

func (uc *WithdrawalUseCase) writeLog(ctx context.Context, tx Transaction, w *domain.Withdrawal, status domain.TransactionStatus, what string, meta domain.RequestMeta) error {
	description := fmt.Sprintf("%s (withdrawal %d, status %s)", what, w.ID, w.Status)
	if w.Notes != "" {
		description += ": " + w.Notes
	}
	return uc.logRepo.Create(ctx, tx, &domain.TransactionLog{
		UserID:      w.UserID,
		Amount:      w.Amount,
		Type:        domain.TransactionTypeWithdrawal,
		Reference:   w.TransactionID,
		Status:      status,
		Description: description,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		CreatedAt:   uc.now(),
	})
}

func (uc *WithdrawalUseCase) observe(status domain.WithdrawalStatus) {
	if uc.metrics != nil {
		uc.metrics.WithdrawalTransitions.WithLabelValues(string(status)).Inc()
	}
}

func (uc *WithdrawalUseCase) notify(ctx context.Context, kind string, w *domain.Withdrawal) {
	notify(ctx, uc.notifier, uc.logger, &domain.Notification{
		Kind:      kind,
		UserID:    w.UserID,
		Payload:   domain.WithdrawalPayload(w),
		CreatedAt: uc.now(),
	})
}
