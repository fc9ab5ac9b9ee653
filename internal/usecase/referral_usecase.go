package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// ReferralUseCase pays referrers their share of referred users' transactions.
type ReferralUseCase struct {
	uow          unitOfWork
	userRepo     UserRepository
	referralRepo ReferralRepository
	logRepo      TransactionLogRepository
	analytics    AnalyticsRepository
	idGen        IDGenerator
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	rate         decimal.Decimal
	now          func() time.Time
}

func NewReferralUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos Repositories,
	idGen IDGenerator,
	notifier Notifier,
	rate decimal.Decimal,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ReferralUseCase {
	if !rate.IsPositive() {
		rate = domain.DefaultReferralRate
	}
	return &ReferralUseCase{
		uow:          unitOfWork{txManager: txManager, retrier: retrier},
		userRepo:     repos.Users,
		referralRepo: repos.Referrals,
		logRepo:      repos.Logs,
		analytics:    repos.Analytics,
		idGen:        idGen,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger.With().Str("component", "referral").Logger(),
		rate:         rate,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// DistributeEarnings credits the referrer of source's user with the referral reward.
//
// It returns (nil, nil) when the user has no referrer, the referrer no longer exists, or
// the reward rounds to zero. A second call for the same source returns
// domain.ErrReferralAlreadyPaid and credits nothing.
func (uc *ReferralUseCase) DistributeEarnings(ctx context.Context, source *domain.TransactionLog) (*domain.ReferralEarning, error) {
	if source == nil || source.Status != domain.TransactionStatusCompleted {
		return nil, nil
	}

	log := uc.logger.With().
		Int64("transaction_id", source.ID).
		Int64("user_id", source.UserID).
		Str("amount", source.Amount.String()).
		Logger()

	user, err := uc.userRepo.GetByID(ctx, source.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		log.Error().Err(err).Msg("failed to load referred user")
		return nil, domain.ErrInternal
	}
	if user.ReferrerID == nil {
		return nil, nil
	}

	reward := domain.ReferralReward(source.Amount, uc.rate)
	if !reward.IsPositive() {
		return nil, nil
	}

	var earning *domain.ReferralEarning
	referrerID := *user.ReferrerID
	log = log.With().Int64("referrer_id", referrerID).Logger()

	err = uc.uow.run(ctx, log, "distribute_referral", func(ctx context.Context, tx Transaction) error {
		earning = nil
		if _, err := uc.userRepo.GetByIDForUpdate(ctx, tx, referrerID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil
			}
			return err
		}

		if err := uc.userRepo.AddBalance(ctx, tx, referrerID, reward); err != nil {
			return err
		}

		now := uc.now()
		e := &domain.ReferralEarning{
			UserID:              referrerID,
			ReferredUserID:      user.ID,
			Amount:              reward,
			SourceTransactionID: source.ID,
			Type:                domain.ReferralTypeFor(source.Type),
			CreatedAt:           now,
		}
		if err := uc.referralRepo.Create(ctx, tx, e); err != nil {
			return err
		}

		err := uc.logRepo.Create(ctx, tx, &domain.TransactionLog{
			UserID:      referrerID,
			Amount:      reward,
			Type:        domain.TransactionTypeReferralEarning,
			Reference:   newReference(uc.idGen, domain.ReferencePrefixReferral, referrerID),
			Status:      domain.TransactionStatusCompleted,
			Description: fmt.Sprintf("Referral earning from user %d (%s)", user.ID, e.Type),
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		if err := uc.analytics.Create(ctx, tx, &domain.AnalyticsEvent{
			UserID:    referrerID,
			Type:      domain.AnalyticsEventEarning,
			Cost:      reward,
			Metadata:  map[string]any{"source_transaction_id": source.ID, "referred_user_id": user.ID},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		earning = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	if earning == nil {
		return nil, nil
	}

	if uc.metrics != nil {
		uc.metrics.ReferralEarnings.Inc()
	}
	notify(ctx, uc.notifier, log, &domain.Notification{
		Kind:   domain.NotificationReferralEarning,
		UserID: referrerID,
		Payload: map[string]any{
			"amount":           reward.String(),
			"referred_user_id": user.ID,
			"type":             string(earning.Type),
		},
		CreatedAt: uc.now(),
	})

	return earning, nil
}

// ListEarnings lists the referral earnings of userID.
func (uc *ReferralUseCase) ListEarnings(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.referralRepo.ListByUser(ctx, userID, limit, offset)
}
