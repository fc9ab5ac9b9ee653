package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// Payeer webhook field names.
const (
	FieldOperationID = "m_operation_id"
	FieldSign        = "m_sign"
	FieldOrderID     = "m_orderid"
	FieldAmount      = "m_amount"
	FieldCurrency    = "m_curr"
)

const (
	webhookCompletedDescription = "Payeer deposit completed via webhook"
	webhookFailedDescription    = "Payeer deposit processing failed"
	defaultDepositDescription   = "SmartLink Deposit"
)

// DepositCheckout is what the client needs to redirect the user to the gateway.
type DepositCheckout struct {
	OrderID     string
	RedirectURL string
	Fields      map[string]string
}

// DepositResult describes a credited deposit.
type DepositResult struct {
	UserID    int64
	Amount    decimal.Decimal
	Reference string
	Balance   decimal.Decimal
}

// DepositUseCase credits user balances from manual top-ups and gateway webhooks.
type DepositUseCase struct {
	uow       unitOfWork
	userRepo  UserRepository
	logs      *TransactionLogUseCase
	gateway   PaymentGateway
	referrals *ReferralUseCase
	idGen     IDGenerator
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewDepositUseCase(
	txManager TransactionManager,
	retrier Retrier,
	repos Repositories,
	gateway PaymentGateway,
	referrals *ReferralUseCase,
	idGen IDGenerator,
	notifier Notifier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *DepositUseCase {
	return &DepositUseCase{
		uow:       unitOfWork{txManager: txManager, retrier: retrier},
		userRepo:  repos.Users,
		logs:      NewTransactionLogUseCase(repos.Logs),
		gateway:   gateway,
		referrals: referrals,
		idGen:     idGen,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger.With().Str("component", "deposit").Logger(),
	}
}

// GetBalance returns the user's balance view.
func (uc *DepositUseCase) GetBalance(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// Deposit credits amount to the user's balance immediately.
func (uc *DepositUseCase) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, meta domain.RequestMeta) (*DepositResult, error) {
	if err := domain.ValidateMinAmount(amount, domain.MinDepositAmount); err != nil {
		return nil, err
	}

	var (
		result *DepositResult
		entry  *domain.TransactionLog
	)
	log := uc.logger.With().Int64("user_id", userID).Str("amount", amount.String()).Logger()

	err := uc.uow.run(ctx, log, "deposit", func(ctx context.Context, tx Transaction) error {
		user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := uc.userRepo.AddBalance(ctx, tx, userID, amount); err != nil {
			return err
		}

		entry = &domain.TransactionLog{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionTypeDeposit,
			Reference:   newReference(uc.idGen, domain.ReferencePrefixDeposit, userID),
			Status:      domain.TransactionStatusCompleted,
			Description: "Manual deposit",
			IPAddress:   meta.IPAddress,
			UserAgent:   meta.UserAgent,
		}
		if err := uc.logs.Record(ctx, tx, entry); err != nil {
			return err
		}

		result = &DepositResult{
			UserID:    userID,
			Amount:    amount,
			Reference: entry.Reference,
			Balance:   user.Balance.Add(amount),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCredit(ctx, log, "manual", entry, result)
	return result, nil
}

// InitiateDeposit prepares a signed gateway checkout and records a pending deposit that
// the gateway webhook later reconciles.
func (uc *DepositUseCase) InitiateDeposit(ctx context.Context, userID int64, amount decimal.Decimal, description string, meta domain.RequestMeta) (*DepositCheckout, error) {
	if err := domain.ValidateMinAmount(amount, domain.MinDepositAmount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		description = defaultDepositDescription
	}

	orderID := newReference(uc.idGen, domain.ReferencePrefixDeposit, userID)
	redirectURL, fields := uc.gateway.CheckoutForm(orderID, amount, description)
	log := uc.logger.With().Int64("user_id", userID).Str("reference", orderID).Logger()

	err := uc.uow.run(ctx, log, "initiate_deposit", func(ctx context.Context, tx Transaction) error {
		if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}
		return uc.logs.Record(ctx, tx, &domain.TransactionLog{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionTypeDeposit,
			Reference:   orderID,
			Status:      domain.TransactionStatusPending,
			Description: description,
			IPAddress:   meta.IPAddress,
			UserAgent:   meta.UserAgent,
		})
	})
	if err != nil {
		return nil, err
	}

	return &DepositCheckout{OrderID: orderID, RedirectURL: redirectURL, Fields: fields}, nil
}

// ProcessWebhook verifies a gateway notification and credits the deposit exactly once.
//
// A delivery for an order that is already completed returns domain.ErrDuplicateDeposit.
// A delivery for a failed order is retried. Rejected deliveries never touch the ledger.
func (uc *DepositUseCase) ProcessWebhook(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*DepositResult, error) {
	result, err := uc.processWebhook(ctx, fields, meta)
	if err != nil && uc.metrics != nil {
		uc.metrics.WebhookRejections.WithLabelValues(webhookReason(err)).Inc()
	}
	return result, err
}

func (uc *DepositUseCase) processWebhook(ctx context.Context, fields map[string]string, meta domain.RequestMeta) (*DepositResult, error) {
	if fields[FieldOperationID] == "" || fields[FieldSign] == "" {
		return nil, domain.ErrMissingWebhookKey
	}

	orderID := fields[FieldOrderID]
	log := uc.logger.With().Str("reference", orderID).Str("operation_id", fields[FieldOperationID]).Logger()

	if !uc.gateway.Verify(fields) {
		log.Warn().Msg("webhook signature verification failed")
		return nil, domain.ErrInvalidSignature
	}

	existing, err := uc.logs.Lookup(ctx, orderID, domain.TransactionTypeDeposit)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up deposit")
		return nil, domain.ErrInternal
	}
	if existing != nil && existing.Status == domain.TransactionStatusCompleted {
		log.Info().Msg("deposit already processed")
		return nil, domain.ErrDuplicateDeposit
	}

	amount, err := decimal.NewFromString(fields[FieldAmount])
	if err != nil || domain.ValidateAmount(amount) != nil {
		log.Warn().Str("amount", fields[FieldAmount]).Msg("invalid webhook amount")
		return nil, domain.ErrInvalidAmount
	}
	if existing != nil && !existing.Amount.Equal(amount) {
		log.Warn().Str("amount", amount.String()).Str("expected", existing.Amount.String()).Msg("webhook amount does not match order")
		return nil, domain.ErrInvalidAmount
	}

	if err := domain.ValidateSettlementCurrency(fields[FieldCurrency], uc.gateway.Currency()); err != nil {
		log.Warn().Str("currency", fields[FieldCurrency]).Msg("invalid webhook currency")
		return nil, domain.ErrInvalidCurrency
	}

	userID, err := ParseOrderUserID(orderID)
	if err != nil {
		log.Warn().Msg("invalid order id")
		return nil, err
	}
	log = log.With().Int64("user_id", userID).Str("amount", amount.String()).Logger()

	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Msg("webhook user not found")
			return nil, err
		}
		log.Error().Err(err).Msg("failed to load webhook user")
		return nil, domain.ErrInternal
	}

	var (
		result *DepositResult
		entry  *domain.TransactionLog
	)
	err = uc.uow.run(ctx, log, "process_webhook", func(ctx context.Context, tx Transaction) error {
		user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := uc.userRepo.AddBalance(ctx, tx, userID, amount); err != nil {
			return err
		}

		entry, err = uc.logs.Reconcile(ctx, tx, orderID, domain.TransactionTypeDeposit, domain.TransactionStatusCompleted, webhookCompletedDescription)
		if errors.Is(err, domain.ErrTransactionNotFound) {
			entry = &domain.TransactionLog{
				UserID:      userID,
				Amount:      amount,
				Type:        domain.TransactionTypeDeposit,
				Reference:   orderID,
				Status:      domain.TransactionStatusCompleted,
				Description: webhookCompletedDescription,
				IPAddress:   meta.IPAddress,
				UserAgent:   meta.UserAgent,
			}
			err = uc.logs.Record(ctx, tx, entry)
		}
		if err != nil {
			return err
		}

		result = &DepositResult{
			UserID:    userID,
			Amount:    amount,
			Reference: orderID,
			Balance:   user.Balance.Add(amount),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInternal) && existing != nil {
			if markErr := uc.logs.repo.MarkFailed(ctx, existing.ID, webhookFailedDescription); markErr != nil {
				log.Error().Err(markErr).Msg("failed to mark deposit as failed")
			}
		}
		return nil, err
	}

	log.Info().Msg("deposit processed")
	uc.afterCredit(ctx, log, "payeer", entry, result)
	return result, nil
}

// afterCredit runs the post-commit side effects of a completed deposit.
func (uc *DepositUseCase) afterCredit(ctx context.Context, log zerolog.Logger, source string, entry *domain.TransactionLog, result *DepositResult) {
	if uc.metrics != nil {
		uc.metrics.DepositsCompleted.WithLabelValues(source).Inc()
	}

	notify(ctx, uc.notifier, log, &domain.Notification{
		Kind:      domain.NotificationBalanceTopUp,
		UserID:    result.UserID,
		Payload:   domain.BalanceTopUpPayload(result.Amount.StringFixed(2), result.Reference, result.Balance.StringFixed(2)),
		CreatedAt: time.Now().UTC(),
	})

	if uc.referrals == nil {
		return
	}
	if _, err := uc.referrals.DistributeEarnings(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("referral distribution failed")
	}
}

// ParseOrderUserID extracts the user id from an order id of the form
// <PREFIX>_<user id>_<unique>.
func ParseOrderUserID(orderID string) (int64, error) {
	parts := strings.Split(orderID, "_")
	if len(parts) < 3 {
		return 0, domain.ErrInvalidOrderID
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidOrderID
	}
	return id, nil
}

func webhookReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateDeposit):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "signature"
	case errors.Is(err, domain.ErrMissingWebhookKey):
		return "malformed"
	case errors.Is(err, domain.ErrInvalidCurrency):
		return "currency"
	case errors.Is(err, domain.ErrInvalidOrderID):
		return "order_id"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user"
	}
	return "internal"
}
