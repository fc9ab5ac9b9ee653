package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/domain"
)

// unitOfWork runs a function inside one database transaction.
type unitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
}

// run executes fn in a transaction and commits it. Transient conflicts are retried
// around the whole unit. Business outcomes come back unchanged; any other failure is
// logged on log and replaced with domain.ErrInternal.
func (u unitOfWork) run(ctx context.Context, log zerolog.Logger, op string, fn func(ctx context.Context, tx Transaction) error) error {
	attempt := func() error { return u.once(ctx, fn) }

	var err error
	if u.retrier != nil {
		err = u.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}

	if err == nil || domain.IsExpected(err) {
		return err
	}
	if errors.Is(err, domain.ErrInternal) {
		return err
	}

	log.Error().Err(err).Str("op", op).Msg("transaction rolled back")
	return domain.ErrInternal
}

func (u unitOfWork) once(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := u.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// notify sends n after commit. Failures are logged and swallowed.
func notify(ctx context.Context, notifier Notifier, log zerolog.Logger, n *domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Str("kind", n.Kind).Int64("user_id", n.UserID).Msg("notification dispatch failed")
	}
}
