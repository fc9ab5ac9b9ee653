package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/smartlink/internal/domain"
)

// TransactionLogUseCase appends and reconciles transaction log rows. Writes always happen
// inside the caller's transaction.
type TransactionLogUseCase struct {
	repo TransactionLogRepository
	now  func() time.Time
}

func NewTransactionLogUseCase(repo TransactionLogRepository) *TransactionLogUseCase {
	return &TransactionLogUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one row.
func (uc *TransactionLogUseCase) Record(ctx context.Context, tx Transaction, entry *domain.TransactionLog) error {
	if entry.Status == "" {
		entry.Status = domain.TransactionStatusCompleted
	}
	now := uc.now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return uc.repo.Create(ctx, tx, entry)
}

// Reconcile locks the row identified by reference and moves it to status.
//
// It returns domain.ErrTransactionNotFound when no row exists and domain.ErrDuplicateDeposit
// when the row is already completed.
func (uc *TransactionLogUseCase) Reconcile(
	ctx context.Context,
	tx Transaction,
	reference string,
	txType domain.TransactionType,
	status domain.TransactionStatus,
	description string,
) (*domain.TransactionLog, error) {
	entry, err := uc.repo.GetByReferenceForUpdate(ctx, tx, reference, txType)
	if err != nil {
		return nil, err
	}
	if !entry.IsReconcilable() {
		return nil, domain.ErrDuplicateDeposit
	}

	if err := uc.repo.UpdateStatus(ctx, tx, entry.ID, status, description); err != nil {
		return nil, err
	}
	entry.Status = status
	entry.Description = description
	entry.UpdatedAt = uc.now()
	return entry, nil
}

// Lookup returns the row for reference, or nil when there is none.
func (uc *TransactionLogUseCase) Lookup(ctx context.Context, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	entry, err := uc.repo.GetByReference(ctx, reference, txType)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, nil
	}
	return entry, err
}

// List returns log rows matching filter, newest first.
func (uc *TransactionLogUseCase) List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error) {
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.repo.List(ctx, filter)
}
