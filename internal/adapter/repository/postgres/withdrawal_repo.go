package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

const withdrawalColumns = `id, user_id, amount, status, transaction_id, notes, processed_at, created_at, updated_at`

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	db querier
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: pool}
}

// Create inserts a withdrawal and sets its ID.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	return conn(tx).QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, status, transaction_id, notes, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		w.UserID, decimalToNumeric(w.Amount), string(w.Status), w.TransactionID, w.Notes,
		nullableTime(w.ProcessedAt), w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
}

// GetByID retrieves a withdrawal by ID.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	return r.get(ctx, r.db, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a withdrawal by ID with a FOR UPDATE lock.
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Withdrawal, error) {
	return r.get(ctx, conn(tx), `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
}

func (r *WithdrawalRepository) get(ctx context.Context, q querier, sql string, id int64) (*domain.Withdrawal, error) {
	w, err := scanWithdrawal(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, err
	}
	return w, nil
}

// UpdateStatus moves the withdrawal from one status to another. It reports false when the
// row is no longer in the from status. A nil processedAt keeps the stored value.
func (r *WithdrawalRepository) UpdateStatus(
	ctx context.Context,
	tx usecase.Transaction,
	id int64,
	from, to domain.WithdrawalStatus,
	notes string,
	processedAt *time.Time,
) (bool, error) {
	tag, err := conn(tx).Exec(ctx, `
		UPDATE withdrawals
		SET status = $3, notes = $4, processed_at = COALESCE($5, processed_at), updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), notes, nullableTime(processedAt))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser lists a user's withdrawals, newest first.
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWithdrawal)
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var (
		w           domain.Withdrawal
		amount      pgtype.Numeric
		status      string
		processedAt pgtype.Timestamptz
	)
	err := row.Scan(&w.ID, &w.UserID, &amount, &status, &w.TransactionID, &w.Notes, &processedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Amount = numericToDecimal(amount)
	w.Status = domain.WithdrawalStatus(status)
	w.ProcessedAt = timePtr(processedAt)
	return &w, nil
}
