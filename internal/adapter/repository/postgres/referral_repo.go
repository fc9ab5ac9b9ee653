package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// ReferralRepository implements usecase.ReferralRepository.
type ReferralRepository struct {
	db querier
}

// NewReferralRepository creates a new ReferralRepository.
func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: pool}
}

// Create inserts an earning. The unique source transaction makes a second payout for the
// same transaction fail with domain.ErrReferralAlreadyPaid.
func (r *ReferralRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.ReferralEarning) error {
	err := conn(tx).QueryRow(ctx, `
		INSERT INTO referral_earnings (user_id, referred_user_id, amount, source_transaction_id, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.UserID, e.ReferredUserID, decimalToNumeric(e.Amount), e.SourceTransactionID, string(e.Type), e.CreatedAt,
	).Scan(&e.ID)
	if isPgError(err, pgErrUniqueViolation) {
		return domain.ErrReferralAlreadyPaid
	}
	return err
}

// ListByUser lists the earnings paid to userID, newest first.
func (r *ReferralRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, referred_user_id, amount, source_transaction_id, type, created_at
		FROM referral_earnings
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (*domain.ReferralEarning, error) {
		var (
			e      domain.ReferralEarning
			amount pgtype.Numeric
			kind   string
		)
		if err := row.Scan(&e.ID, &e.UserID, &e.ReferredUserID, &amount, &e.SourceTransactionID, &kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Amount = numericToDecimal(amount)
		e.Type = domain.ReferralType(kind)
		return &e, nil
	})
}
