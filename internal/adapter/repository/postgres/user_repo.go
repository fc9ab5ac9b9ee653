package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

const userColumns = `id, email, name, role, balance, frozen_balance, referrer_id, created_at, updated_at`

// UserRepository implements usecase.UserRepository.
//
// Every balance mutation is a single conditional UPDATE; a zero row count means the guard
// failed, never that the change was partially applied.
type UserRepository struct {
	db querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a user by ID with a FOR UPDATE lock.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.User, error) {
	return r.get(ctx, conn(tx), `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) get(ctx context.Context, q querier, sql string, id int64) (*domain.User, error) {
	user, err := scanUser(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeductBalance subtracts amount when the balance covers it.
func (r *UserRepository) DeductBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.guarded(ctx, tx, `
		UPDATE users SET balance = balance - $2, updated_at = now()
		WHERE id = $1 AND balance >= $2`, id, amount)
}

// AddBalance credits amount unconditionally.
func (r *UserRepository) AddBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) error {
	ok, err := r.guarded(ctx, tx, `
		UPDATE users SET balance = balance + $2, updated_at = now()
		WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// FreezeBalance moves amount from balance to frozen_balance when the balance covers it.
func (r *UserRepository) FreezeBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.guarded(ctx, tx, `
		UPDATE users SET balance = balance - $2, frozen_balance = frozen_balance + $2, updated_at = now()
		WHERE id = $1 AND balance >= $2`, id, amount)
}

// UnfreezeBalance moves amount from frozen_balance back to balance.
func (r *UserRepository) UnfreezeBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.guarded(ctx, tx, `
		UPDATE users SET frozen_balance = frozen_balance - $2, balance = balance + $2, updated_at = now()
		WHERE id = $1 AND frozen_balance >= $2`, id, amount)
}

// BurnFrozen removes amount from frozen_balance.
func (r *UserRepository) BurnFrozen(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.guarded(ctx, tx, `
		UPDATE users SET frozen_balance = frozen_balance - $2, updated_at = now()
		WHERE id = $1 AND frozen_balance >= $2`, id, amount)
}

func (r *UserRepository) guarded(ctx context.Context, tx usecase.Transaction, sql string, id int64, amount decimal.Decimal) (bool, error) {
	tag, err := conn(tx).Exec(ctx, sql, id, decimalToNumeric(amount))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u       domain.User
		role    string
		balance pgtype.Numeric
		frozen  pgtype.Numeric
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &balance, &frozen, &u.ReferrerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Balance = numericToDecimal(balance)
	u.FrozenBalance = numericToDecimal(frozen)
	return &u, nil
}
