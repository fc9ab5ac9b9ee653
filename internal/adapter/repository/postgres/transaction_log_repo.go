package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

const logColumns = `id, user_id, amount, type, reference, status, description, ip_address, user_agent, created_at, updated_at`

// TransactionLogRepository implements usecase.TransactionLogRepository.
type TransactionLogRepository struct {
	db querier
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{db: pool}
}

// Create appends a row and sets its ID. A second deposit row for the same reference
// returns domain.ErrDuplicateDeposit.
func (r *TransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, l *domain.TransactionLog) error {
	err := conn(tx).QueryRow(ctx, `
		INSERT INTO transaction_logs (user_id, amount, type, reference, status, description, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		l.UserID, decimalToNumeric(l.Amount), string(l.Type), l.Reference, string(l.Status),
		l.Description, l.IPAddress, l.UserAgent, l.CreatedAt, updatedAt(l),
	).Scan(&l.ID)
	if isPgError(err, pgErrUniqueViolation) {
		return domain.ErrDuplicateDeposit
	}
	return err
}

func updatedAt(l *domain.TransactionLog) any {
	if l.UpdatedAt.IsZero() {
		return l.CreatedAt
	}
	return l.UpdatedAt
}

// GetByReference returns the newest row with the reference and type.
func (r *TransactionLogRepository) GetByReference(ctx context.Context, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	return r.get(ctx, r.db, `
		SELECT `+logColumns+` FROM transaction_logs
		WHERE reference = $1 AND type = $2
		ORDER BY id DESC
		LIMIT 1`, reference, txType)
}

// GetByReferenceForUpdate is GetByReference with a FOR UPDATE lock.
func (r *TransactionLogRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	return r.get(ctx, conn(tx), `
		SELECT `+logColumns+` FROM transaction_logs
		WHERE reference = $1 AND type = $2
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE`, reference, txType)
}

func (r *TransactionLogRepository) get(ctx context.Context, q querier, sql string, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	l, err := scanLog(q.QueryRow(ctx, sql, reference, string(txType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return l, nil
}

// UpdateStatus sets the status and description of a row.
func (r *TransactionLogRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id int64, status domain.TransactionStatus, description string) error {
	tag, err := conn(tx).Exec(ctx, `
		UPDATE transaction_logs SET status = $2, description = $3, updated_at = now()
		WHERE id = $1`, id, string(status), description)
	return expectOne(tag.RowsAffected(), err, domain.ErrTransactionNotFound)
}

// MarkFailed marks a row failed outside any transaction. Completed rows are left alone.
func (r *TransactionLogRepository) MarkFailed(ctx context.Context, id int64, description string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE transaction_logs SET status = 'failed', description = $2, updated_at = now()
		WHERE id = $1 AND status <> 'completed'`, id, description)
	return err
}

// List returns rows matching filter, newest first.
func (r *TransactionLogRepository) List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != 0 {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Type != "" {
		add("type = $%d", string(filter.Type))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	sql := `SELECT ` + logColumns + ` FROM transaction_logs`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	sql += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLog)
}

func scanLog(row pgx.Row) (*domain.TransactionLog, error) {
	var (
		l      domain.TransactionLog
		amount pgtype.Numeric
		kind   string
		status string
	)
	err := row.Scan(&l.ID, &l.UserID, &amount, &kind, &l.Reference, &status, &l.Description,
		&l.IPAddress, &l.UserAgent, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Amount = numericToDecimal(amount)
	l.Type = domain.TransactionType(kind)
	l.Status = domain.TransactionStatus(status)
	return &l, nil
}
