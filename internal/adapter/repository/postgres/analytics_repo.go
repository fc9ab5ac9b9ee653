package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// AnalyticsRepository implements usecase.AnalyticsRepository.
type AnalyticsRepository struct {
	db querier
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: pool}
}

// Create inserts an event and sets its ID.
func (r *AnalyticsRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.AnalyticsEvent) error {
	metadata, err := marshalJSON(e.Metadata)
	if err != nil {
		return err
	}

	var relatedType pgtype.Text
	var relatedID pgtype.Int8
	if e.Related != nil {
		relatedType = pgtype.Text{String: string(e.Related.Type), Valid: true}
		relatedID = pgtype.Int8{Int64: e.Related.ID, Valid: true}
	}

	return conn(tx).QueryRow(ctx, `
		INSERT INTO analytics_events (user_id, type, related_type, related_id, cost, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, string(e.Type), relatedType, relatedID, decimalToNumeric(e.Cost), metadata, e.CreatedAt,
	).Scan(&e.ID)
}

// ListByUser lists a user's events, newest first. An empty eventType matches every type.
func (r *AnalyticsRepository) ListByUser(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, related_type, related_id, cost, metadata, created_at
		FROM analytics_events
		WHERE user_id = $1 AND ($2::text = '' OR type = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4`, userID, string(eventType), limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func scanEvent(row pgx.Row) (*domain.AnalyticsEvent, error) {
	var (
		e           domain.AnalyticsEvent
		kind        string
		relatedType pgtype.Text
		relatedID   pgtype.Int8
		cost        pgtype.Numeric
		metadata    []byte
	)
	err := row.Scan(&e.ID, &e.UserID, &kind, &relatedType, &relatedID, &cost, &metadata, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Type = domain.AnalyticsEventType(kind)
	e.Cost = numericToDecimal(cost)
	if relatedType.Valid && relatedID.Valid {
		e.Related = &domain.RelatedRef{Type: domain.RelatedType(relatedType.String), ID: relatedID.Int64}
	}
	if e.Metadata, err = unmarshalJSON(metadata); err != nil {
		return nil, err
	}
	return &e, nil
}
