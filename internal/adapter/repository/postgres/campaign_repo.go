package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

const campaignColumns = `c.id, c.user_id, c.name, c.description, c.budget, c.spent, c.start_date, c.end_date, c.is_active, c.created_at, c.updated_at`

// CampaignRepository implements usecase.CampaignRepository.
type CampaignRepository struct {
	db querier
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: pool}
}

// Create inserts a campaign and sets its ID.
func (r *CampaignRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Campaign) error {
	return conn(tx).QueryRow(ctx, `
		INSERT INTO campaigns (user_id, name, description, budget, spent, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.UserID, c.Name, c.Description, decimalToNumeric(c.Budget), decimalToNumeric(c.Spent),
		c.StartDate, nullableTime(c.EndDate), c.IsActive, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

// Update writes the descriptive fields and the date window.
func (r *CampaignRepository) Update(ctx context.Context, tx usecase.Transaction, c *domain.Campaign) error {
	tag, err := conn(tx).Exec(ctx, `
		UPDATE campaigns SET name = $2, description = $3, start_date = $4, end_date = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.StartDate, nullableTime(c.EndDate), c.UpdatedAt)
	return expectOne(tag.RowsAffected(), err, domain.ErrCampaignNotFound)
}

// GetByID retrieves a campaign by ID.
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	return r.get(ctx, r.db, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = $1`, id)
}

// GetByIDForUpdate retrieves a campaign by ID with a FOR UPDATE lock.
func (r *CampaignRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Campaign, error) {
	return r.get(ctx, conn(tx), `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = $1 FOR UPDATE`, id)
}

func (r *CampaignRepository) get(ctx context.Context, q querier, sql string, id int64) (*domain.Campaign, error) {
	c, err := scanCampaign(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return c, nil
}

// AddBudget increases the budget by amount.
func (r *CampaignRepository) AddBudget(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) error {
	tag, err := conn(tx).Exec(ctx, `
		UPDATE campaigns SET budget = budget + $2, updated_at = now()
		WHERE id = $1`, id, decimalToNumeric(amount))
	return expectOne(tag.RowsAffected(), err, domain.ErrCampaignNotFound)
}

// DeductBudget charges amount when the remaining budget covers it and deactivates the
// campaign once the budget is exhausted. It reports false when the guard fails.
func (r *CampaignRepository) DeductBudget(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	tag, err := conn(tx).Exec(ctx, `
		UPDATE campaigns
		SET spent = spent + $2,
		    is_active = CASE WHEN spent + $2 >= budget THEN FALSE ELSE is_active END,
		    updated_at = now()
		WHERE id = $1 AND budget - spent >= $2`, id, decimalToNumeric(amount))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ShrinkBudget lowers the budget to what has been spent and returns the released amount.
func (r *CampaignRepository) ShrinkBudget(ctx context.Context, tx usecase.Transaction, id int64) (decimal.Decimal, error) {
	var unused pgtype.Numeric
	err := conn(tx).QueryRow(ctx, `
		WITH old AS (
			SELECT id, budget - spent AS unused FROM campaigns WHERE id = $1 FOR UPDATE
		)
		UPDATE campaigns c SET budget = c.spent, updated_at = now()
		FROM old
		WHERE c.id = old.id AND old.unused > 0
		RETURNING old.unused`, id).Scan(&unused)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return numericToDecimal(unused), nil
}

// SetActive sets the active flag.
func (r *CampaignRepository) SetActive(ctx context.Context, tx usecase.Transaction, id int64, active bool) error {
	tag, err := conn(tx).Exec(ctx, `UPDATE campaigns SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	return expectOne(tag.RowsAffected(), err, domain.ErrCampaignNotFound)
}

// Delete removes the campaign together with its creatives and slot links.
func (r *CampaignRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := conn(tx).Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return expectOne(tag.RowsAffected(), err, domain.ErrCampaignNotFound)
}

// ListByUser lists a user's campaigns, newest first.
func (r *CampaignRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error) {
	return r.list(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		WHERE c.user_id = $1
		ORDER BY c.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
}

// ListExpiredOrExhausted lists active campaigns past their end date or out of budget.
func (r *CampaignRepository) ListExpiredOrExhausted(ctx context.Context, now time.Time) ([]*domain.Campaign, error) {
	return r.list(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		WHERE c.is_active AND ((c.end_date IS NOT NULL AND c.end_date < $1) OR c.spent >= c.budget)
		ORDER BY c.id`, now)
}

// ListAboveSpendRatio lists active campaigns whose spend exceeds ratio of their budget.
func (r *CampaignRepository) ListAboveSpendRatio(ctx context.Context, ratio decimal.Decimal) ([]*domain.Campaign, error) {
	return r.list(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		WHERE c.is_active AND c.budget > 0 AND c.spent > c.budget * $1
		ORDER BY c.id`, decimalToNumeric(ratio))
}

// ListServable lists active, running, unexhausted campaigns linked to the ad slot.
func (r *CampaignRepository) ListServable(ctx context.Context, adSlotID int64, now time.Time) ([]*domain.Campaign, error) {
	return r.list(ctx, `
		SELECT `+campaignColumns+` FROM campaigns c
		JOIN ad_slot_campaigns l ON l.campaign_id = c.id
		WHERE l.ad_slot_id = $1
		  AND c.is_active
		  AND c.start_date <= $2
		  AND (c.end_date IS NULL OR c.end_date >= $2)
		  AND c.spent < c.budget
		ORDER BY c.id`, adSlotID, now)
}

func (r *CampaignRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Campaign, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCampaign)
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c       domain.Campaign
		budget  pgtype.Numeric
		spent   pgtype.Numeric
		endDate pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &budget, &spent,
		&c.StartDate, &endDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Budget = numericToDecimal(budget)
	c.Spent = numericToDecimal(spent)
	c.EndDate = timePtr(endDate)
	return &c, nil
}

// expectOne turns a zero row count into notFound.
func expectOne(affected int64, err, notFound error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
