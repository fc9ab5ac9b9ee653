package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/smartlink/internal/domain"
)

// AdSlotRepository implements usecase.AdSlotRepository.
type AdSlotRepository struct {
	db querier
}

// NewAdSlotRepository creates a new AdSlotRepository.
func NewAdSlotRepository(pool *pgxpool.Pool) *AdSlotRepository {
	return &AdSlotRepository{db: pool}
}

// GetByID retrieves an ad slot together with its site's owner and state.
func (r *AdSlotRepository) GetByID(ctx context.Context, id int64) (*domain.AdSlot, error) {
	var (
		s             domain.AdSlot
		slotType      string
		width, height pgtype.Int4
		perClick      pgtype.Numeric
		perImpression pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, `
		SELECT a.id, a.site_id, s.user_id, s.is_active, a.name, a.type, a.width, a.height,
		       a.price_per_click, a.price_per_impression, a.is_active, a.created_at, a.updated_at
		FROM ad_slots a
		JOIN sites s ON s.id = a.site_id
		WHERE a.id = $1`, id,
	).Scan(&s.ID, &s.SiteID, &s.SiteUserID, &s.SiteActive, &s.Name, &slotType, &width, &height,
		&perClick, &perImpression, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdSlotNotFound
		}
		return nil, err
	}

	s.Type = domain.AdFormat(slotType)
	s.PricePerClick = numericToDecimal(perClick)
	s.PricePerImpression = numericToDecimal(perImpression)
	if width.Valid && height.Valid {
		s.Dimensions = &domain.Dimensions{Width: int(width.Int32), Height: int(height.Int32)}
	}
	return &s, nil
}

// AttachCampaign links a campaign to an ad slot. Existing links are left alone.
func (r *AdSlotRepository) AttachCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ad_slot_campaigns (ad_slot_id, campaign_id)
		VALUES ($1, $2)
		ON CONFLICT (ad_slot_id, campaign_id) DO NOTHING`, adSlotID, campaignID)
	if isPgError(err, pgErrForeignKeyViolation) {
		return domain.ErrAdSlotNotFound
	}
	return err
}

// DetachCampaign removes the link between a campaign and an ad slot.
func (r *AdSlotRepository) DetachCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ad_slot_campaigns WHERE ad_slot_id = $1 AND campaign_id = $2`, adSlotID, campaignID)
	return err
}

// SiteRepository implements usecase.SiteRepository.
type SiteRepository struct {
	db querier
}

// NewSiteRepository creates a new SiteRepository.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{db: pool}
}

// GetByID retrieves a site by ID.
func (r *SiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	var s domain.Site
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, url, is_active, created_at FROM sites WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.Name, &s.URL, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreativeRepository implements usecase.CreativeRepository.
type CreativeRepository struct {
	db querier
}

// NewCreativeRepository creates a new CreativeRepository.
func NewCreativeRepository(pool *pgxpool.Pool) *CreativeRepository {
	return &CreativeRepository{db: pool}
}

// ListActiveByCampaigns returns the active creatives of the given campaigns keyed by campaign.
func (r *CreativeRepository) ListActiveByCampaigns(ctx context.Context, campaignIDs []int64) (map[int64][]*domain.Creative, error) {
	out := make(map[int64][]*domain.Creative, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, name, type, content, url, is_active, created_at, updated_at
		FROM creatives
		WHERE campaign_id = ANY($1) AND is_active
		ORDER BY id`, campaignIDs)
	if err != nil {
		return nil, err
	}

	creatives, err := collect(rows, scanCreative)
	if err != nil {
		return nil, err
	}
	for _, c := range creatives {
		out[c.CampaignID] = append(out[c.CampaignID], c)
	}
	return out, nil
}

func scanCreative(row pgx.Row) (*domain.Creative, error) {
	var (
		c       domain.Creative
		kind    string
		content []byte
	)
	err := row.Scan(&c.ID, &c.CampaignID, &c.Name, &kind, &content, &c.URL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Type = domain.AdFormat(kind)
	if c.Content, err = unmarshalJSON(content); err != nil {
		return nil, err
	}
	return &c, nil
}
