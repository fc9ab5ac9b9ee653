package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
)

// CreateCampaignRequest represents a request to create a campaign.
type CreateCampaignRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Budget      decimal.Decimal `json:"budget" validate:"gte=0"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
}

// ToDomain converts the request to a campaign owned by userID.
func (r *CreateCampaignRequest) ToDomain(userID int64) *domain.Campaign {
	c := &domain.Campaign{
		UserID:      userID,
		Name:        r.Name,
		Description: r.Description,
		EndDate:     r.EndDate,
	}
	if r.StartDate != nil {
		c.StartDate = *r.StartDate
	}
	return c
}

// UpdateCampaignRequest represents a request to edit a campaign's descriptive fields.
// A missing start_date keeps the current one; a missing end_date clears it.
type UpdateCampaignRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=5000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// Start returns the requested start date or the zero time.
func (r *UpdateCampaignRequest) Start() time.Time {
	if r.StartDate == nil {
		return time.Time{}
	}
	return *r.StartDate
}

// AmountRequest carries a single positive amount.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

// InitiateDepositRequest represents a request to start a gateway deposit.
type InitiateDepositRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=255"`
}

// ManualDepositRequest represents an administrative balance top-up.
type ManualDepositRequest struct {
	UserID int64           `json:"user_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

// ReviewWithdrawalRequest carries the reviewer's notes for a withdrawal transition.
type ReviewWithdrawalRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}
