package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CampaignResponse represents a campaign in API responses.
type CampaignResponse struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Budget          decimal.Decimal `json:"budget"`
	Spent           decimal.Decimal `json:"spent"`
	RemainingBudget decimal.Decimal `json:"remaining_budget"`
	SpentPercentage decimal.Decimal `json:"spent_percentage"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CampaignFromDomain converts a domain campaign to a response.
func CampaignFromDomain(c *domain.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		Name:            c.Name,
		Description:     c.Description,
		Budget:          c.Budget,
		Spent:           c.Spent,
		RemainingBudget: c.RemainingBudget(),
		SpentPercentage: c.SpentPercentage(),
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CampaignsFromDomain converts domain campaigns to responses.
func CampaignsFromDomain(campaigns []*domain.Campaign) []*CampaignResponse {
	result := make([]*CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		result[i] = CampaignFromDomain(c)
	}
	return result
}

// BudgetReleaseResponse reports how much budget went back to the owner.
type BudgetReleaseResponse struct {
	CampaignID int64           `json:"campaign_id"`
	Released   decimal.Decimal `json:"released"`
}

// BudgetCheckResponse answers whether a campaign can cover an amount.
type BudgetCheckResponse struct {
	CampaignID  int64           `json:"campaign_id"`
	Amount      decimal.Decimal `json:"amount"`
	HasBudget   bool            `json:"has_budget"`
	CanActivate bool            `json:"can_activate"`
}

// CreativeResponse represents a served creative.
type CreativeResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Content map[string]any `json:"content,omitempty"`
	URL     string         `json:"url"`
}

// AdServeResponse is the ad serving result. Error is one of the ad serving outcome messages.
type AdServeResponse struct {
	Success    bool              `json:"success"`
	Creative   *CreativeResponse `json:"creative,omitempty"`
	CampaignID int64             `json:"campaign_id,omitempty"`
	Cost       string            `json:"cost,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// AdServeFromResult converts a served ad to a response.
func AdServeFromResult(r *usecase.AdResponse) *AdServeResponse {
	return &AdServeResponse{
		Success: true,
		Creative: &CreativeResponse{
			ID:      r.Creative.ID,
			Name:    r.Creative.Name,
			Type:    string(r.Creative.Type),
			Content: r.Creative.Content,
			URL:     r.Creative.URL,
		},
		CampaignID: r.CampaignID,
		Cost:       r.Cost,
	}
}

// AdSlotResponse represents an ad slot in API responses.
type AdSlotResponse struct {
	ID                 int64              `json:"id"`
	SiteID             int64              `json:"site_id"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	Dimensions         *domain.Dimensions `json:"dimensions,omitempty"`
	PricePerClick      decimal.Decimal    `json:"price_per_click"`
	PricePerImpression decimal.Decimal    `json:"price_per_impression"`
	IsActive           bool               `json:"is_active"`
	CanDisplayAds      bool               `json:"can_display_ads"`
	CreatedAt          time.Time          `json:"created_at"`
}

// AdSlotFromDomain converts a domain ad slot to a response.
func AdSlotFromDomain(s *domain.AdSlot) *AdSlotResponse {
	return &AdSlotResponse{
		ID:                 s.ID,
		SiteID:             s.SiteID,
		Name:               s.Name,
		Type:               string(s.Type),
		Dimensions:         s.Dimensions,
		PricePerClick:      s.PricePerClick,
		PricePerImpression: s.PricePerImpression,
		IsActive:           s.IsActive,
		CanDisplayAds:      s.CanDisplayAds(),
		CreatedAt:          s.CreatedAt,
	}
}

// SiteResponse represents a publisher site.
type SiteResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsActive bool   `json:"is_active"`
}

// BalanceResponse represents a user's balances.
type BalanceResponse struct {
	UserID        int64           `json:"user_id"`
	Balance       decimal.Decimal `json:"balance"`
	FrozenBalance decimal.Decimal `json:"frozen_balance"`
	Available     decimal.Decimal `json:"available"`
}

// BalanceFromDomain converts a user to a balance response.
func BalanceFromDomain(u *domain.User) *BalanceResponse {
	return &BalanceResponse{
		UserID:        u.ID,
		Balance:       u.Balance,
		FrozenBalance: u.FrozenBalance,
		Available:     u.AvailableBalance(),
	}
}

// DepositResponse represents a credited deposit.
type DepositResponse struct {
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Balance   decimal.Decimal `json:"balance"`
}

// DepositFromResult converts a deposit result to a response.
func DepositFromResult(r *usecase.DepositResult) *DepositResponse {
	return &DepositResponse{
		UserID:    r.UserID,
		Amount:    r.Amount,
		Reference: r.Reference,
		Balance:   r.Balance,
	}
}

// CheckoutResponse tells the client where to send the user to pay.
type CheckoutResponse struct {
	OrderID     string            `json:"order_id"`
	RedirectURL string            `json:"redirect_url"`
	Fields      map[string]string `json:"fields"`
}

// WebhookResponse is returned to the payment gateway.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WithdrawalResponse represents a withdrawal in API responses.
type WithdrawalResponse struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WithdrawalFromDomain converts a domain withdrawal to a response.
func WithdrawalFromDomain(w *domain.Withdrawal) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:            w.ID,
		UserID:        w.UserID,
		Amount:        w.Amount,
		Status:        string(w.Status),
		TransactionID: w.TransactionID,
		Notes:         w.Notes,
		ProcessedAt:   w.ProcessedAt,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// WithdrawalsFromDomain converts domain withdrawals to responses.
func WithdrawalsFromDomain(ws []*domain.Withdrawal) []*WithdrawalResponse {
	result := make([]*WithdrawalResponse, len(ws))
	for i, w := range ws {
		result[i] = WithdrawalFromDomain(w)
	}
	return result
}

// TransactionLogResponse represents a transaction log row.
type TransactionLogResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionLogsFromDomain converts log rows to responses.
func TransactionLogsFromDomain(logs []*domain.TransactionLog) []*TransactionLogResponse {
	result := make([]*TransactionLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &TransactionLogResponse{
			ID:          l.ID,
			UserID:      l.UserID,
			Amount:      l.Amount,
			Type:        string(l.Type),
			Reference:   l.Reference,
			Status:      string(l.Status),
			Description: l.Description,
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// ReferralEarningResponse represents a referral payout.
type ReferralEarningResponse struct {
	ID                  int64           `json:"id"`
	ReferredUserID      int64           `json:"referred_user_id"`
	Amount              decimal.Decimal `json:"amount"`
	SourceTransactionID int64           `json:"source_transaction_id"`
	Type                string          `json:"type"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ReferralEarningsFromDomain converts earnings to responses.
func ReferralEarningsFromDomain(earnings []*domain.ReferralEarning) []*ReferralEarningResponse {
	result := make([]*ReferralEarningResponse, len(earnings))
	for i, e := range earnings {
		result[i] = &ReferralEarningResponse{
			ID:                  e.ID,
			ReferredUserID:      e.ReferredUserID,
			Amount:              e.Amount,
			SourceTransactionID: e.SourceTransactionID,
			Type:                string(e.Type),
			CreatedAt:           e.CreatedAt,
		}
	}
	return result
}

// RelatedRefResponse is a tagged reference to another entity.
type RelatedRefResponse struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// AnalyticsEventResponse represents an analytics event.
type AnalyticsEventResponse struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	Related   *RelatedRefResponse `json:"related,omitempty"`
	Cost      decimal.Decimal     `json:"cost"`
	Metadata  map[string]any      `json:"metadata,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// AnalyticsEventsFromDomain converts events to responses.
func AnalyticsEventsFromDomain(events []*domain.AnalyticsEvent) []*AnalyticsEventResponse {
	result := make([]*AnalyticsEventResponse, len(events))
	for i, e := range events {
		resp := &AnalyticsEventResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Cost:      e.Cost,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		}
		if e.Related != nil {
			resp.Related = &RelatedRefResponse{Type: string(e.Related.Type), ID: e.Related.ID}
		}
		result[i] = resp
	}
	return result
}

// RelatedResponse is a resolved related entity. Exactly one field is set.
type RelatedResponse struct {
	Type       string              `json:"type"`
	Campaign   *CampaignResponse   `json:"campaign,omitempty"`
	Withdrawal *WithdrawalResponse `json:"withdrawal,omitempty"`
	AdSlot     *AdSlotResponse     `json:"ad_slot,omitempty"`
	Site       *SiteResponse       `json:"site,omitempty"`
}

// RelatedFromDomain converts a resolved reference to a response.
func RelatedFromDomain(t domain.RelatedType, r *domain.Related) *RelatedResponse {
	resp := &RelatedResponse{Type: string(t)}
	switch {
	case r.Campaign != nil:
		resp.Campaign = CampaignFromDomain(r.Campaign)
	case r.Withdrawal != nil:
		resp.Withdrawal = WithdrawalFromDomain(r.Withdrawal)
	case r.AdSlot != nil:
		resp.AdSlot = AdSlotFromDomain(r.AdSlot)
	case r.Site != nil:
		resp.Site = &SiteResponse{
			ID:       r.Site.ID,
			UserID:   r.Site.UserID,
			Name:     r.Site.Name,
			URL:      r.Site.URL,
			IsActive: r.Site.IsActive,
		}
	}
	return resp
}

// ConsistencyResponse is the ledger consistency report.
type ConsistencyResponse struct {
	Consistent          bool            `json:"consistent"`
	Holdings            decimal.Decimal `json:"holdings"`
	NetInflow           decimal.Decimal `json:"net_inflow"`
	Difference          decimal.Decimal `json:"difference"`
	UserBalance         decimal.Decimal `json:"user_balance"`
	UserFrozen          decimal.Decimal `json:"user_frozen"`
	CampaignBudget      decimal.Decimal `json:"campaign_budget"`
	CampaignSpent       decimal.Decimal `json:"campaign_spent"`
	CompletedDeposits   decimal.Decimal `json:"completed_deposits"`
	ProcessedWithdrawal decimal.Decimal `json:"processed_withdrawals"`
	ReferralEarnings    decimal.Decimal `json:"referral_earnings"`
	NegativeBalances    int64           `json:"negative_balances"`
	OverspentCampaigns  int64           `json:"overspent_campaigns"`
	CheckedAt           time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:          r.Consistent,
		Holdings:            r.Holdings,
		NetInflow:           r.NetInflow,
		Difference:          r.Difference,
		UserBalance:         r.Totals.UserBalance,
		UserFrozen:          r.Totals.UserFrozen,
		CampaignBudget:      r.Totals.CampaignBudget,
		CampaignSpent:       r.Totals.CampaignSpent,
		CompletedDeposits:   r.Totals.CompletedDeposits,
		ProcessedWithdrawal: r.Totals.ProcessedWithdrawal,
		ReferralEarnings:    r.Totals.ReferralEarnings,
		NegativeBalances:    r.NegativeBalances,
		OverspentCampaigns:  r.OverspentCampaigns,
		CheckedAt:           r.CheckedAt,
	}
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
