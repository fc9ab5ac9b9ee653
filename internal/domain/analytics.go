package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AnalyticsEventType string

const (
	AnalyticsEventImpression AnalyticsEventType = "impression"
	AnalyticsEventClick      AnalyticsEventType = "click"
	AnalyticsEventSpend      AnalyticsEventType = "spend"
	AnalyticsEventEarning    AnalyticsEventType = "earning"
)

// RelatedType tags the entity an analytics event refers to.
type RelatedType string

const (
	RelatedCampaign   RelatedType = "campaign"
	RelatedWithdrawal RelatedType = "withdrawal"
	RelatedAdSlot     RelatedType = "ad_slot"
	RelatedSite       RelatedType = "site"
)

// IsValid reports whether t is a known variant.
func (t RelatedType) IsValid() bool {
	switch t {
	case RelatedCampaign, RelatedWithdrawal, RelatedAdSlot, RelatedSite:
		return true
	}
	return false
}

// RelatedRef is a tagged reference to another entity.
type RelatedRef struct {
	Type RelatedType
	ID   int64
}

// AnalyticsEvent is an append-only reporting record.
type AnalyticsEvent struct {
	ID        int64
	UserID    int64
	Type      AnalyticsEventType
	Related   *RelatedRef
	Cost      decimal.Decimal
	Metadata  map[string]any
	CreatedAt time.Time
}

// Site is a publisher site owning ad slots.
type Site struct {
	ID        int64
	UserID    int64
	Name      string
	URL       string
	IsActive  bool
	CreatedAt time.Time
}

// Related is the resolved target of a RelatedRef. Exactly one field is set.
type Related struct {
	Campaign   *Campaign
	Withdrawal *Withdrawal
	AdSlot     *AdSlot
	Site       *Site
}
