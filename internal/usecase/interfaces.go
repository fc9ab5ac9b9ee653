package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
)

// UserRepository defines data access for user balances.
//
// The balance mutators are single conditional updates. A false result means the guard
// failed (insufficient funds or a lost race) and nothing was written.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.User, error)
	DeductBalance(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) (bool, error)
	AddBalance(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) error
	FreezeBalance(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) (bool, error)
	UnfreezeBalance(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) (bool, error)
	BurnFrozen(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) (bool, error)
}

// CampaignRepository defines data access for campaigns and their budget fields.
type CampaignRepository interface {
	Create(ctx context.Context, tx Transaction, campaign *domain.Campaign) error
	Update(ctx context.Context, tx Transaction, campaign *domain.Campaign) error
	GetByID(ctx context.Context, id int64) (*domain.Campaign, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Campaign, error)
	AddBudget(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) error
	// DeductBudget adds amount to spent only if the result stays within budget and
	// deactivates the campaign when it becomes exhausted.
	DeductBudget(ctx context.Context, tx Transaction, id int64, amount decimal.Decimal) (bool, error)
	// ShrinkBudget sets budget to spent and returns the amount removed.
	ShrinkBudget(ctx context.Context, tx Transaction, id int64) (decimal.Decimal, error)
	SetActive(ctx context.Context, tx Transaction, id int64, active bool) error
	Delete(ctx context.Context, tx Transaction, id int64) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error)
	ListExpiredOrExhausted(ctx context.Context, now time.Time) ([]*domain.Campaign, error)
	ListAboveSpendRatio(ctx context.Context, ratio decimal.Decimal) ([]*domain.Campaign, error)
	// ListServable returns campaigns attached to the slot that are active, running at now
	// and not exhausted.
	ListServable(ctx context.Context, adSlotID int64, now time.Time) ([]*domain.Campaign, error)
}

// AdSlotRepository defines data access for ad slots and their campaign links.
type AdSlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AdSlot, error)
	AttachCampaign(ctx context.Context, adSlotID, campaignID int64) error
	DetachCampaign(ctx context.Context, adSlotID, campaignID int64) error
}

// SiteRepository defines data access for publisher sites.
type SiteRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Site, error)
}

// CreativeRepository defines data access for creatives.
type CreativeRepository interface {
	// ListActiveByCampaigns returns active creatives keyed by campaign id.
	ListActiveByCampaigns(ctx context.Context, campaignIDs []int64) (map[int64][]*domain.Creative, error)
}

// WithdrawalRepository defines data access for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, tx Transaction, withdrawal *domain.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Withdrawal, error)
	// UpdateStatus moves the withdrawal from one status to another. It reports false when
	// the row is no longer in the from status.
	UpdateStatus(ctx context.Context, tx Transaction, id int64, from, to domain.WithdrawalStatus, notes string, processedAt *time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error)
}

// TransactionLogRepository defines data access for the transaction log.
type TransactionLogRepository interface {
	Create(ctx context.Context, tx Transaction, log *domain.TransactionLog) error
	GetByReference(ctx context.Context, reference string, txType domain.TransactionType) (*domain.TransactionLog, error)
	GetByReferenceForUpdate(ctx context.Context, tx Transaction, reference string, txType domain.TransactionType) (*domain.TransactionLog, error)
	UpdateStatus(ctx context.Context, tx Transaction, id int64, status domain.TransactionStatus, description string) error
	// MarkFailed updates the status outside of any transaction.
	MarkFailed(ctx context.Context, id int64, description string) error
	List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error)
}

// ReferralRepository defines data access for referral earnings.
type ReferralRepository interface {
	// Create returns domain.ErrReferralAlreadyPaid when the source transaction already paid out.
	Create(ctx context.Context, tx Transaction, earning *domain.ReferralEarning) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error)
}

// AnalyticsRepository defines data access for analytics events.
type AnalyticsRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.AnalyticsEvent) error
	ListByUser(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context) (*LedgerTotals, error)
	CountViolations(ctx context.Context) (negativeUsers, overspentCampaigns int64, err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a unit of work on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}
