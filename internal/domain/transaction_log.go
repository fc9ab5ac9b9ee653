package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a money movement.
type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeBudgetAllocation TransactionType = "budget_allocation"
	TransactionTypeBudgetReturn     TransactionType = "budget_return"
	TransactionTypeImpressionCharge TransactionType = "impression_charge"
	TransactionTypeReferralEarning  TransactionType = "referral_earning"
)

// TransactionStatus is the lifecycle state of a log row.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Reference prefixes. A reference is <prefix>_<user id>_<unique>.
const (
	ReferencePrefixDeposit    = "DEP"
	ReferencePrefixWithdrawal = "WTH"
	ReferencePrefixImpression = "IMP"
	ReferencePrefixAllocation = "ALC"
	ReferencePrefixReturn     = "RET"
	ReferencePrefixReferral   = "REF"
)

// TransactionLog is an append-only record of one money movement.
//
// Rows are only ever updated through a pending/failed -> completed/failed status
// transition used by webhook reconciliation.
type TransactionLog struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Type        TransactionType
	Reference   string
	Status      TransactionStatus
	Description string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsReconcilable reports whether the row may still move to a final status.
func (l *TransactionLog) IsReconcilable() bool {
	return l.Status == TransactionStatusPending || l.Status == TransactionStatusFailed
}

// TransactionLogFilter narrows log listings.
type TransactionLogFilter struct {
	UserID int64
	Type   TransactionType
	Status TransactionStatus
	Limit  int
	Offset int
}
