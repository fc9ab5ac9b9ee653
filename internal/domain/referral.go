package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralType tells which kind of source transaction produced an earning.
type ReferralType string

const (
	ReferralTypeDeposit ReferralType = "deposit"
	ReferralTypeAdSpend ReferralType = "ad_spend"
)

// DefaultReferralRate is the flat share paid to the referrer.
var DefaultReferralRate = decimal.RequireFromString("0.01")

// ReferralEarning is a one-off payout to a referrer derived from a referred user's transaction.
type ReferralEarning struct {
	ID                  int64
	UserID              int64
	ReferredUserID      int64
	Amount              decimal.Decimal
	SourceTransactionID int64
	Type                ReferralType
	CreatedAt           time.Time
}

// ReferralTypeFor maps a source transaction type to the earning type.
func ReferralTypeFor(t TransactionType) ReferralType {
	if t == TransactionTypeDeposit {
		return ReferralTypeDeposit
	}
	return ReferralTypeAdSpend
}

// ReferralReward computes the payout for amount at rate at the stored scale. The credited
// balance and the earning row carry the same value.
func ReferralReward(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(AmountScale)
}
