package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// User is the ledger-relevant view of a platform user.
//
// Balance and FrozenBalance are never negative. They are changed only through the
// guarded methods below (in memory) or the matching conditional updates in the
// user repository (in storage).
type User struct {
	ID            int64
	Email         string
	Name          string
	Role          Role
	Balance       decimal.Decimal
	FrozenBalance decimal.Decimal
	ReferrerID    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasBalance reports whether the spendable balance covers amount.
func (u *User) HasBalance(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// AvailableBalance is the spendable balance. Frozen funds are already excluded from Balance.
func (u *User) AvailableBalance() decimal.Decimal {
	return u.Balance
}

// DeductBalance removes amount from the balance. It reports false and leaves the user
// untouched when the balance is insufficient.
func (u *User) DeductBalance(amount decimal.Decimal) bool {
	if !u.HasBalance(amount) {
		return false
	}
	u.Balance = u.Balance.Sub(amount)
	return true
}

// AddBalance credits amount to the balance.
func (u *User) AddBalance(amount decimal.Decimal) {
	u.Balance = u.Balance.Add(amount)
}

// FreezeBalance moves amount from the balance into the frozen balance.
func (u *User) FreezeBalance(amount decimal.Decimal) bool {
	if !u.HasBalance(amount) {
		return false
	}
	u.Balance = u.Balance.Sub(amount)
	u.FrozenBalance = u.FrozenBalance.Add(amount)
	return true
}

// UnfreezeBalance returns amount from the frozen balance to the balance.
func (u *User) UnfreezeBalance(amount decimal.Decimal) bool {
	if u.FrozenBalance.LessThan(amount) {
		return false
	}
	u.FrozenBalance = u.FrozenBalance.Sub(amount)
	u.Balance = u.Balance.Add(amount)
	return true
}

// BurnFrozen permanently removes amount from the frozen balance. The funds leave the system.
func (u *User) BurnFrozen(amount decimal.Decimal) bool {
	if u.FrozenBalance.LessThan(amount) {
		return false
	}
	u.FrozenBalance = u.FrozenBalance.Sub(amount)
	return true
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can review withdrawals and run maintenance operations
	RoleAdmin Role = "admin"

	// RoleUser owns sites, ad slots and campaigns
	RoleUser Role = "user"
)

var validRoles = map[Role]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanReviewWithdrawals checks if the role may approve, reject or process withdrawals
func (r Role) CanReviewWithdrawals() bool {
	return r == RoleAdmin
}

// CanRunMaintenance checks if the role may trigger scans and consistency reports
func (r Role) CanRunMaintenance() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
