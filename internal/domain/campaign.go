package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is an advertising campaign funded from its owner's balance.
//
// Invariant: Spent <= Budget. A campaign whose Spent reaches Budget is inactive.
type Campaign struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Budget      decimal.Decimal
	Spent       decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RemainingBudget is the part of the budget not yet charged.
func (c *Campaign) RemainingBudget() decimal.Decimal {
	return c.Budget.Sub(c.Spent)
}

// HasBudget reports whether the remaining budget covers amount.
func (c *Campaign) HasBudget(amount decimal.Decimal) bool {
	return c.RemainingBudget().GreaterThanOrEqual(amount)
}

// IsExhausted reports whether the whole budget has been spent.
func (c *Campaign) IsExhausted() bool {
	return c.Spent.GreaterThanOrEqual(c.Budget)
}

// DeductBudget charges amount against the budget. It reports false without mutation when
// the remaining budget is insufficient, and deactivates the campaign once exhausted.
func (c *Campaign) DeductBudget(amount decimal.Decimal) bool {
	if !c.HasBudget(amount) {
		return false
	}
	c.Spent = c.Spent.Add(amount)
	if c.IsExhausted() {
		c.IsActive = false
	}
	return true
}

// IsRunning reports whether at falls inside [StartDate, EndDate]. A nil EndDate is open ended.
func (c *Campaign) IsRunning(at time.Time) bool {
	if c.StartDate.After(at) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(at)
}

// IsExpired reports whether the campaign's end date has passed.
func (c *Campaign) IsExpired(at time.Time) bool {
	return c.EndDate != nil && c.EndDate.Before(at)
}

// CanActivate reports whether the campaign is running and has budget left to spend.
func (c *Campaign) CanActivate(at time.Time) bool {
	return c.IsRunning(at) && c.RemainingBudget().IsPositive()
}

// SpentPercentage is Spent as a percentage of Budget, zero for an unfunded campaign.
func (c *Campaign) SpentPercentage() decimal.Decimal {
	if !c.Budget.IsPositive() {
		return decimal.Zero
	}
	return c.Spent.Div(c.Budget).Mul(decimal.NewFromInt(100)).Round(2)
}
