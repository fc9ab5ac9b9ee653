package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCampaignName = errors.New("invalid campaign name")
	ErrAmountTooLarge      = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall      = errors.New("amount below minimum allowed")
	ErrInvalidDateRange    = errors.New("end date must be after start date")
	ErrInvalidAdFormat     = errors.New("invalid ad format")
)

// Validation constants
const (
	MaxCampaignNameLength = 255
	MinCampaignNameLength = 1
	MaxAmount             = "1000000000" // 1 billion
	MinDepositAmount      = "0.01"
	MinWithdrawalAmount   = "1"

	// AmountScale is the number of decimal places money columns store.
	AmountScale = 4
)

// ValidateCampaignName validates campaign name
func ValidateCampaignName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinCampaignNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCampaignName)
	}

	if len(name) > MaxCampaignNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidCampaignName, MaxCampaignNameLength)
	}

	return nil
}

// ValidateSettlementCurrency checks currency against the configured settlement currency.
func ValidateSettlementCurrency(currency, settlement string) error {
	if !strings.EqualFold(strings.TrimSpace(currency), settlement) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	return nil
}

// ValidateAmount checks amount is positive, not above MaxAmount and representable at
// AmountScale without rounding.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateMinAmount runs ValidateAmount and additionally enforces a minimum.
func ValidateMinAmount(amount decimal.Decimal, minimum string) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount.LessThan(decimal.RequireFromString(minimum)) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, minimum)
	}
	return nil
}

// ValidateCampaign validates the user-editable fields of a campaign.
func ValidateCampaign(c *Campaign) error {
	if err := ValidateCampaignName(c.Name); err != nil {
		return err
	}
	if c.Budget.IsNegative() {
		return ErrInvalidAmount
	}
	if c.EndDate != nil && !c.EndDate.After(c.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
