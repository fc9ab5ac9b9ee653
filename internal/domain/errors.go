package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientFrozen = errors.New("insufficient frozen balance")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrUserNotFound       = errors.New("user not found")

	// Campaign errors
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrCampaignNotRunnable = errors.New("cannot activate campaign, check budget and dates")
	ErrNotCampaignOwner    = errors.New("campaign belongs to another user")

	// Ad serving outcomes. Messages are part of the public contract.
	ErrAdSlotNotFound             = errors.New("ad slot not found")
	ErrSiteNotFound               = errors.New("site not found")
	ErrAdSlotInactive             = errors.New("Ad slot is not active")
	ErrNoActiveCampaigns          = errors.New("No active campaigns available")
	ErrNoCompatibleCampaigns      = errors.New("No campaigns with compatible ad formats available")
	ErrInsufficientCampaignBudget = errors.New("Insufficient campaign budget")

	// Withdrawal errors
	ErrWithdrawalNotFound    = errors.New("withdrawal not found")
	ErrWithdrawalNotPending  = errors.New("Withdrawal is not pending")
	ErrWithdrawalNotApproved = errors.New("Withdrawal is not approved")

	// Deposit / webhook errors
	ErrDuplicateDeposit  = errors.New("Transaction already processed")
	ErrInvalidSignature  = errors.New("Invalid signature")
	ErrInvalidCurrency   = errors.New("Invalid currency")
	ErrInvalidOrderID    = errors.New("Invalid order ID")
	ErrMissingWebhookKey = errors.New("Invalid request")

	// Transaction log / referral errors
	ErrTransactionNotFound = errors.New("transaction log not found")
	ErrReferralAlreadyPaid = errors.New("referral earning already distributed for transaction")
	ErrInvalidRelatedType  = errors.New("unknown related type")

	// ErrInternal is surfaced when an atomic unit fails for an infrastructure reason.
	// The underlying fault is logged, not returned.
	ErrInternal = errors.New("internal error")
)

var expectedErrors = []error{
	ErrInvalidAmount, ErrInsufficientFunds, ErrInsufficientFrozen, ErrInsufficientBudget,
	ErrUserNotFound, ErrCampaignNotFound, ErrCampaignNotRunnable, ErrNotCampaignOwner,
	ErrAdSlotNotFound, ErrAdSlotInactive, ErrNoActiveCampaigns, ErrNoCompatibleCampaigns,
	ErrInsufficientCampaignBudget, ErrWithdrawalNotFound, ErrWithdrawalNotPending,
	ErrWithdrawalNotApproved, ErrDuplicateDeposit, ErrInvalidSignature, ErrInvalidCurrency,
	ErrInvalidOrderID, ErrMissingWebhookKey, ErrTransactionNotFound, ErrReferralAlreadyPaid,
	ErrAmountTooLarge, ErrAmountTooSmall, ErrInvalidCampaignName, ErrInvalidDateRange,
	ErrInvalidAdFormat, ErrSiteNotFound, ErrInvalidRelatedType, ErrInsufficientRole,
	ErrUnauthorized,
}

// IsExpected reports whether err is a business outcome rather than an infrastructure fault.
func IsExpected(err error) bool {
	for _, e := range expectedErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
