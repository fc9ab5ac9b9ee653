package domain

import "time"

// Notification kinds dispatched after a committed money movement.
const (
	NotificationBalanceTopUp        = "balance_top_up"
	NotificationWithdrawalApproved  = "withdrawal_approved"
	NotificationWithdrawalRejected  = "withdrawal_rejected"
	NotificationWithdrawalProcessed = "withdrawal_processed"
	NotificationBudgetWarning       = "campaign_budget_warning"
	NotificationCampaignExhausted   = "campaign_deactivated"
	NotificationReferralEarning     = "referral_earning"
)

// Notification is a fire-and-forget message for one user.
type Notification struct {
	Kind      string         `json:"kind"`
	UserID    int64          `json:"user_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// BalanceTopUpPayload builds the payload of a balance_top_up notification.
func BalanceTopUpPayload(amount, reference, balance string) map[string]any {
	return map[string]any{
		"amount":    amount,
		"reference": reference,
		"balance":   balance,
	}
}

// WithdrawalPayload builds the payload of a withdrawal_* notification.
func WithdrawalPayload(w *Withdrawal) map[string]any {
	return map[string]any{
		"withdrawal_id":  w.ID,
		"amount":         w.Amount.StringFixed(2),
		"status":         string(w.Status),
		"transaction_id": w.TransactionID,
		"notes":          w.Notes,
	}
}

// BudgetWarningPayload builds the payload of a campaign_budget_warning notification.
func BudgetWarningPayload(c *Campaign) map[string]any {
	return map[string]any{
		"campaign_id":      c.ID,
		"campaign_name":    c.Name,
		"remaining_budget": c.RemainingBudget().StringFixed(2),
		"percentage":       c.SpentPercentage().StringFixed(2),
	}
}
