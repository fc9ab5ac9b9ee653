package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
)

// Notifier dispatches notifications. It is only called after the owning transaction
// committed; errors are logged by the caller and never undo the committed work.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// CampaignSelector picks one campaign out of the compatible candidates.
type CampaignSelector interface {
	Select(candidates []*domain.Campaign) *domain.Campaign
}

// CreativePicker picks one creative out of a campaign's compatible creatives.
type CreativePicker interface {
	Pick(creatives []*domain.Creative) *domain.Creative
}

// PaymentGateway signs outgoing checkout forms and verifies incoming webhooks.
type PaymentGateway interface {
	// Verify reports whether fields carry a valid signature in m_sign.
	Verify(fields map[string]string) bool
	// CheckoutForm returns the redirect URL and the signed form fields for an order.
	CheckoutForm(orderID string, amount decimal.Decimal, description string) (string, map[string]string)
	// Currency is the settlement currency the gateway is configured for.
	Currency() string
}
