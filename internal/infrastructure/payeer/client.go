package payeer

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Checkout form fields.
const (
	fieldShop        = "m_shop"
	fieldOrderID     = "m_orderid"
	fieldAmount      = "m_amount"
	fieldCurrency    = "m_curr"
	fieldDescription = "m_desc"
	fieldSign        = "m_sign"
)

// Config holds merchant credentials.
type Config struct {
	MerchantID string
	SecretKey  string
	BaseURL    string
	Currency   string
}

// Client implements usecase.PaymentGateway for the Payeer merchant API.
type Client struct {
	cfg Config
}

// NewClient creates a new Client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://payeer.com/merchant/"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Client{cfg: cfg}
}

// Currency returns the settlement currency.
func (c *Client) Currency() string {
	return c.cfg.Currency
}

// CheckoutForm returns the merchant URL and the signed form for an order.
func (c *Client) CheckoutForm(orderID string, amount decimal.Decimal, description string) (string, map[string]string) {
	form := map[string]string{
		fieldShop:        c.cfg.MerchantID,
		fieldOrderID:     orderID,
		fieldAmount:      amount.StringFixed(2),
		fieldCurrency:    c.cfg.Currency,
		fieldDescription: base64.StdEncoding.EncodeToString([]byte(description)),
	}
	form[fieldSign] = c.Sign(form)
	return c.cfg.BaseURL, form
}

// Verify reports whether fields carry a valid m_sign. Every other field takes part in
// the signature.
func (c *Client) Verify(fields map[string]string) bool {
	provided, ok := fields[fieldSign]
	if !ok || provided == "" {
		return false
	}

	unsigned := make(map[string]string, len(fields))
	for k, v := range fields {
		if k != fieldSign {
			unsigned[k] = v
		}
	}

	expected := c.Sign(unsigned)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(provided))) == 1
}

// Sign returns the hex SHA-256 of the field values ordered by key, joined with ':' and
// followed by the secret key.
func (c *Client) Sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		values = append(values, fields[k])
	}
	values = append(values, c.cfg.SecretKey)

	sum := sha256.Sum256([]byte(strings.Join(values, ":")))
	return hex.EncodeToString(sum[:])
}
