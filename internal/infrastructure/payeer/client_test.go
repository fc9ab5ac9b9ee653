package payeer

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(Config{MerchantID: "12345", SecretKey: "s3cret"})
}

func TestSignOrdersByKey(t *testing.T) {
	c := newTestClient()

	got := c.Sign(map[string]string{"b": "2", "a": "1", "c": "3"})

	sum := sha256.Sum256([]byte("1:2:3:s3cret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestCheckoutForm(t *testing.T) {
	c := newTestClient()

	url, form := c.CheckoutForm("DEP_7_01J", decimal.RequireFromString("10.5"), "SmartLink Deposit")

	assert.Equal(t, "https://payeer.com/merchant/", url)
	assert.Equal(t, "12345", form["m_shop"])
	assert.Equal(t, "DEP_7_01J", form["m_orderid"])
	assert.Equal(t, "10.50", form["m_amount"])
	assert.Equal(t, "USD", form["m_curr"])

	desc, err := base64.StdEncoding.DecodeString(form["m_desc"])
	require.NoError(t, err)
	assert.Equal(t, "SmartLink Deposit", string(desc))

	assert.True(t, c.Verify(form), "a form signed by the client must verify")
}

func TestVerify(t *testing.T) {
	c := newTestClient()
	webhook := func() map[string]string {
		fields := map[string]string{
			"m_operation_id": "991",
			"m_orderid":      "DEP_7_01J",
			"m_amount":       "10.00",
			"m_curr":         "USD",
			"m_status":       "success",
		}
		fields["m_sign"] = c.Sign(fields)
		return fields
	}

	tests := []struct {
		name   string
		mutate func(map[string]string)
		want   bool
	}{
		{"valid", func(map[string]string) {}, true},
		{"uppercase signature", func(f map[string]string) { f["m_sign"] = strings.ToUpper(f["m_sign"]) }, true},
		{"tampered amount", func(f map[string]string) { f["m_amount"] = "1000.00" }, false},
		{"extra field", func(f map[string]string) { f["m_extra"] = "x" }, false},
		{"missing signature", func(f map[string]string) { delete(f, "m_sign") }, false},
		{"empty signature", func(f map[string]string) { f["m_sign"] = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := webhook()
			tt.mutate(fields)
			assert.Equal(t, tt.want, c.Verify(fields))
		})
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	ours := newTestClient()
	theirs := NewClient(Config{MerchantID: "12345", SecretKey: "other"})

	fields := map[string]string{"m_operation_id": "1", "m_orderid": "DEP_1_A"}
	fields["m_sign"] = theirs.Sign(fields)

	assert.False(t, ours.Verify(fields))
}
