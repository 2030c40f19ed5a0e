package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_secret_key"

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			orderID:   "order_N9z2Kb4",
			paymentID: "pay_N9z3Xc7",
			signature: sign("order_N9z2Kb4", "pay_N9z3Xc7", secret),
			want:      true,
		},
		{
			name:      "signature from a different secret",
			orderID:   "order_N9z2Kb4",
			paymentID: "pay_N9z3Xc7",
			signature: sign("order_N9z2Kb4", "pay_N9z3Xc7", "wrong_secret"),
			want:      false,
		},
		{
			name:      "signature over swapped ids",
			orderID:   "order_N9z2Kb4",
			paymentID: "pay_N9z3Xc7",
			signature: sign("pay_N9z3Xc7", "order_N9z2Kb4", secret),
			want:      false,
		},
		{
			name:      "truncated signature",
			orderID:   "order_N9z2Kb4",
			paymentID: "pay_N9z3Xc7",
			signature: sign("order_N9z2Kb4", "pay_N9z3Xc7", secret)[:10],
			want:      false,
		},
		{
			name:      "empty signature",
			orderID:   "order_N9z2Kb4",
			paymentID: "pay_N9z3Xc7",
			signature: "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.orderID, tt.paymentID, tt.signature, secret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignaturePayload(t *testing.T) {
	assert.Equal(t, "order_1|pay_1", SignaturePayload("order_1", "pay_1"))
}
