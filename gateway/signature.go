package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignaturePayload returns the string Razorpay signs for a checkout:
// the order id and payment id joined by a pipe.
func SignaturePayload(orderID, paymentID string) string {
	return orderID + "|" + paymentID
}

// VerifySignature checks a gateway callback signature. The expected
// value is HMAC-SHA256 over "orderID|paymentID" with the shared secret,
// hex encoded. Comparison is constant time so a length mismatch or
// early difference leaks no timing information.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(SignaturePayload(orderID, paymentID)))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
