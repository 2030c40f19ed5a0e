package settlement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks a malformed settlement request. Details are
// wrapped around it so handlers can match with errors.Is.
var ErrValidation = errors.New("invalid settlement request")

// Request carries everything a verify call needs. It is validated once
// when the orchestrator picks it up; handlers only bind JSON into it.
type Request struct {
	UserID uint

	// Gateway callback fields. Empty for wallet-only settlements.
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`

	// Either a single course or the whole cart.
	IsCart   bool `json:"isCart"`
	CourseID uint `json:"course"`

	// UseWallet debits the wallet for whatever the gateway payment did
	// not cover (everything, for wallet-only settlements).
	UseWallet bool    `json:"wallet"`
	Amount    float64 `json:"amount"`

	CouponCode string `json:"coupon_code"`
}

// UsesGateway reports whether a gateway payment backs this settlement.
func (r *Request) UsesGateway() bool {
	return r.RazorpayPaymentID != "" || r.RazorpayOrderID != "" || r.RazorpaySignature != ""
}

// Validate checks the request shape. Business rules (balances, course
// state, coupon windows) are the orchestrator's job.
func (r *Request) Validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("%w: missing user", ErrValidation)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}

	hasOrder := strings.TrimSpace(r.RazorpayOrderID) != ""
	hasPayment := strings.TrimSpace(r.RazorpayPaymentID) != ""
	hasSignature := strings.TrimSpace(r.RazorpaySignature) != ""
	if hasOrder != hasPayment || hasPayment != hasSignature {
		return fmt.Errorf("%w: razorpay_order_id, razorpay_payment_id and razorpay_signature must be supplied together", ErrValidation)
	}
	if !hasPayment && !r.UseWallet {
		return fmt.Errorf("%w: settlement needs a gateway payment, wallet payment or both", ErrValidation)
	}

	if r.IsCart && r.CourseID != 0 {
		return fmt.Errorf("%w: course must not be set for a cart checkout", ErrValidation)
	}
	if !r.IsCart && r.CourseID == 0 {
		return fmt.Errorf("%w: course is required unless checking out the cart", ErrValidation)
	}
	return nil
}
