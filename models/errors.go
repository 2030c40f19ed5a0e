package models

import "errors"

// Operational errors surfaced by the settlement, wallet, coupon and
// enrollment layers. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletSuspended   = errors.New("wallet is suspended")

	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrDuplicatePayment = errors.New("payment already settled")

	ErrCourseNotFound = errors.New("course not found or not purchasable")
	ErrEmptyCart      = errors.New("cart is empty")

	ErrInvalidCoupon      = errors.New("invalid or expired coupon")
	ErrCouponMinOrder     = errors.New("order amount below coupon minimum")
	ErrCouponLimitReached = errors.New("coupon usage limit exceeded")

	ErrAmountMismatch = errors.New("amount does not match order total")
)
