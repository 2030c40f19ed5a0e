package settlement

import (
	"github.com/learnsphere/learnsphere/models"
)

// Store is the persistence seam for the settlement flow. All
// coordination state lives behind it; the orchestrator itself keeps
// nothing between invocations.
type Store interface {
	// FindPaymentByTransactionID returns the payment for a gateway
	// transaction id, or (nil, nil) when none exists yet.
	FindPaymentByTransactionID(txnID string) (*models.Payment, error)

	// CoursesForRequest resolves the courses in scope: the user's cart
	// for cart checkouts, otherwise the single course.
	CoursesForRequest(userID uint, isCart bool, courseID uint) ([]models.Course, error)

	// ValidateCoupon checks a coupon without side effects and returns
	// the discount it would grant on baseAmount.
	ValidateCoupon(code string, baseAmount float64, userID uint) (*models.Coupon, float64, error)

	// RedeemCoupon atomically bumps the user's bounded usage counter.
	RedeemCoupon(userID uint, coupon *models.Coupon) error

	// ReleaseCouponUsage undoes one redemption (compensation).
	ReleaseCouponUsage(userID, couponID uint) error

	// DebitWallet atomically debits the wallet and appends the ledger
	// entry; fails with models.ErrInsufficientFunds without mutating.
	DebitWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error)

	// CreditWallet credits the wallet and appends the ledger entry.
	CreditWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error)

	// Enroll idempotently grants course access; created reports whether
	// a new enrollment was written.
	Enroll(userID, courseID uint) (created bool, err error)

	// CreatePayment inserts the payment record. The unique index on the
	// gateway transaction id makes this the linearization point for
	// duplicate detection: a duplicate-key violation comes back as
	// models.ErrDuplicatePayment.
	CreatePayment(payment *models.Payment) error

	// ClearCart empties the user's cart after a cart checkout.
	ClearCart(userID uint) error
}
