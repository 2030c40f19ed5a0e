package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnsphere/learnsphere/gateway"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// State names the steps of the settlement flow, in order.
type State string

const (
	StateInitiated         State = "Initiated"
	StateSignatureVerified State = "SignatureVerified"
	StateDeduplicated      State = "Deduplicated"
	StateCouponApplied     State = "CouponApplied"
	StateWalletSettled     State = "WalletSettled"
	StateEnrolled          State = "Enrolled"
	StatePaymentRecorded   State = "PaymentRecorded"
	StateFailed            State = "Failed"
	StateRolledBack        State = "RolledBack"
)

var (
	// ErrGateway wraps upstream gateway failures (fetch errors, timeouts).
	ErrGateway = errors.New("payment gateway error")
	// ErrPaymentNotCaptured rejects callbacks for payments the gateway
	// has not actually captured.
	ErrPaymentNotCaptured = errors.New("payment not captured by gateway")
)

// amounts are rupees as float64; comparisons tolerate sub-paisa noise.
const amountEpsilon = 0.01

// Orchestrator drives a settlement end to end: verify, dedupe, coupon,
// wallet, enrollment, payment record, with best-effort compensation
// when a later step fails. It is stateless between invocations; all
// coordination state is the persisted entities behind Store.
type Orchestrator struct {
	store   Store
	gateway gateway.Gateway
	secret  string
}

// NewOrchestrator wires the settlement flow. gw may be nil in tests
// that only exercise wallet settlements.
func NewOrchestrator(store Store, gw gateway.Gateway, secret string) *Orchestrator {
	return &Orchestrator{store: store, gateway: gw, secret: secret}
}

// Result reports what a successful settlement did.
type Result struct {
	State          State
	Payment        *models.Payment
	Courses        []models.Course
	NewEnrollments int
	GatewayAmount  float64
	WalletAmount   float64
	Discount       float64
}

// Settle runs the settlement state machine for one verify call.
func (o *Orchestrator) Settle(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	state := StateInitiated
	utils.LogInfo("Settlement started for user ID: %d, cart: %v, course: %d", req.UserID, req.IsCart, req.CourseID)

	// Initiated -> SignatureVerified. Wallet-only settlements carry no
	// gateway callback and skip this transition.
	if req.UsesGateway() {
		if !gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, o.secret) {
			utils.LogError("Settlement signature check failed for user ID: %d, order: %s", req.UserID, req.RazorpayOrderID)
			return nil, models.ErrInvalidSignature
		}
		state = StateSignatureVerified
	}

	// -> Deduplicated. The fast path; the payment insert below is the
	// linearization point that closes the check-then-act window.
	txnID := req.RazorpayPaymentID
	if txnID == "" {
		txnID = "wallet-" + uuid.New().String()
	} else {
		existing, err := o.store.FindPaymentByTransactionID(txnID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			utils.LogInfo("Settlement replay detected for transaction: %s", txnID)
			return nil, models.ErrDuplicatePayment
		}
	}
	state = StateDeduplicated

	// Resolve courses and the catalog-derived total.
	courses, err := o.store.CoursesForRequest(req.UserID, req.IsCart, req.CourseID)
	if err != nil {
		return nil, err
	}
	var baseAmount float64
	for i := range courses {
		if !courses[i].Purchasable() {
			return nil, models.ErrCourseNotFound
		}
		baseAmount += courses[i].Price
	}

	// Coupon validation is side-effect free; redemption below is the
	// first mutation and the first compensation target.
	var coupon *models.Coupon
	var discount float64
	if req.CouponCode != "" {
		coupon, discount, err = o.store.ValidateCoupon(req.CouponCode, baseAmount, req.UserID)
		if err != nil {
			return nil, err
		}
	}
	payable := baseAmount - discount
	if diff := payable - req.Amount; diff > amountEpsilon || diff < -amountEpsilon {
		utils.LogError("Settlement amount mismatch for user ID: %d: expected %.2f, got %.2f", req.UserID, payable, req.Amount)
		return nil, models.ErrAmountMismatch
	}

	// How much the gateway captured; the wallet covers the rest. The
	// fetch may fail or time out after the gateway has charged the
	// card, so nothing is persisted before this point and a retried
	// verify with the same transaction id stays idempotent.
	var gatewayAmount float64
	if req.UsesGateway() {
		info, fetchErr := o.gateway.FetchPayment(req.RazorpayPaymentID)
		if fetchErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, fetchErr)
		}
		if info.Status != "captured" {
			return nil, ErrPaymentNotCaptured
		}
		gatewayAmount = float64(info.Amount) / 100
		if gatewayAmount-payable > amountEpsilon {
			// The gateway charged more than the order is worth. Nothing
			// is committed yet; reconciliation is on the caller.
			utils.LogError("Settlement over-capture for user ID: %d: captured %.2f against payable %.2f", req.UserID, gatewayAmount, payable)
			return nil, models.ErrAmountMismatch
		}
	}
	walletAmount := 0.0
	if req.UseWallet {
		walletAmount = payable - gatewayAmount
		if walletAmount < 0 {
			walletAmount = 0
		}
	} else if payable-gatewayAmount > amountEpsilon {
		return nil, models.ErrAmountMismatch
	}

	comp := compensation{userID: req.UserID}

	// -> CouponApplied.
	if coupon != nil {
		if err := o.store.RedeemCoupon(req.UserID, coupon); err != nil {
			return nil, err
		}
		comp.coupon = coupon
		state = StateCouponApplied
	}

	// -> WalletSettled.
	var walletTxn *models.WalletTransaction
	if walletAmount > 0 {
		walletTxn, err = o.store.DebitWallet(req.UserID, walletAmount, settlementDescription(req, courses), txnID)
		if err != nil {
			o.compensate(comp)
			return nil, err
		}
		comp.walletTxn = walletTxn
		state = StateWalletSettled
	}

	// -> Enrolled. Per-course idempotent; an unpublished course aborts
	// and everything committed so far is compensated.
	newEnrollments := 0
	for i := range courses {
		created, enrollErr := o.store.Enroll(req.UserID, courses[i].ID)
		if enrollErr != nil {
			utils.LogError("Settlement enrollment failed for user ID: %d, course ID: %d: %v", req.UserID, courses[i].ID, enrollErr)
			o.compensate(comp)
			return nil, enrollErr
		}
		if created {
			newEnrollments++
		}
	}
	state = StateEnrolled

	// -> PaymentRecorded. The unique index on the transaction id makes
	// a concurrent duplicate lose here; its wallet debit and coupon
	// usage are rolled back.
	method := models.PaymentMethodRazorpay
	if !req.UsesGateway() {
		method = models.PaymentMethodWallet
	} else if walletAmount > 0 {
		method = models.PaymentMethodRazorpayWallet
	}
	payment := &models.Payment{
		UserID:            req.UserID,
		Amount:            payable,
		WalletAmount:      walletAmount,
		Method:            method,
		RazorpayPaymentID: txnID,
		RazorpayOrderID:   req.RazorpayOrderID,
		Status:            models.PaymentStatusCompleted,
		CouponCode:        req.CouponCode,
	}
	courseIDs := make([]uint, 0, len(courses))
	for i := range courses {
		courseIDs = append(courseIDs, courses[i].ID)
	}
	payment.SetCourseIDs(courseIDs)

	if err := o.store.CreatePayment(payment); err != nil {
		o.compensate(comp)
		return nil, err
	}
	state = StatePaymentRecorded

	if req.IsCart {
		if err := o.store.ClearCart(req.UserID); err != nil {
			// Enrollments and payment are durable; a stale cart is
			// recoverable and not worth failing the settlement over.
			utils.LogError("Failed to clear cart after settlement for user ID: %d: %v", req.UserID, err)
		}
	}

	utils.LogInfo("Settlement completed for user ID: %d, transaction: %s, amount: %.2f (wallet %.2f, gateway %.2f)",
		req.UserID, txnID, payable, walletAmount, gatewayAmount)
	return &Result{
		State:          state,
		Payment:        payment,
		Courses:        courses,
		NewEnrollments: newEnrollments,
		GatewayAmount:  gatewayAmount,
		WalletAmount:   walletAmount,
		Discount:       discount,
	}, nil
}

func settlementDescription(req Request, courses []models.Course) string {
	if req.IsCart {
		return fmt.Sprintf("Payment for %d course(s)", len(courses))
	}
	if len(courses) == 1 {
		return "Payment for course: " + courses[0].Title
	}
	return "Course payment"
}
