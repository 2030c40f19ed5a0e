package settlement

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnsphere/learnsphere/gateway"
	"github.com/learnsphere/learnsphere/models"
)

const testSecret = "test_secret"

func signPayload(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(testSecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// fakeStore is an in-memory Store with the same visible semantics as
// the gorm implementation.
type fakeStore struct {
	courses  map[uint]models.Course
	cart     []uint
	payments map[string]*models.Payment

	walletBalance float64
	debits        []*models.WalletTransaction
	failedDebits  []*models.WalletTransaction
	credits       []*models.WalletTransaction

	coupons map[string]*models.Coupon
	usage   map[uint]int

	enrolled    map[uint]bool
	enrollErr   map[uint]error
	cartCleared bool

	createPaymentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses:   map[uint]models.Course{},
		payments:  map[string]*models.Payment{},
		coupons:   map[string]*models.Coupon{},
		usage:     map[uint]int{},
		enrolled:  map[uint]bool{},
		enrollErr: map[uint]error{},
	}
}

func (s *fakeStore) FindPaymentByTransactionID(txnID string) (*models.Payment, error) {
	return s.payments[txnID], nil
}

func (s *fakeStore) CoursesForRequest(userID uint, isCart bool, courseID uint) ([]models.Course, error) {
	if isCart {
		if len(s.cart) == 0 {
			return nil, models.ErrEmptyCart
		}
		var out []models.Course
		for _, id := range s.cart {
			out = append(out, s.courses[id])
		}
		return out, nil
	}
	course, ok := s.courses[courseID]
	if !ok {
		return nil, models.ErrCourseNotFound
	}
	return []models.Course{course}, nil
}

func (s *fakeStore) ValidateCoupon(code string, baseAmount float64, userID uint) (*models.Coupon, float64, error) {
	coupon, ok := s.coupons[code]
	if !ok {
		return nil, 0, models.ErrInvalidCoupon
	}
	if baseAmount < coupon.MinOrderValue {
		return nil, 0, models.ErrCouponMinOrder
	}
	if s.usage[coupon.ID] >= coupon.UsageLimitPerUser {
		return nil, 0, models.ErrCouponLimitReached
	}
	return coupon, coupon.DiscountFor(baseAmount), nil
}

func (s *fakeStore) RedeemCoupon(userID uint, coupon *models.Coupon) error {
	if s.usage[coupon.ID] >= coupon.UsageLimitPerUser {
		return models.ErrCouponLimitReached
	}
	s.usage[coupon.ID]++
	return nil
}

func (s *fakeStore) ReleaseCouponUsage(userID, couponID uint) error {
	if s.usage[couponID] > 0 {
		s.usage[couponID]--
	}
	return nil
}

func (s *fakeStore) DebitWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if s.walletBalance < amount {
		// Same contract as the database store: the rejected attempt
		// still lands on the ledger as a failed entry.
		s.failedDebits = append(s.failedDebits, &models.WalletTransaction{
			UserID:    userID,
			Amount:    amount,
			Type:      models.TransactionTypeDebit,
			Reference: reference,
			Status:    models.TransactionStatusFailed,
		})
		return nil, models.ErrInsufficientFunds
	}
	s.walletBalance -= amount
	txn := &models.WalletTransaction{
		UserID:    userID,
		Amount:    amount,
		Type:      models.TransactionTypeDebit,
		Reference: reference,
		Status:    models.TransactionStatusSuccess,
	}
	s.debits = append(s.debits, txn)
	return txn, nil
}

func (s *fakeStore) CreditWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	s.walletBalance += amount
	txn := &models.WalletTransaction{
		UserID:    userID,
		Amount:    amount,
		Type:      models.TransactionTypeCredit,
		Reference: reference,
		Status:    models.TransactionStatusSuccess,
	}
	s.credits = append(s.credits, txn)
	return txn, nil
}

func (s *fakeStore) Enroll(userID, courseID uint) (bool, error) {
	if err := s.enrollErr[courseID]; err != nil {
		return false, err
	}
	if s.enrolled[courseID] {
		return false, nil
	}
	s.enrolled[courseID] = true
	return true, nil
}

func (s *fakeStore) CreatePayment(payment *models.Payment) error {
	if s.createPaymentErr != nil {
		return s.createPaymentErr
	}
	if _, exists := s.payments[payment.RazorpayPaymentID]; exists {
		return models.ErrDuplicatePayment
	}
	s.payments[payment.RazorpayPaymentID] = payment
	return nil
}

func (s *fakeStore) ClearCart(userID uint) error {
	s.cart = nil
	s.cartCleared = true
	return nil
}

type fakeGateway struct {
	payments map[string]*gateway.PaymentInfo
	fetchErr error
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string) (*gateway.Order, error) {
	return &gateway.Order{ID: "order_fake", Amount: amountPaise, Currency: currency, Receipt: receipt}, nil
}

func (g *fakeGateway) FetchPayment(paymentID string) (*gateway.PaymentInfo, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	info, ok := g.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return info, nil
}

func publishedCourse(id uint, price float64) models.Course {
	course := models.Course{Title: "Course", Price: price, Published: true}
	course.ID = id
	return course
}

func TestSettleWalletOnlyCheckout(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 500
	store.courses[10] = publishedCourse(10, 500)

	o := NewOrchestrator(store, nil, testSecret)
	res, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		CourseID:  10,
		Amount:    500,
	})
	require.NoError(t, err)

	assert.Equal(t, StatePaymentRecorded, res.State)
	assert.InDelta(t, 0, store.walletBalance, 0.001)
	require.Len(t, store.debits, 1)
	assert.InDelta(t, 500, store.debits[0].Amount, 0.001)
	assert.True(t, store.enrolled[10])
	assert.Equal(t, 1, res.NewEnrollments)

	require.NotNil(t, res.Payment)
	assert.Equal(t, models.PaymentMethodWallet, res.Payment.Method)
	assert.InDelta(t, 500, res.Payment.Amount, 0.001)
	assert.Equal(t, models.PaymentStatusCompleted, res.Payment.Status)
	assert.Len(t, store.payments, 1)
}

func TestSettleCartCheckoutWithGateway(t *testing.T) {
	store := newFakeStore()
	store.courses[1] = publishedCourse(1, 900)
	store.courses[2] = publishedCourse(2, 900)
	store.courses[3] = publishedCourse(3, 900)
	store.cart = []uint{1, 2, 3}

	gw := &fakeGateway{payments: map[string]*gateway.PaymentInfo{
		"pay_cart": {ID: "pay_cart", OrderID: "order_cart", Amount: 270000, Status: "captured"},
	}}

	o := NewOrchestrator(store, gw, testSecret)
	res, err := o.Settle(Request{
		UserID:            1,
		RazorpayOrderID:   "order_cart",
		RazorpayPaymentID: "pay_cart",
		RazorpaySignature: signPayload("order_cart", "pay_cart"),
		IsCart:            true,
		Amount:            2700,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewEnrollments)
	assert.True(t, store.cartCleared)
	assert.Empty(t, store.debits)
	require.NotNil(t, res.Payment)
	assert.Equal(t, models.PaymentMethodRazorpay, res.Payment.Method)
	assert.Len(t, res.Payment.CourseIDList(), 3)
}

func TestSettleInsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 100
	store.courses[10] = publishedCourse(10, 500)

	o := NewOrchestrator(store, nil, testSecret)
	_, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		CourseID:  10,
		Amount:    500,
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	assert.Empty(t, store.debits)
	assert.Empty(t, store.credits)
	assert.False(t, store.enrolled[10])
	assert.Empty(t, store.payments)
	assert.InDelta(t, 100, store.walletBalance, 0.001)

	// The rejected debit is recorded as a failed ledger entry.
	require.Len(t, store.failedDebits, 1)
	assert.InDelta(t, 500, store.failedDebits[0].Amount, 0.001)
	assert.Equal(t, models.TransactionStatusFailed, store.failedDebits[0].Status)
}

func TestSettleCompensatesWalletAfterEnrollFailure(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 500
	store.courses[10] = publishedCourse(10, 500)
	store.enrollErr[10] = models.ErrCourseNotFound

	o := NewOrchestrator(store, nil, testSecret)
	_, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		CourseID:  10,
		Amount:    500,
	})
	assert.ErrorIs(t, err, models.ErrCourseNotFound)

	// The debit went through and was reversed by an equal credit
	// referencing the original transaction.
	require.Len(t, store.debits, 1)
	require.Len(t, store.credits, 1)
	assert.InDelta(t, store.debits[0].Amount, store.credits[0].Amount, 0.001)
	assert.Equal(t, "ROLLBACK-"+store.debits[0].Reference, store.credits[0].Reference)
	assert.InDelta(t, 500, store.walletBalance, 0.001)
	assert.Empty(t, store.payments)
}

func TestSettleDuplicateReplay(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 1000
	store.courses[10] = publishedCourse(10, 500)
	store.payments["pay_dup"] = &models.Payment{RazorpayPaymentID: "pay_dup", Status: models.PaymentStatusCompleted}

	gw := &fakeGateway{payments: map[string]*gateway.PaymentInfo{
		"pay_dup": {ID: "pay_dup", Amount: 50000, Status: "captured"},
	}}

	o := NewOrchestrator(store, gw, testSecret)
	_, err := o.Settle(Request{
		UserID:            1,
		RazorpayOrderID:   "order_dup",
		RazorpayPaymentID: "pay_dup",
		RazorpaySignature: signPayload("order_dup", "pay_dup"),
		CourseID:          10,
		Amount:            500,
	})
	assert.ErrorIs(t, err, models.ErrDuplicatePayment)

	// Replay must not re-debit, re-enroll or add payment rows.
	assert.Empty(t, store.debits)
	assert.False(t, store.enrolled[10])
	assert.Len(t, store.payments, 1)
	assert.InDelta(t, 1000, store.walletBalance, 0.001)
}

func TestSettleDuplicateLosesInsertRace(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 500
	store.courses[10] = publishedCourse(10, 500)
	store.createPaymentErr = models.ErrDuplicatePayment

	o := NewOrchestrator(store, nil, testSecret)
	_, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		CourseID:  10,
		Amount:    500,
	})
	assert.ErrorIs(t, err, models.ErrDuplicatePayment)

	// The losing settlement's debit is compensated.
	require.Len(t, store.debits, 1)
	require.Len(t, store.credits, 1)
	assert.InDelta(t, 500, store.walletBalance, 0.001)
}

func TestSettleInvalidSignature(t *testing.T) {
	store := newFakeStore()
	store.courses[10] = publishedCourse(10, 500)

	o := NewOrchestrator(store, &fakeGateway{}, testSecret)
	_, err := o.Settle(Request{
		UserID:            1,
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "forged",
		CourseID:          10,
		Amount:            500,
	})
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
	assert.Empty(t, store.payments)
	assert.Empty(t, store.debits)
}

func TestSettleCouponAppliedAndCompensated(t *testing.T) {
	coupon := &models.Coupon{Type: models.CouponTypePercent, Value: 10, UsageLimitPerUser: 1, Active: true}
	coupon.ID = 5

	store := newFakeStore()
	store.walletBalance = 450
	store.courses[10] = publishedCourse(10, 500)
	store.coupons["SAVE10"] = coupon

	o := NewOrchestrator(store, nil, testSecret)
	res, err := o.Settle(Request{
		UserID:     1,
		UseWallet:  true,
		CourseID:   10,
		Amount:     450,
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	assert.InDelta(t, 50, res.Discount, 0.001)
	assert.InDelta(t, 450, res.Payment.Amount, 0.001)
	assert.Equal(t, 1, store.usage[5])

	// A second settlement hits the usage cap before any mutation.
	store2 := newFakeStore()
	store2.walletBalance = 450
	store2.courses[10] = publishedCourse(10, 500)
	store2.coupons["SAVE10"] = coupon
	store2.usage[5] = 1

	_, err = NewOrchestrator(store2, nil, testSecret).Settle(Request{
		UserID:     1,
		UseWallet:  true,
		CourseID:   10,
		Amount:     450,
		CouponCode: "SAVE10",
	})
	assert.ErrorIs(t, err, models.ErrCouponLimitReached)
	assert.Empty(t, store2.debits)

	// Enrollment failure after redemption releases the usage again.
	store3 := newFakeStore()
	store3.walletBalance = 450
	store3.courses[10] = publishedCourse(10, 500)
	store3.coupons["SAVE10"] = coupon
	store3.enrollErr[10] = models.ErrCourseNotFound

	_, err = NewOrchestrator(store3, nil, testSecret).Settle(Request{
		UserID:     1,
		UseWallet:  true,
		CourseID:   10,
		Amount:     450,
		CouponCode: "SAVE10",
	})
	assert.ErrorIs(t, err, models.ErrCourseNotFound)
	assert.Equal(t, 0, store3.usage[5])
	require.Len(t, store3.credits, 1)
}

func TestSettleAmountMismatch(t *testing.T) {
	store := newFakeStore()
	store.walletBalance = 1000
	store.courses[10] = publishedCourse(10, 500)

	o := NewOrchestrator(store, nil, testSecret)
	_, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		CourseID:  10,
		Amount:    300,
	})
	assert.ErrorIs(t, err, models.ErrAmountMismatch)
	assert.Empty(t, store.debits)
}

func TestSettleRejectsOverCapturedPayment(t *testing.T) {
	store := newFakeStore()
	store.courses[10] = publishedCourse(10, 500)

	// The gateway captured more than the order is worth.
	gw := &fakeGateway{payments: map[string]*gateway.PaymentInfo{
		"pay_over": {ID: "pay_over", OrderID: "order_over", Amount: 60000, Status: "captured"},
	}}

	o := NewOrchestrator(store, gw, testSecret)
	_, err := o.Settle(Request{
		UserID:            1,
		RazorpayOrderID:   "order_over",
		RazorpayPaymentID: "pay_over",
		RazorpaySignature: signPayload("order_over", "pay_over"),
		CourseID:          10,
		Amount:            500,
	})
	assert.ErrorIs(t, err, models.ErrAmountMismatch)

	// Nothing was committed for the mismatched capture.
	assert.Empty(t, store.debits)
	assert.Empty(t, store.payments)
	assert.False(t, store.enrolled[10])
}

func TestSettleGatewayFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.courses[10] = publishedCourse(10, 500)
	gw := &fakeGateway{fetchErr: errors.New("upstream timeout")}

	o := NewOrchestrator(store, gw, testSecret)
	_, err := o.Settle(Request{
		UserID:            1,
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: signPayload("order_1", "pay_1"),
		CourseID:          10,
		Amount:            500,
	})
	assert.ErrorIs(t, err, ErrGateway)
	// Nothing was committed, so a verify retry stays clean.
	assert.Empty(t, store.debits)
	assert.Empty(t, store.payments)
}

func TestSettleEnrollmentIdempotentPerCourse(t *testing.T) {
	store := newFakeStore()
	store.courses[1] = publishedCourse(1, 100)
	store.courses[2] = publishedCourse(2, 200)
	store.cart = []uint{1, 2}
	store.enrolled[1] = true // already owned
	store.walletBalance = 300

	o := NewOrchestrator(store, nil, testSecret)
	res, err := o.Settle(Request{
		UserID:    1,
		UseWallet: true,
		IsCart:    true,
		Amount:    300,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewEnrollments)
	assert.True(t, store.enrolled[2])
}
