package models

import (
	"strconv"
	"strings"
	"time"
)

// Payment is the durable record of a completed settlement. One row per
// gateway transaction id, enforced by the unique index on
// RazorpayPaymentID; the duplicate-key error on insert is the
// idempotency signal for replayed verify calls.
type Payment struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id"`
	User              User      `json:"-" gorm:"foreignKey:UserID"`
	Amount            float64   `json:"amount"`
	WalletAmount      float64   `json:"wallet_amount"`
	Method            string    `json:"method"` // wallet, razorpay, razorpay+wallet
	RazorpayPaymentID string    `json:"razorpay_payment_id" gorm:"uniqueIndex"`
	RazorpayOrderID   string    `json:"razorpay_order_id"`
	Status            string    `json:"status"` // pending, completed, failed, refunded
	CourseIDs         string    `json:"-" gorm:"type:text"`
	CouponCode        string    `json:"coupon_code"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Payment method constants
const (
	PaymentMethodWallet         = "wallet"
	PaymentMethodRazorpay       = "razorpay"
	PaymentMethodRazorpayWallet = "razorpay+wallet"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// SetCourseIDs stores the settled course references as a comma separated list.
func (p *Payment) SetCourseIDs(ids []uint) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	p.CourseIDs = strings.Join(parts, ",")
}

// CourseIDList returns the settled course references.
func (p *Payment) CourseIDList() []uint {
	if p.CourseIDs == "" {
		return nil
	}
	parts := strings.Split(p.CourseIDs, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
