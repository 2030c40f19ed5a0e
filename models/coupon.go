package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon represents a discount coupon. Codes are stored upper-case and
// matched case-insensitively.
type Coupon struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex" json:"code"`
	Type              string         `json:"type"` // "percent" or "flat"
	Value             float64        `json:"value"`
	MinOrderValue     float64        `json:"min_order_value"`
	MaxDiscount       float64        `json:"max_discount"` // 0 means uncapped
	ValidFrom         time.Time      `json:"valid_from"`
	Expiry            time.Time      `json:"expiry"`
	UsageLimitPerUser int            `json:"usage_limit_per_user" gorm:"default:1"`
	Active            bool           `json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// Coupon type constants
const (
	CouponTypePercent = "percent"
	CouponTypeFlat    = "flat"
)

// ValidAt reports whether the coupon is usable at the given time.
func (c *Coupon) ValidAt(t time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.ValidFrom.IsZero() && t.Before(c.ValidFrom) {
		return false
	}
	return !t.After(c.Expiry)
}

// DiscountFor computes the discount this coupon grants on baseAmount.
// Percent coupons are clamped to MaxDiscount when one is set; the result
// never exceeds baseAmount so the payable amount cannot go negative.
func (c *Coupon) DiscountFor(baseAmount float64) float64 {
	var discount float64
	switch c.Type {
	case CouponTypePercent:
		discount = baseAmount * c.Value / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case CouponTypeFlat:
		discount = c.Value
	}
	if discount > baseAmount {
		discount = baseAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CouponUsage tracks how many times a user has redeemed a coupon. The
// (user, coupon) pair is unique; the used count is bumped with an atomic
// bounded update so it can never pass the per-user limit.
type CouponUsage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex:idx_coupon_usage_user_coupon"`
	CouponID   uint      `json:"coupon_id" gorm:"uniqueIndex:idx_coupon_usage_user_coupon"`
	Code       string    `json:"code"`
	UsedCount  int       `json:"used_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}
