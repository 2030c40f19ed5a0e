package utils

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
)

// FindCouponByCode looks a coupon up case-insensitively.
func FindCouponByCode(db *gorm.DB, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := db.Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrInvalidCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

// ValidateCoupon checks a coupon against an order amount and the user's
// prior usage, returning the discount it would grant. No side effects.
func ValidateCoupon(db *gorm.DB, code string, baseAmount float64, userID uint) (*models.Coupon, float64, error) {
	coupon, err := FindCouponByCode(db, code)
	if err != nil {
		return nil, 0, err
	}
	if !coupon.ValidAt(time.Now()) {
		return nil, 0, models.ErrInvalidCoupon
	}
	if baseAmount < coupon.MinOrderValue {
		return nil, 0, models.ErrCouponMinOrder
	}

	var usage models.CouponUsage
	err = db.Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).First(&usage).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}
	if err == nil && usage.UsedCount >= coupon.UsageLimitPerUser {
		return nil, 0, models.ErrCouponLimitReached
	}

	return coupon, coupon.DiscountFor(baseAmount), nil
}

// RedeemCoupon bumps the user's usage counter for a coupon. The
// increment is bounded by the per-user limit inside the UPDATE itself,
// so two concurrent settlements cannot push the count past the cap.
func RedeemCoupon(db *gorm.DB, userID uint, coupon *models.Coupon) error {
	res := db.Model(&models.CouponUsage{}).
		Where("user_id = ? AND coupon_id = ? AND used_count < ?", userID, coupon.ID, coupon.UsageLimitPerUser).
		Updates(map[string]interface{}{
			"used_count":   gorm.Expr("used_count + 1"),
			"last_used_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row updated: either first use, or the cap is already reached.
	var usage models.CouponUsage
	err := db.Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).First(&usage).Error
	if err == nil {
		return models.ErrCouponLimitReached
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if coupon.UsageLimitPerUser < 1 {
		return models.ErrCouponLimitReached
	}

	usage = models.CouponUsage{
		UserID:     userID,
		CouponID:   coupon.ID,
		Code:       coupon.Code,
		UsedCount:  1,
		LastUsedAt: time.Now(),
	}
	if err := db.Create(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the insert race; retry the bounded update once.
			res = db.Model(&models.CouponUsage{}).
				Where("user_id = ? AND coupon_id = ? AND used_count < ?", userID, coupon.ID, coupon.UsageLimitPerUser).
				Updates(map[string]interface{}{
					"used_count":   gorm.Expr("used_count + 1"),
					"last_used_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.ErrCouponLimitReached
			}
			return nil
		}
		return err
	}
	return nil
}

// ReleaseCouponUsage undoes one redemption. The usage row is removed
// entirely when the count reaches zero.
func ReleaseCouponUsage(db *gorm.DB, userID uint, couponID uint) error {
	res := db.Model(&models.CouponUsage{}).
		Where("user_id = ? AND coupon_id = ? AND used_count > 0", userID, couponID).
		UpdateColumn("used_count", gorm.Expr("used_count - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return db.Where("user_id = ? AND coupon_id = ? AND used_count <= 0", userID, couponID).
		Delete(&models.CouponUsage{}).Error
}
