package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
)

func seedCoupon(t *testing.T, db *gorm.DB, limit int) *models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		Code:              "SAVE10",
		Type:              models.CouponTypePercent,
		Value:             10,
		MinOrderValue:     100,
		ValidFrom:         time.Now().Add(-time.Hour),
		Expiry:            time.Now().Add(time.Hour),
		UsageLimitPerUser: limit,
		Active:            true,
	}
	require.NoError(t, db.Create(&coupon).Error)
	return &coupon
}

func usageCount(t *testing.T, db *gorm.DB, userID, couponID uint) int {
	t.Helper()
	var usage models.CouponUsage
	err := db.Where("user_id = ? AND coupon_id = ?", userID, couponID).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return usage.UsedCount
}

func TestValidateCoupon(t *testing.T) {
	db := newTestDB(t)
	seedCoupon(t, db, 1)

	coupon, discount, err := ValidateCoupon(db, "save10", 500, 1)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)
	assert.InDelta(t, 50, discount, 0.001)

	_, _, err = ValidateCoupon(db, "NOSUCH", 500, 1)
	assert.ErrorIs(t, err, models.ErrInvalidCoupon)

	_, _, err = ValidateCoupon(db, "SAVE10", 50, 1)
	assert.ErrorIs(t, err, models.ErrCouponMinOrder)
}

func TestValidateCouponRejectsUserAtLimit(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, 1)
	require.NoError(t, RedeemCoupon(db, 1, coupon))

	_, _, err := ValidateCoupon(db, "SAVE10", 500, 1)
	assert.ErrorIs(t, err, models.ErrCouponLimitReached)

	// A different user is unaffected.
	_, _, err = ValidateCoupon(db, "SAVE10", 500, 2)
	assert.NoError(t, err)
}

func TestRedeemCouponBoundedByPerUserLimit(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, 2)

	// First use goes through the insert path, second through the
	// bounded update, third must hit the cap.
	require.NoError(t, RedeemCoupon(db, 1, coupon))
	assert.Equal(t, 1, usageCount(t, db, 1, coupon.ID))
	require.NoError(t, RedeemCoupon(db, 1, coupon))
	assert.Equal(t, 2, usageCount(t, db, 1, coupon.ID))

	err := RedeemCoupon(db, 1, coupon)
	assert.ErrorIs(t, err, models.ErrCouponLimitReached)
	assert.Equal(t, 2, usageCount(t, db, 1, coupon.ID))
}

func TestRedeemCouponZeroLimit(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, 0)

	err := RedeemCoupon(db, 1, coupon)
	assert.ErrorIs(t, err, models.ErrCouponLimitReached)
	assert.Equal(t, 0, usageCount(t, db, 1, coupon.ID))
}

func TestRedeemCouponSurvivesInsertRace(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, 2)

	// Simulate a concurrent first redemption: right before the insert
	// runs, slip a usage row in so the insert hits the unique index and
	// the retry path takes over.
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("coupon_usage_race", func(tx *gorm.DB) {
		if injected {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.CouponUsage); !ok {
			return
		}
		injected = true
		db.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO coupon_usages (user_id, coupon_id, code, used_count, last_used_at) VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)", 1, coupon.ID, coupon.Code)
	})
	require.NoError(t, err)

	require.NoError(t, RedeemCoupon(db, 1, coupon))
	assert.True(t, injected)
	assert.Equal(t, 2, usageCount(t, db, 1, coupon.ID))

	// The cap still holds after the retry path.
	assert.ErrorIs(t, RedeemCoupon(db, 1, coupon), models.ErrCouponLimitReached)
	assert.Equal(t, 2, usageCount(t, db, 1, coupon.ID))
}

func TestReleaseCouponUsage(t *testing.T) {
	db := newTestDB(t)
	coupon := seedCoupon(t, db, 3)
	require.NoError(t, RedeemCoupon(db, 1, coupon))
	require.NoError(t, RedeemCoupon(db, 1, coupon))

	require.NoError(t, ReleaseCouponUsage(db, 1, coupon.ID))
	assert.Equal(t, 1, usageCount(t, db, 1, coupon.ID))

	// The row disappears entirely when the count reaches zero.
	require.NoError(t, ReleaseCouponUsage(db, 1, coupon.ID))
	var rows int64
	require.NoError(t, db.Model(&models.CouponUsage{}).Where("user_id = ? AND coupon_id = ?", 1, coupon.ID).Count(&rows).Error)
	assert.EqualValues(t, 0, rows)

	// Releasing with nothing redeemed is a no-op.
	require.NoError(t, ReleaseCouponUsage(db, 1, coupon.ID))
}
