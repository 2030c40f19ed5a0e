package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// POST /user/coupons/apply
// Previews a coupon against the user's current cart (or a single
// course). Read-only: usage counters are only bumped during settlement.
func ApplyCoupon(c *gin.Context) {
	utils.LogInfo("ApplyCoupon called")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Code     string `json:"code" binding:"required"`
		CourseID uint   `json:"course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "code is required", err.Error())
		return
	}

	var baseAmount float64
	if req.CourseID != 0 {
		var course models.Course
		if err := config.DB.First(&course, req.CourseID).Error; err != nil || !course.Purchasable() {
			utils.NotFound(c, "Course not found or not available for purchase")
			return
		}
		baseAmount = course.Price
	} else {
		courses, err := utils.CartCourses(config.DB, user.ID)
		if err != nil {
			if errors.Is(err, models.ErrEmptyCart) {
				utils.BadRequest(c, "Your cart is empty", nil)
				return
			}
			utils.LogError("Failed to load cart for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to apply coupon", nil)
			return
		}
		for _, course := range courses {
			baseAmount += course.Price
		}
	}

	coupon, discount, err := utils.ValidateCoupon(config.DB, req.Code, baseAmount, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCoupon):
			utils.BadRequest(c, "Invalid or expired coupon", nil)
		case errors.Is(err, models.ErrCouponMinOrder):
			utils.BadRequest(c, "Order amount is below the coupon minimum", gin.H{
				"min_order_value": fmt.Sprintf("%.2f", baseAmountCouponMin(config.DB, req.Code)),
			})
		case errors.Is(err, models.ErrCouponLimitReached):
			utils.BadRequest(c, "Coupon usage limit exceeded", nil)
		default:
			utils.LogError("Failed to validate coupon for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to apply coupon", nil)
		}
		return
	}

	utils.Success(c, "Coupon applied", gin.H{
		"code":         coupon.Code,
		"type":         coupon.Type,
		"base_amount":  fmt.Sprintf("%.2f", baseAmount),
		"discount":     fmt.Sprintf("%.2f", discount),
		"final_amount": fmt.Sprintf("%.2f", baseAmount-discount),
	})
}

// DELETE /user/coupons/apply
// Previews the cart total with no coupon. Stateless counterpart of
// ApplyCoupon; nothing is stored either way until settlement.
func RemoveCoupon(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	courses, err := utils.CartCourses(config.DB, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCart) {
			utils.BadRequest(c, "Your cart is empty", nil)
			return
		}
		utils.LogError("Failed to load cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to remove coupon", nil)
		return
	}
	var total float64
	for _, course := range courses {
		total += course.Price
	}

	utils.Success(c, "Coupon removed", gin.H{
		"base_amount":  fmt.Sprintf("%.2f", total),
		"discount":     "0.00",
		"final_amount": fmt.Sprintf("%.2f", total),
	})
}

func baseAmountCouponMin(db *gorm.DB, code string) float64 {
	coupon, err := utils.FindCouponByCode(db, code)
	if err != nil {
		return 0
	}
	return coupon.MinOrderValue
}

type createCouponRequest struct {
	Code              string  `json:"code" binding:"required,min=3,max=20"`
	Type              string  `json:"type" binding:"required,oneof=percent flat"`
	Value             float64 `json:"value" binding:"required,gt=0"`
	MinOrderValue     float64 `json:"min_order_value" binding:"gte=0"`
	MaxDiscount       float64 `json:"max_discount" binding:"gte=0"`
	ValidFrom         string  `json:"valid_from" binding:"required"`
	Expiry            string  `json:"expiry" binding:"required"`
	UsageLimitPerUser int     `json:"usage_limit_per_user" binding:"required,gte=1"`
}

// POST /admin/coupons
func CreateCoupon(c *gin.Context) {
	utils.LogInfo("CreateCoupon called")

	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid coupon details", err.Error())
		return
	}
	if req.Type == models.CouponTypePercent && req.Value > 100 {
		utils.BadRequest(c, "Percent value cannot exceed 100", nil)
		return
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		utils.BadRequest(c, "valid_from must be YYYY-MM-DD", nil)
		return
	}
	expiry, err := time.Parse("2006-01-02", req.Expiry)
	if err != nil {
		utils.BadRequest(c, "expiry must be YYYY-MM-DD", nil)
		return
	}
	if !expiry.After(validFrom) {
		utils.BadRequest(c, "expiry must be after valid_from", nil)
		return
	}

	coupon := models.Coupon{
		Code:              strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:              req.Type,
		Value:             req.Value,
		MinOrderValue:     req.MinOrderValue,
		MaxDiscount:       req.MaxDiscount,
		ValidFrom:         validFrom,
		Expiry:            expiry.Add(24*time.Hour - time.Second),
		UsageLimitPerUser: req.UsageLimitPerUser,
		Active:            true,
	}
	if err := config.DB.Create(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A coupon with this code already exists", nil)
			return
		}
		utils.LogError("Failed to create coupon: %v", err)
		utils.InternalServerError(c, "Failed to create coupon", nil)
		return
	}
	utils.LogInfo("Created coupon %s (ID: %d)", coupon.Code, coupon.ID)

	utils.Created(c, "Coupon created successfully", coupon)
}

// GET /admin/coupons
func ListCoupons(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Coupon{})
	if status := c.Query("status"); status == "active" {
		now := time.Now()
		query = query.Where("valid_from <= ? AND expiry >= ?", now, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count coupons: %v", err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}

	var coupons []models.Coupon
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&coupons).Error; err != nil {
		utils.LogError("Failed to fetch coupons: %v", err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}

	utils.SuccessWithPagination(c, "Coupons fetched successfully", coupons, total, pagination.Page, pagination.Limit)
}

// DELETE /admin/coupons/:id
// Soft delete; historical payments keep their recorded discounts.
func DeleteCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid coupon ID", nil)
		return
	}

	result := config.DB.Delete(&models.Coupon{}, uint(id))
	if result.Error != nil {
		utils.LogError("Failed to delete coupon %d: %v", id, result.Error)
		utils.InternalServerError(c, "Failed to delete coupon", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Coupon not found")
		return
	}
	utils.LogInfo("Deleted coupon ID: %d", id)

	utils.Success(c, "Coupon deleted successfully", nil)
}
