package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/settlement"
	"github.com/learnsphere/learnsphere/utils"
)

// POST /user/payment/order
// Creates a gateway-side order the client pays against. Nothing is
// persisted locally; the order lives at the gateway until verify.
func CreatePaymentOrder(c *gin.Context) {
	utils.LogInfo("CreatePaymentOrder called")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. amount is required and must be positive", err.Error())
		return
	}

	amountPaise := int64(req.Amount * 100)
	receipt := "rcpt_" + strconv.FormatUint(uint64(user.ID), 10) + "_" + time.Now().Format("20060102150405")

	order, err := newGateway().CreateOrder(amountPaise, "INR", receipt)
	if err != nil {
		utils.LogError("Failed to create gateway order for user ID: %d: %v", user.ID, err)
		utils.RespondError(c, utils.BadGatewayError("Failed to create payment order", err))
		return
	}
	utils.LogInfo("Created gateway order %s for user ID: %d", order.ID, user.ID)

	utils.Success(c, "Payment order created successfully", gin.H{
		"order_id": order.ID,
		"amount":   fmt.Sprintf("%.2f", float64(order.Amount)/100),
		"currency": order.Currency,
	})
}

// POST /user/payment/verify
// Entry point to the settlement flow: turns a completed gateway or
// wallet payment into enrollments, ledger entries and a payment record.
func VerifyPayment(c *gin.Context) {
	utils.LogInfo("VerifyPayment called")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req settlement.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verify request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	req.UserID = user.ID

	result, err := newOrchestrator().Settle(req)
	if err != nil {
		respondSettlementError(c, user.ID, err)
		return
	}

	titles := make([]string, 0, len(result.Courses))
	for _, course := range result.Courses {
		titles = append(titles, course.Title)
	}
	// Fire and forget; the response never waits on the mail server.
	go utils.NotifyEnrollment(user.Email, titles, result.Payment.Amount, result.Payment.RazorpayPaymentID)

	utils.LogInfo("Settlement succeeded for user ID: %d, payment ID: %d", user.ID, result.Payment.ID)
	utils.Success(c, "Payment verified. You are now enrolled!", gin.H{
		"payment_id":      result.Payment.ID,
		"method":          result.Payment.Method,
		"amount":          fmt.Sprintf("%.2f", result.Payment.Amount),
		"wallet_amount":   fmt.Sprintf("%.2f", result.WalletAmount),
		"discount":        fmt.Sprintf("%.2f", result.Discount),
		"courses":         titles,
		"new_enrollments": result.NewEnrollments,
	})
}

// respondSettlementError maps settlement errors to the response
// taxonomy. Unexpected errors are logged with context and surfaced as a
// bare 500.
func respondSettlementError(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, settlement.ErrValidation):
		utils.BadRequest(c, err.Error(), nil)
	case errors.Is(err, models.ErrInvalidSignature):
		utils.LogError("Signature verification failed for user ID: %d", userID)
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
	case errors.Is(err, models.ErrDuplicatePayment):
		utils.Conflict(c, "This payment has already been processed", nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		utils.BadRequest(c, "Insufficient wallet balance", nil)
	case errors.Is(err, models.ErrWalletSuspended):
		utils.Forbidden(c, "Wallet is suspended")
	case errors.Is(err, models.ErrWalletNotFound):
		utils.NotFound(c, "Wallet not found")
	case errors.Is(err, models.ErrCourseNotFound):
		utils.NotFound(c, "Course not found or not available for purchase")
	case errors.Is(err, models.ErrEmptyCart):
		utils.BadRequest(c, "Cannot check out an empty cart", nil)
	case errors.Is(err, models.ErrInvalidCoupon):
		utils.BadRequest(c, "Invalid or expired coupon", nil)
	case errors.Is(err, models.ErrCouponMinOrder):
		utils.BadRequest(c, "Order amount is below the coupon minimum", nil)
	case errors.Is(err, models.ErrCouponLimitReached):
		utils.BadRequest(c, "Coupon usage limit exceeded", nil)
	case errors.Is(err, models.ErrAmountMismatch):
		utils.BadRequest(c, "Amount does not match the order total", nil)
	case errors.Is(err, settlement.ErrPaymentNotCaptured):
		utils.BadRequest(c, "Payment has not been captured by the gateway", gin.H{"retry": true})
	case errors.Is(err, settlement.ErrGateway):
		utils.LogError("Gateway failure during settlement for user ID: %d: %v", userID, err)
		utils.BadGateway(c, "Payment gateway is unavailable, please retry", nil)
	default:
		utils.LogError("Unexpected settlement failure for user ID: %d: %v", userID, err)
		utils.RespondError(c, err)
	}
}
