package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// GET /user/payments
func ListPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Payment{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count payments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	entries := make([]gin.H, 0, len(payments))
	for _, payment := range payments {
		entries = append(entries, gin.H{
			"id":            payment.ID,
			"amount":        fmt.Sprintf("%.2f", payment.Amount),
			"wallet_amount": fmt.Sprintf("%.2f", payment.WalletAmount),
			"method":        payment.Method,
			"status":        payment.Status,
			"reference":     payment.RazorpayPaymentID,
			"coupon_code":   payment.CouponCode,
			"course_ids":    payment.CourseIDList(),
			"created_at":    payment.CreatedAt,
		})
	}

	utils.SuccessWithPagination(c, "Payments fetched successfully", entries, total, pagination.Page, pagination.Limit)
}

// GET /user/payments/:id/receipt
// Generates and returns a PDF receipt for a completed payment.
func DownloadPaymentReceipt(c *gin.Context) {
	utils.LogInfo("Starting receipt download")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	paymentID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payment models.Payment
	if err := config.DB.Preload("User").
		Where("id = ? AND user_id = ?", paymentID, user.ID).
		First(&payment).Error; err != nil {
		utils.LogError("Payment not found for receipt - Payment ID: %d, User ID: %d", paymentID, user.ID)
		utils.NotFound(c, "Payment not found")
		return
	}

	var courses []models.Course
	if ids := payment.CourseIDList(); len(ids) > 0 {
		if err := config.DB.Unscoped().Where("id IN ?", ids).Find(&courses).Error; err != nil {
			utils.LogError("Failed to load courses for receipt - Payment ID: %d: %v", paymentID, err)
			utils.InternalServerError(c, "Failed to generate receipt", nil)
			return
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "LearnSphere")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Online course marketplace")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@learnsphere.io")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Receipt No: "+strconv.Itoa(int(payment.ID)))
	pdf.Cell(70, 8, "Date: "+payment.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment Method: "+payment.Method)
	pdf.Cell(70, 8, "Status: "+payment.Status)
	pdf.Ln(8)
	if payment.RazorpayPaymentID != "" {
		pdf.Cell(130, 8, "Transaction Ref: "+payment.RazorpayPaymentID)
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, payment.User.Username)
	pdf.Ln(6)
	pdf.Cell(100, 8, payment.User.Email)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Course", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	var subtotal float64
	for _, course := range courses {
		subtotal += course.Price
		pdf.CellFormat(100, 8, course.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", course.Price), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", subtotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 8, "Discount:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", subtotal-payment.Amount), "", 1, "R", false, 0, "")
	if payment.WalletAmount > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(100, 8, "Paid from Wallet:", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", payment.WalletAmount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(100, 10, "Total Paid:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, fmt.Sprintf("%.2f", payment.Amount), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for learning with LearnSphere!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render receipt PDF for payment ID: %d: %v", paymentID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}
	utils.LogInfo("Receipt generated for payment ID: %d", paymentID)

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=receipt.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
