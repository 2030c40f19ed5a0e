package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// reportWindow turns a period query param into a [start, end] range.
func reportWindow(period string) (time.Time, time.Time, bool) {
	now := time.Now()
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		return start, end, true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		return now.AddDate(0, 0, -30).Truncate(24 * time.Hour), now.Add(24 * time.Hour), true
	}
	return time.Time{}, time.Time{}, false
}

// GET /admin/payments
func AdminListPayments(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Payment{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count payments: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	var payments []models.Payment
	if err := query.Preload("User").Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	entries := make([]gin.H, 0, len(payments))
	for _, payment := range payments {
		entries = append(entries, gin.H{
			"id":            payment.ID,
			"user_id":       payment.UserID,
			"user":          payment.User.Username,
			"amount":        fmt.Sprintf("%.2f", payment.Amount),
			"wallet_amount": fmt.Sprintf("%.2f", payment.WalletAmount),
			"method":        payment.Method,
			"status":        payment.Status,
			"reference":     payment.RazorpayPaymentID,
			"coupon_code":   payment.CouponCode,
			"created_at":    payment.CreatedAt,
		})
	}

	utils.SuccessWithPagination(c, "Payments fetched successfully", entries, total, pagination.Page, pagination.Limit)
}

// GET /admin/payments/export
// Downloads the settlement report for a period as an Excel sheet.
func DownloadPaymentReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadPaymentReportExcel called")

	period := c.DefaultQuery("period", "day")
	startDate, endDate, ok := reportWindow(period)
	if !ok {
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var payments []models.Payment
	if err := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Preload("User").
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments for report: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d payments for Excel report", len(payments))

	var summary struct {
		TotalPayments  int
		TotalRevenue   float64
		WalletRevenue  float64
		TotalCustomers int
		TotalCourses   int
		AveragePayment float64
	}
	customerSet := make(map[uint]bool)
	for _, payment := range payments {
		summary.TotalPayments++
		summary.TotalRevenue += payment.Amount
		summary.WalletRevenue += payment.WalletAmount
		summary.TotalCourses += len(payment.CourseIDList())
		customerSet[payment.UserID] = true
	}
	summary.TotalCustomers = len(customerSet)
	if summary.TotalPayments > 0 {
		summary.AveragePayment = math.Round((summary.TotalRevenue/float64(summary.TotalPayments))*100) / 100
	}
	summary.TotalRevenue = math.Round(summary.TotalRevenue*100) / 100
	summary.WalletRevenue = math.Round(summary.WalletRevenue*100) / 100

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Settlement Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	companyRow := sheet.AddRow()
	companyRow.AddCell().SetString("LEARNSPHERE - Settlement Report")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Email: support@learnsphere.io")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Payment ID", "User ID", "User Name", "Date", "Courses", "Amount", "Wallet Amount", "Method", "Coupon", "Status"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, payment := range payments {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(payment.ID))
		row.AddCell().SetInt(int(payment.UserID))
		row.AddCell().SetString(payment.User.Username)
		row.AddCell().SetString(payment.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetInt(len(payment.CourseIDList()))
		row.AddCell().SetFloat(payment.Amount)
		row.AddCell().SetFloat(payment.WalletAmount)
		row.AddCell().SetString(payment.Method)
		row.AddCell().SetString(payment.CouponCode)
		row.AddCell().SetString(payment.Status)
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Payments", fmt.Sprintf("%d", summary.TotalPayments)},
		{"Total Revenue", fmt.Sprintf("%.2f", summary.TotalRevenue)},
		{"Wallet Revenue", fmt.Sprintf("%.2f", summary.WalletRevenue)},
		{"Total Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Courses Sold", fmt.Sprintf("%d", summary.TotalCourses)},
		{"Avg. Payment", fmt.Sprintf("%.2f", summary.AveragePayment)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=settlement_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Generated settlement report for period %s", period)
}
