package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/controllers"
	"github.com/learnsphere/learnsphere/middleware"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		// Category management
		admin.POST("/categories", controllers.CreateCategory)

		// Course management
		admin.POST("/courses", controllers.CreateCourse)
		admin.POST("/courses/:id/lessons", controllers.AddLesson)
		admin.PUT("/courses/:id/publish", controllers.PublishCourse)

		// Coupon management
		admin.POST("/coupons", controllers.CreateCoupon)
		admin.GET("/coupons", controllers.ListCoupons)
		admin.DELETE("/coupons/:id", controllers.DeleteCoupon)

		// Wallet administration
		admin.POST("/wallet", controllers.AdjustWallet)
		admin.PUT("/wallet/:userId/status", controllers.SetWalletStatus)

		// Payment oversight
		admin.GET("/payments", controllers.AdminListPayments)
		admin.GET("/payments/export", controllers.DownloadPaymentReportExcel)
	}
}
