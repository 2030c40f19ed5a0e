package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/controllers"
	"github.com/learnsphere/learnsphere/middleware"
)

// initUserRoutes initializes all user-related routes
func initUserRoutes(router *gin.RouterGroup) {
	// Public routes (no authentication required)
	router.POST("/register", controllers.Register)
	router.POST("/login", controllers.Login)

	// Catalog browsing
	router.GET("/courses", controllers.ListCourses)
	router.GET("/courses/:id", controllers.GetCourseDetails)
	router.GET("/categories", controllers.ListCategories)

	// Protected routes (require authentication)
	protected := router.Group("/user")
	protected.Use(middleware.AuthMiddleware())
	{
		// Cart operations
		protected.POST("/cart", controllers.AddToCart)
		protected.GET("/cart", controllers.GetCart)
		protected.DELETE("/cart/:courseId", controllers.RemoveFromCart)
		protected.DELETE("/cart", controllers.ClearCart)

		// Coupon preview
		protected.POST("/coupons/apply", controllers.ApplyCoupon)
		protected.DELETE("/coupons/apply", controllers.RemoveCoupon)

		// Payment and settlement
		protected.POST("/payment/order", controllers.CreatePaymentOrder)
		protected.POST("/payment/verify", controllers.VerifyPayment)
		protected.GET("/payments", controllers.ListPayments)
		protected.GET("/payments/:id/receipt", controllers.DownloadPaymentReceipt)

		// Wallet
		protected.GET("/wallet", controllers.GetWallet)
		protected.POST("/wallet", controllers.AdjustWallet)
		protected.GET("/wallet/transactions", controllers.GetWalletTransactions)

		// Enrollments
		protected.GET("/enrollments", controllers.ListEnrollments)
		protected.POST("/enrollments/:courseId/access", controllers.TouchEnrollment)
	}
}
