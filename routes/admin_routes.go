package routes

import (
	"github.com/nadifalfairuz/digistore/controllers"
	"github.com/nadifalfairuz/digistore/middleware"

	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		// Public admin routes
		admin.POST("/login", controllers.AdminLogin)
		admin.POST("/logout", controllers.AdminLogout)

		// Protected admin routes
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/dashboard", controllers.GetDashboard)
			admin.GET("/orders", controllers.AdminListOrders)
			admin.GET("/orders/feed", controllers.OrderFeed)

			// Product management
			admin.GET("/products", controllers.AdminListProducts)
			admin.POST("/products", controllers.CreateProduct)
			admin.PUT("/products/:id", controllers.UpdateProduct)
			admin.DELETE("/products/:id", controllers.DeleteProduct)
			admin.POST("/products/:id/flash-sale", controllers.SetFlashSale)
			admin.DELETE("/products/:id/flash-sale", controllers.ClearFlashSale)
			admin.POST("/ai/describe", controllers.GenerateProductDescription)

			// Banner management
			admin.GET("/banners", controllers.AdminListBanners)
			admin.POST("/banners", controllers.CreateBanner)
			admin.PUT("/banners/:id", controllers.UpdateBanner)
			admin.DELETE("/banners/:id", controllers.DeleteBanner)

			// Voucher management
			admin.GET("/vouchers", controllers.AdminListVouchers)
			admin.POST("/vouchers", controllers.CreateVoucher)
			admin.PUT("/vouchers/:id", controllers.UpdateVoucher)
			admin.DELETE("/vouchers/:id", controllers.DeleteVoucher)

			// Bundle management
			admin.GET("/bundles", controllers.AdminListBundles)
			admin.POST("/bundles", controllers.CreateBundle)
			admin.PUT("/bundles/:id", controllers.UpdateBundle)
			admin.DELETE("/bundles/:id", controllers.DeleteBundle)

			// Wallet management
			admin.GET("/payment-keys", controllers.ListPaymentKeys)
			admin.POST("/payment-keys", controllers.CreatePaymentKey)
			admin.POST("/payment-keys/:id/adjust", controllers.AdjustPaymentKey)

			// Reports and uploads
			admin.GET("/reports/sales/excel", controllers.DownloadSalesReportExcel)
			admin.GET("/reports/sales/pdf", controllers.DownloadSalesReportPDF)
			admin.POST("/images", controllers.UploadImage)
		}
	}
}
