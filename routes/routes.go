package routes

import (
	"foodonline-api/handlers"
	"foodonline-api/middleware"
	"foodonline-api/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the API under /api. auth authenticates the bearer
// session; throttle guards the credential endpoints.
func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth, throttle gin.HandlerFunc) {
	api := r.Group("/api")

	// ── Accounts ───────────────────────────────────────────────────
	accounts := api.Group("/accounts")
	{
		accounts.POST("/registerUser", h.RegisterUser)
		accounts.POST("/registerVendor", h.RegisterVendor)
		accounts.GET("/activate/:uid/:token", h.Activate)
		accounts.POST("/login", throttle, h.Login)
		accounts.POST("/forgot_password", throttle, h.ForgotPassword)
		accounts.GET("/reset_password_validate/:uid/:token", h.ResetPasswordValidate)
		accounts.POST("/reset_password", throttle, h.ResetPassword)

		accounts.GET("/logout", auth, h.Logout)
		accounts.POST("/logout", auth, h.Logout)
		accounts.GET("/MyAccount", auth, h.MyAccount)
		accounts.GET("/profile", auth, h.GetProfile)
	}

	// ── Marketplace (public) ───────────────────────────────────────
	api.GET("/marketplace", h.Marketplace)
	api.GET("/marketplace/:vendor_slug", h.VendorDetail)
	api.GET("/state-machine", handlers.GetStateMachineInfo)

	// ── Customer routes ────────────────────────────────────────────
	customer := api.Group("/customer")
	customer.Use(auth, middleware.RoleRequired(models.RoleCustomer))
	{
		customer.GET("", h.CustomerDashboard)
		customer.GET("/profile", h.GetCustomerProfile)
		customer.PUT("/profile", h.UpdateCustomerProfile)
		customer.GET("/my_orders", h.CustomerMyOrders)
		customer.GET("/order_detail/:order_number", h.CustomerOrderDetail)
		customer.PUT("/orders/:order_number/cancel", h.CancelOrder)

		customer.GET("/cart", h.Cart)
		customer.POST("/cart/add/:food_id", h.AddToCart)
		customer.POST("/cart/decrease/:food_id", h.DecreaseCart)
		customer.DELETE("/cart/:cart_id", h.DeleteCart)
		customer.POST("/place_order", h.PlaceOrder)
		customer.POST("/payments", h.Payments)
	}

	// ── Vendor routes ──────────────────────────────────────────────
	vendor := api.Group("/vendor")
	vendor.Use(auth, middleware.RoleRequired(models.RoleVendor))
	{
		vendor.GET("", h.VendorDashboard)
		vendor.GET("/profile", h.GetVendorProfile)
		vendor.PUT("/profile", h.UpdateVendorProfile)

		// Menu management
		vendor.GET("/menu_builder", h.MenuBuilder)
		vendor.GET("/menu_builder/category/:pk", h.FoodItemsByCategory)
		vendor.POST("/menu_builder/category/add", h.AddCategory)
		vendor.PUT("/menu_builder/category/edit/:pk", h.EditCategory)
		vendor.DELETE("/menu_builder/category/delete/:pk", h.DeleteCategory)
		vendor.POST("/menu_builder/food/add", h.AddFood)
		vendor.PUT("/menu_builder/food/edit/:pk", h.EditFood)
		vendor.DELETE("/menu_builder/food/delete/:pk", h.DeleteFood)

		// Opening hours (AJAX)
		vendor.GET("/opening-hours", h.OpeningHours)
		vendor.POST("/opening-hours/add", h.AddOpeningHour)
		vendor.POST("/opening-hours/remove/:pk", h.RemoveOpeningHour)

		// Order management
		vendor.GET("/my_orders", h.VendorMyOrders)
		vendor.GET("/order_detail/:order_number", h.VendorOrderDetail)
		vendor.PUT("/orders/:order_number/status", h.UpdateOrderStatus)
	}
}
