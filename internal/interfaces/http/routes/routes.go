// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
)

// SetupRoutes wires all API route groups
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	SetupCheckoutRoutes(rg, db, cfg, logger)
	SetupCartRoutes(rg, redisClient, cfg)
	SetupOrderRoutes(rg, db, cfg)
	SetupCreditRoutes(rg, db, cfg)
}

// SetupCheckoutRoutes sets up checkout related routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	checkoutHandler := handlers.NewCheckoutHandler(db, cfg, logger)

	co := rg.Group("/checkout")
	{
		co.POST("", checkoutHandler.Checkout)
		co.POST("/validate-code", checkoutHandler.ValidateCode)
		co.GET("/shipping-methods", checkoutHandler.ShippingMethods)
		co.POST("/quote", checkoutHandler.Quote)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(redisClient, cfg)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items", cartHandler.UpdateCartItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:number", orderHandler.GetOrder)
		orders.PUT("/:number/payment-status", orderHandler.UpdatePaymentStatus)
	}
}

// SetupCreditRoutes sets up store-credit routes
func SetupCreditRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	creditHandler := handlers.NewCreditHandler(db, cfg)

	credit := rg.Group("/credit")
	{
		credit.GET("/:customer_id", creditHandler.GetBalance)
		credit.POST("/deduct", creditHandler.Deduct)
		credit.POST("/grant", creditHandler.Grant)
	}
}
