// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/code"
	"github.com/your-org/storefront-backend/internal/domain/credit"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/settlement"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// CheckoutHandler handles code validation, shipping resolution, pricing
// previews and checkout submission
type CheckoutHandler struct {
	checkoutService *checkout.Service
	codeService     *code.Service
	shippingRes     *shipping.Resolver
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *CheckoutHandler {
	codeService := code.NewService(code.NewStore(db))
	shippingRes := shipping.NewResolver(db)
	creditService := credit.NewService(db)

	checkoutService := checkout.NewService(
		codeService,
		shippingRes,
		creditService,
		order.NewSequenceAllocator(order.NewGormCounterStore(db, cfg.Orders.NumberFloor), cfg.Orders.NumberFloor),
		settlement.NewDispatcher(cfg),
		ledger.NewRecorder(db, creditService, logger),
		cfg,
		logger,
	)

	return &CheckoutHandler{
		checkoutService: checkoutService,
		codeService:     codeService,
		shippingRes:     shippingRes,
		config:          cfg,
	}
}

// ValidateCodeRequest represents a code validation request
type ValidateCodeRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal"`
	Email    string `json:"email,omitempty"`
}

// ValidateCode handles POST /checkout/validate-code
func (h *CheckoutHandler) ValidateCode(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resolution, err := h.codeService.Resolve(c.Request.Context(), req.Code, req.Subtotal, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to validate code",
		})
		return
	}

	// Rejections are a normal response, not an HTTP error
	c.JSON(http.StatusOK, gin.H{
		"data": resolution,
	})
}

// ShippingMethods handles GET /checkout/shipping-methods
func (h *CheckoutHandler) ShippingMethods(c *gin.Context) {
	region := c.Query("region")
	productIDs := queryUintList(c, "product_id")
	currentID := c.Query("current")

	eligible, selected, err := h.shippingRes.Resolve(c.Request.Context(), region, productIDs, currentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve shipping methods",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"methods":  eligible,
			"selected": selected,
		},
	})
}

// Quote handles POST /checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req checkout.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	quote, err := h.checkoutService.Quote(c.Request.Context(), &req)
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Validation failed",
				"fields": verr.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to price cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": quote,
	})
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.checkoutService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.checkoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    resp,
	})
}

// checkoutError maps orchestrator failures onto HTTP responses by severity
func (h *CheckoutHandler) checkoutError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var serr *settlement.Error
	if errors.As(err, &serr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment could not be initiated, please try again",
		})
		return
	}

	var perr *checkout.PersistenceError
	if errors.As(err, &perr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "Order could not be recorded, please contact support",
			"order_number": perr.OrderNumber,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Checkout failed",
	})
}

// queryUintList parses a repeated uint query parameter
func queryUintList(c *gin.Context, name string) []uint {
	var ids []uint
	for _, raw := range c.QueryArray(name) {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}
