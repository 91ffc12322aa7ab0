// internal/interfaces/http/handlers/credit.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/credit"
)

// CreditHandler handles store-credit endpoints
type CreditHandler struct {
	creditService *credit.Service
	config        *config.Config
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(db *gorm.DB, cfg *config.Config) *CreditHandler {
	return &CreditHandler{
		creditService: credit.NewService(db),
		config:        cfg,
	}
}

// GetBalance handles GET /credit/:customer_id
func (h *CreditHandler) GetBalance(c *gin.Context) {
	customerID := c.Param("customer_id")

	available, err := h.creditService.Available(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve credit balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"customer_id": customerID,
			"available":   available,
		},
	})
}

// DeductRequest represents a credit deduction request
type DeductRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,min=1"`
	OrderNumber int64  `json:"order_number" binding:"required"`
}

// Deduct handles POST /credit/deduct. Retries with the same order number
// are idempotent.
func (h *CreditHandler) Deduct(c *gin.Context) {
	var req DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	balance, err := h.creditService.Deduct(c.Request.Context(), req.CustomerID, req.Amount, req.OrderNumber)
	if err != nil {
		if errors.Is(err, credit.ErrInsufficientCredit) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Insufficient credit",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to deduct credit",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Credit deducted successfully",
		"data": gin.H{
			"customer_id": req.CustomerID,
			"available":   balance,
		},
	})
}

// GrantRequest represents a credit grant request
type GrantRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required,min=1"`
	Note       string `json:"note,omitempty"`
}

// Grant handles POST /credit/grant
func (h *CreditHandler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	err := h.creditService.Grant(c.Request.Context(), req.CustomerID, req.Amount, req.Note)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to grant credit",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Credit granted successfully",
	})
}
