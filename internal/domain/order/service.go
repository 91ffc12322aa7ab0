// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Service handles order queries and payment-status transitions. Order
// creation itself belongs to the checkout orchestrator and the ledger
// recorder; this service never computes totals.
type Service struct {
	db *gorm.DB
}

// NewService creates a new order service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page          int           `form:"page,default=1"`
	Limit         int           `form:"limit,default=20"`
	PaymentStatus PaymentStatus `form:"payment_status"`
	Email         string        `form:"email"`
	TestOrders    bool          `form:"test_orders"`
	DateFrom      string        `form:"date_from"`
	DateTo        string        `form:"date_to"`
}

// ListResponse represents order list response with pagination
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	var orders []Order
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{}).Preload("Items")

	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.Email != "" {
		query = query.Where("email = ?", req.Email)
	}
	if !req.TestOrders {
		query = query.Where("test_order = ?", false)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("order_number desc").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetByNumber retrieves a single order by order number
func (s *Service) GetByNumber(ctx context.Context, orderNumber int64) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("PaymentEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("order_number = ?", orderNumber).
		First(&o).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", orderNumber, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// UpdatePaymentStatus applies a payment-status transition and records a
// payment event. Invalid transitions are rejected.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderNumber int64, to PaymentStatus, note string) error {
	var o Order
	if err := s.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderNumber, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to load order: %w", err)
	}

	if !o.CanTransitionTo(to) {
		return fmt.Errorf("invalid payment status transition from %s to %s", o.PaymentStatus, to)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&o).Update("payment_status", to).Error; err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		event := PaymentEvent{
			OrderID:   o.ID,
			From:      o.PaymentStatus,
			To:        to,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record payment event: %w", err)
		}
		return nil
	})
}

// AttachSettlementReference stores the settlement backend's reference id on
// an already-created order
func (s *Service) AttachSettlementReference(ctx context.Context, orderNumber int64, reference string) error {
	result := s.db.WithContext(ctx).
		Model(&Order{}).
		Where("order_number = ?", orderNumber).
		Update("settlement_reference", reference)
	if result.Error != nil {
		return fmt.Errorf("failed to attach settlement reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", orderNumber, gorm.ErrRecordNotFound)
	}
	return nil
}
