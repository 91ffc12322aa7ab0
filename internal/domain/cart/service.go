// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cartTTL = 7 * 24 * time.Hour

	// Quantity limits; a bulk variant inverts the rule and requires at
	// least BulkMinimum units.
	MaxQuantity = 10
	BulkMinimum = 10
)

// Service handles cart session storage in Redis
type Service struct {
	redisClient *redis.Client
}

// NewService creates a new cart service
func NewService(redisClient *redis.Client) *Service {
	return &Service{redisClient: redisClient}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	VariantID    *uint  `json:"variant_id"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	Price        int64  `json:"price" binding:"required,min=0"`
	BulkVariant  bool   `json:"bulk_variant"`
	Subscription bool   `json:"subscription"`
	Interval     string `json:"billing_interval"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity" binding:"min=0"` // 0 removes the item
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Get retrieves the cart for a session, returning an empty cart when none
// exists
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := s.redisClient.Get(ctx, cartKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			now := time.Now().UTC()
			return &Cart{
				SessionID: sessionID,
				Items:     []Item{},
				CreatedAt: now,
				UpdatedAt: now,
				ExpiresAt: now.Add(cartTTL),
			}, nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

// AddItem adds an item to the cart, merging quantity into an existing line
// for the same product/variant
func (s *Service) AddItem(ctx context.Context, sessionID string, req *AddItemRequest) (*Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID && variantEqual(cart.Items[i].VariantID, req.VariantID) {
			cart.Items[i].Quantity += req.Quantity
			if err := ValidateQuantity(cart.Items[i].Quantity, cart.Items[i].BulkVariant); err != nil {
				return nil, err
			}
			merged = true
			break
		}
	}

	if !merged {
		if err := ValidateQuantity(req.Quantity, req.BulkVariant); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, Item{
			ProductID:    req.ProductID,
			VariantID:    req.VariantID,
			Quantity:     req.Quantity,
			Price:        req.Price,
			BulkVariant:  req.BulkVariant,
			Subscription: req.Subscription,
			Interval:     req.Interval,
			AddedAt:      time.Now().UTC(),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem changes a line item quantity; zero removes the line
func (s *Service) UpdateItem(ctx context.Context, sessionID string, req *UpdateItemRequest) (*Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == req.ProductID && variantEqual(item.VariantID, req.VariantID) {
			found = true
			if req.Quantity == 0 {
				continue
			}
			if err := ValidateQuantity(req.Quantity, item.BulkVariant); err != nil {
				return nil, err
			}
			item.Quantity = req.Quantity
		}
		items = append(items, item)
	}
	cart.Items = items

	if !found {
		return nil, fmt.Errorf("item not found in cart")
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear removes the session cart
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.redisClient.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, cart *Cart) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(cartTTL)
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.redisClient.Set(ctx, cartKey(cart.SessionID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("failed to store cart: %w", err)
	}
	return nil
}

// ValidateQuantity enforces the line quantity invariants: at least 1, at most
// MaxQuantity, except bulk variants which require at least BulkMinimum.
func ValidateQuantity(quantity int, bulkVariant bool) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if bulkVariant {
		if quantity < BulkMinimum {
			return fmt.Errorf("bulk items require a minimum quantity of %d", BulkMinimum)
		}
		return nil
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("quantity cannot exceed %d", MaxQuantity)
	}
	return nil
}

func variantEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
