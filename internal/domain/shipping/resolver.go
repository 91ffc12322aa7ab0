// internal/domain/shipping/resolver.go
package shipping

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Resolver resolves the shipping methods available for a destination region
// and cart contents
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a new shipping resolver
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Eligible returns the shipping methods available for the destination region
// and the given cart product ids, in display order
func (r *Resolver) Eligible(ctx context.Context, region string, productIDs []uint) ([]Method, error) {
	var methods []Method
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order asc").
		Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to load shipping methods: %w", err)
	}

	return EligibleMethods(methods, region, productIDs), nil
}

// Resolve returns the eligible methods plus the method to select: the current
// selection when it is still eligible, otherwise the default. The selected
// method is nil only when nothing is eligible.
func (r *Resolver) Resolve(ctx context.Context, region string, productIDs []uint, currentID string) ([]Method, *Method, error) {
	eligible, err := r.Eligible(ctx, region, productIDs)
	if err != nil {
		return nil, nil, err
	}
	return eligible, Reselect(currentID, eligible), nil
}

// Get returns a single method by id
func (r *Resolver) Get(ctx context.Context, id string) (*Method, error) {
	var method Method
	if err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&method).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("shipping method %q not found", id)
		}
		return nil, fmt.Errorf("failed to load shipping method: %w", err)
	}
	return &method, nil
}

// EligibleMethods filters methods for a region and cart. Region-scoped
// methods are mutually exclusive with the international fallback: methods
// with an empty region list are offered only when no region-scoped method
// matched.
func EligibleMethods(methods []Method, region string, productIDs []uint) []Method {
	var scoped, fallback []Method
	for _, m := range methods {
		if !m.ServesProducts(productIDs) {
			continue
		}
		if len(m.Regions) == 0 {
			fallback = append(fallback, m)
			continue
		}
		if m.ServesRegion(region) {
			scoped = append(scoped, m)
		}
	}

	result := scoped
	if len(scoped) == 0 {
		result = fallback
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SortOrder < result[j].SortOrder
	})
	return result
}

// Reselect keeps the current selection when it is still eligible; otherwise
// it picks a default, preferring a regional method with a free-shipping
// threshold, else the first eligible method. Never keeps an ineligible
// selection.
func Reselect(currentID string, eligible []Method) *Method {
	if len(eligible) == 0 {
		return nil
	}

	if currentID != "" {
		for i := range eligible {
			if eligible[i].ID == currentID {
				return &eligible[i]
			}
		}
	}

	for i := range eligible {
		if len(eligible[i].Regions) > 0 && eligible[i].FreeThreshold > 0 {
			return &eligible[i]
		}
	}
	return &eligible[0]
}
