// internal/domain/order/allocator.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAllocationConflict is returned when the allocator loses the
// compare-and-swap race more times than it is willing to retry
var ErrAllocationConflict = errors.New("order number allocation conflict")

// Allocator issues order numbers. Every issued number is strictly greater
// than every previously issued one; concurrent callers never receive the
// same number. A plain read-max-then-insert does not satisfy this, which is
// why the production implementation goes through a counter row with
// compare-and-swap semantics.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// CounterStore holds a single named counter. CompareAndSwap must be atomic:
// it succeeds only when the stored value still equals old.
type CounterStore interface {
	// Current returns the counter value, seeding it with seed when absent.
	Current(ctx context.Context) (int64, error)
	// CompareAndSwap atomically replaces old with new, reporting whether the
	// swap happened.
	CompareAndSwap(ctx context.Context, old, new int64) (bool, error)
}

// SequenceAllocator allocates monotonically increasing order numbers from a
// CounterStore, retrying on swap conflicts
type SequenceAllocator struct {
	store      CounterStore
	floor      int64
	maxRetries int
}

// NewSequenceAllocator creates an allocator. The first issued number is
// floor (e.g. 10000) when no orders exist.
func NewSequenceAllocator(store CounterStore, floor int64) *SequenceAllocator {
	return &SequenceAllocator{
		store:      store,
		floor:      floor,
		maxRetries: 25,
	}
}

// Next issues the next order number. Conflicts with concurrent allocations
// are retried transparently; callers only see ErrAllocationConflict when the
// counter stays contended past the retry budget.
func (a *SequenceAllocator) Next(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		current, err := a.store.Current(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to read order counter: %w", err)
		}

		next := current + 1
		if next < a.floor {
			next = a.floor
		}

		ok, err := a.store.CompareAndSwap(ctx, current, next)
		if err != nil {
			return 0, fmt.Errorf("failed to advance order counter: %w", err)
		}
		if ok {
			return next, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Millisecond):
		}
	}
	return 0, ErrAllocationConflict
}

// Sequence is the counter row backing order numbering
type Sequence struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null"`
}

// TableName overrides the table name
func (Sequence) TableName() string {
	return "order_sequences"
}

const sequenceName = "order_number"

// GormCounterStore implements CounterStore on the order_sequences table. The
// conditional UPDATE makes the swap atomic at the database level.
type GormCounterStore struct {
	db   *gorm.DB
	seed int64
}

// NewGormCounterStore creates a database-backed counter seeded at floor-1,
// so that the first allocation yields exactly floor
func NewGormCounterStore(db *gorm.DB, floor int64) *GormCounterStore {
	return &GormCounterStore{db: db, seed: floor - 1}
}

// Current reads the counter, inserting the seed row when missing. The
// ON CONFLICT DO NOTHING keeps concurrent seeding harmless.
func (s *GormCounterStore) Current(ctx context.Context) (int64, error) {
	var seq Sequence
	err := s.db.WithContext(ctx).Where("name = ?", sequenceName).First(&seq).Error
	if err == nil {
		return seq.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	seq = Sequence{Name: sequenceName, Value: s.seed}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, err
	}
	// Re-read: another request may have won the insert and moved the value
	if err := s.db.WithContext(ctx).Where("name = ?", sequenceName).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// CompareAndSwap advances the counter only if it still holds old
func (s *GormCounterStore) CompareAndSwap(ctx context.Context, old, new int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&Sequence{}).
		Where("name = ? AND value = ?", sequenceName, old).
		Update("value", new)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
