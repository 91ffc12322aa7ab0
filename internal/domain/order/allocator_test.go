package order

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCounterStore is an in-memory CounterStore with real CAS semantics
type memoryCounterStore struct {
	mu     sync.Mutex
	value  int64
	seeded bool
	seed   int64
}

func newMemoryCounterStore(floor int64) *memoryCounterStore {
	return &memoryCounterStore{seed: floor - 1}
}

func (s *memoryCounterStore) Current(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		s.value = s.seed
		s.seeded = true
	}
	return s.value, nil
}

func (s *memoryCounterStore) CompareAndSwap(_ context.Context, old, new int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value != old {
		return false, nil
	}
	s.value = new
	return true, nil
}

// contentedStore fails the swap a fixed number of times before delegating,
// simulating a lost race
type contentedStore struct {
	*memoryCounterStore
	mu        sync.Mutex
	conflicts int
}

func (s *contentedStore) CompareAndSwap(ctx context.Context, old, new int64) (bool, error) {
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()
	return s.memoryCounterStore.CompareAndSwap(ctx, old, new)
}

func TestNext_FirstAllocationIsFloor(t *testing.T) {
	alloc := NewSequenceAllocator(newMemoryCounterStore(10000), 10000)

	n, err := alloc.Next(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10000), n)
}

func TestNext_SequentialAllocations(t *testing.T) {
	alloc := NewSequenceAllocator(newMemoryCounterStore(10000), 10000)

	var numbers []int64
	for i := 0; i < 5; i++ {
		n, err := alloc.Next(context.Background())
		require.NoError(t, err)
		numbers = append(numbers, n)
	}

	assert.Equal(t, []int64{10000, 10001, 10002, 10003, 10004}, numbers)
}

func TestNext_CounterBelowFloorJumpsToFloor(t *testing.T) {
	// A counter left below the floor by an older numbering scheme must not
	// issue numbers under the floor.
	store := newMemoryCounterStore(10000)
	store.seeded = true
	store.value = 41

	alloc := NewSequenceAllocator(store, 10000)

	n, err := alloc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), n)
}

func TestNext_RetriesThroughConflicts(t *testing.T) {
	store := &contentedStore{memoryCounterStore: newMemoryCounterStore(10000), conflicts: 5}
	alloc := NewSequenceAllocator(store, 10000)

	n, err := alloc.Next(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10000), n)
}

func TestNext_ConflictBudgetExhausted(t *testing.T) {
	store := &contentedStore{memoryCounterStore: newMemoryCounterStore(10000), conflicts: 1000}
	alloc := NewSequenceAllocator(store, 10000)

	_, err := alloc.Next(context.Background())

	assert.ErrorIs(t, err, ErrAllocationConflict)
}

func TestNext_ConcurrentAllocationsAreDistinct(t *testing.T) {
	const workers = 20

	alloc := NewSequenceAllocator(newMemoryCounterStore(10000), 10000)

	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := alloc.Next(context.Background())
			if err != nil {
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	var numbers []int64
	for n := range results {
		numbers = append(numbers, n)
	}

	require.Len(t, numbers, workers)

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, int64(10000+i), n)
	}
}

func TestNext_CancelledContext(t *testing.T) {
	store := &contentedStore{memoryCounterStore: newMemoryCounterStore(10000), conflicts: 1000}
	alloc := NewSequenceAllocator(store, 10000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := alloc.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
