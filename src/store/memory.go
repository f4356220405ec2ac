package store

import (
	"context"
	"sync"
)

// MemoryDepartureCounter keeps the same reserve-or-reject contract as the
// database counter for tests and local runs.
type MemoryDepartureCounter struct {
	mu    sync.Mutex
	spots map[uint]int64
}

func NewMemoryDepartureCounter(spots map[uint]int64) *MemoryDepartureCounter {
	if spots == nil {
		spots = make(map[uint]int64)
	}
	return &MemoryDepartureCounter{spots: spots}
}

func (c *MemoryDepartureCounter) Reserve(ctx context.Context, dateID uint, qty uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	left, ok := c.spots[dateID]
	if !ok || left < int64(qty) {
		return ErrInsufficientSpots
	}
	c.spots[dateID] = left - int64(qty)
	return nil
}

func (c *MemoryDepartureCounter) Release(ctx context.Context, dateID uint, qty uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spots[dateID] += int64(qty)
	return nil
}

// Spots reports the remaining counter value for assertions.
func (c *MemoryDepartureCounter) Spots(dateID uint) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spots[dateID]
}
