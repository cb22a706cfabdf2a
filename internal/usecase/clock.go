package usecase

import "sync/atomic"

// Clock supplies the createdAt value for each committed write.
type Clock interface {
	// Next returns the height for the next committed call.
	Next() uint64
	// Height returns the most recently issued height.
	Height() uint64
}

// BlockClock is a monotonic block-height counter.
type BlockClock struct {
	height atomic.Uint64
}

// NewBlockClock starts counting after genesis.
func NewBlockClock(genesis uint64) *BlockClock {
	c := &BlockClock{}
	c.height.Store(genesis)
	return c
}

func (c *BlockClock) Next() uint64   { return c.height.Add(1) }
func (c *BlockClock) Height() uint64 { return c.height.Load() }

// AdvanceTo moves the height forward to h. Lower values are ignored.
func (c *BlockClock) AdvanceTo(h uint64) {
	for {
		cur := c.height.Load()
		if h <= cur || c.height.CompareAndSwap(cur, h) {
			return
		}
	}
}
