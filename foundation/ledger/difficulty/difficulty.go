// Package difficulty maintains the proof difficulty in force, retargeting it
// from the timing of recently accepted blocks.
package difficulty

import (
	"sync"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
)

// Controller derives the current difficulty from recent block timing. Reads
// are concurrent; Recompute must be serialized with chain extension by the
// caller so a block is never validated against a mid-recompute value.
type Controller struct {
	mu      sync.RWMutex
	current int
	target  int
	window  int
}

// New constructs a Controller with the genesis difficulty settings.
func New(initial int, targetSeconds int, window int) *Controller {
	if initial < 1 {
		initial = 1
	}

	return &Controller{
		current: initial,
		target:  targetSeconds,
		window:  window,
	}
}

// Current returns the difficulty in force.
func (c *Controller) Current() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// Recompute retargets the difficulty from the trailing window of blocks and
// returns the value now in force. With fewer blocks than the window the
// current value is kept. An average inter-block time under target raises
// difficulty by one; over twice the target lowers it by one, never below 1.
func (c *Controller) Recompute(blocks []database.Block) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(blocks) < c.window {
		return c.current
	}

	recent := blocks[len(blocks)-c.window:]

	var taken float64
	for i := 1; i < len(recent); i++ {
		taken += recent[i].Timestamp.Sub(recent[i-1].Timestamp).Seconds()
	}

	avg := taken / float64(len(recent)-1)

	switch {
	case avg < float64(c.target):
		c.current++
	case avg > float64(2*c.target):
		if c.current > 1 {
			c.current--
		}
	}

	return c.current
}
