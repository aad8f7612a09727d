package session

import (
	"sync"
	"time"
)

// Countdown is a cancellable per-question timer. Start always replaces any
// running countdown; Stop is safe to call at any time and never blocks on a
// callback in flight. Callbacks fire from a background goroutine, so owners
// must do their own late-fire filtering (the engine uses a generation
// counter for that).
type Countdown interface {
	Start(seconds int, tick func(remaining int), expire func())
	Stop()
}

// TickerCountdown drives the countdown off a real one-second ticker.
type TickerCountdown struct {
	mu   sync.Mutex
	stop chan struct{}
}

func NewTickerCountdown() *TickerCountdown {
	return &TickerCountdown{}
}

func (c *TickerCountdown) Start(seconds int, tick func(remaining int), expire func()) {
	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				remaining--
				if remaining <= 0 {
					expire()
					return
				}
				tick(remaining)
			}
		}
	}()
}

func (c *TickerCountdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
