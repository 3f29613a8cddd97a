package service

import (
	"sync"
	"time"
)

// countdown runs fn once per interval until stopped. Stop is idempotent and
// safe to call from fn itself or from any goroutine.
type countdown struct {
	done     chan struct{}
	stopOnce sync.Once
}

func newCountdown(interval time.Duration, fn func()) *countdown {
	c := &countdown{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-c.done:
				return
			}
		}
	}()

	return c
}

// Stop cancels the countdown. Ticks already dispatched may still run.
func (c *countdown) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
