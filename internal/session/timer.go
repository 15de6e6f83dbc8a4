package session

import (
	"sync"
	"time"
)

// countdown is a cancellable repeating task counting down a fixed number of
// seconds. One goroutine per countdown; Stop is safe to call from any
// goroutine, any number of times, and releases the goroutine promptly so a
// retired timer never keeps ticking.
type countdown struct {
	stop chan struct{}
	once sync.Once
}

func newCountdown() *countdown {
	return &countdown{stop: make(chan struct{})}
}

func (c *countdown) run(seconds int, interval time.Duration, onTick func(remaining int), onExpire func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		remaining := seconds
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				remaining--
				if remaining <= 0 {
					onTick(0)
					onExpire()
					return
				}
				onTick(remaining)
			}
		}
	}()
}

func (c *countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}
