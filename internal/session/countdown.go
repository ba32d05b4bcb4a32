package session

import (
	"sync"
	"time"
)

// Countdown ticks once per interval from seconds down to zero.
type Countdown struct {
	stop chan struct{}
	once sync.Once
}

// StartCountdown calls onTick with the remaining seconds after every tick
// and onExpire once the count reaches zero. Both run on the countdown's own
// goroutine.
func StartCountdown(seconds int, interval time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	c := &Countdown{stop: make(chan struct{})}
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		remaining := seconds
		for remaining > 0 {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
			}

			select {
			case <-c.stop:
				return
			default:
			}

			remaining--
			if onTick != nil {
				onTick(remaining)
			}
		}
		if onExpire != nil {
			onExpire()
		}
	}()

	return c
}

// Stop is safe to call more than once and from the tick callbacks.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}
