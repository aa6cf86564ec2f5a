package screen

import (
	"context"
	"sync"
	"time"
)

// Poller runs a fetch immediately and then on every tick until stopped or
// until its parent context ends.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartPoller starts polling. deliver is called from the polling goroutine
// and never after Stop has returned.
func StartPoller[T any](parent context.Context, interval time.Duration, fetch FetchFunc[T], deliver func(T, error)) *Poller {
	ctx, cancel := context.WithCancel(parent)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			v, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			deliver(v, err)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return p
}

// Stop cancels the timer and any in-flight fetch, then waits for the polling
// goroutine to exit.
func (p *Poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}
