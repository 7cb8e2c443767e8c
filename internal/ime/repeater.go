package ime

import (
	"context"
	"sync"
	"time"
)

// Repeater runs an action at a fixed interval while a key is held.
type Repeater struct {
	interval time.Duration
	action   func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRepeater creates a Repeater. It does nothing until Start.
func NewRepeater(interval time.Duration, action func()) *Repeater {
	return &Repeater{interval: interval, action: action}
}

// Start runs the action once immediately and then every interval until
// Stop is called or ctx is done. Starting a running Repeater restarts it.
func (r *Repeater) Start(ctx context.Context) {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)

		r.action()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.action()
			}
		}
	}()
}

// Stop halts the repeat and waits for a running action to finish.
func (r *Repeater) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether the repeat is active.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}
