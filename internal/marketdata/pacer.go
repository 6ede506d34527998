package marketdata

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces out successive provider calls. Wait blocks until the next
// call may proceed or ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoDelay never blocks. Used in tests and for providers without rate limits.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }

// FixedDelay guarantees at least Interval between the start of successive calls.
// The first call is never delayed. The zero value (plus an Interval) is ready to use
// and safe for concurrent use.
type FixedDelay struct {
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
	now  func() time.Time
}

// NewFixedDelay returns a Pacer enforcing interval between calls.
// A non-positive interval yields NoDelay.
func NewFixedDelay(interval time.Duration) Pacer {
	if interval <= 0 {
		return NoDelay{}
	}
	return &FixedDelay{Interval: interval, now: time.Now}
}

func (p *FixedDelay) Wait(ctx context.Context) error {
	p.mu.Lock()
	clock := p.now
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.Interval)
	p.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
