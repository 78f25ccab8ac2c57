package registry

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time for the rate gate so tests can simulate elapsed time
// without real delays.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return realClock{} }

// Gate enforces a minimum interval between consecutive outbound registry
// requests, process-wide and sequential.  The mutex is held across the delay
// so concurrent callers queue up rather than sleeping in parallel, which
// would collapse the spacing between their requests.
type Gate struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	last     time.Time
}

// NewGate builds a Gate with the given minimum interval.  A nil clock uses
// the system clock.  A non-positive interval disables the delay but still
// serializes callers.
func NewGate(interval time.Duration, clock Clock) *Gate {
	if clock == nil {
		clock = realClock{}
	}
	return &Gate{clock: clock, interval: interval}
}

// SetInterval changes the minimum spacing between requests.  Takes effect for
// the next admission; a caller already sleeping keeps its original delay.
func (g *Gate) SetInterval(interval time.Duration) {
	g.mu.Lock()
	g.interval = interval
	g.mu.Unlock()
}

// Wait blocks until at least the configured interval has elapsed since the
// previous request was admitted, then records the admission time.  Every
// network-calling method of the registry client must call Wait first.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() && g.interval > 0 {
		if remaining := g.interval - g.clock.Now().Sub(g.last); remaining > 0 {
			if err := g.clock.Sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}
	g.last = g.clock.Now()
	return nil
}
