package registry

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock advances instantly on Sleep so gate behavior can be asserted
// without real delays.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)
	return out
}

func TestGate_FirstCallDoesNotSleep(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(time.Second, clock)

	if err := g.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.sleeps()) != 0 {
		t.Errorf("first call should be admitted immediately, slept %v", clock.sleeps())
	}
}

func TestGate_EnforcesInterval(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(time.Second, clock)
	ctx := context.Background()

	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	clock.advance(300 * time.Millisecond)
	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	sleeps := clock.sleeps()
	if len(sleeps) != 1 || sleeps[0] != 700*time.Millisecond {
		t.Errorf("expected one sleep of 700ms, got %v", sleeps)
	}
}

func TestGate_NoSleepWhenIntervalElapsed(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(time.Second, clock)
	ctx := context.Background()

	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	clock.advance(2 * time.Second)
	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps()) != 0 {
		t.Errorf("no sleep expected after interval elapsed, got %v", clock.sleeps())
	}
}

func TestGate_SerializesConcurrentCallers(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(time.Second, clock)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Wait(ctx)
		}()
	}
	wg.Wait()

	// First admission is free; the other four each wait a full interval.
	if got := len(clock.sleeps()); got != 4 {
		t.Errorf("expected 4 sleeps for 5 concurrent callers, got %d", got)
	}
	for _, d := range clock.sleeps() {
		if d != time.Second {
			t.Errorf("each queued caller should wait the full interval, got %v", d)
		}
	}
}

func TestGate_ZeroIntervalNeverSleeps(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(0, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(clock.sleeps()) != 0 {
		t.Errorf("zero interval must not sleep, got %v", clock.sleeps())
	}
}

func TestGate_SetIntervalAppliesToNextAdmission(t *testing.T) {
	clock := newFakeClock()
	g := NewGate(time.Second, clock)
	ctx := context.Background()

	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	g.SetInterval(5 * time.Second)
	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	sleeps := clock.sleeps()
	if len(sleeps) != 1 || sleeps[0] != 5*time.Second {
		t.Errorf("expected one sleep of 5s after interval change, got %v", sleeps)
	}
}

func TestGate_ContextCancellation(t *testing.T) {
	g := NewGate(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	if err := g.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := g.Wait(ctx); err == nil {
		t.Error("expected context error from interrupted wait")
	}
}
