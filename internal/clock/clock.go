package clock

import (
	"sync"
	"time"
)

// Clock is the injected time source. Services never read the wall clock
// directly so that recurrence and expiry behavior stays deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the real wall clock in UTC.
func System() Clock { return systemClock{} }

// Fake is a controllable clock for tests.
type Fake struct {
	mu      sync.Mutex
	current time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{current: start.UTC()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.current = t.UTC()
	f.mu.Unlock()
}

// Advance moves the clock forward by d and returns the updated time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	f.current = f.current.Add(d)
	updated := f.current
	f.mu.Unlock()
	return updated
}
