package ratelimit

import (
	"sync"
	"time"
)

// Limiter bounds request volume per caller key. The in-memory implementation
// below is process-local; a cluster-wide deployment can substitute a shared
// counter without touching the action router.
type Limiter interface {
	Allow(key string) bool
}

type window struct {
	count   int
	resetAt time.Time
}

// SlidingWindow counts requests per key inside a fixed-duration window.
// When a window expires the count restarts at 1.
type SlidingWindow struct {
	mu     sync.Mutex
	max    int
	period time.Duration
	keys   map[string]*window
	now    func() time.Time
}

func NewSlidingWindow(max int, period time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:    max,
		period: period,
		keys:   make(map[string]*window),
		now:    time.Now,
	}
}

func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.keys[key]
	if !ok || now.After(w.resetAt) {
		l.keys[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}

	w.count++
	return w.count <= l.max
}

// Sweep drops expired windows so the map does not grow unbounded. Intended
// to run from a background ticker.
func (l *SlidingWindow) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.keys {
		if now.After(w.resetAt) {
			delete(l.keys, key)
		}
	}
}

// StartSweeper runs Sweep on an interval until done is closed.
func (l *SlidingWindow) StartSweeper(interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-done:
				return
			}
		}
	}()
}
