// Package ratelimit holds the process-wide, mutex-protected rate
// limiters shared by every source adapter and job body (spec §5: "Rate
// limiters are process-wide and thread-safe: a shared mutex guards a
// deque of recent timestamps"). Grounded on the teacher's ad hoc
// throttle_gate table and ThrottleWindow() idiom, generalized into a
// reusable registry.
package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MinGap enforces a minimum delay between successive calls from any
// caller (e.g. "≥200ms between requests per worker"). Safe for
// concurrent use.
type MinGap struct {
	mu   sync.Mutex
	gap  time.Duration
	last time.Time
}

func NewMinGap(gap time.Duration) *MinGap {
	return &MinGap{gap: gap}
}

// Wait blocks until at least Gap has elapsed since the previous call
// returned, or until ctx is cancelled.
func (m *MinGap) Wait(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last.IsZero() {
		m.last = time.Now()
		return nil
	}
	wait := m.gap - time.Since(m.last)
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	m.last = time.Now()
	return nil
}

// SlidingWindow caps the number of calls within a trailing time
// window ("≤200 requests per 5-minute window"). A mutex guards a
// deque (container/list) of recent call timestamps, per spec §5's own
// description of the intended implementation.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	times  *list.List
}

func NewSlidingWindow(window time.Duration, limit int) *SlidingWindow {
	return &SlidingWindow{window: window, limit: limit, times: list.New()}
}

// Allow reports whether a call is permitted right now, and if so,
// records it.
func (s *SlidingWindow) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-s.window)
	for e := s.times.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(cutoff) {
			s.times.Remove(e)
		}
		e = next
	}
	if s.times.Len() >= s.limit {
		return false
	}
	s.times.PushBack(now)
	return true
}

// Wait blocks, polling at a short interval, until Allow succeeds or
// ctx is cancelled.
func (s *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if s.Allow() {
			return nil
		}
		t := time.NewTimer(50 * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Registry is the explicit, mutex-protected process-wide handle for
// shared rate limiters (spec §9 design note: pass a Registry into job
// constructors instead of ambient globals).
type Registry struct {
	mu       sync.Mutex
	gaps     map[string]*MinGap
	windows  map[string]*SlidingWindow
	limiters map[string]*rate.Limiter
}

func NewRegistry() *Registry {
	return &Registry{
		gaps:     make(map[string]*MinGap),
		windows:  make(map[string]*SlidingWindow),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Gap returns (creating if needed) the named minimum-gap limiter.
func (r *Registry) Gap(name string, gap time.Duration) *MinGap {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gaps[name]; ok {
		return g
	}
	g := NewMinGap(gap)
	r.gaps[name] = g
	return g
}

// Window returns (creating if needed) the named sliding-window limiter.
func (r *Registry) Window(name string, window time.Duration, limit int) *SlidingWindow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.windows[name]; ok {
		return w
	}
	w := NewSlidingWindow(window, limit)
	r.windows[name] = w
	return w
}

// TokenBucket returns (creating if needed) a golang.org/x/time/rate
// limiter for calls that fit a steady-state-plus-burst shape (e.g.
// IGDB's 4req/s free tier).
func (r *Registry) TokenBucket(name string, rps float64, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[name]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	r.limiters[name] = l
	return l
}
