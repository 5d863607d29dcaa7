package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMinGap_WaitsBetweenCalls(t *testing.T) {
	g := NewMinGap(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("second call returned after %v, want >= 30ms", elapsed)
	}
}

func TestMinGap_CancelledContext(t *testing.T) {
	g := NewMinGap(time.Hour)
	ctx := context.Background()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := g.Wait(cancelCtx); err == nil {
		t.Error("Wait on cancelled context should return an error")
	}
}

func TestSlidingWindow_AllowRespectsLimit(t *testing.T) {
	w := NewSlidingWindow(time.Minute, 2)
	if !w.Allow() {
		t.Fatal("first call should be allowed")
	}
	if !w.Allow() {
		t.Fatal("second call should be allowed")
	}
	if w.Allow() {
		t.Fatal("third call should be rejected, limit is 2")
	}
}

func TestSlidingWindow_ExpiresOldEntries(t *testing.T) {
	w := NewSlidingWindow(20*time.Millisecond, 1)
	if !w.Allow() {
		t.Fatal("first call should be allowed")
	}
	if w.Allow() {
		t.Fatal("second call within window should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	if !w.Allow() {
		t.Error("call after window expiry should be allowed again")
	}
}

func TestRegistry_GapAndWindowAreSingletonsPerName(t *testing.T) {
	r := NewRegistry()
	g1 := r.Gap("x", time.Second)
	g2 := r.Gap("x", time.Hour)
	if g1 != g2 {
		t.Error("Gap should return the same *MinGap for the same name regardless of the second call's duration")
	}

	w1 := r.Window("y", time.Minute, 5)
	w2 := r.Window("y", time.Hour, 1)
	if w1 != w2 {
		t.Error("Window should return the same *SlidingWindow for the same name")
	}
}
