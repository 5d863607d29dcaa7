package popularity

import (
	"testing"
	"time"
)

func TestTier1_MissThenHit(t *testing.T) {
	c := newTier1()
	if _, ok := c.get("fp"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.put("fp", map[int64]float64{1: 95})
	v, ok := c.get("fp")
	if !ok || v[1] != 95 {
		t.Fatalf("expected hit with value 95, got %v ok=%v", v, ok)
	}
}

func TestTier1_ExpiresAfterTTL(t *testing.T) {
	c := newTier1()
	c.entries["fp"] = tier1Entry{values: map[int64]float64{1: 1}, cachedAt: time.Now().Add(-tier1TTL - time.Second)}
	if _, ok := c.get("fp"); ok {
		t.Fatal("expected expired entry to miss")
	}
}
