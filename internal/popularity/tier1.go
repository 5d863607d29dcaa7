package popularity

import (
	"sync"
	"time"
)

// tier1TTL is the in-process cache lifetime (§4.11: "entries live ≤ 15
// minutes").
const tier1TTL = 15 * time.Minute

type tier1Entry struct {
	values    map[int64]float64
	cachedAt  time.Time
}

// tier1 is a mutex-guarded map, grounded on the teacher's tokenCache
// pattern — one shared struct per process, locked on every access.
type tier1 struct {
	mu      sync.Mutex
	entries map[string]tier1Entry
}

func newTier1() *tier1 {
	return &tier1{entries: make(map[string]tier1Entry)}
}

func (t *tier1) get(fingerprint string) (map[int64]float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[fingerprint]
	if !ok || time.Since(e.cachedAt) > tier1TTL {
		return nil, false
	}
	return e.values, true
}

func (t *tier1) put(fingerprint string, values map[int64]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[fingerprint] = tier1Entry{values: values, cachedAt: time.Now()}
}
