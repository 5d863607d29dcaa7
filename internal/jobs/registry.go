// Package jobs implements the Job Engine (spec §4.9): a persistent
// job lifecycle state machine, cancellation, auto-resume on startup,
// and the job-type-specific bodies (store sync, update tracking, IGDB,
// Metacritic, ProtonDB, news and status sync, auto-tag resync). Grounded on the teacher's service.RefreshUserConcurrent
// goroutine + sync.WaitGroup + atomic counters pattern, generalized
// into persisted jobs instead of one ad hoc in-memory run.
package jobs

import (
	"sync"

	"github.com/jwolfley/unilib/internal/ratelimit"
)

// Registry is the explicit, process-wide handle spec §9's design note
// calls for — no ambient globals. It holds the cancelled-job-id set
// and the shared rate limiters every job body pulls from; the IGDB
// client-credentials token source lives on igdb.Client itself, so jobs
// share it by sharing one *igdb.Client instance; nothing here holds a
// token.
type Registry struct {
	mu        sync.Mutex
	cancelled map[string]bool

	Limiters *ratelimit.Registry
}

func NewRegistry(limiters *ratelimit.Registry) *Registry {
	return &Registry{
		cancelled: make(map[string]bool),
		Limiters:  limiters,
	}
}

// Cancel marks jobID as cancelled. Job bodies observe this via
// IsCancelled at their natural checkpoints (§4.9).
func (r *Registry) Cancel(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled[jobID] = true
}

// IsCancelled reports whether jobID has been marked cancelled.
func (r *Registry) IsCancelled(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled[jobID]
}

// forget drops jobID from the cancelled set once its body has
// observed the cancellation and written the terminal failed state —
// otherwise the set grows unboundedly over process lifetime.
func (r *Registry) forget(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancelled, jobID)
}
