package pics

import (
	"sync"

	"github.com/jwolfley/unilib/internal/ratelimit"
)

// Factory is the thread-safe, process-wide singleton factory spec
// §4.8 calls for: "a thread-safe factory on the caller side that
// restarts the worker if it has died."
type Factory struct {
	mu       sync.Mutex
	session  *Session
	limiters *ratelimit.Registry
}

func NewFactory(limiters *ratelimit.Registry) *Factory {
	return &Factory{limiters: limiters}
}

// Get returns the live session, starting or restarting the worker if
// needed.
func (f *Factory) Get() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil || !f.session.isAlive() {
		f.session = NewSession(f.limiters)
	}
	return f.session
}
