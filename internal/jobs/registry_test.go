package jobs

import (
	"testing"

	"github.com/jwolfley/unilib/internal/ratelimit"
)

func TestRegistry_CancelAndIsCancelled(t *testing.T) {
	r := NewRegistry(ratelimit.NewRegistry())

	if r.IsCancelled("job-1") {
		t.Fatal("job-1 should not start cancelled")
	}

	r.Cancel("job-1")
	if !r.IsCancelled("job-1") {
		t.Error("job-1 should be cancelled after Cancel")
	}
	if r.IsCancelled("job-2") {
		t.Error("Cancel should only affect the named job")
	}
}

func TestRegistry_ForgetDropsCancelledState(t *testing.T) {
	r := NewRegistry(ratelimit.NewRegistry())
	r.Cancel("job-1")
	r.forget("job-1")
	if r.IsCancelled("job-1") {
		t.Error("forget should remove job-1 from the cancelled set")
	}
}
