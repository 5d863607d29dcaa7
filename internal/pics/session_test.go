package pics

import (
	"context"
	"testing"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/ratelimit"
)

func TestSession_ConnectAndStatus(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ratelimit.NewRegistry())
	defer s.Shutdown(ctx)

	if err := s.Connect(ctx, false); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	ok, err := s.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !ok {
		t.Fatal("expected logged in after Connect")
	}
}

func TestSession_GetProductInfo_RequiresConnect(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ratelimit.NewRegistry())
	defer s.Shutdown(ctx)

	_, err := s.GetProductInfo(ctx, []int64{440})
	if apperr.KindOf(err) != apperr.AuthExpired {
		t.Fatalf("expected AuthExpired before connect, got %v", err)
	}
}

func TestSession_GetProductInfo_SkipsFailedBatchWithoutFailingCall(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ratelimit.NewRegistry())
	defer s.Shutdown(ctx)

	if err := s.Connect(ctx, false); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	result, err := s.GetProductInfo(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("GetProductInfo should not fail the whole call on a skipped batch: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result with no protocol backend, got %v", result)
	}
}

func TestFactory_RestartsDeadSession(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(ratelimit.NewRegistry())

	s1 := f.Get()
	if err := s1.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	s2 := f.Get()
	if s1 == s2 {
		t.Fatal("expected Factory to restart a dead session")
	}
}
