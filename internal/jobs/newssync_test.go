package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwolfley/unilib/internal/ratelimit"
	"github.com/jwolfley/unilib/internal/store"
)

// openTestJobsRepo gives each test its own migrated, on-disk SQLite file —
// the same real-backend setup internal/store's own tests use, since job
// bodies are only meaningfully testable against the persistence contract
// they actually read and write (ListGamesNeedingNewsSync, TouchNewsLastChecked, ...).
func openTestJobsRepo(t *testing.T) store.Repo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unilib.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("store.Migrate: %v", err)
	}
	return store.NewRepo(db)
}

// cancelOnFirstRequest cancels reg's jobID the first time it's used to
// round-trip a request, then proxies every request to an httptest server
// returning an empty news feed — reproducing scenario 4 ("cancellation
// mid-sync") without depending on wall-clock timing.
type cancelOnFirstRequest struct {
	reg       *Registry
	jobID     string
	base      *url.URL
	cancelled bool
}

func (c *cancelOnFirstRequest) RoundTrip(req *http.Request) (*http.Response, error) {
	if !c.cancelled {
		c.cancelled = true
		c.reg.Cancel(c.jobID)
	}
	req.URL.Scheme = c.base.Scheme
	req.URL.Host = c.base.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestNewsSync_CancellationMidSync(t *testing.T) {
	repo := openTestJobsRepo(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"appnews":{"newsitems":[]}}`))
	}))
	defer server.Close()
	base, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}

	ids := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		id, _, err := repo.UpsertGame(ctx, store.GameUpsert{
			Store: "steam", StoreID: string(rune('a' + i)), Name: "Game",
		})
		if err != nil {
			t.Fatalf("UpsertGame: %v", err)
		}
		if err := repo.SetSteamAppIDOverride(ctx, id, int64Ptr(int64(100+i))); err != nil {
			t.Fatalf("SetSteamAppIDOverride: %v", err)
		}
		ids = append(ids, id)
	}

	registry := NewRegistry(ratelimit.NewRegistry())
	jobID := "job-cancel"
	client := &http.Client{Transport: &cancelOnFirstRequest{reg: registry, jobID: jobID, base: base}}

	body := NewsSync(registry, repo, client, 10)
	_, err = body(ctx, jobID, false, func(n, total int, message string) {})
	if err == nil {
		t.Fatal("expected NewsSync to return an error after mid-sync cancellation")
	}

	var touched int
	for _, id := range ids {
		g, err := repo.GetGame(ctx, id)
		if err != nil {
			t.Fatalf("GetGame: %v", err)
		}
		if g.NewsLastChecked.Valid {
			touched++
		}
	}
	if touched == 0 || touched == len(ids) {
		t.Fatalf("expected a strict subset of games touched before cancellation, got %d/%d", touched, len(ids))
	}
}

func int64Ptr(i int64) *int64 { return &i }
