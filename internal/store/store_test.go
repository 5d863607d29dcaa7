package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openTestRepo gives every test its own on-disk SQLite file (modernc.org/sqlite
// over an in-memory DSN drops state between connections from the pool, so a
// tempfile is the faithful stand-in for the production single-writer file).
func openTestRepo(t *testing.T) Repo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unilib.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewRepo(db)
}

func mustUpsert(t *testing.T, repo Repo, g GameUpsert) int64 {
	t.Helper()
	id, _, err := repo.UpsertGame(context.Background(), g)
	if err != nil {
		t.Fatalf("UpsertGame: %v", err)
	}
	return id
}

// TestCascadeDeleteRemovesDependents covers spec.md §8's quantified
// invariant that no game_depot_updates row outlives its game, generalized
// here to game_labels (the other FK with ON DELETE CASCADE).
func TestCascadeDeleteRemovesDependents(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id := mustUpsert(t, repo, GameUpsert{Store: "steam", StoreID: "620", Name: "Portal 2"})

	if err := repo.AppendDepotUpdate(ctx, id, nil, ManifestInitialVersion, time.Now().UTC(), time.Now().UTC()); err != nil {
		t.Fatalf("AppendDepotUpdate: %v", err)
	}
	labelID, err := repo.EnsureSystemLabel(ctx, "Played", "gamepad-2", "")
	if err != nil {
		t.Fatalf("EnsureSystemLabel: %v", err)
	}
	if err := repo.AddGameLabel(ctx, id, labelID, true); err != nil {
		t.Fatalf("AddGameLabel: %v", err)
	}

	updates, err := repo.ListDepotUpdates(ctx, id, 10)
	if err != nil || len(updates) != 1 {
		t.Fatalf("expected one depot update pre-delete, got %d (err %v)", len(updates), err)
	}
	labels, err := repo.ListLabelsForGame(ctx, id)
	if err != nil || len(labels) != 1 {
		t.Fatalf("expected one label pre-delete, got %d (err %v)", len(labels), err)
	}

	if err := repo.DeleteGame(ctx, id); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}

	if updates, err := repo.ListDepotUpdates(ctx, id, 10); err != nil || len(updates) != 0 {
		t.Fatalf("expected no orphan depot updates, got %d (err %v)", len(updates), err)
	}
	if labels, err := repo.ListLabelsForGame(ctx, id); err != nil || len(labels) != 0 {
		t.Fatalf("expected no orphan game_labels rows, got %d (err %v)", len(labels), err)
	}
}

// TestHiddenToggleIsNoOp covers the round-trip law: hidden=true then
// hidden=false must leave every other column untouched.
func TestHiddenToggleIsNoOp(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id := mustUpsert(t, repo, GameUpsert{
		Store: "steam", StoreID: "620", Name: "Portal 2",
		PlaytimeHours: floatPtrTest(8.0), Genres: []string{"Puzzle"},
	})
	before, err := repo.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	if err := repo.SetHidden(ctx, id, true); err != nil {
		t.Fatalf("SetHidden(true): %v", err)
	}
	if err := repo.SetHidden(ctx, id, false); err != nil {
		t.Fatalf("SetHidden(false): %v", err)
	}

	after, err := repo.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	if after.Hidden {
		t.Fatalf("expected hidden=false after toggle, got true")
	}
	if before.Name != after.Name || before.Store != after.Store ||
		before.PlaytimeHours != after.PlaytimeHours ||
		len(before.Genres) != len(after.Genres) {
		t.Fatalf("hidden toggle mutated unrelated columns: before=%+v after=%+v", before, after)
	}
}

// TestNewsReingestUpdatesWithoutDuplicate covers the round-trip law:
// re-ingesting the same news URL updates title/content/fetched_at without
// producing a duplicate row.
func TestNewsReingestUpdatesWithoutDuplicate(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id := mustUpsert(t, repo, GameUpsert{Store: "steam", StoreID: "620", Name: "Portal 2"})

	article := NewsArticle{
		GameID: id, Title: "Patch 1", URL: "https://store.example/news/1",
		FetchedAt: time.Now().UTC(),
	}
	if err := repo.UpsertNewsArticle(ctx, article); err != nil {
		t.Fatalf("UpsertNewsArticle (first): %v", err)
	}

	article.Title = "Patch 1 (updated)"
	article.FetchedAt = article.FetchedAt.Add(time.Hour)
	if err := repo.UpsertNewsArticle(ctx, article); err != nil {
		t.Fatalf("UpsertNewsArticle (re-ingest): %v", err)
	}

	var count int
	row := repo.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM game_news WHERE url = ?", article.URL)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count game_news: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row for a re-ingested URL, got %d", count)
	}

	var title string
	row = repo.DB().QueryRowContext(ctx, "SELECT title FROM game_news WHERE url = ?", article.URL)
	if err := row.Scan(&title); err != nil {
		t.Fatalf("read title: %v", err)
	}
	if title != "Patch 1 (updated)" {
		t.Fatalf("expected updated title, got %q", title)
	}
}

// TestIGDBRebindIsIdempotent covers the round-trip law: clearing an IGDB
// binding and re-binding to the same id yields the same column values as
// the first bind, modulo igdb_matched_at.
func TestIGDBRebindIsIdempotent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id := mustUpsert(t, repo, GameUpsert{Store: "steam", StoreID: "620", Name: "Portal 2"})

	enrichment := IGDBEnrichment{
		IGDBID: 1234, IGDBSlug: "portal-2",
		IGDBRating: floatPtrTest(90), IGDBSummary: "A puzzle game.",
		IGDBCoverURL: "https://images.example/cover.jpg",
		Genres:       []string{"Puzzle"},
		MatchedAt:    time.Now().UTC(),
	}
	if err := repo.BindIGDB(ctx, id, enrichment); err != nil {
		t.Fatalf("BindIGDB (first): %v", err)
	}
	first, err := repo.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	if err := repo.ClearIGDBBinding(ctx, id); err != nil {
		t.Fatalf("ClearIGDBBinding: %v", err)
	}

	enrichment.MatchedAt = enrichment.MatchedAt.Add(time.Minute)
	if err := repo.BindIGDB(ctx, id, enrichment); err != nil {
		t.Fatalf("BindIGDB (rebind): %v", err)
	}
	second, err := repo.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	if first.IGDBID != second.IGDBID || first.IGDBSlug != second.IGDBSlug ||
		first.IGDBRating != second.IGDBRating || first.IGDBSummary != second.IGDBSummary ||
		first.IGDBCoverURL != second.IGDBCoverURL {
		t.Fatalf("rebind changed a column other than igdb_matched_at: first=%+v second=%+v", first, second)
	}
	if !first.IGDBMatchedAt.Valid || !second.IGDBMatchedAt.Valid || !second.IGDBMatchedAt.Time.After(first.IGDBMatchedAt.Time) {
		t.Fatalf("expected igdb_matched_at to advance on rebind")
	}
}

// TestRecordObservedLastModifiedTransitions covers scenario 2 (version
// update detection): initial observation, a later timestamp producing an
// update row, and a repeated/earlier timestamp producing no new row.
func TestRecordObservedLastModifiedTransitions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id := mustUpsert(t, repo, GameUpsert{Store: "steam", StoreID: "620", Name: "Portal 2"})

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	transition, err := repo.RecordObservedLastModified(ctx, id, first)
	if err != nil {
		t.Fatalf("RecordObservedLastModified (initial): %v", err)
	}
	if transition != TransitionInitial {
		t.Fatalf("expected TransitionInitial, got %v", transition)
	}

	second := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	transition, err = repo.RecordObservedLastModified(ctx, id, second)
	if err != nil {
		t.Fatalf("RecordObservedLastModified (update): %v", err)
	}
	if transition != TransitionUpdate {
		t.Fatalf("expected TransitionUpdate, got %v", transition)
	}

	transition, err = repo.RecordObservedLastModified(ctx, id, second)
	if err != nil {
		t.Fatalf("RecordObservedLastModified (repeat): %v", err)
	}
	if transition != TransitionNone {
		t.Fatalf("expected TransitionNone on a repeated timestamp, got %v", transition)
	}

	updates, err := repo.ListDepotUpdates(ctx, id, 10)
	if err != nil {
		t.Fatalf("ListDepotUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected exactly 2 depot-update rows (initial + one update), got %d", len(updates))
	}
	if updates[0].ManifestID != ManifestVersionUpdate && updates[1].ManifestID != ManifestVersionUpdate {
		t.Fatalf("expected one row tagged %q, got %+v", ManifestVersionUpdate, updates)
	}
}

// TestCrossStoreGrouping covers scenario 3: two rows sharing an igdb_id
// are retrievable as a group via ListGamesMatching.
func TestCrossStoreGrouping(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	steamID := mustUpsert(t, repo, GameUpsert{Store: "steam", StoreID: "100", Name: "Some Game"})
	gogID := mustUpsert(t, repo, GameUpsert{Store: "gog", StoreID: "abc", Name: "Some Game"})

	if err := repo.BindIGDB(ctx, steamID, IGDBEnrichment{IGDBID: 42, MatchedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("BindIGDB steam: %v", err)
	}
	if err := repo.BindIGDB(ctx, gogID, IGDBEnrichment{IGDBID: 42, IGDBCoverURL: "https://images.example/cover.jpg", MatchedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("BindIGDB gog: %v", err)
	}

	rows, err := repo.ListGamesMatching(ctx, "igdb_id = 42")
	if err != nil {
		t.Fatalf("ListGamesMatching: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows sharing igdb_id=42, got %d", len(rows))
	}
}

// TestJobLifecycleProgressAndCancel covers the quantified invariant that
// progress never exceeds total, and that a failed+cancelled job records
// the §4.9 cancellation message shape.
func TestJobLifecycleProgressAndCancel(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateJob(ctx, "job-1", "news_sync"); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := repo.UpdateJobProgress(ctx, "job-1", 30, 100, "running"); err != nil {
		t.Fatalf("UpdateJobProgress: %v", err)
	}

	job, err := repo.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Progress > job.Total {
		t.Fatalf("progress %d exceeds total %d", job.Progress, job.Total)
	}
	if job.Status != JobRunning {
		t.Fatalf("expected status=running, got %s", job.Status)
	}

	if err := repo.FailJob(ctx, "job-1", "Cancelled by user", true); err != nil {
		t.Fatalf("FailJob: %v", err)
	}
	job, err = repo.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != JobFailed || !job.Cancelled || !job.Error.Valid || job.Error.String != "Cancelled by user" {
		t.Fatalf("expected failed+cancelled job with cancellation message, got %+v", job)
	}
}

// TestPopularityCacheRoundTrip covers scenario 6's Tier-2 half: a cold
// Tier 2 read is a declared miss, and a warmed Tier 2 returns every
// requested id only once every id is present.
func TestPopularityCacheRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, hit, err := repo.GetPopularity(ctx, []int64{100}, "most_popular", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetPopularity (cold): %v", err)
	}
	if hit {
		t.Fatalf("expected a cold Tier 2 to report a miss")
	}

	if err := repo.UpsertPopularity(ctx, []PopularityCacheEntry{
		{IGDBID: 100, PopularityType: "most_popular", PopularityValue: 95, CachedAt: time.Now().UTC()},
	}); err != nil {
		t.Fatalf("UpsertPopularity: %v", err)
	}

	values, hit, err := repo.GetPopularity(ctx, []int64{100}, "most_popular", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetPopularity (warm): %v", err)
	}
	if !hit || values[100] != 95 {
		t.Fatalf("expected a warm hit with value 95, got hit=%v values=%v", hit, values)
	}

	_, hit, err = repo.GetPopularity(ctx, []int64{100}, "most_popular", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetPopularity (stale floor): %v", err)
	}
	if hit {
		t.Fatalf("expected a minCachedAt in the future to force a miss")
	}
}

func floatPtrTest(f float64) *float64 { return &f }
