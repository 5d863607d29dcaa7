package query

import (
	"context"
	"testing"
)

type fakeCountsRepo struct {
	lastSQL string
	counts  map[string]int
}

func (f *fakeCountsRepo) CountGamesMatching(ctx context.Context, selectSQL string) (map[string]int, error) {
	f.lastSQL = selectSQL
	return f.counts, nil
}

func TestFilterCounts_ExcludesActiveFromCandidates(t *testing.T) {
	repo := &fakeCountsRepo{counts: map[string]int{"f_well_played": 3}}
	active := []Filter{Registry["unplayed"]}
	candidates := []Filter{Registry["unplayed"], Registry["well-played"]}

	got, err := FilterCounts(context.Background(), repo, active, candidates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["f_well_played"] != 3 {
		t.Fatalf("want 3, got %v", got)
	}
	if repo.lastSQL == "" {
		t.Fatal("expected a SQL statement to be built")
	}
}

func TestFilterCounts_NoCandidatesSkipsQuery(t *testing.T) {
	repo := &fakeCountsRepo{}
	got, err := FilterCounts(context.Background(), repo, []Filter{Registry["unplayed"]}, []Filter{Registry["unplayed"]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty map, got %v", got)
	}
	if repo.lastSQL != "" {
		t.Fatal("expected no query when every candidate is already active")
	}
}
