package igdb

import "testing"

func TestBestExact_TieBreaksOnTotalRatingCount(t *testing.T) {
	candidates := []Game{
		{ID: 1, Name: "Control", TotalRatingCount: 100},
		{ID: 2, Name: "Control", TotalRatingCount: 500},
	}
	got := bestExact(candidates, NormalizeTitle("Control"))
	if got == nil || got.ID != 2 {
		t.Fatalf("bestExact = %+v, want id 2", got)
	}
}

func TestBestExact_NoMatch(t *testing.T) {
	candidates := []Game{{ID: 1, Name: "Control"}}
	if got := bestExact(candidates, NormalizeTitle("Returnal")); got != nil {
		t.Fatalf("bestExact = %+v, want nil", got)
	}
}

func TestBestFuzzy_AboveThresholdWins(t *testing.T) {
	candidates := []Game{
		{ID: 1, Name: "Counter-Strike", TotalRatingCount: 10},
		{ID: 2, Name: "Counter Strike 2", TotalRatingCount: 10},
	}
	got := bestFuzzy(candidates, NormalizeTitle("Counter-Strike 2"))
	if got == nil {
		t.Fatal("expected a fuzzy match above threshold")
	}
}

func TestBestFuzzy_BelowThresholdRejected(t *testing.T) {
	candidates := []Game{{ID: 1, Name: "Completely Unrelated Title", TotalRatingCount: 999}}
	if got := bestFuzzy(candidates, NormalizeTitle("Stardew Valley")); got != nil {
		t.Fatalf("bestFuzzy = %+v, want nil below MinSimilarityScore", got)
	}
}
