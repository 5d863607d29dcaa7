package igdb

import (
	"context"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// MinSimilarityScore is the fuzzy-match floor for priority (c) in
// spec §4.5's prioritized lookup.
const MinSimilarityScore = 0.80

// yearProximityYears bounds "close release year" for priority (a):
// within one calendar year of the observed release date, matching
// the ±1 year window ExactByName already applies server-side.
const yearProximityYears = 1

var jaroWinkler = metrics.NewJaroWinkler()

func similarity(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), jaroWinkler)
}

// Match runs the three-tier prioritized lookup of spec §4.5: exact
// normalized name + close release year, then exact normalized name,
// then the top fuzzy candidate above MinSimilarityScore. First tier to
// produce any candidate wins; ties within a tier are broken by higher
// TotalRatingCount.
func (c *Client) Match(ctx context.Context, title string, releaseYear int) (*Game, error) {
	normTitle := NormalizeTitle(title)

	if releaseYear > 0 {
		candidates, err := c.ExactByName(ctx, title, releaseYear)
		if err != nil {
			return nil, err
		}
		if best := bestExact(candidates, normTitle); best != nil {
			return best, nil
		}
	}

	candidates, err := c.ExactByName(ctx, title, 0)
	if err != nil {
		return nil, err
	}
	if best := bestExact(candidates, normTitle); best != nil {
		return best, nil
	}

	search, err := c.SearchByName(ctx, title, 25)
	if err != nil {
		return nil, err
	}
	return bestFuzzy(search, normTitle), nil
}

// bestExact returns the candidate whose normalized name exactly
// matches normTitle, picking the highest TotalRatingCount among ties.
func bestExact(candidates []Game, normTitle string) *Game {
	var best *Game
	for i := range candidates {
		g := &candidates[i]
		if NormalizeTitle(g.Name) != normTitle {
			continue
		}
		if best == nil || g.TotalRatingCount > best.TotalRatingCount {
			best = g
		}
	}
	return best
}

// bestFuzzy returns the highest-similarity candidate at or above
// MinSimilarityScore, breaking ties by TotalRatingCount.
func bestFuzzy(candidates []Game, normTitle string) *Game {
	var best *Game
	var bestScore float64
	for i := range candidates {
		g := &candidates[i]
		score := similarity(normTitle, NormalizeTitle(g.Name))
		if score < MinSimilarityScore {
			continue
		}
		switch {
		case best == nil || score > bestScore:
			best, bestScore = g, score
		case score == bestScore && g.TotalRatingCount > best.TotalRatingCount:
			best = g
		}
	}
	return best
}
