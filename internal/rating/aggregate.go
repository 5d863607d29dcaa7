// Package rating implements the Rating Aggregator (spec §4.6): a pure
// mean-of-present-fields function, plus the orchestration that invokes
// it after every IGDB/Metacritic/user-rating mutation; sync.go calls
// the clients of the two external rating sources (internal/metacritic,
// internal/protondb), which live in their own packages.
package rating

import (
	"context"
	"database/sql"

	"github.com/jwolfley/unilib/internal/store"
)

// Average computes spec §4.6's average_rating: the arithmetic mean of
// whichever of critics, igdbRating, aggregatedRating, totalRating,
// metaScore, metaUserScore are non-nil. Returns nil if none are
// present.
func Average(critics, igdbRating, aggregatedRating, totalRating, metaScore, metaUserScore *float64) *float64 {
	var sum float64
	var n int
	for _, v := range []*float64{critics, igdbRating, aggregatedRating, totalRating, metaScore, metaUserScore} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// Recompute re-runs Average against game's currently stored fields and
// persists the result — the "Invoked after every IGDB, Metacritic, or
// user-rating mutation on a row" call spec §4.6 requires.
func Recompute(ctx context.Context, repo store.Repo, game store.Game) error {
	avg := Average(
		nullFloatPtr(game.CriticsScore),
		nullFloatPtr(game.IGDBRating),
		nullFloatPtr(game.AggregatedRating),
		nullFloatPtr(game.TotalRating),
		nullFloatPtr(game.MetacriticScore),
		nullFloatPtr(game.MetacriticUserScore),
	)
	return repo.SetAverageRating(ctx, game.ID, avg)
}

func nullFloatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
