// Package autotag implements the Auto-Tag Engine (spec §4.10): a pure
// bucket function plus the Repo calls needed to keep one system label
// per Steam game in sync with its playtime. The actual diff between
// "should have" and "has" happens inside store.ReplaceAutoSystemLabel's
// single DELETE+INSERT, generalizing the teacher's
// db.DiffSnapshotAchievements map-based set comparison to a
// single-label case.
package autotag

import (
	"context"

	"github.com/jwolfley/unilib/internal/store"
)

// Bucket names the closed set of system labels, in ascending playtime
// order. The upper edge of each range is exclusive, so 2.0h lands in
// Played, not Just Tried (§4.10).
type Bucket string

const (
	BucketNeverLaunched Bucket = "Never Launched"
	BucketJustTried     Bucket = "Just Tried"
	BucketPlayed        Bucket = "Played"
	BucketWellPlayed    Bucket = "Well Played"
	BucketHeavilyPlayed Bucket = "Heavily Played"
)

var bucketIcons = map[Bucket]string{
	BucketNeverLaunched: "circle-slash",
	BucketJustTried:     "footprints",
	BucketPlayed:        "gamepad-2",
	BucketWellPlayed:    "trophy",
	BucketHeavilyPlayed: "flame",
}

// BucketFor classifies a playtime-hours value into its system label.
func BucketFor(hours float64) Bucket {
	switch {
	case hours <= 0:
		return BucketNeverLaunched
	case hours < 2:
		return BucketJustTried
	case hours < 10:
		return BucketPlayed
	case hours < 50:
		return BucketWellPlayed
	default:
		return BucketHeavilyPlayed
	}
}

// Apply computes and persists the correct system label for one game.
// Non-Steam games, or Steam games with no recorded playtime, get their
// auto labels cleared instead — "applies only to Steam games with
// non-null playtime" (§4.10).
func Apply(ctx context.Context, repo store.Repo, g store.Game) error {
	if g.Store != "steam" || !g.PlaytimeHours.Valid {
		return repo.DeleteAutoSystemLabels(ctx, g.ID)
	}

	bucket := BucketFor(g.PlaytimeHours.Float64)
	labelID, err := repo.EnsureSystemLabel(ctx, string(bucket), bucketIcons[bucket], "")
	if err != nil {
		return err
	}
	return repo.ReplaceAutoSystemLabel(ctx, g.ID, labelID)
}

// ApplyAll re-evaluates every Steam game, for the bulk "as a bulk job"
// path (§4.10) — invoked on demand via the jobs.AutoTagResync job
// body, rather than waiting for the next playtime-changing store sync
// batch to touch a game individually through Apply.
func ApplyAll(ctx context.Context, repo store.Repo) (applied, cleared int, err error) {
	games, err := repo.ListGamesByStore(ctx, "steam")
	if err != nil {
		return 0, 0, err
	}
	for _, g := range games {
		if !g.PlaytimeHours.Valid {
			if err := repo.DeleteAutoSystemLabels(ctx, g.ID); err != nil {
				return applied, cleared, err
			}
			cleared++
			continue
		}
		if err := Apply(ctx, repo, g); err != nil {
			return applied, cleared, err
		}
		applied++
	}
	return applied, cleared, nil
}
