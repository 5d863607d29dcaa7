// Package updatetracker implements the Update Tracker (spec §4.7): for
// each game with a known store identifier, fetches current store
// metadata and feeds it through internal/store's transition-table
// methods (RecordObservedLastModified, RecordDevelopmentStatus).
// Grounded on the teacher's service/refresh.go "fetch, compare,
// upsert" control flow and RefreshStats accumulator shape.
package updatetracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

// Observation is what a per-store fetcher reports back about one game.
type Observation struct {
	LastModified      *time.Time
	DevelopmentStatus *store.DevelopmentStatus
	GameVersion       *string
}

// Fetcher observes current store metadata for one game. Returning
// apperr.NotConfigured signals a declared known hole (Epic, per
// spec §4.7) rather than a failure.
type Fetcher interface {
	Observe(ctx context.Context, game store.Game) (Observation, error)
}

// Stats mirrors the teacher's RefreshStats accumulator shape,
// generalized to the Tracker's own transition outcomes.
type Stats struct {
	Checked        int
	InitialWrites  int
	VersionUpdates int
	EAReleases     int
	Unchanged      int
	NoData         int
	Failed         int
}

// Run fetches and applies observations for every game, per store,
// using the matching Fetcher from fetchers (keyed by store.Store's
// store name). A missing Fetcher entry is treated as NoData.
func Run(ctx context.Context, repo store.Repo, log zerolog.Logger, games []store.Game, fetchers map[string]Fetcher) Stats {
	var stats Stats

	for _, g := range games {
		fetcher, ok := fetchers[g.Store]
		if !ok {
			stats.NoData++
			continue
		}

		obs, err := fetcher.Observe(ctx, g)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotConfigured {
				stats.NoData++
				continue
			}
			log.Error().Err(err).Str("store", g.Store).Int64("game_id", g.ID).Msg("update tracker observe failed")
			stats.Failed++
			continue
		}
		stats.Checked++

		if obs.LastModified != nil {
			transition, err := repo.RecordObservedLastModified(ctx, g.ID, *obs.LastModified)
			if err != nil {
				log.Error().Err(err).Int64("game_id", g.ID).Msg("record last_modified failed")
				stats.Failed++
			} else {
				switch transition {
				case store.TransitionInitial:
					stats.InitialWrites++
				case store.TransitionUpdate:
					stats.VersionUpdates++
				default:
					stats.Unchanged++
				}
			}
		}

		if obs.DevelopmentStatus != nil {
			changed, err := repo.RecordDevelopmentStatus(ctx, g.ID, *obs.DevelopmentStatus, obs.GameVersion, time.Now().UTC())
			if err != nil {
				log.Error().Err(err).Int64("game_id", g.ID).Msg("record development status failed")
				stats.Failed++
			} else if changed && *obs.DevelopmentStatus == store.StatusReleased {
				stats.EAReleases++
			}
		}
	}

	return stats
}
