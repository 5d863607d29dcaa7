package jobs

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/autotag"
	"github.com/jwolfley/unilib/internal/igdb"
	"github.com/jwolfley/unilib/internal/importer"
	"github.com/jwolfley/unilib/internal/rating"
	"github.com/jwolfley/unilib/internal/sources"
	"github.com/jwolfley/unilib/internal/store"
)

// storeAdapters lists every storefront the Store Sync job drives
// through the uniform sources.Adapter signature. Steam is wired in
// separately by StoreSync since FetchSteam additionally needs the
// shared rate limiter registry.
var storeAdapters = map[string]sources.Adapter{
	"epic":      sources.FetchEpic,
	"gog":       sources.FetchGOG,
	"itch":      sources.FetchItch,
	"humble":    sources.FetchHumble,
	"battlenet": sources.FetchBattlenet,
	"amazon":    sources.FetchAmazon,
	"ea":        sources.FetchEA,
}

// StoreSync implements spec §4.9's store-sync job body: run every
// Source Adapter in turn and hand each batch to the Catalog Importer,
// then drive the rest of spec.md:37's control-flow chain (Source
// Adapters → Catalog Importer → IGDB Matcher → Rating Aggregator →
// Auto-Tag Engine) for whatever each batch touched. One store's
// failure never aborts the others, mirroring the per-record isolation
// importer.Import already gives within a batch. igdbClient is nil
// when IGDB credentials aren't configured — games needing a match are
// then left for the periodic IGDBSync job to pick up instead.
func StoreSync(reg *Registry, repo store.Repo, log zerolog.Logger, settings sources.Settings, igdbClient *igdb.Client) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		type storeResult struct {
			Imported    int    `json:"imported"`
			Updated     int    `json:"updated"`
			Skipped     int    `json:"skipped"`
			IGDBMatched int    `json:"igdb_matched,omitempty"`
			IGDBFailed  int    `json:"igdb_failed,omitempty"`
			IGDBQueued  int    `json:"igdb_queued,omitempty"`
			Error       string `json:"error,omitempty"`
		}
		results := make(map[string]storeResult, len(storeAdapters)+1)

		finish := func(name string, res importer.Result) storeResult {
			sr := storeResult{Imported: res.Imported, Updated: res.Updated, Skipped: res.Skipped}
			if igdbClient != nil {
				sr.IGDBMatched, sr.IGDBFailed = matchNewGames(ctx, reg, repo, log, igdbClient, res.NeedsIGDB)
			} else {
				sr.IGDBQueued = len(res.NeedsIGDB)
			}
			return sr
		}

		run := func(name string, fetch sources.Adapter) {
			games, err := fetch(ctx, settings)
			if err != nil {
				log.Error().Err(err).Str("store", name).Msg("store sync fetch failed")
				results[name] = storeResult{Error: err.Error()}
				return
			}
			res := importer.Import(ctx, repo, log, name, games)
			results[name] = finish(name, res)
		}

		names := make([]string, 0, len(storeAdapters)+1)
		names = append(names, "steam")
		for name := range storeAdapters {
			names = append(names, name)
		}

		for i, name := range names {
			if reg.IsCancelled(jobID) {
				return "", CancelledErr()
			}

			if name == "steam" {
				games, err := sources.FetchSteam(ctx, settings, reg.Limiters)
				if err != nil {
					log.Error().Err(err).Str("store", "steam").Msg("store sync fetch failed")
					results["steam"] = storeResult{Error: err.Error()}
				} else {
					res := importer.Import(ctx, repo, log, "steam", games)
					sr := finish("steam", res)
					applyAutoTags(ctx, repo, log, res.PlaytimeChanged)
					results["steam"] = sr
				}
			} else {
				run(name, storeAdapters[name])
			}
			progress(i+1, len(names), name)
		}

		result, _ := json.Marshal(results)
		return string(result), nil
	}
}

// matchNewGames attempts an immediate IGDB match for games the
// Importer just flagged as needing one (spec.md:37's control-flow
// chain), sharing the same rate-limit gap as the periodic IGDBSync job
// so the two never double up on IGDB's request budget. A game that
// fails here (rate limit, not found, transient error) is left with a
// null igdb_id and is picked up again by the next IGDBSync run.
func matchNewGames(ctx context.Context, reg *Registry, repo store.Repo, log zerolog.Logger, client *igdb.Client, ids []int64) (matched, failed int) {
	gap := reg.Limiters.Gap("igdb_sync.gap", igdbSyncMinGap)
	for _, id := range ids {
		g, err := repo.GetGame(ctx, id)
		if err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("igdb match lookup failed")
			failed++
			continue
		}
		if err := gap.Wait(ctx); err != nil {
			failed++
			continue
		}
		if err := client.MatchAndBind(ctx, repo, *g); err != nil {
			if apperr.KindOf(err) != apperr.NotFound {
				log.Error().Err(err).Int64("game_id", id).Msg("igdb match failed")
			}
			failed++
			continue
		}
		matched++
		if updated, err := repo.GetGame(ctx, id); err == nil {
			_ = rating.Recompute(ctx, repo, *updated)
		}
	}
	return matched, failed
}

// applyAutoTags re-evaluates the Auto-Tag Engine for every game whose
// playtime_hours changed this batch — the last stage of the §4.4
// control flow (Source Adapters → Importer → IGDB Matcher → Rating
// Aggregator → Auto-Tag Engine).
func applyAutoTags(ctx context.Context, repo store.Repo, log zerolog.Logger, gameIDs []int64) {
	for _, id := range gameIDs {
		g, err := repo.GetGame(ctx, id)
		if err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("auto-tag lookup failed")
			continue
		}
		if err := autotag.Apply(ctx, repo, *g); err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("auto-tag apply failed")
		}
	}
}
