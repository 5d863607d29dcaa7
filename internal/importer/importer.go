// Package importer implements the Catalog Importer (spec §4.4): it
// consumes a sequence of sources.RawGame records for one store and
// upserts them into the canonical games table.
package importer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/sources"
	"github.com/jwolfley/unilib/internal/store"
)

// Result accumulates what happened during one import batch, grounded
// on the teacher's RefreshStats shape (a plain counter struct returned
// from the worker-pool pass).
type Result struct {
	Imported       int
	Updated        int
	Skipped        int
	NeedsIGDB      []int64 // game ids lacking igdb_id after this batch
	PlaytimeChanged []int64 // game ids whose playtime_hours changed, for Auto-Tag
}

// amazonPromoSuffixes is the deterministic filter applied at query
// time, not insert time, per spec §4.4 "Duplicate policy within a
// single ingest" — these variants are still ingested so they
// round-trip; only display-time dedup skips them (see internal/query).
var amazonPromoSuffixes = []string{" (Prime Gaming)", " (Luna)"}

// IsKnownPromoVariant reports whether name carries one of the
// synthetic suffixes storefronts attach to promotional duplicates.
func IsKnownPromoVariant(name string) bool {
	for _, suf := range amazonPromoSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

// Import upserts one store's batch of RawGames. Each record is its
// own transaction at the Repo layer (UpsertGame), so a single
// record's parse failure never rolls back records already written —
// exactly spec §4.4's failure semantics.
func Import(ctx context.Context, repo store.Repo, log zerolog.Logger, storeName string, games []sources.RawGame) Result {
	var res Result

	for _, g := range games {
		if g.Name == "" || g.StoreID == "" {
			log.Warn().Str("store", storeName).Msg("skipping record with missing name or store_id")
			res.Skipped++
			continue
		}

		prior, err := repo.GetGameByStoreID(ctx, storeName, g.StoreID)
		if err != nil && err != store.ErrNoRows {
			log.Error().Err(err).Str("store_id", g.StoreID).Msg("lookup before upsert failed")
			res.Skipped++
			continue
		}
		priorPlaytime := playtimeOf(prior)

		upsert := store.GameUpsert{
			Store:         storeName,
			StoreID:       g.StoreID,
			Name:          g.Name,
			PlaytimeHours: g.PlaytimeHours,
			CoverURL:      g.CoverImage,
			ReleaseDate:   g.ReleaseDate,
			Developers:    g.Developers,
			Publishers:    g.Publishers,
			ExtraData:     g.ExtraData,
			Streaming:     g.Streaming,
		}

		id, isNew, err := repo.UpsertGame(ctx, upsert)
		if err != nil {
			log.Error().Err(err).Str("store_id", g.StoreID).Msg("upsert failed")
			res.Skipped++
			continue
		}

		if isNew {
			res.Imported++
			res.NeedsIGDB = append(res.NeedsIGDB, id)
		} else {
			res.Updated++
		}

		if g.LastModified != nil {
			transition, err := repo.RecordObservedLastModified(ctx, id, *g.LastModified)
			if err != nil {
				log.Error().Err(err).Int64("game_id", id).Msg("record last_modified failed")
			} else if transition == store.TransitionInitial {
				log.Debug().Int64("game_id", id).Msg("initial last_modified recorded")
			}
		}

		if prior != nil && prior.IGDBID.Valid {
			// user-owned/IGDB binding is preserved by UpsertGame's
			// column-excluded UPDATE; nothing further to do here.
		} else if !isNew {
			res.NeedsIGDB = append(res.NeedsIGDB, id)
		}

		newPlaytime := floatOrZero(g.PlaytimeHours)
		if storeName == "steam" && (isNew || priorPlaytime != newPlaytime) {
			res.PlaytimeChanged = append(res.PlaytimeChanged, id)
		}
	}

	log.Info().
		Str("store", storeName).
		Int("imported", res.Imported).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Msg("import batch complete")

	return res
}

func playtimeOf(g *store.Game) float64 {
	if g == nil || !g.PlaytimeHours.Valid {
		return 0
	}
	return g.PlaytimeHours.Float64
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
