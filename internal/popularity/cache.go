// Package popularity implements the two-tier Popularity Cache (spec
// §4.11): an in-memory Tier 1 (internal/popularity/tier1.go) fronting
// the database-backed Tier 2 (internal/store's popularity_cache table).
package popularity

import (
	"context"
	"time"

	"github.com/jwolfley/unilib/internal/store"
)

// tier2TTL bounds how fresh a Tier-2 row must be to count as a hit
// (§4.11: "entries live ≤ 24 hours").
const tier2TTL = 24 * time.Hour

// igdbPopularityTypeIDs maps the human-facing popularity_type names
// the UI filters by to IGDB's numeric popularity_type ids.
var igdbPopularityTypeIDs = map[string]int{
	"visits":       1,
	"want_to_play": 2,
	"playing":      3,
	"played":       4,
	"most_popular": 5,
}

// Cache orchestrates the read path: Tier 1 -> Tier 2 -> IGDB.
type Cache struct {
	repo  store.Repo
	tier1 *tier1
}

func New(repo store.Repo) *Cache {
	return &Cache{repo: repo, tier1: newTier1()}
}

// Fetch is called only on a Tier-2 miss to pull missing categories
// from IGDB in one batch (§4.11 step 4). Taking it as a plain function
// lets callers pass internal/igdb.Client.FetchPopularity without this
// package importing internal/igdb.
type Fetch func(ctx context.Context, igdbIDs []int64, popType int) (map[int64]float64, error)

// Get returns popularity values of popType for igdbIDs, following the
// Tier1 -> Tier2 -> IGDB read path in §4.11.
func (c *Cache) Get(ctx context.Context, popType string, igdbIDs []int64, fetch Fetch) (map[int64]float64, error) {
	fp := Fingerprint(popType, igdbIDs)
	if hit, ok := c.tier1.get(fp); ok {
		return hit, nil
	}

	typeID, known := igdbPopularityTypeIDs[popType]
	if !known {
		return nil, nil
	}

	values, complete, err := c.repo.GetPopularity(ctx, igdbIDs, popType, time.Now().Add(-tier2TTL))
	if err != nil {
		return nil, err
	}
	if complete {
		c.tier1.put(fp, values)
		return values, nil
	}

	fetched, err := fetch(ctx, igdbIDs, typeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]store.PopularityCacheEntry, 0, len(fetched))
	for id, v := range fetched {
		entries = append(entries, store.PopularityCacheEntry{
			IGDBID:          id,
			PopularityType:  popType,
			PopularityValue: v,
			CachedAt:        now,
		})
	}
	if len(entries) > 0 {
		if err := c.repo.UpsertPopularity(ctx, entries); err != nil {
			return nil, err
		}
	}

	c.tier1.put(fp, fetched)
	return fetched, nil
}
