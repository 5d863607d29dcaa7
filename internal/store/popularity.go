package store

import (
	"context"
	"time"
)

// GetPopularity is the Tier 2 read path (spec §4.11): returns a hit
// only when every requested id is present with a cached_at at or after
// minCachedAt — a partial hit is treated as a miss so the caller
// refetches the whole set rather than serving a stale/incomplete
// blend.
func (r *sqliteRepo) GetPopularity(ctx context.Context, igdbIDs []int64, popType string, minCachedAt time.Time) (map[int64]float64, bool, error) {
	if len(igdbIDs) == 0 {
		return map[int64]float64{}, true, nil
	}
	placeholders, args := inClause(igdbIDs)
	args = append(args, popType)
	rows, err := r.db.QueryContext(ctx,
		"SELECT igdb_id, popularity_value, cached_at FROM popularity_cache WHERE igdb_id IN ("+placeholders+") AND popularity_type = ?",
		args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := make(map[int64]float64, len(igdbIDs))
	for rows.Next() {
		var id int64
		var val float64
		var cachedAt time.Time
		if err := rows.Scan(&id, &val, &cachedAt); err != nil {
			return nil, false, err
		}
		if cachedAt.Before(minCachedAt) {
			continue
		}
		out[id] = val
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if len(out) != len(igdbIDs) {
		return nil, false, nil
	}
	return out, true, nil
}

func (r *sqliteRepo) UpsertPopularity(ctx context.Context, entries []PopularityCacheEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO popularity_cache(igdb_id, popularity_type, popularity_value, cached_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(igdb_id, popularity_type) DO UPDATE SET
  popularity_value = excluded.popularity_value,
  cached_at        = excluded.cached_at;`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.IGDBID, e.PopularityType, e.PopularityValue, e.CachedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
