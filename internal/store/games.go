package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (r *sqliteRepo) GetGame(ctx context.Context, id int64) (*Game, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+gameColumns+" FROM games WHERE id = ?", id)
	return scanGame(row)
}

func (r *sqliteRepo) GetGameByStoreID(ctx context.Context, store, storeID string) (*Game, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+gameColumns+" FROM games WHERE store = ? AND store_id = ?", store, storeID)
	return scanGame(row)
}

// UpsertGame implements spec §4.4 step 1: store-owned columns are
// always overwritten; every column omitted from this statement
// (hidden, nsfw, cover_url_override, priority, personal_rating, IGDB
// binding, ...) is left untouched by SQLite's UPDATE semantics —
// exactly the teacher's ON CONFLICT DO UPDATE SET pattern, just with a
// wider excluded-column set.
func (r *sqliteRepo) UpsertGame(ctx context.Context, g GameUpsert) (int64, bool, error) {
	now := time.Now().UTC()

	existing, err := r.GetGameByStoreID(ctx, g.Store, g.StoreID)
	if err != nil && err != ErrNoRows {
		return 0, false, err
	}
	isNew := existing == nil

	const q = `
INSERT INTO games(store, store_id, name, playtime_hours, cover_url, release_date,
  genres, developers, publishers, extra_data, streaming, added_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(store, store_id) DO UPDATE SET
  name           = excluded.name,
  playtime_hours = excluded.playtime_hours,
  cover_url      = excluded.cover_url,
  release_date   = excluded.release_date,
  genres         = excluded.genres,
  developers     = excluded.developers,
  publishers     = excluded.publishers,
  extra_data     = excluded.extra_data,
  streaming      = excluded.streaming,
  updated_at     = excluded.updated_at;`

	_, err = r.db.ExecContext(ctx, q,
		g.Store, g.StoreID, g.Name, nullFloat(g.PlaytimeHours), nullString(g.CoverURL), nullString(g.ReleaseDate),
		encodeList(g.Genres), encodeList(g.Developers), encodeList(g.Publishers), nullString(g.ExtraData),
		boolToInt(g.Streaming), now, now)
	if err != nil {
		return 0, false, err
	}

	row, err := r.GetGameByStoreID(ctx, g.Store, g.StoreID)
	if err != nil {
		return 0, false, err
	}
	return row.ID, isNew, nil
}

func (r *sqliteRepo) DeleteGame(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	return err
}

// CountGamesMatching executes selectSQL (built by internal/query,
// always of the shape "SELECT COUNT(CASE WHEN ...) AS f_x, ... FROM
// games") and returns one count per result column, keyed by column
// name.
func (r *sqliteRepo) CountGamesMatching(ctx context.Context, selectSQL string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		return map[string]int{}, rows.Err()
	}

	vals := make([]int, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(cols))
	for i, c := range cols {
		out[c] = vals[i]
	}
	return out, nil
}

func (r *sqliteRepo) ListAllGames(ctx context.Context) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games")
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

// ListGamesMatching runs the games query with a caller-built WHERE
// clause, used by internal/query's discover path once filters compose
// to more than "1=1".
func (r *sqliteRepo) ListGamesMatching(ctx context.Context, whereSQL string) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games WHERE "+whereSQL)
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) ListGamesByStore(ctx context.Context, store string) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games WHERE store = ?", store)
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) ListGamesLackingIGDB(ctx context.Context) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games WHERE igdb_id IS NULL")
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) ListGamesWithSteamAppID(ctx context.Context) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games WHERE steam_app_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) ListGamesWithMetacriticSlug(ctx context.Context) ([]Game, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+gameColumns+" FROM games WHERE metacritic_slug IS NOT NULL AND metacritic_slug != ''")
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]Game, error) {
	defer rows.Close()
	var out []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *sqliteRepo) SetHidden(ctx context.Context, gameID int64, hidden bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET hidden = ?, updated_at = ? WHERE id = ?", boolToInt(hidden), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetNSFW(ctx context.Context, gameID int64, nsfw bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET nsfw = ?, updated_at = ? WHERE id = ?", boolToInt(nsfw), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetCoverOverride(ctx context.Context, gameID int64, url *string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET cover_url_override = ?, updated_at = ? WHERE id = ?", nullString(url), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetMetacriticSlug(ctx context.Context, gameID int64, slug *string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET metacritic_slug = ?, updated_at = ? WHERE id = ?", nullString(slug), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetSteamAppIDOverride(ctx context.Context, gameID int64, appID *int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET steam_app_id = ?, updated_at = ? WHERE id = ?", nullInt(appID), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetPriority(ctx context.Context, gameID int64, priority int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET priority = ?, updated_at = ? WHERE id = ?", priority, time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetPersonalRating(ctx context.Context, gameID int64, rating *float64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET personal_rating = ?, updated_at = ? WHERE id = ?", nullFloat(rating), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) BulkSetHidden(ctx context.Context, ids []int64, hidden bool) error {
	return r.bulkUpdate(ctx, ids, "UPDATE games SET hidden = ?, updated_at = ? WHERE id IN (%s)", boolToInt(hidden))
}

func (r *sqliteRepo) BulkSetNSFW(ctx context.Context, ids []int64, nsfw bool) error {
	return r.bulkUpdate(ctx, ids, "UPDATE games SET nsfw = ?, updated_at = ? WHERE id IN (%s)", boolToInt(nsfw))
}

func (r *sqliteRepo) bulkUpdate(ctx context.Context, ids []int64, tmpl string, value any) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders, args := inClause(ids)
	args = append([]any{value, time.Now().UTC()}, args...)
	q := fmt.Sprintf(tmpl, placeholders)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *sqliteRepo) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders, args := inClause(ids)
	_, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM games WHERE id IN (%s)", placeholders), args...)
	return err
}

func inClause(ids []int64) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}

func (r *sqliteRepo) BindIGDB(ctx context.Context, gameID int64, e IGDBEnrichment) error {
	const q = `
UPDATE games SET
  igdb_id = ?, igdb_slug = ?, igdb_rating = ?, igdb_rating_count = ?,
  aggregated_rating = ?, total_rating = ?, total_rating_count = ?,
  igdb_summary = ?, igdb_cover_url = ?, igdb_screenshots = ?, igdb_matched_at = ?,
  nsfw = CASE WHEN ? THEN 1 ELSE nsfw END,
  steam_app_id = COALESCE(?, steam_app_id),
  genres = ?,
  updated_at = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q,
		e.IGDBID, e.IGDBSlug, nullFloat(e.IGDBRating), nullInt(e.IGDBRatingCount),
		nullFloat(e.AggregatedRating), nullFloat(e.TotalRating), nullInt(e.TotalRatingCount),
		e.IGDBSummary, e.IGDBCoverURL, encodeList(e.IGDBScreenshots), e.MatchedAt,
		boolToInt(e.NSFW), nullInt(e.SteamAppID),
		encodeList(e.Genres),
		time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) ClearIGDBBinding(ctx context.Context, gameID int64) error {
	const q = `
UPDATE games SET
  igdb_id = NULL, igdb_slug = NULL, igdb_rating = NULL, igdb_rating_count = NULL,
  aggregated_rating = NULL, total_rating = NULL, total_rating_count = NULL,
  igdb_summary = NULL, igdb_cover_url = NULL, igdb_screenshots = '[]', igdb_matched_at = NULL,
  updated_at = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetRatingSources(ctx context.Context, gameID int64, critics, metaCritic, metaUser *float64) error {
	const q = `UPDATE games SET critics_score = ?, metacritic_score = ?, metacritic_user_score = ?, updated_at = ? WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, nullFloat(critics), nullFloat(metaCritic), nullFloat(metaUser), time.Now().UTC(), gameID)
	return err
}

func (r *sqliteRepo) SetAverageRating(ctx context.Context, gameID int64, avg *float64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET average_rating = ? WHERE id = ?", nullFloat(avg), gameID)
	return err
}

func (r *sqliteRepo) SetProtonDBData(ctx context.Context, gameID int64, u ProtonDBUpdate) error {
	const q = `
UPDATE games SET
  protondb_tier = ?, protondb_score = ?, protondb_confidence = ?,
  protondb_total = ?, protondb_trending_tier = ?, protondb_matched_at = ?,
  updated_at = ?
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q,
		string(u.Tier), nullFloat(u.Score), nullString(u.Confidence),
		nullInt(u.Total), nullString(u.TrendingTier), u.MatchedAt,
		time.Now().UTC(), gameID)
	return err
}

// RecordObservedLastModified implements the three-row transition
// table of spec §4.7 atomically: the read, the compare and both writes
// run inside one explicit transaction on the sole writer connection.
func (r *sqliteRepo) RecordObservedLastModified(ctx context.Context, gameID int64, observed time.Time) (LastModifiedTransition, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return TransitionNone, err
	}
	defer tx.Rollback()

	var prior sql.NullTime
	if err := tx.QueryRowContext(ctx, "SELECT last_modified FROM games WHERE id = ?", gameID).Scan(&prior); err != nil {
		return TransitionNone, err
	}

	now := time.Now().UTC()
	var transition LastModifiedTransition
	switch {
	case !prior.Valid:
		transition = TransitionInitial
	case observed.After(prior.Time):
		transition = TransitionUpdate
	default:
		transition = TransitionNone
	}

	if transition == TransitionNone {
		return TransitionNone, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, "UPDATE games SET last_modified = ?, updated_at = ? WHERE id = ?", observed, now, gameID); err != nil {
		return TransitionNone, err
	}

	manifestID := ManifestVersionUpdate
	if transition == TransitionInitial {
		manifestID = ManifestInitialVersion
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO game_depot_updates(game_id, manifest_id, update_timestamp, fetched_at) VALUES(?, ?, ?, ?)",
		gameID, manifestID, observed, now); err != nil {
		return TransitionNone, err
	}

	return transition, tx.Commit()
}

func (r *sqliteRepo) RecordDevelopmentStatus(ctx context.Context, gameID int64, status DevelopmentStatus, version *string, syncedAt time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var prior sql.NullString
	if err := tx.QueryRowContext(ctx, "SELECT development_status FROM games WHERE id = ?", gameID).Scan(&prior); err != nil {
		return false, err
	}

	isEAToReleased := prior.Valid && DevelopmentStatus(prior.String) == StatusEarlyAccess && status == StatusReleased

	if _, err := tx.ExecContext(ctx,
		"UPDATE games SET development_status = ?, game_version = COALESCE(?, game_version), status_last_synced = ? WHERE id = ?",
		string(status), nullString(version), syncedAt, gameID); err != nil {
		return false, err
	}

	if isEAToReleased {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO game_depot_updates(game_id, manifest_id, update_timestamp, fetched_at) VALUES(?, ?, ?, ?)",
			gameID, ManifestEARelease, syncedAt, syncedAt); err != nil {
			return false, err
		}
	}

	return isEAToReleased, tx.Commit()
}

func (r *sqliteRepo) TouchNewsLastChecked(ctx context.Context, gameID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE games SET news_last_checked = ? WHERE id = ?", at, gameID)
	return err
}

func (r *sqliteRepo) ListGamesNeedingNewsSync(ctx context.Context, before time.Time, force bool) ([]Game, error) {
	q := "SELECT " + gameColumns + " FROM games WHERE store = 'steam'"
	args := []any{}
	if !force {
		q += " AND (news_last_checked IS NULL OR news_last_checked < ?)"
		args = append(args, before)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) ListGamesNeedingStatusSync(ctx context.Context, before time.Time, force bool) ([]Game, error) {
	q := "SELECT " + gameColumns + " FROM games WHERE store IN ('steam', 'epic', 'gog')"
	args := []any{}
	if !force {
		q += " AND (status_last_synced IS NULL OR status_last_synced < ?)"
		args = append(args, before)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanGames(rows)
}

func (r *sqliteRepo) UpsertNewsArticle(ctx context.Context, a NewsArticle) error {
	const q = `
INSERT INTO game_news(game_id, title, content, author, url, published_at, fetched_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
  title      = excluded.title,
  content    = excluded.content,
  fetched_at = excluded.fetched_at;`
	_, err := r.db.ExecContext(ctx, q, a.GameID, a.Title, a.Content, a.Author, a.URL, a.PublishedAt, a.FetchedAt)
	return err
}

func (r *sqliteRepo) AppendDepotUpdate(ctx context.Context, gameID int64, depotID *int64, manifestID string, updateTimestamp, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO game_depot_updates(game_id, depot_id, manifest_id, update_timestamp, fetched_at) VALUES(?, ?, ?, ?, ?)",
		gameID, nullInt(depotID), manifestID, updateTimestamp, fetchedAt)
	return err
}

func (r *sqliteRepo) ListDepotUpdates(ctx context.Context, gameID int64, limit int) ([]GameDepotUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, game_id, depot_id, manifest_id, update_timestamp, fetched_at FROM game_depot_updates WHERE game_id = ? ORDER BY update_timestamp DESC LIMIT ?",
		gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GameDepotUpdate
	for rows.Next() {
		var u GameDepotUpdate
		if err := rows.Scan(&u.ID, &u.GameID, &u.DepotID, &u.ManifestID, &u.UpdateTimestamp, &u.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
