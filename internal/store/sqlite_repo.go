package store

import (
	"database/sql"
)

type sqliteRepo struct {
	db *sql.DB
}

// NewRepo wraps an already-open, already-migrated *sql.DB.
func NewRepo(db *sql.DB) Repo {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) DB() *sql.DB { return r.db }

const gameColumns = `
id, store, store_id, name, playtime_hours, cover_url, cover_url_override,
release_date, genres, developers, publishers, extra_data,
added_at, updated_at, last_modified, hidden, nsfw, priority, personal_rating, streaming,
igdb_id, igdb_slug, igdb_rating, igdb_rating_count, aggregated_rating, total_rating,
total_rating_count, igdb_summary, igdb_cover_url, igdb_screenshots, igdb_matched_at, steam_app_id,
critics_score, metacritic_score, metacritic_user_score, metacritic_slug, average_rating,
protondb_tier, protondb_score, protondb_confidence, protondb_total, protondb_trending_tier, protondb_matched_at,
development_status, game_version, status_last_synced, news_last_checked
`

func scanGame(row interface{ Scan(...any) error }) (*Game, error) {
	var g Game
	var genres, developers, publishers, screenshots string
	if err := row.Scan(
		&g.ID, &g.Store, &g.StoreID, &g.Name, &g.PlaytimeHours, &g.CoverURL, &g.CoverURLOverride,
		&g.ReleaseDate, &genres, &developers, &publishers, &g.ExtraData,
		&g.AddedAt, &g.UpdatedAt, &g.LastModified, &g.Hidden, &g.NSFW, &g.Priority, &g.PersonalRating, &g.Streaming,
		&g.IGDBID, &g.IGDBSlug, &g.IGDBRating, &g.IGDBRatingCount, &g.AggregatedRating, &g.TotalRating,
		&g.TotalRatingCount, &g.IGDBSummary, &g.IGDBCoverURL, &screenshots, &g.IGDBMatchedAt, &g.SteamAppID,
		&g.CriticsScore, &g.MetacriticScore, &g.MetacriticUserScore, &g.MetacriticSlug, &g.AverageRating,
		&g.ProtonDBTier, &g.ProtonDBScore, &g.ProtonDBConfidence, &g.ProtonDBTotal, &g.ProtonDBTrendingTier, &g.ProtonDBMatchedAt,
		&g.DevelopmentStatus, &g.GameVersion, &g.StatusLastSynced, &g.NewsLastChecked,
	); err != nil {
		return nil, err
	}
	g.Genres = decodeList(genres)
	g.Developers = decodeList(developers)
	g.Publishers = decodeList(publishers)
	g.IGDBScreenshots = decodeList(screenshots)
	return &g, nil
}
