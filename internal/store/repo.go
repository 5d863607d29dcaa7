package store

import (
	"context"
	"database/sql"
	"time"
)

// GameUpsert carries the store-owned fields an importer writes on
// ingest (spec §4.4 step 1) — user-owned fields are never part of this
// shape, so there is no way to accidentally clobber them.
type GameUpsert struct {
	Store         string
	StoreID       string
	Name          string
	PlaytimeHours *float64
	CoverURL      *string
	ReleaseDate   *string
	Genres        []string
	Developers    []string
	Publishers    []string
	ExtraData     *string
	Streaming     bool
}

// IGDBEnrichment carries the fields the Matcher/Enricher writes (spec
// §4.5).
type IGDBEnrichment struct {
	IGDBID           int64
	IGDBSlug         string
	IGDBRating       *float64
	IGDBRatingCount  *int64
	AggregatedRating *float64
	TotalRating      *float64
	TotalRatingCount *int64
	IGDBSummary      string
	IGDBCoverURL     string
	IGDBScreenshots  []string
	Genres           []string
	NSFW             bool
	SteamAppID       *int64
	MatchedAt        time.Time
}

// ProtonDBUpdate carries the fields the ProtonDB sync job writes.
type ProtonDBUpdate struct {
	Tier         ProtonDBTier
	Score        *float64
	Confidence   *string
	Total        *int64
	TrendingTier *string
	MatchedAt    time.Time
}

// LastModifiedTransition reports what RecordObservedLastModified did.
type LastModifiedTransition string

const (
	TransitionNone    LastModifiedTransition = "none"
	TransitionInitial LastModifiedTransition = "initial"
	TransitionUpdate  LastModifiedTransition = "update"
)

// Repo is the single persistence boundary; every other package
// depends on this interface, never on *sql.DB directly, following the
// teacher's db.Repo shape.
type Repo interface {
	DB() *sql.DB

	// Games
	GetGame(ctx context.Context, id int64) (*Game, error)
	GetGameByStoreID(ctx context.Context, store, storeID string) (*Game, error)
	UpsertGame(ctx context.Context, g GameUpsert) (id int64, isNew bool, err error)
	DeleteGame(ctx context.Context, id int64) error
	ListAllGames(ctx context.Context) ([]Game, error)
	ListGamesMatching(ctx context.Context, whereSQL string) ([]Game, error)
	ListGamesByStore(ctx context.Context, store string) ([]Game, error)
	// CountGamesMatching runs a caller-built SELECT of COUNT(CASE WHEN
	// ...) columns over the games table for internal/query's
	// filter-count aggregation (§4.12 point 3).
	CountGamesMatching(ctx context.Context, selectSQL string) (map[string]int, error)
	ListGamesLackingIGDB(ctx context.Context) ([]Game, error)
	ListGamesWithSteamAppID(ctx context.Context) ([]Game, error)
	ListGamesWithMetacriticSlug(ctx context.Context) ([]Game, error)

	SetHidden(ctx context.Context, gameID int64, hidden bool) error
	SetNSFW(ctx context.Context, gameID int64, nsfw bool) error
	SetCoverOverride(ctx context.Context, gameID int64, url *string) error
	SetMetacriticSlug(ctx context.Context, gameID int64, slug *string) error
	SetSteamAppIDOverride(ctx context.Context, gameID int64, appID *int64) error
	SetPriority(ctx context.Context, gameID int64, priority int) error
	SetPersonalRating(ctx context.Context, gameID int64, rating *float64) error

	BulkSetHidden(ctx context.Context, ids []int64, hidden bool) error
	BulkSetNSFW(ctx context.Context, ids []int64, nsfw bool) error
	BulkDelete(ctx context.Context, ids []int64) error

	BindIGDB(ctx context.Context, gameID int64, e IGDBEnrichment) error
	ClearIGDBBinding(ctx context.Context, gameID int64) error

	SetRatingSources(ctx context.Context, gameID int64, critics, metaCritic, metaUser *float64) error
	SetAverageRating(ctx context.Context, gameID int64, avg *float64) error
	SetProtonDBData(ctx context.Context, gameID int64, u ProtonDBUpdate) error

	RecordObservedLastModified(ctx context.Context, gameID int64, observed time.Time) (LastModifiedTransition, error)
	RecordDevelopmentStatus(ctx context.Context, gameID int64, status DevelopmentStatus, version *string, syncedAt time.Time) (changed bool, err error)

	TouchNewsLastChecked(ctx context.Context, gameID int64, at time.Time) error
	ListGamesNeedingNewsSync(ctx context.Context, before time.Time, force bool) ([]Game, error)
	ListGamesNeedingStatusSync(ctx context.Context, before time.Time, force bool) ([]Game, error)
	UpsertNewsArticle(ctx context.Context, a NewsArticle) error

	// Update history
	AppendDepotUpdate(ctx context.Context, gameID int64, depotID *int64, manifestID string, updateTimestamp, fetchedAt time.Time) error
	ListDepotUpdates(ctx context.Context, gameID int64, limit int) ([]GameDepotUpdate, error)

	// Labels
	EnsureSystemLabel(ctx context.Context, name, icon, color string) (int64, error)
	GetLabelByNameType(ctx context.Context, name, typ string) (*Label, error)
	CreateLabel(ctx context.Context, name, typ string, icon, color *string) (int64, error)
	DeleteLabel(ctx context.Context, id int64) error
	ListLabels(ctx context.Context) ([]Label, error)
	ListLabelsForGame(ctx context.Context, gameID int64) ([]Label, error)
	AddGameLabel(ctx context.Context, gameID, labelID int64, auto bool) error
	RemoveGameLabel(ctx context.Context, gameID, labelID int64) error
	ReplaceAutoSystemLabel(ctx context.Context, gameID, labelID int64) error
	DeleteAutoSystemLabels(ctx context.Context, gameID int64) error

	// Jobs
	CreateJob(ctx context.Context, id, jobType string) error
	GetJob(ctx context.Context, id string) (*Job, error)
	UpdateJobProgress(ctx context.Context, id string, progress, total int, message string) error
	CompleteJob(ctx context.Context, id string, result *string) error
	FailJob(ctx context.Context, id string, errMsg string, cancelled bool) error
	ListJobsByStatus(ctx context.Context, statuses ...string) ([]Job, error)
	DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error)

	// Popularity cache tier 2
	GetPopularity(ctx context.Context, igdbIDs []int64, popType string, minCachedAt time.Time) (map[int64]float64, bool, error)
	UpsertPopularity(ctx context.Context, entries []PopularityCacheEntry) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}
