package store

import (
	"database/sql"
	"time"
)

// Re-export so callers can check store.ErrNoRows without importing
// database/sql directly — same convenience the teacher's db.ErrNoRows
// provided.
var ErrNoRows = sql.ErrNoRows

// ProtonDBTier is the closed set from spec §3.
type ProtonDBTier string

const (
	TierPlatinum ProtonDBTier = "platinum"
	TierGold     ProtonDBTier = "gold"
	TierSilver   ProtonDBTier = "silver"
	TierBronze   ProtonDBTier = "bronze"
	TierBorked   ProtonDBTier = "borked"
	TierPending  ProtonDBTier = "pending"
	TierUnknown  ProtonDBTier = "unknown"
)

// DevelopmentStatus is the closed set from spec §3.
type DevelopmentStatus string

const (
	StatusEarlyAccess DevelopmentStatus = "early_access"
	StatusReleased    DevelopmentStatus = "released"
)

// Manifest discriminator tags reused as update-history row kinds
// (spec §3 Update History / Glossary "Depot / manifest").
const (
	ManifestInitialVersion = "initial_version"
	ManifestVersionUpdate  = "version_update"
	ManifestEARelease      = "ea_release"
)

// Job status values (spec §4.9).
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Label types (spec §3).
const (
	LabelCollection = "collection"
	LabelSystemTag  = "system_tag"
)

// Game is the full row shape of spec §3's Game + IGDB Binding +
// Rating Sources + Compatibility + Development Status entities — one
// physical row, several semantic groupings.
type Game struct {
	ID       int64
	Store    string
	StoreID  sql.NullString
	Name     string

	PlaytimeHours    sql.NullFloat64
	CoverURL         sql.NullString
	CoverURLOverride sql.NullString
	ReleaseDate      sql.NullString
	Genres           []string
	Developers       []string
	Publishers       []string
	ExtraData        sql.NullString

	AddedAt      time.Time
	UpdatedAt    time.Time
	LastModified sql.NullTime
	Hidden       bool
	NSFW         bool
	Priority     int
	PersonalRating sql.NullFloat64
	Streaming    bool

	IGDBID            sql.NullInt64
	IGDBSlug          sql.NullString
	IGDBRating        sql.NullFloat64
	IGDBRatingCount   sql.NullInt64
	AggregatedRating  sql.NullFloat64
	TotalRating       sql.NullFloat64
	TotalRatingCount  sql.NullInt64
	IGDBSummary       sql.NullString
	IGDBCoverURL      sql.NullString
	IGDBScreenshots   []string
	IGDBMatchedAt     sql.NullTime
	SteamAppID        sql.NullInt64

	CriticsScore        sql.NullFloat64
	MetacriticScore     sql.NullFloat64
	MetacriticUserScore sql.NullFloat64
	MetacriticSlug      sql.NullString
	AverageRating       sql.NullFloat64

	ProtonDBTier          sql.NullString
	ProtonDBScore         sql.NullFloat64
	ProtonDBConfidence    sql.NullString
	ProtonDBTotal         sql.NullInt64
	ProtonDBTrendingTier  sql.NullString
	ProtonDBMatchedAt     sql.NullTime

	DevelopmentStatus sql.NullString
	GameVersion       sql.NullString
	StatusLastSynced  sql.NullTime

	NewsLastChecked sql.NullTime
}

// GameDepotUpdate is one immutable row in the update-history log.
type GameDepotUpdate struct {
	ID              int64
	GameID          int64
	DepotID         sql.NullInt64
	ManifestID      string
	UpdateTimestamp time.Time
	FetchedAt       time.Time
}

// NewsArticle mirrors the game_news table.
type NewsArticle struct {
	ID          int64
	GameID      int64
	Title       string
	Content     sql.NullString
	Author      sql.NullString
	URL         string
	PublishedAt sql.NullTime
	FetchedAt   time.Time
}

// Label mirrors the labels table.
type Label struct {
	ID        int64
	Name      string
	Type      string
	Icon      sql.NullString
	Color     sql.NullString
	System    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameLabel mirrors the game_labels join table.
type GameLabel struct {
	LabelID int64
	GameID  int64
	Auto    bool
	AddedAt time.Time
}

// Job mirrors the jobs table (spec §4.9).
type Job struct {
	ID          string
	Type        string
	Status      string
	Progress    int
	Total       int
	Message     sql.NullString
	Result      sql.NullString
	Error       sql.NullString
	Cancelled   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt sql.NullTime
}

// PopularityCacheEntry mirrors the popularity_cache table (Tier 2).
type PopularityCacheEntry struct {
	IGDBID          int64
	PopularityType  string
	PopularityValue float64
	CachedAt        time.Time
}
