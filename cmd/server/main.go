package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/config"
	"github.com/jwolfley/unilib/internal/igdb"
	"github.com/jwolfley/unilib/internal/jobs"
	"github.com/jwolfley/unilib/internal/metacritic"
	"github.com/jwolfley/unilib/internal/pics"
	"github.com/jwolfley/unilib/internal/popularity"
	"github.com/jwolfley/unilib/internal/protondb"
	"github.com/jwolfley/unilib/internal/ratelimit"
	"github.com/jwolfley/unilib/internal/settings"
	"github.com/jwolfley/unilib/internal/store"
	"github.com/jwolfley/unilib/internal/updatetracker"
	"github.com/jwolfley/unilib/internal/web"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	dbPath := config.DatabasePath()
	if dbPath == "" {
		dbPath = "data/unilib.db"
	}
	sqlDB, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Migrate(ctx, sqlDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	repo := store.NewRepo(sqlDB)
	sett := settings.NewRegistry(repo)
	limiters := ratelimit.NewRegistry()
	registry := jobs.NewRegistry(limiters)
	engine := jobs.NewEngine(repo, registry, logger)

	httpClient := &http.Client{Timeout: 20 * time.Second}

	var igdbClient *igdb.Client
	if id, secret := os.Getenv("IGDB_CLIENT_ID"), os.Getenv("IGDB_CLIENT_SECRET"); id != "" && secret != "" {
		igdbClient = igdb.NewClient(context.Background(), id, secret)
	}

	protonClient := protondb.NewClient()
	metaClient := metacritic.NewClient()

	var picsFactory *pics.Factory
	if enabled, _ := sett.Flag(ctx, "USE_STEAM_CLIENT"); enabled {
		picsFactory = pics.NewFactory(limiters)
	}

	fetchers := map[string]updatetracker.Fetcher{
		"steam": updatetracker.NewSteamFetcher(picsFactory),
		"epic":  &updatetracker.EpicFetcher{},
	}

	popCache := popularity.New(repo)

	bodies := jobs.Bodies{
		jobs.TypeNewsSync:   jobs.NewsSync(registry, repo, httpClient, 50),
		jobs.TypeStatusSync: jobs.StatusSync(registry, repo, httpClient),
	}
	if igdbClient != nil {
		bodies[jobs.TypeIGDBSync] = jobs.IGDBSync(registry, repo, igdbClient)
	}
	bodies[jobs.TypeMetacriticSync] = jobs.MetacriticSync(registry, repo, metaClient)
	bodies[jobs.TypeProtonDBSync] = jobs.ProtonDBSync(registry, repo, protonClient)
	bodies[jobs.TypeUpdateTracking] = jobs.UpdateTracking(registry, repo, logger, fetchers)
	bodies[jobs.TypeStoreSync] = jobs.StoreSync(registry, repo, logger, sett, igdbClient)
	bodies[jobs.TypeAutoTagResync] = jobs.AutoTagResync(registry, repo)

	if err := jobs.AutoResume(ctx, engine, repo, logger, bodies); err != nil {
		logger.Error().Err(err).Msg("auto-resume failed")
	}

	app := &web.Application{
		Repo:       repo,
		Engine:     engine,
		Registry:   registry,
		Bodies:     bodies,
		Popularity: popCache,
		IGDB:       igdbClient,
		Log:        logger,
	}
	server := web.NewServer(app)

	addr := fmt.Sprintf(":%d", config.Port())
	logger.Info().Str("addr", addr).Msg("starting unilib")
	if err := server.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
