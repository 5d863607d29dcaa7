package igdb

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

// MatchAndBind runs matching mode for game, writing the IGDB binding
// through repo on a hit. Returns apperr.NotFound if no tier produced a
// candidate — callers treat this as "leave unmatched, try again later"
// rather than a hard failure.
func (c *Client) MatchAndBind(ctx context.Context, repo store.Repo, game store.Game) error {
	year := 0
	if game.ReleaseDate.Valid {
		year = parseYear(game.ReleaseDate.String)
	}
	match, err := c.Match(ctx, game.Name, year)
	if err != nil {
		return err
	}
	if match == nil {
		return apperr.New(apperr.NotFound, "igdb.match", nil)
	}
	return c.bind(ctx, repo, game, *match)
}

// BindByID runs binding mode (spec §4.5: "user-supplied IGDB id").
func (c *Client) BindByID(ctx context.Context, repo store.Repo, game store.Game, igdbID int64) error {
	g, err := c.ByID(ctx, igdbID)
	if err != nil {
		return err
	}
	return c.bind(ctx, repo, game, *g)
}

func (c *Client) bind(ctx context.Context, repo store.Repo, game store.Game, g Game) error {
	genres := unionGenres(game.Genres, g.Genres, g.Themes)

	enrichment := store.IGDBEnrichment{
		IGDBID:           g.ID,
		IGDBSlug:         g.Slug,
		IGDBRating:       nonZeroFloat(g.Rating),
		IGDBRatingCount:  nonZeroInt(g.RatingCount),
		AggregatedRating: nonZeroFloat(g.AggregatedRating),
		TotalRating:      nonZeroFloat(g.TotalRating),
		TotalRatingCount: nonZeroInt(g.TotalRatingCount),
		IGDBSummary:      g.Summary,
		IGDBCoverURL:     g.CoverURL,
		IGDBScreenshots:  g.Screenshots,
		Genres:           genres,
		NSFW:             g.AdultContent,
		SteamAppID:       g.SteamAppID,
		MatchedAt:        time.Now().UTC(),
	}
	return repo.BindIGDB(ctx, game.ID, enrichment)
}

// ClearBinding implements spec §4.5's "Clearing the binding
// (user-initiated): all IGDB-derived columns are set to NULL."
func (c *Client) ClearBinding(ctx context.Context, repo store.Repo, gameID int64) error {
	return repo.ClearIGDBBinding(ctx, gameID)
}

// unionGenres computes spec §4.5's "union of existing local genres
// with the IGDB (genres ∪ themes), deduplicated case-insensitively,
// preserving first-seen order."
func unionGenres(local []string, sets ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}
	for _, g := range local {
		add(g)
	}
	for _, set := range sets {
		for _, g := range set {
			add(g)
		}
	}
	return out
}

func nonZeroFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func nonZeroInt(i int64) *int64 {
	if i == 0 {
		return nil
	}
	return &i
}

func parseYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return y
}
