// Package igdb implements the IGDB Matcher/Enricher (spec §4.5): a
// client over IGDB's Apicalypse query API, authenticated via Twitch
// OAuth2 client credentials, plus the title-matching algorithm.
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/jwolfley/unilib/internal/apperr"
)

const (
	baseURL        = "https://api.igdb.com/v4"
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"
	coverImageBase = "https://images.igdb.com/igdb/image/upload/t_cover_big/"
	shotImageBase  = "https://images.igdb.com/igdb/image/upload/t_screenshot_big/"
)

// Game is the subset of IGDB's game fields the Matcher/Enricher needs.
type Game struct {
	ID                int64
	Name              string
	Slug              string
	Rating            float64
	RatingCount       int64
	AggregatedRating  float64
	TotalRating       float64
	TotalRatingCount  int64
	Summary           string
	CoverURL          string
	Screenshots       []string
	Genres            []string
	Themes            []string
	FirstReleaseDate  time.Time
	SteamAppID        *int64
	AdultContent      bool
}

// Client talks to IGDB using a Twitch client-credentials token from
// golang.org/x/oauth2/clientcredentials. ccTokenSource builds a fresh
// TokenSource on every Token call, so each query requests a new token
// from Twitch; tokens are not cached between queries.
type Client struct {
	httpClient *http.Client
	tokenSrc   interface{ Token() (*tokenValue, error) }
	clientID   string
}

type tokenValue struct {
	AccessToken string
}

// ccTokenSource adapts clientcredentials.Config.TokenSource to the
// minimal Token() shape this package consumes, keeping the oauth2
// package's *oauth2.Token type out of our public surface.
type ccTokenSource struct {
	cfg *clientcredentials.Config
	ctx context.Context
}

func (s ccTokenSource) Token() (*tokenValue, error) {
	t, err := s.cfg.TokenSource(s.ctx).Token()
	if err != nil {
		return nil, err
	}
	return &tokenValue{AccessToken: t.AccessToken}, nil
}

// NewClient builds an IGDB client from a Twitch application's
// client id/secret.
func NewClient(ctx context.Context, clientID, clientSecret string) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     twitchTokenURL,
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokenSrc:   ccTokenSource{cfg: cfg, ctx: ctx},
		clientID:   clientID,
	}
}

type rawGame struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Summary          string  `json:"summary"`
	Rating           float64 `json:"rating"`
	RatingCount      int64   `json:"rating_count"`
	AggregatedRating float64 `json:"aggregated_rating"`
	TotalRating      float64 `json:"total_rating"`
	TotalRatingCount int64   `json:"total_rating_count"`
	FirstReleaseDate int64   `json:"first_release_date"`
	Cover            *struct {
		ImageID string `json:"image_id"`
	} `json:"cover"`
	Screenshots []struct {
		ImageID string `json:"image_id"`
	} `json:"screenshots"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Themes []struct {
		Name string `json:"name"`
	} `json:"themes"`
	ExternalGames []struct {
		Category uint8  `json:"category"`
		UID      string `json:"uid"`
	} `json:"external_games"`
}

// igdbExternalGameCategorySteam is IGDB's external_games.category value
// for Steam cross-references.
const igdbExternalGameCategorySteam = 1

const gameFields = `fields id,name,slug,summary,rating,rating_count,aggregated_rating,
total_rating,total_rating_count,first_release_date,
cover.image_id,screenshots.image_id,genres.name,themes.name,
external_games.category,external_games.uid;`

// SearchByName runs an Apicalypse search query and returns up to
// limit candidates.
func (c *Client) SearchByName(ctx context.Context, name string, limit int) ([]Game, error) {
	query := fmt.Sprintf("%s\nsearch \"%s\";\nlimit %d;", gameFields, escapeString(name), limit)
	return c.query(ctx, query)
}

// ExactByName returns up to 10 games whose name contains name
// (case-insensitive), optionally within ±1 year of a release year;
// the match algorithm applies the exact-name check itself (§4.5).
func (c *Client) ExactByName(ctx context.Context, name string, year int) ([]Game, error) {
	where := fmt.Sprintf(`where name ~ *"%s"*;`, escapeString(name))
	if year > 0 {
		from := time.Date(year-1, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
		to := time.Date(year+1, 12, 31, 0, 0, 0, 0, time.UTC).Unix()
		where = fmt.Sprintf(`where name ~ *"%s"* & first_release_date >= %d & first_release_date <= %d;`,
			escapeString(name), from, to)
	}
	query := fmt.Sprintf("%s\n%s\nlimit 10;", gameFields, where)
	return c.query(ctx, query)
}

// ByID fetches a single game by IGDB id (user-initiated binding mode,
// §4.5).
func (c *Client) ByID(ctx context.Context, id int64) (*Game, error) {
	query := fmt.Sprintf("%s\nwhere id = %d;\nlimit 1;", gameFields, id)
	games, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, apperr.New(apperr.NotFound, "igdb.ByID", fmt.Errorf("no game with id %d", id))
	}
	return &games[0], nil
}

func (c *Client) query(ctx context.Context, apicalypse string) ([]Game, error) {
	token, err := c.tokenSrc.Token()
	if err != nil {
		return nil, apperr.New(apperr.AuthExpired, "igdb.token", err)
	}

	raws, err := c.post(ctx, token.AccessToken, apicalypse)
	if err != nil && apperr.KindOf(err) == apperr.AuthExpired {
		// One automatic refresh on 401, per spec §4.5.
		token, tokErr := c.tokenSrc.Token()
		if tokErr != nil {
			return nil, apperr.New(apperr.AuthExpired, "igdb.token.refresh", tokErr)
		}
		raws, err = c.post(ctx, token.AccessToken, apicalypse)
	}
	if err != nil {
		return nil, err
	}

	out := make([]Game, 0, len(raws))
	for _, g := range raws {
		out = append(out, convertGame(g))
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, token, query string) ([]rawGame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/games", bytes.NewBufferString(query))
	if err != nil {
		return nil, apperr.New(apperr.Fatal, "igdb.post.build", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "igdb.post", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperr.New(apperr.AuthExpired, "igdb.post", fmt.Errorf("http 401"))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.New(apperr.RateLimited, "igdb.post", fmt.Errorf("http 429"))
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.TransientNetwork, "igdb.post", fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.New(apperr.Unknown, "igdb.post", fmt.Errorf("http %d: %s", resp.StatusCode, body))
	}

	var raws []rawGame
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, apperr.New(apperr.Parse, "igdb.post.decode", err)
	}
	return raws, nil
}

func convertGame(g rawGame) Game {
	out := Game{
		ID:               g.ID,
		Name:             g.Name,
		Slug:             g.Slug,
		Summary:          g.Summary,
		Rating:           g.Rating,
		RatingCount:      g.RatingCount,
		AggregatedRating: g.AggregatedRating,
		TotalRating:      g.TotalRating,
		TotalRatingCount: g.TotalRatingCount,
	}
	if g.FirstReleaseDate > 0 {
		out.FirstReleaseDate = time.Unix(g.FirstReleaseDate, 0).UTC()
	}
	if g.Cover != nil && g.Cover.ImageID != "" {
		out.CoverURL = coverImageBase + g.Cover.ImageID + ".jpg"
	}
	for i, s := range g.Screenshots {
		if i >= 5 {
			break // §4.5: first 5 screenshots only
		}
		out.Screenshots = append(out.Screenshots, shotImageBase+s.ImageID+".jpg")
	}
	for _, gn := range g.Genres {
		out.Genres = append(out.Genres, gn.Name)
	}
	for _, t := range g.Themes {
		out.Themes = append(out.Themes, t.Name)
		if strings.EqualFold(t.Name, "Adult") || strings.EqualFold(t.Name, "Erotic") {
			out.AdultContent = true
		}
	}
	for _, ext := range g.ExternalGames {
		if ext.Category == igdbExternalGameCategorySteam {
			var appID int64
			if _, err := fmt.Sscanf(ext.UID, "%d", &appID); err == nil {
				out.SteamAppID = &appID
			}
		}
	}
	return out
}

func escapeString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
