package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/ratelimit"
)

// steamAPIKeySetting is the settings-table key holding the Steam Web
// API key. Unlike the teacher's steamapi.New, which read
// os.Getenv("STEAM_API_KEY"), no environment variable is consulted:
// credentials here live only in the §4.2 registry.
const steamAPIKeySetting = "steam_api_key"

type steamOwnedGamesResp struct {
	Response struct {
		Games []struct {
			AppID           int64  `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
			ImgIconURL      string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

type steamReviewsResp struct {
	QuerySummary struct {
		ReviewScoreDesc  string `json:"review_score_desc"`
		TotalPositive    int    `json:"total_positive"`
		TotalReviews     int    `json:"total_reviews"`
	} `json:"query_summary"`
}

// FetchSteam extends the teacher's GetOwnedGames with a rate-limited
// review-score enrichment pass (spec §4.3: ≥200ms between requests,
// shared limiter across workers, fall back to the no-review record on
// a single failed lookup).
func FetchSteam(ctx context.Context, settings Settings, limiters *ratelimit.Registry) ([]RawGame, error) {
	apiKey, steamID, err := steamCredentials(ctx, settings)
	if err != nil {
		return nil, err
	}

	client := newHTTPClient()
	u := "https://api.steampowered.com/IPlayerService/GetOwnedGames/v1/"
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("steamid", steamID)
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)

	var resp steamOwnedGamesResp
	if err := doJSON(client, "steam.GetOwnedGames", req, &resp); err != nil {
		return nil, err
	}

	gap := limiters.Gap("steam.reviews", 200*time.Millisecond)
	out := make([]RawGame, 0, len(resp.Response.Games))
	for _, g := range resp.Response.Games {
		hours := float64(g.PlaytimeForever) / 60.0
		rg := RawGame{
			Name:          g.Name,
			Store:         "steam",
			StoreID:       strconv.FormatInt(g.AppID, 10),
			PlaytimeHours: floatPtr(hours),
		}
		if g.ImgIconURL != "" {
			rg.CoverImage = strPtr("https://media.steampowered.com/steamcommunity/public/images/apps/" +
				strconv.FormatInt(g.AppID, 10) + "/" + g.ImgIconURL + ".jpg")
		}

		if err := gap.Wait(ctx); err == nil {
			if review := fetchSteamReview(ctx, client, g.AppID); review != nil {
				raw, _ := json.Marshal(review)
				rg.ExtraData = strPtr(string(raw))
			}
		}
		out = append(out, rg)
	}
	return out, nil
}

func fetchSteamReview(ctx context.Context, client *http.Client, appID int64) *steamReviewsResp {
	u := "https://store.steampowered.com/appreviews/" + strconv.FormatInt(appID, 10) + "?json=1"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	var resp steamReviewsResp
	if err := doJSON(client, "steam.appreviews", req, &resp); err != nil {
		// Partial review-fetch failure falls back to the no-review record.
		return nil
	}
	return &resp
}

func steamCredentials(ctx context.Context, settings Settings) (apiKey, steamID string, err error) {
	apiKey, _ = settings.GetString(ctx, steamAPIKeySetting, "")
	steamID, _ = settings.GetString(ctx, "steam_id", "")
	if apiKey == "" || steamID == "" {
		return "", "", apperr.New(apperr.NotConfigured, "steam.credentials", nil)
	}
	return apiKey, steamID, nil
}
