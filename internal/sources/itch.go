package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwolfley/unilib/internal/apperr"
)

type itchOwnedKeysResp struct {
	OwnedKeys []struct {
		ID   int64 `json:"id"`
		Game struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			CoverURL    string `json:"cover_url"`
			Classification string `json:"classification"`
		} `json:"game"`
	} `json:"owned_keys"`
	Page      int `json:"page"`
	PerPage   int `json:"per_page"`
}

// FetchItch paginates itch.io's "my-games"-style owned-keys endpoint
// with a bearer API key until a short page signals exhaustion (spec
// §4.3: "authenticated HTTP ... pagination until exhausted").
func FetchItch(ctx context.Context, settings Settings) ([]RawGame, error) {
	apiKey, _ := settings.GetString(ctx, "itch_api_key", "")
	if apiKey == "" {
		return nil, apperr.New(apperr.NotConfigured, "itch.api_key", nil)
	}

	client := newHTTPClient()
	var out []RawGame
	page := 1
	for {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
			"https://api.itch.io/profile/owned-keys?"+q.Encode(), nil)
		req.Header.Set("Authorization", "Bearer "+apiKey)

		var resp itchOwnedKeysResp
		if err := doJSON(client, "itch.owned-keys", req, &resp); err != nil {
			return nil, err
		}
		if len(resp.OwnedKeys) == 0 {
			break
		}
		for _, k := range resp.OwnedKeys {
			rg := RawGame{
				Name:    k.Game.Title,
				Store:   "itch",
				StoreID: strconv.FormatInt(k.Game.ID, 10),
			}
			if k.Game.CoverURL != "" {
				rg.CoverImage = strPtr(k.Game.CoverURL)
			}
			out = append(out, rg)
		}
		if len(resp.OwnedKeys) < resp.PerPage {
			break
		}
		page++
	}
	return out, nil
}
