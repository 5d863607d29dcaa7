package sources

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

const (
	amazonEntitlementsURL = "https://gaming.amazon.com/api/distribution/entitlements"
	amazonTokensSetting   = "amazon_oauth_tokens"
	amazonDBPathSetting   = "amazon_db_path"
)

type amazonTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type amazonEntitlementsResp struct {
	Entitlements []struct {
		Product struct {
			ID        string `json:"id"`
			ASIN      string `json:"asin"`
			Title     string `json:"title"`
			Publisher string `json:"publisher"`
			Developer string `json:"developer"`
			IconURL   string `json:"iconUrl"`
		} `json:"product"`
		ChannelID string `json:"channelId"`
	} `json:"entitlements"`
	NextToken string `json:"nextToken"`
}

// AmazonPKCE holds the verifier/challenge pair for the device-code
// authorization flow (spec §4.3: "OAuth device-registration flow with
// PKCE"). Generated with google/uuid-seeded randomness for the
// verifier, matching the pack's broad reliance on google/uuid for
// state/nonce material rather than hand-rolled crypto/rand plumbing.
type AmazonPKCE struct {
	Verifier  string
	Challenge string
}

// NewAmazonPKCE generates a fresh verifier/challenge pair.
func NewAmazonPKCE() AmazonPKCE {
	verifier := uuid.NewString() + uuid.NewString()
	if len(verifier) > 43 {
		verifier = verifier[:43]
	}
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return AmazonPKCE{Verifier: verifier, Challenge: challenge}
}

// FetchAmazon merges the optional local installed-games database with
// the authenticated entitlements API, deduplicating by product id
// (spec §4.3).
func FetchAmazon(ctx context.Context, settings Settings) ([]RawGame, error) {
	seen := map[string]bool{}
	var out []RawGame

	if local, err := fetchAmazonLocalDB(ctx, settings); err == nil {
		for _, g := range local {
			if !seen[g.StoreID] {
				seen[g.StoreID] = true
				out = append(out, g)
			}
		}
	}

	api, err := fetchAmazonEntitlements(ctx, settings)
	if err != nil {
		if len(out) > 0 {
			return out, nil // local DB alone still satisfies the adapter contract
		}
		return nil, err
	}
	for _, g := range api {
		if !seen[g.StoreID] {
			seen[g.StoreID] = true
			out = append(out, g)
		}
	}

	if len(out) == 0 {
		return nil, apperr.New(apperr.NotConfigured, "amazon.fetch", nil)
	}
	return out, nil
}

func fetchAmazonLocalDB(ctx context.Context, settings Settings) ([]RawGame, error) {
	path, _ := settings.GetString(ctx, amazonDBPathSetting, "")
	if path == "" {
		return nil, apperr.New(apperr.NotConfigured, "amazon.local_db", nil)
	}

	db, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "amazon.local_db.open", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT Id, ProductTitle FROM DbSet`)
	if err != nil {
		return nil, apperr.New(apperr.Parse, "amazon.local_db.query", err)
	}
	defer rows.Close()

	var out []RawGame
	for rows.Next() {
		var id, title sql.NullString
		if err := rows.Scan(&id, &title); err != nil {
			continue
		}
		if !id.Valid || !title.Valid || title.String == "" {
			continue
		}
		out = append(out, RawGame{Name: title.String, Store: "amazon", StoreID: id.String})
	}
	return out, rows.Err()
}

func fetchAmazonEntitlements(ctx context.Context, settings Settings) ([]RawGame, error) {
	raw, _ := settings.GetString(ctx, amazonTokensSetting, "")
	if raw == "" {
		return nil, apperr.New(apperr.NotConfigured, "amazon.tokens", nil)
	}
	var tokens amazonTokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, apperr.New(apperr.Parse, "amazon.tokens.parse", err)
	}

	client := newHTTPClient()
	var out []RawGame
	nextToken := ""
	for {
		payload := map[string]any{
			"Operation":          "GetEntitlements",
			"clientId":           "Sonic",
			"syncPoint":          0,
			"maxResults":         500,
			"hardwareHash":       uuid.NewString(),
			"disableStateFilter": true,
		}
		if nextToken != "" {
			payload["nextToken"] = nextToken
		}
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, amazonEntitlementsURL, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-amzn-token", tokens.AccessToken)
		req.Header.Set("X-Amz-Target", "com.amazon.animusdistributionservice.entitlement.AnimusEntitlementsService.GetEntitlements")

		var resp amazonEntitlementsResp
		if err := doJSON(client, "amazon.entitlements", req, &resp); err != nil {
			if apperr.KindOf(err) == apperr.AuthExpired {
				return nil, err // returned as is; the stored tokens are not refreshed
			}
			return nil, err
		}

		for _, e := range resp.Entitlements {
			productID := firstNonEmpty(e.Product.ID, e.Product.ASIN)
			if e.Product.Title == "" || productID == "" {
				continue
			}
			rg := RawGame{
				Name:       e.Product.Title,
				Store:      "amazon",
				StoreID:    productID,
				Developers: nonEmpty(e.Product.Developer),
				Publishers: nonEmpty(e.Product.Publisher),
				Streaming:  e.ChannelID == "Luna",
			}
			if e.Product.IconURL != "" {
				rg.CoverImage = strPtr(e.Product.IconURL)
			}
			out = append(out, rg)
		}

		if resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}
	return out, nil
}

// SaveAmazonTokens persists the access/refresh pair as one JSON blob
// (spec §4.3), mirroring scripts/amazon.py's save_tokens.
func SaveAmazonTokens(ctx context.Context, settings Settings, accessToken, refreshToken string) error {
	raw, err := json.Marshal(amazonTokens{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("marshal amazon tokens: %w", err)
	}
	return settings.SetString(ctx, amazonTokensSetting, string(raw))
}
