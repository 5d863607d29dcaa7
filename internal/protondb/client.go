// Package protondb fetches Linux/Steam Deck compatibility tiers from
// ProtonDB's public summaries endpoint (spec §4.6, Compatibility
// entity in §3), grounded on the teacher's steamapi.Client shape — one
// tuned http.Client plus a doJSON helper.
package protondb

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				IdleConnTimeout:       30 * time.Second,
				MaxIdleConns:          100,
				MaxConnsPerHost:       10,
			},
		},
	}
}

type summaryResp struct {
	Tier          string  `json:"tier"`
	Score         float64 `json:"score"`
	Confidence    string  `json:"confidence"`
	Total         int64   `json:"total"`
	TrendingTier  string  `json:"trendingTier"`
}

// FetchSummary fetches the compatibility summary for a Steam AppID. A
// 404 is not an error — spec §4.6/§3 records tier="unknown" for it —
// so the returned store.ProtonDBUpdate carries TierUnknown rather than
// the caller receiving an error to branch on.
func (c *Client) FetchSummary(ctx context.Context, appID int64) (store.ProtonDBUpdate, error) {
	u := fmt.Sprintf("https://www.protondb.com/api/v1/reports/summaries/%s.json", strconv.FormatInt(appID, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return store.ProtonDBUpdate{}, apperr.New(apperr.Fatal, "protondb.build", err)
	}

	var raw summaryResp
	if err := c.doJSON(req, &raw); err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return store.ProtonDBUpdate{Tier: store.TierUnknown, MatchedAt: time.Now().UTC()}, nil
		}
		return store.ProtonDBUpdate{}, err
	}

	tier := store.ProtonDBTier(raw.Tier)
	switch tier {
	case store.TierPlatinum, store.TierGold, store.TierSilver, store.TierBronze, store.TierBorked, store.TierPending:
	default:
		tier = store.TierUnknown
	}

	update := store.ProtonDBUpdate{Tier: tier, MatchedAt: time.Now().UTC()}
	if raw.Score != 0 {
		update.Score = &raw.Score
	}
	if raw.Confidence != "" {
		update.Confidence = &raw.Confidence
	}
	if raw.Total != 0 {
		update.Total = &raw.Total
	}
	if raw.TrendingTier != "" {
		update.TrendingTier = &raw.TrendingTier
	}
	return update, nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.New(apperr.TransientNetwork, "protondb.do", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.NotFound, "protondb.do", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperr.New(apperr.RateLimited, "protondb.do", nil)
	case resp.StatusCode >= 500:
		return apperr.New(apperr.TransientNetwork, "protondb.do", fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperr.New(apperr.Unknown, "protondb.do", fmt.Errorf("http %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperr.New(apperr.Parse, "protondb.decode", err)
	}
	return nil
}
