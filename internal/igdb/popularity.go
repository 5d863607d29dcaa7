package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwolfley/unilib/internal/apperr"
)

// PopularityValue is one (igdb_id, value) pair for a single popularity
// type, as returned by IGDB's popularity_primitives endpoint (§4.11).
type PopularityValue struct {
	GameID int64
	Value  float64
}

type rawPopularity struct {
	GameID int64   `json:"game_id"`
	Value  float64 `json:"value"`
}

// FetchPopularity queries popularity_primitives for the given IGDB ids
// and popularity type, used by internal/popularity to refill Tier 2 on
// a cache miss. popType is IGDB's numeric popularity_type id, passed
// through verbatim since the registry that maps human names to ids
// lives in internal/popularity.
func (c *Client) FetchPopularity(ctx context.Context, igdbIDs []int64, popType int) ([]PopularityValue, error) {
	if len(igdbIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(igdbIDs))
	for i, id := range igdbIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	query := fmt.Sprintf(
		"fields game_id,value;\nwhere game_id = (%s) & popularity_type = %d;\nlimit 500;",
		strings.Join(ids, ","), popType)

	token, err := c.tokenSrc.Token()
	if err != nil {
		return nil, apperr.New(apperr.AuthExpired, "igdb.token", err)
	}

	raws, err := c.postPopularity(ctx, token.AccessToken, query)
	if err != nil && apperr.KindOf(err) == apperr.AuthExpired {
		token, tokErr := c.tokenSrc.Token()
		if tokErr != nil {
			return nil, apperr.New(apperr.AuthExpired, "igdb.token.refresh", tokErr)
		}
		raws, err = c.postPopularity(ctx, token.AccessToken, query)
	}
	if err != nil {
		return nil, err
	}

	out := make([]PopularityValue, 0, len(raws))
	for _, r := range raws {
		out = append(out, PopularityValue{GameID: r.GameID, Value: r.Value})
	}
	return out, nil
}

func (c *Client) postPopularity(ctx context.Context, token, query string) ([]rawPopularity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/popularity_primitives", bytes.NewBufferString(query))
	if err != nil {
		return nil, apperr.New(apperr.Fatal, "igdb.popularity.build", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "igdb.popularity.post", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperr.New(apperr.AuthExpired, "igdb.popularity.post", fmt.Errorf("http 401"))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.New(apperr.RateLimited, "igdb.popularity.post", fmt.Errorf("http 429"))
	case resp.StatusCode >= 500:
		return nil, apperr.New(apperr.TransientNetwork, "igdb.popularity.post", fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.New(apperr.Unknown, "igdb.popularity.post", fmt.Errorf("http %d: %s", resp.StatusCode, body))
	}

	var raws []rawPopularity
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, apperr.New(apperr.Parse, "igdb.popularity.decode", err)
	}
	return raws, nil
}
