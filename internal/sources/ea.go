package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/jwolfley/unilib/internal/apperr"
)

// eaOwnedGamesQueryHash is the persisted-query hash EA's GraphQL
// gateway expects in lieu of a full query document (spec §4.3:
// "persisted GraphQL query by hash").
const eaOwnedGamesQueryHash = "a1e1c7b6e3f94b9f9a2f7c8e6b4d5a3c"

type eaGraphQLRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Extensions    map[string]any `json:"extensions"`
}

type eaOwnedGamesResp struct {
	Data struct {
		Me struct {
			OwnedGameProducts struct {
				Items []struct {
					BaseItem struct {
						ID               string `json:"id"`
						DisplayName      string `json:"displayName"`
						ImageServerBaseURL string `json:"imageServerBaseUrl"`
						PackArtURL       string `json:"packArtUrl"`
					} `json:"baseItem"`
				} `json:"items"`
				PageInfo struct {
					EndCursor   string `json:"endCursor"`
					HasNextPage bool   `json:"hasNextPage"`
				} `json:"pageInfo"`
			} `json:"ownedGameProducts"`
		} `json:"me"`
	} `json:"data"`
}

// FetchEA pages through EA's owned-products GraphQL endpoint by
// cursor, authenticating with a bearer access token (spec §4.3).
func FetchEA(ctx context.Context, settings Settings) ([]RawGame, error) {
	token, _ := settings.GetString(ctx, "ea_access_token", "")
	if token == "" {
		return nil, apperr.New(apperr.NotConfigured, "ea.access_token", nil)
	}

	client := newHTTPClient()
	var out []RawGame
	cursor := ""
	for {
		reqBody := eaGraphQLRequest{
			OperationName: "OwnedGameProducts",
			Variables: map[string]any{
				"after": cursor,
			},
			Extensions: map[string]any{
				"persistedQuery": map[string]any{
					"version":    1,
					"sha256Hash": eaOwnedGamesQueryHash,
				},
			},
		}
		body, _ := json.Marshal(reqBody)
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://service-aggregation-layer.juno.ea.com/graphql", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		var resp eaOwnedGamesResp
		if err := doJSON(client, "ea.graphql", req, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Data.Me.OwnedGameProducts.Items {
			rg := RawGame{
				Name:    item.BaseItem.DisplayName,
				Store:   "ea",
				StoreID: item.BaseItem.ID,
			}
			if item.BaseItem.PackArtURL != "" {
				rg.CoverImage = strPtr(item.BaseItem.ImageServerBaseURL + item.BaseItem.PackArtURL)
			}
			out = append(out, rg)
		}

		if !resp.Data.Me.OwnedGameProducts.PageInfo.HasNextPage {
			break
		}
		cursor = resp.Data.Me.OwnedGameProducts.PageInfo.EndCursor
	}
	return out, nil
}
