package sources

import (
	"context"
	"net/http"
	"net/http/cookiejar"

	"github.com/jwolfley/unilib/internal/apperr"
)

type humbleOrderListResp []string

type humbleOrderResp struct {
	Product struct {
		HumanName string `json:"human_name"`
	} `json:"product"`
	GamekeyOrderID string `json:"gamekey"`
	Subproducts    []struct {
		HumanName string `json:"human_name"`
		Icon      string `json:"icon"`
	} `json:"subproducts"`
}

// FetchHumble walks the session-cookie-authenticated order-list, then
// fetches each order's line items (spec §4.3: "authenticated HTTP with
// session-cookie ... pagination until exhausted" — Humble's own API
// paginates by order key rather than page number).
func FetchHumble(ctx context.Context, settings Settings) ([]RawGame, error) {
	sessionCookie, _ := settings.GetString(ctx, "humble_session_cookie", "")
	if sessionCookie == "" {
		return nil, apperr.New(apperr.NotConfigured, "humble.session", nil)
	}

	jar, _ := cookiejar.New(nil)
	client := newHTTPClient()
	client.Jar = jar

	listReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.humblebundle.com/api/v1/user/order", nil)
	listReq.Header.Set("Cookie", "_simpleauth_sess="+sessionCookie)

	var keys humbleOrderListResp
	if err := doJSON(client, "humble.order-list", listReq, &keys); err != nil {
		return nil, err
	}

	var out []RawGame
	for _, key := range keys {
		orderReq, _ := http.NewRequestWithContext(ctx, http.MethodGet,
			"https://www.humblebundle.com/api/v1/order/"+key, nil)
		orderReq.Header.Set("Cookie", "_simpleauth_sess="+sessionCookie)

		var order humbleOrderResp
		if err := doJSON(client, "humble.order", orderReq, &order); err != nil {
			continue // one bad order is a Parse/skip, not a batch failure
		}
		for _, sp := range order.Subproducts {
			rg := RawGame{
				Name:    sp.HumanName,
				Store:   "humble",
				StoreID: key + ":" + sp.HumanName,
			}
			if sp.Icon != "" {
				rg.CoverImage = strPtr(sp.Icon)
			}
			out = append(out, rg)
		}
	}
	return out, nil
}
