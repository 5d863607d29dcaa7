package sources

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jwolfley/unilib/internal/apperr"
)

const battlenetIconBase = "https://blzmedia-a.akamaihd.net/account/static/local-common/images/game-icons/"

type battlenetGameAccount struct {
	TitleID                          int64  `json:"titleId"`
	LocalizedGameName                string `json:"localizedGameName"`
	TitleName                        string `json:"titleName"`
	GameAccountName                  string `json:"gameAccountName"`
	RegionalGameFranchiseIconFilename string `json:"regionalGameFranchiseIconFilename"`
	GameIconFilename                 string `json:"gameIconFilename"`
}

type battlenetGamesResp struct {
	GameAccounts []battlenetGameAccount `json:"gameAccounts"`
}

type battlenetClassicGame struct {
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
}

// FetchBattlenet splits the modern (games-and-subs) and classic
// (classic-games) catalogs (spec §4.3) via a cookie-bearing session,
// composing cover URLs from the reported icon filename.
func FetchBattlenet(ctx context.Context, settings Settings) ([]RawGame, error) {
	cookie, _ := settings.GetString(ctx, "battlenet_session_cookie", "")
	if cookie == "" {
		return nil, apperr.New(apperr.NotConfigured, "battlenet.session", nil)
	}

	client := newHTTPClient()
	var out []RawGame

	modern, err := fetchBattlenetModern(ctx, client, cookie)
	if err != nil {
		return nil, err
	}
	out = append(out, modern...)

	classic, err := fetchBattlenetClassic(ctx, client, cookie)
	if err != nil {
		// Classic endpoint missing/unauthorized degrades to modern-only.
		return out, nil
	}
	out = append(out, classic...)
	return out, nil
}

func fetchBattlenetModern(ctx context.Context, client *http.Client, cookie string) ([]RawGame, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://account.battle.net/api/games-and-subs", nil)
	req.Header.Set("Cookie", "access_token="+cookie)

	var resp battlenetGamesResp
	if err := doJSON(client, "battlenet.games-and-subs", req, &resp); err != nil {
		return nil, err
	}

	out := make([]RawGame, 0, len(resp.GameAccounts))
	for _, g := range resp.GameAccounts {
		name := firstNonEmpty(g.LocalizedGameName, g.TitleName, g.GameAccountName)
		if name == "" {
			continue
		}
		rg := RawGame{Name: name, Store: "battlenet", StoreID: strconv.FormatInt(g.TitleID, 10)}
		if icon := firstNonEmpty(g.RegionalGameFranchiseIconFilename, g.GameIconFilename); icon != "" {
			rg.CoverImage = strPtr(battlenetIconBase + icon)
		}
		out = append(out, rg)
	}
	return out, nil
}

func fetchBattlenetClassic(ctx context.Context, client *http.Client, cookie string) ([]RawGame, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://account.battle.net/api/classic-games", nil)
	req.Header.Set("Cookie", "access_token="+cookie)

	var games []battlenetClassicGame
	if err := doJSON(client, "battlenet.classic-games", req, &games); err != nil {
		return nil, err
	}

	out := make([]RawGame, 0, len(games))
	for _, g := range games {
		out = append(out, RawGame{Name: g.Name, Store: "battlenet", StoreID: "classic:" + g.ProductCode})
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
