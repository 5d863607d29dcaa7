package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jwolfley/unilib/config"
	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

const (
	statusSyncMinGap           = 500 * time.Millisecond
	steamEarlyAccessCategoryID = 29
)

type steamCategoriesResp map[string]struct {
	Success bool `json:"success"`
	Data    struct {
		Categories []struct {
			ID int `json:"id"`
		} `json:"categories"`
	} `json:"data"`
}

// StatusSync implements spec §4.9's Status sync job body across Steam,
// Epic, and GOG. GOG detection is "not yet implemented" per spec —
// GOG-store games always report unknown status, same as a real
// no-op-backed detector would.
func StatusSync(reg *Registry, repo store.Repo, client *http.Client) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		games, err := repo.ListGamesNeedingStatusSync(ctx, time.Now().Add(-config.StatusSyncCacheTTL()), force)
		if err != nil {
			return "", err
		}

		gap := reg.Limiters.Gap("status_sync.gap", statusSyncMinGap)

		var changed, unchanged, failed int
		for i, g := range games {
			if reg.IsCancelled(jobID) {
				return "", CancelledErr()
			}
			if err := gap.Wait(ctx); err != nil {
				return "", err
			}

			status, err := detectStatus(ctx, client, g)
			if err != nil {
				failed++
				progress(i+1, len(games), g.Name)
				continue
			}
			if status == nil {
				unchanged++
				progress(i+1, len(games), g.Name)
				continue
			}

			wasChanged, err := repo.RecordDevelopmentStatus(ctx, g.ID, *status, nil, time.Now().UTC())
			if err != nil {
				return "", err
			}
			if wasChanged {
				changed++
			} else {
				unchanged++
			}
			progress(i+1, len(games), g.Name)
		}

		result, _ := json.Marshal(map[string]int{"changed": changed, "unchanged": unchanged, "failed": failed})
		return string(result), nil
	}
}

// detectStatus returns nil when the store gives no signal either way
// (e.g. GOG, or an Epic game whose extra_data is missing or not valid
// JSON), which StatusSync treats as "no transition this round"
// rather than a forced write to "released".
func detectStatus(ctx context.Context, client *http.Client, g store.Game) (*store.DevelopmentStatus, error) {
	switch g.Store {
	case "steam":
		return detectSteamStatus(ctx, client, g)
	case "epic":
		return detectEpicStatus(g)
	default:
		return nil, nil
	}
}

func detectSteamStatus(ctx context.Context, client *http.Client, g store.Game) (*store.DevelopmentStatus, error) {
	if !g.SteamAppID.Valid {
		return nil, apperr.New(apperr.NotConfigured, "status_sync.steam", nil)
	}
	u := "https://store.steampowered.com/api/appdetails?appids=" + strconv.FormatInt(g.SteamAppID.Int64, 10) + "&filters=categories"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.New(apperr.Fatal, "status_sync.steam.build", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "status_sync.steam.do", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.Unknown, "status_sync.steam.do", nil)
	}

	var parsed steamCategoriesResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.New(apperr.Parse, "status_sync.steam.decode", err)
	}
	entry, ok := parsed[strconv.FormatInt(g.SteamAppID.Int64, 10)]
	if !ok || !entry.Success {
		return nil, apperr.New(apperr.NotFound, "status_sync.steam", nil)
	}

	for _, cat := range entry.Data.Categories {
		if cat.ID == steamEarlyAccessCategoryID {
			ea := store.StatusEarlyAccess
			return &ea, nil
		}
	}
	released := store.StatusReleased
	return &released, nil
}

// detectEpicStatus inspects the opaque extra_data payload importers
// preserve verbatim (spec §4.3/§4.4) for Epic's custom-attributes
// EarlyAccess marker.
func detectEpicStatus(g store.Game) (*store.DevelopmentStatus, error) {
	if !g.ExtraData.Valid || g.ExtraData.String == "" {
		return nil, nil
	}
	var payload struct {
		CustomAttributes struct {
			EarlyAccess struct {
				Value string `json:"value"`
			} `json:"EarlyAccess"`
		} `json:"customAttributes"`
	}
	if err := json.Unmarshal([]byte(g.ExtraData.String), &payload); err != nil {
		return nil, nil
	}
	if payload.CustomAttributes.EarlyAccess.Value == "true" {
		ea := store.StatusEarlyAccess
		return &ea, nil
	}
	released := store.StatusReleased
	return &released, nil
}
