package updatetracker

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/pics"
	"github.com/jwolfley/unilib/internal/sources"
	"github.com/jwolfley/unilib/internal/store"
)

// backoffSchedule implements spec §4.7's "429-aware exponential
// backoff (base 2s, ×2 per attempt, max 3 attempts)".
var backoffSchedule = []time.Duration{2 * time.Second, 4 * time.Second}

// SteamFetcher prefers the Steam PICS Session when enabled (feature
// flag), falling back to the HTTP store-details endpoint with
// 429-aware exponential backoff.
type SteamFetcher struct {
	PICSFactory  *pics.Factory // nil when the PICS feature flag is off
	HTTPClient   *http.Client
	lastSeenChange map[int64]int64
}

func NewSteamFetcher(picsFactory *pics.Factory) *SteamFetcher {
	return &SteamFetcher{
		PICSFactory:    picsFactory,
		HTTPClient:     &http.Client{Timeout: 20 * time.Second},
		lastSeenChange: make(map[int64]int64),
	}
}

func (f *SteamFetcher) Observe(ctx context.Context, game store.Game) (Observation, error) {
	if !game.SteamAppID.Valid {
		return Observation{}, apperr.New(apperr.NotConfigured, "steam.observe", nil)
	}
	appID := game.SteamAppID.Int64

	if f.PICSFactory != nil {
		if obs, ok, err := f.observeViaPICS(ctx, appID); err != nil {
			return Observation{}, err
		} else if ok {
			return obs, nil
		}
	}

	return f.observeViaHTTP(ctx, appID)
}

// observeViaPICS treats a PICS change-number bump as equivalent to a
// last_modified bump, timestamped at the observed change time (§4.7).
func (f *SteamFetcher) observeViaPICS(ctx context.Context, appID int64) (Observation, bool, error) {
	session := f.PICSFactory.Get()
	infos, err := session.GetProductInfo(ctx, []int64{appID})
	if err != nil {
		return Observation{}, false, nil // fall through to HTTP
	}
	info, ok := infos[appID]
	if !ok {
		return Observation{}, false, nil
	}

	prior, seen := f.lastSeenChange[appID]
	f.lastSeenChange[appID] = info.ChangeNumber
	if seen && info.ChangeNumber <= prior {
		return Observation{}, true, nil // no change observed, but PICS did answer
	}

	t := info.LastChangeTime
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return Observation{LastModified: &t}, true, nil
}

type steamAppDetailsResp map[string]struct {
	Success bool `json:"success"`
	Data    struct {
		ReleaseDate struct {
			ComingSoon bool   `json:"coming_soon"`
			Date       string `json:"date"`
		} `json:"release_date"`
	} `json:"data"`
}

func (f *SteamFetcher) observeViaHTTP(ctx context.Context, appID int64) (Observation, error) {
	var lastErr error
	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		obs, retry, err := f.fetchAppDetails(ctx, appID)
		if err == nil {
			return obs, nil
		}
		lastErr = err
		if !retry || attempt == len(backoffSchedule) {
			break
		}
		select {
		case <-ctx.Done():
			return Observation{}, ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return Observation{}, lastErr
}

func (f *SteamFetcher) fetchAppDetails(ctx context.Context, appID int64) (Observation, bool, error) {
	u := "https://store.steampowered.com/api/appdetails?appids=" + strconv.FormatInt(appID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Observation{}, false, apperr.New(apperr.Fatal, "steam.appdetails.build", err)
	}
	req.Header.Set("User-Agent", sources.UserAgent())

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Observation{}, true, apperr.New(apperr.TransientNetwork, "steam.appdetails", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Observation{}, true, apperr.New(apperr.RateLimited, "steam.appdetails", nil)
	}
	if resp.StatusCode >= 500 {
		return Observation{}, true, apperr.New(apperr.TransientNetwork, "steam.appdetails", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return Observation{}, false, apperr.New(apperr.Unknown, "steam.appdetails", nil)
	}

	var parsed steamAppDetailsResp
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Observation{}, false, apperr.New(apperr.Parse, "steam.appdetails.decode", err)
	}

	entry, ok := parsed[strconv.FormatInt(appID, 10)]
	if !ok || !entry.Success {
		return Observation{}, false, apperr.New(apperr.NotFound, "steam.appdetails", nil)
	}

	now := time.Now().UTC()
	return Observation{LastModified: &now}, false, nil
}
