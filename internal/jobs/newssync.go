package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/jwolfley/unilib/config"
	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

const (
	newsWindowLimit    = 200
	newsWindowDuration = 5 * time.Minute
	newsMinGap         = 500 * time.Millisecond
	newsMaxAttempts    = 5
)

type steamNewsResp struct {
	AppNews struct {
		NewsItems []struct {
			GID     string `json:"gid"`
			Title   string `json:"title"`
			URL     string `json:"url"`
			Author  string `json:"author"`
			Contents string `json:"contents"`
			Date    int64  `json:"date"`
		} `json:"newsitems"`
	} `json:"appnews"`
}

// NewsSync implements spec §4.9's News sync (Steam only) job body.
func NewsSync(reg *Registry, repo store.Repo, client *http.Client, maxItems int) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		games, err := repo.ListGamesNeedingNewsSync(ctx, time.Now().Add(-config.NewsSyncCacheTTL()), force)
		if err != nil {
			return "", err
		}

		window := reg.Limiters.Window("news_sync", newsWindowDuration, newsWindowLimit)
		gap := reg.Limiters.Gap("news_sync.gap", newsMinGap)

		var processed, failed int
		for i, g := range games {
			if reg.IsCancelled(jobID) {
				return "", CancelledErr()
			}

			if err := gap.Wait(ctx); err != nil {
				return "", err
			}
			if err := window.Wait(ctx); err != nil {
				return "", err
			}

			if err := fetchAndStoreNews(ctx, repo, client, g, maxItems); err != nil {
				failed++
			} else {
				processed++
			}

			// Every game gets news_last_checked=now even on failure,
			// preventing re-try storms (§4.9).
			if err := repo.TouchNewsLastChecked(ctx, g.ID, time.Now().UTC()); err != nil {
				return "", err
			}

			progress(i+1, len(games), g.Name)
		}

		result, _ := json.Marshal(map[string]int{"processed": processed, "failed": failed})
		return string(result), nil
	}
}

func fetchAndStoreNews(ctx context.Context, repo store.Repo, client *http.Client, g store.Game, maxItems int) error {
	if !g.SteamAppID.Valid {
		return apperr.New(apperr.NotConfigured, "news_sync.no_steam_id", nil)
	}

	var lastErr error
	for attempt := 0; attempt < newsMaxAttempts; attempt++ {
		resp, err := requestNews(ctx, client, g.SteamAppID.Int64, maxItems)
		if err == nil {
			for _, item := range resp.AppNews.NewsItems {
				article := store.NewsArticle{
					GameID:      g.ID,
					Title:       item.Title,
					Content:     nullStringIfEmpty(item.Contents),
					Author:      nullStringIfEmpty(item.Author),
					URL:         item.URL,
					PublishedAt: unixToNullTime(item.Date),
					FetchedAt:   time.Now().UTC(),
				}
				if err := repo.UpsertNewsArticle(ctx, article); err != nil {
					return err
				}
			}
			return nil
		}
		lastErr = err
		if apperr.KindOf(err) != apperr.RateLimited {
			return err
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		jitter := time.Duration(rand.Int63n(int64(backoff) * 30 / 100))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}
	return lastErr
}

func requestNews(ctx context.Context, client *http.Client, appID int64, maxItems int) (steamNewsResp, error) {
	u := "https://api.steampowered.com/ISteamNews/GetNewsForApp/v2/?appid=" + strconv.FormatInt(appID, 10) + "&count=" + strconv.Itoa(maxItems)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return steamNewsResp{}, apperr.New(apperr.Fatal, "news_sync.build", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return steamNewsResp{}, apperr.New(apperr.TransientNetwork, "news_sync.do", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return steamNewsResp{}, apperr.New(apperr.RateLimited, "news_sync.do", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return steamNewsResp{}, apperr.New(apperr.Unknown, "news_sync.do", nil)
	}

	var out steamNewsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return steamNewsResp{}, apperr.New(apperr.Parse, "news_sync.decode", err)
	}
	return out, nil
}

func nullStringIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func unixToNullTime(sec int64) sql.NullTime {
	if sec == 0 {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Unix(sec, 0).UTC(), Valid: true}
}
