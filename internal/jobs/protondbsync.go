package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jwolfley/unilib/config"
	"github.com/jwolfley/unilib/internal/protondb"
	"github.com/jwolfley/unilib/internal/store"
)

const protonDBMinGap = 500 * time.Millisecond

// ProtonDBSync implements spec §4.9's ProtonDB sync job body: a small
// worker pool (default 5) sharing one 0.5s-minimum-gap rate limiter,
// targeting every game with a known Steam AppID.
func ProtonDBSync(reg *Registry, repo store.Repo, client *protondb.Client) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		games, err := repo.ListGamesWithSteamAppID(ctx)
		if err != nil {
			return "", err
		}

		gap := reg.Limiters.Gap("protondb_sync.gap", protonDBMinGap)

		jobsCh := make(chan store.Game, len(games))
		for _, g := range games {
			jobsCh <- g
		}
		close(jobsCh)

		var mu sync.Mutex
		var done, synced, failed int
		var firstErr error

		var wg sync.WaitGroup
		workers := config.ProtonDBWorkerPoolSize()
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for g := range jobsCh {
					if reg.IsCancelled(jobID) {
						return
					}
					if err := gap.Wait(ctx); err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						return
					}

					update, err := client.FetchSummary(ctx, g.SteamAppID.Int64)
					mu.Lock()
					if err != nil {
						failed++
					} else {
						if writeErr := repo.SetProtonDBData(ctx, g.ID, update); writeErr != nil {
							failed++
						} else {
							synced++
						}
					}
					done++
					progress(done, len(games), g.Name)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if reg.IsCancelled(jobID) {
			return "", CancelledErr()
		}
		if firstErr != nil {
			return "", firstErr
		}

		result, _ := json.Marshal(map[string]int{"synced": synced, "failed": failed})
		return string(result), nil
	}
}
