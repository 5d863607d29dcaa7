package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jwolfley/unilib/internal/metacritic"
	"github.com/jwolfley/unilib/internal/rating"
	"github.com/jwolfley/unilib/internal/store"
)

const metacriticSyncMinGap = 500 * time.Millisecond

// MetacriticSync scrapes critic/user scores for every game carrying a
// metacritic_slug, analogous to IGDBSync/ProtonDBSync per spec §4.9's
// "each with its own per-source rate-limit discipline".
func MetacriticSync(reg *Registry, repo store.Repo, client *metacritic.Client) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		games, err := repo.ListGamesWithMetacriticSlug(ctx)
		if err != nil {
			return "", err
		}

		gap := reg.Limiters.Gap("metacritic_sync.gap", metacriticSyncMinGap)

		var synced, failed int
		for i, g := range games {
			if reg.IsCancelled(jobID) {
				return "", CancelledErr()
			}
			if err := gap.Wait(ctx); err != nil {
				return "", err
			}

			if err := rating.SyncMetacritic(ctx, repo, client, g); err != nil {
				failed++
			} else {
				synced++
			}
			progress(i+1, len(games), g.Name)
		}

		result, _ := json.Marshal(map[string]int{"synced": synced, "failed": failed})
		return string(result), nil
	}
}
