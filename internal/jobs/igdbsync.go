package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/igdb"
	"github.com/jwolfley/unilib/internal/rating"
	"github.com/jwolfley/unilib/internal/store"
)

const igdbSyncMinGap = 250 * time.Millisecond

// IGDBSync runs matching mode for every game lacking an igdb_id,
// re-running the Rating Aggregator after each successful bind (§4.6:
// "Invoked after every IGDB... mutation on a row").
func IGDBSync(reg *Registry, repo store.Repo, client *igdb.Client) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		games, err := repo.ListGamesLackingIGDB(ctx)
		if err != nil {
			return "", err
		}

		gap := reg.Limiters.Gap("igdb_sync.gap", igdbSyncMinGap)

		var matched, unmatched, failed int
		for i, g := range games {
			if reg.IsCancelled(jobID) {
				return "", CancelledErr()
			}
			if err := gap.Wait(ctx); err != nil {
				return "", err
			}

			if err := client.MatchAndBind(ctx, repo, g); err != nil {
				if apperr.KindOf(err) == apperr.NotFound {
					unmatched++
				} else {
					failed++
				}
				progress(i+1, len(games), g.Name)
				continue
			}
			matched++

			if updated, err := repo.GetGame(ctx, g.ID); err == nil {
				_ = rating.Recompute(ctx, repo, *updated)
			}
			progress(i+1, len(games), g.Name)
		}

		result, _ := json.Marshal(map[string]int{"matched": matched, "unmatched": unmatched, "failed": failed})
		return string(result), nil
	}
}
