package jobs

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/store"
	"github.com/jwolfley/unilib/internal/updatetracker"
)

// UpdateTracking wraps updatetracker.Run as a Job Engine Body (§4.9).
// updatetracker.Run has no cancellation checkpoints of its own (it
// processes a batch in one pass), so cancellation is only honored
// before the batch starts, not mid-run.
func UpdateTracking(reg *Registry, repo store.Repo, log zerolog.Logger, fetchers map[string]updatetracker.Fetcher) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		if reg.IsCancelled(jobID) {
			return "", CancelledErr()
		}

		games, err := repo.ListAllGames(ctx)
		if err != nil {
			return "", err
		}

		progress(0, len(games), "starting update tracking")
		stats := updatetracker.Run(ctx, repo, log, games, fetchers)
		progress(len(games), len(games), "update tracking complete")

		result, _ := json.Marshal(stats)
		return string(result), nil
	}
}
