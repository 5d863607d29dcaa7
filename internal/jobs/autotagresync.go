package jobs

import (
	"context"
	"encoding/json"

	"github.com/jwolfley/unilib/internal/autotag"
	"github.com/jwolfley/unilib/internal/store"
)

// AutoTagResync implements spec §4.10's "bulk job" path: re-evaluate
// every Steam game's system label on demand, rather than waiting for
// the next playtime-changing store sync to touch it.
func AutoTagResync(reg *Registry, repo store.Repo) Body {
	return func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		if reg.IsCancelled(jobID) {
			return "", CancelledErr()
		}

		applied, cleared, err := autotag.ApplyAll(ctx, repo)
		if err != nil {
			return "", err
		}
		progress(applied+cleared, applied+cleared, "auto-tag resync complete")

		result, _ := json.Marshal(map[string]int{"applied": applied, "cleared": cleared})
		return string(result), nil
	}
}
