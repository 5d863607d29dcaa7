package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

// Job type constants (spec §4.9's "analogous" job-type list, plus the
// §4.4 control-flow stages it schedules: Source Adapters → Catalog
// Importer → IGDB Matcher → Rating Aggregator → Auto-Tag Engine).
const (
	TypeStoreSync      = "store_sync"
	TypeIGDBSync       = "igdb_sync"
	TypeMetacriticSync = "metacritic_sync"
	TypeUpdateTracking = "update_tracking"
	TypeNewsSync       = "news_sync"
	TypeStatusSync     = "status_sync"
	TypeProtonDBSync   = "protondb_sync"
	TypeAutoTagResync  = "autotag_resync"
)

// resumableTypes are re-scheduled with force=false on startup, keeping
// their job id and status running (§4.9's auto-resume); everything else is
// failed outright.
var resumableTypes = map[string]bool{
	TypeNewsSync:   true,
	TypeStatusSync: true,
}

// Body is a job function. It receives its own id so it can call
// update_progress and check cancellation, and force propagates a
// user-requested "ignore per-item caches" flag.
type Body func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (result string, err error)

// ProgressFunc is what a job body calls "periodically" per spec §4.9.
type ProgressFunc func(n, total int, message string)

// Engine runs and persists jobs.
type Engine struct {
	repo     store.Repo
	registry *Registry
	log      zerolog.Logger
}

func NewEngine(repo store.Repo, registry *Registry, log zerolog.Logger) *Engine {
	return &Engine{repo: repo, registry: registry, log: log}
}

// Launch creates a persisted job and runs body on its own goroutine —
// "one goroutine per job... the engine does not throttle concurrency"
// (§4.9, §5). Returns the new job id immediately.
func (e *Engine) Launch(ctx context.Context, jobType string, force bool, body Body) (string, error) {
	id := uuid.NewString()
	if err := e.repo.CreateJob(ctx, id, jobType); err != nil {
		return "", err
	}
	go e.run(context.Background(), id, force, body)
	return id, nil
}

// Resume re-enters an existing job id picked up by auto-resume
// (§4.9), rather than minting a new one.
func (e *Engine) Resume(ctx context.Context, jobID string, force bool, body Body) {
	go e.run(context.Background(), jobID, force, body)
}

func (e *Engine) run(ctx context.Context, jobID string, force bool, body Body) {
	progress := func(n, total int, message string) {
		if err := e.repo.UpdateJobProgress(ctx, jobID, n, total, message); err != nil {
			e.log.Error().Err(err).Str("job_id", jobID).Msg("update_progress failed")
		}
	}

	result, err := body(ctx, jobID, force, progress)

	defer e.registry.forget(jobID)

	if err != nil {
		if e.registry.IsCancelled(jobID) || apperr.KindOf(err) == apperr.Cancelled {
			if failErr := e.repo.FailJob(ctx, jobID, "Cancelled by user", true); failErr != nil {
				e.log.Error().Err(failErr).Str("job_id", jobID).Msg("fail(cancelled) write failed")
			}
			return
		}
		if failErr := e.repo.FailJob(ctx, jobID, err.Error(), false); failErr != nil {
			e.log.Error().Err(failErr).Str("job_id", jobID).Msg("fail write failed")
		}
		return
	}

	var resultPtr *string
	if result != "" {
		resultPtr = &result
	}
	if err := e.repo.CompleteJob(ctx, jobID, resultPtr); err != nil {
		e.log.Error().Err(err).Str("job_id", jobID).Msg("complete write failed")
	}
}

// CancelledErr is what a job body should return when it notices
// IsCancelled mid-run, so Engine.run's terminal-state branch fires.
func CancelledErr() error {
	return apperr.New(apperr.Cancelled, "job", fmt.Errorf("cancelled by user"))
}
