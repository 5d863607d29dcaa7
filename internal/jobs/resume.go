package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/store"
)

const resumeMessage = "Resuming after restart (cache will skip completed items)..."
const nonResumableError = "Server restarted — job type cannot auto-resume"

// Bodies maps a job type to the Body that should re-run it on
// auto-resume. Callers register every resumable type (news sync,
// status sync) before calling AutoResume.
type Bodies map[string]Body

// AutoResume implements spec §4.9's startup sweep: "any job found in
// pending|running at process start is orphaned." Resumable types get
// progress 0 and the resume message written through UpdateJobProgress,
// which leaves their status running (not pending), and are relaunched
// with force=false; everything else is failed outright. This is the only place jobs transition without
// user action.
func AutoResume(ctx context.Context, engine *Engine, repo store.Repo, log zerolog.Logger, bodies Bodies) error {
	orphaned, err := repo.ListJobsByStatus(ctx, store.JobPending, store.JobRunning)
	if err != nil {
		return err
	}

	for _, j := range orphaned {
		if !resumableTypes[j.Type] {
			if err := repo.FailJob(ctx, j.ID, nonResumableError, false); err != nil {
				log.Error().Err(err).Str("job_id", j.ID).Msg("auto-resume fail write failed")
			}
			continue
		}

		body, ok := bodies[j.Type]
		if !ok {
			log.Warn().Str("job_id", j.ID).Str("type", j.Type).Msg("resumable job type has no registered body; failing")
			if err := repo.FailJob(ctx, j.ID, nonResumableError, false); err != nil {
				log.Error().Err(err).Str("job_id", j.ID).Msg("auto-resume fail write failed")
			}
			continue
		}

		if err := repo.UpdateJobProgress(ctx, j.ID, 0, j.Total, resumeMessage); err != nil {
			log.Error().Err(err).Str("job_id", j.ID).Msg("auto-resume progress write failed")
		}
		engine.Resume(ctx, j.ID, false, body)
	}

	return nil
}
