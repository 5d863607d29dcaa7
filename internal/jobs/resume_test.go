package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/ratelimit"
	"github.com/jwolfley/unilib/internal/store"
)

// TestAutoResume_OrphanedRunningJobResumesToCompletion covers scenario 5:
// a job seeded as "running" before a restart is picked back up with a
// "Resuming" progress message, then runs to completion.
func TestAutoResume_OrphanedRunningJobResumesToCompletion(t *testing.T) {
	repo := openTestJobsRepo(t)
	ctx := context.Background()
	log := zerolog.New(io.Discard)

	if err := repo.CreateJob(ctx, "job-1", TypeNewsSync); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := repo.UpdateJobProgress(ctx, "job-1", 40, 100, "in progress"); err != nil {
		t.Fatalf("UpdateJobProgress: %v", err)
	}

	registry := NewRegistry(ratelimit.NewRegistry())
	engine := NewEngine(repo, registry, log)

	ran := make(chan struct{})
	body := Body(func(ctx context.Context, jobID string, force bool, progress ProgressFunc) (string, error) {
		if force {
			t.Errorf("expected force=false on auto-resume, got true")
		}
		close(ran)
		return "", nil
	})

	if err := AutoResume(ctx, engine, repo, log, Bodies{TypeNewsSync: body}); err != nil {
		t.Fatalf("AutoResume: %v", err)
	}

	resumed, err := repo.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob (post auto-resume, pre-run): %v", err)
	}
	if resumed.Progress != 0 || !resumed.Message.Valid || resumed.Message.String != resumeMessage {
		t.Fatalf("expected progress reset to 0 with the resuming message, got %+v", resumed)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("resumed body never ran")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		final, err := repo.GetJob(ctx, "job-1")
		if err != nil {
			t.Fatalf("GetJob (final): %v", err)
		}
		if final.Status == store.JobCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never reached completed, last status %q", final.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestAutoResume_NonResumableTypeFailsOutright covers the other half of
// §4.9's startup sweep: an orphaned job of a non-resumable type is
// failed rather than silently left running forever.
func TestAutoResume_NonResumableTypeFailsOutright(t *testing.T) {
	repo := openTestJobsRepo(t)
	ctx := context.Background()
	log := zerolog.New(io.Discard)

	if err := repo.CreateJob(ctx, "job-2", TypeIGDBSync); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	registry := NewRegistry(ratelimit.NewRegistry())
	engine := NewEngine(repo, registry, log)

	if err := AutoResume(ctx, engine, repo, log, Bodies{}); err != nil {
		t.Fatalf("AutoResume: %v", err)
	}

	job, err := repo.GetJob(ctx, "job-2")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != store.JobFailed || job.Cancelled {
		t.Fatalf("expected a failed, non-cancelled job for a non-resumable type, got %+v", job)
	}
}
