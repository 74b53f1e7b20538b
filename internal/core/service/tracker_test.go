package service

import (
	"context"
	"testing"

	"github.com/crabzie/foldbatch/internal/adapter/storage/memory"
	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTrackerPoll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := memory.NewSubmissionRepository()
	sched := newFakeScheduler()
	bus := memory.NewEventBus(8)
	tracker := NewTrackerService(repo, sched, bus, bus, zap.NewNop())

	running := domain.NewSubmission(0, "a.faa", "F000", "gpu", 2)
	running.JobID, running.State = 1, domain.JobStateSubmitted
	unchanged := domain.NewSubmission(1, "b.faa", "F001", "gpu", 2)
	unchanged.JobID, unchanged.State = 2, domain.JobStatePending
	vanished := domain.NewSubmission(2, "c.faa", "F002", "gpu", 2)
	vanished.JobID, vanished.State = 3, domain.JobStateRunning
	for _, s := range []*domain.Submission{running, unchanged, vanished} {
		require.NoError(t, tracker.HandleEvent(&domain.SubmissionEvent{Type: domain.EventSubmitted, Submission: s}))
	}

	sched.states[1] = []string{"RUNNING", "PENDING"}
	sched.states[2] = []string{"PENDING", "PENDING"}
	// job 3 has no state at all, it is left alone

	require.NoError(t, tracker.Poll(ctx))

	got, err := repo.GetByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateRunning, got.State)
	got, err = repo.GetByID(ctx, vanished.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateRunning, got.State)
	assert.Equal(t, 1, bus.Pending())

	sched.states[1] = []string{"COMPLETED", "COMPLETED"}
	sched.states[2] = []string{"COMPLETED", "FAILED"}
	require.NoError(t, tracker.Poll(ctx))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, vanished.ID, active[0].ID)
	got, err = repo.GetByID(ctx, unchanged.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, got.State)
	assert.Equal(t, 3, bus.Pending())
}
