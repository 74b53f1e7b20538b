package memory

import (
	"context"
	"testing"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSubmissionRepository()

	a := domain.NewSubmission(1, "data/b.faa", "F001", "gpu", 3)
	a.JobID = 11
	a.State = domain.JobStateSubmitted
	b := domain.NewSubmission(0, "data/a.faa", "F000", "gpu", 2)
	b.JobID = 10
	b.State = domain.JobStateRunning
	dry := domain.NewSubmission(2, "data/c.faa", "F002", "gpu", 1)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, repo.Save(ctx, dry))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, b.ID, active[0].ID)

	require.NoError(t, repo.UpdateState(ctx, b.ID, domain.JobStateCompleted))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCompleted, got.State)

	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	require.ErrorIs(t, repo.UpdateState(ctx, uuid.New(), domain.JobStateFailed), domain.ErrSubmissionNotFound)
}

func TestLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger()
	ok, err := l.IsSubmitted(ctx, "a.faa")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.MarkSubmitted(ctx, "a.faa", domain.NewSubmission(0, "a.faa", "F000", "gpu", 1)))
	ok, err = l.IsSubmitted(ctx, "a.faa")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEventBus(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewEventBus(1)
	require.NoError(t, bus.PublishEvent(ctx, &domain.SubmissionEvent{Type: domain.EventSubmitted}))
	// buffer full, dropped
	require.NoError(t, bus.PublishEvent(ctx, &domain.SubmissionEvent{Type: domain.EventStateChanged}))
	assert.Equal(t, 1, bus.Pending())

	got := make(chan domain.EventType, 1)
	require.NoError(t, bus.ConsumeEvents(ctx, func(e *domain.SubmissionEvent) error {
		got <- e.Type
		return nil
	}))

	select {
	case typ := <-got:
		assert.Equal(t, domain.EventSubmitted, typ)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestFoldRecordRepository(t *testing.T) {
	t.Parallel()
	repo := NewFoldRecordRepository()
	n, err := repo.SaveRecords(context.Background(), []domain.FoldRecord{{Description: "a"}, {Description: "b"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, repo.Records(), 2)
}
