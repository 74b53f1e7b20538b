package service

import (
	"context"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// TrackerService follows submitted jobs until they reach a terminal state
type TrackerService struct {
	repo      port.SubmissionRepository
	scheduler port.BatchScheduler
	publisher port.EventPublisher
	consumer  port.EventConsumer
	log       *zap.Logger
}

func NewTrackerService(
	repo port.SubmissionRepository,
	scheduler port.BatchScheduler,
	publisher port.EventPublisher,
	consumer port.EventConsumer,
	log *zap.Logger,
) *TrackerService {
	return &TrackerService{
		repo:      repo,
		scheduler: scheduler,
		publisher: publisher,
		consumer:  consumer,
		log:       log,
	}
}

// StartTracker consumes submission events and polls the scheduler every interval until ctx is done
func (t *TrackerService) StartTracker(ctx context.Context, interval time.Duration) error {
	if err := t.consumer.ConsumeEvents(ctx, t.HandleEvent); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("Stopping tracker loop")
			return nil
		case <-ticker.C:
			if err := t.Poll(ctx); err != nil {
				t.log.Error("Failed to poll submissions", zap.Error(err))
			}
		}
	}
}

// HandleEvent records submissions announced by submitters
func (t *TrackerService) HandleEvent(event *domain.SubmissionEvent) error {
	switch event.Type {
	case domain.EventSubmitted:
		t.log.Info("Received submission",
			zap.String("id", event.Submission.ID.String()),
			zap.Int64("job_id", event.Submission.JobID),
			zap.String("input", event.Submission.InputFile))
		return t.repo.Save(context.Background(), event.Submission)
	case domain.EventStateChanged:
		t.log.Debug("Submission state changed",
			zap.String("id", event.Submission.ID.String()),
			zap.String("from", string(event.Previous)),
			zap.String("to", string(event.Submission.State)))
	}
	return nil
}

// Poll refreshes the state of every active submission
func (t *TrackerService) Poll(ctx context.Context) error {
	subs, err := t.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	t.log.Debug("Polling active submissions", zap.Int("count", len(subs)))

	for _, sub := range subs {
		states, err := t.scheduler.States(ctx, sub.JobID)
		if err != nil {
			t.log.Warn("Could not query job state", zap.Int64("job_id", sub.JobID), zap.Error(err))
			continue
		}

		state := domain.AggregateState(states)
		if state == domain.JobStateUnknown || state == sub.State {
			continue
		}

		if err := t.repo.UpdateState(ctx, sub.ID, state); err != nil {
			t.log.Error("Failed to update submission state", zap.String("id", sub.ID.String()), zap.Error(err))
			continue
		}

		previous := sub.State
		sub.State = state
		sub.UpdatedAt = time.Now().UTC()
		event := &domain.SubmissionEvent{Type: domain.EventStateChanged, Submission: sub, Previous: previous, At: sub.UpdatedAt}
		if err := t.publisher.PublishEvent(ctx, event); err != nil {
			t.log.Error("Failed to publish state change", zap.Error(err))
		}

		t.log.Info("Submission state updated",
			zap.Int64("job_id", sub.JobID),
			zap.String("folder", sub.Folder),
			zap.String("from", string(previous)),
			zap.String("to", string(state)))
	}
	return nil
}
