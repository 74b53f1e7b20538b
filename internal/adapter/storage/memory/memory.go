// Package memory provides in-process adapters used when an external backend is disabled.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"github.com/google/uuid"
)

type submissionRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Submission
}

// NewSubmissionRepository creates a map backed repository
func NewSubmissionRepository() port.SubmissionRepository {
	return &submissionRepository{items: make(map[uuid.UUID]domain.Submission)}
}

func (r *submissionRepository) Save(ctx context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.ID] = *s
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return &s, nil
}

func (r *submissionRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.JobState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	s.State = state
	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s
	return nil
}

func (r *submissionRepository) ListActive(ctx context.Context) ([]*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var active []*domain.Submission
	for _, s := range r.items {
		if s.JobID == 0 || s.State.Terminal() {
			continue
		}
		s := s
		active = append(active, &s)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].FileIndex < active[j].FileIndex })
	return active, nil
}

// FoldRecordRepository keeps saved records in memory
type FoldRecordRepository struct {
	mu      sync.Mutex
	records []domain.FoldRecord
}

// NewFoldRecordRepository creates a slice backed record store
func NewFoldRecordRepository() *FoldRecordRepository {
	return &FoldRecordRepository{}
}

func (r *FoldRecordRepository) SaveRecords(ctx context.Context, records []domain.FoldRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return int64(len(records)), nil
}

// Records returns a copy of everything saved so far
func (r *FoldRecordRepository) Records() []domain.FoldRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FoldRecord(nil), r.records...)
}

type ledger struct {
	mu        sync.RWMutex
	submitted map[string]uuid.UUID
}

// NewLedger creates a process local submission ledger
func NewLedger() port.SubmissionLedger {
	return &ledger{submitted: make(map[string]uuid.UUID)}
}

func (l *ledger) IsSubmitted(ctx context.Context, inputFile string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.submitted[inputFile]
	return ok, nil
}

func (l *ledger) MarkSubmitted(ctx context.Context, inputFile string, s *domain.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitted[inputFile] = s.ID
	return nil
}

// EventBus is a buffered channel implementing both event ports
type EventBus struct {
	events chan *domain.SubmissionEvent
}

// NewEventBus creates a bus holding up to size undelivered events
func NewEventBus(size int) *EventBus {
	return &EventBus{events: make(chan *domain.SubmissionEvent, size)}
}

// PublishEvent enqueues the event, dropping it when the buffer is full
func (b *EventBus) PublishEvent(ctx context.Context, event *domain.SubmissionEvent) error {
	select {
	case b.events <- event:
	default:
	}
	return nil
}

// ConsumeEvents delivers events in a background goroutine until ctx is done
func (b *EventBus) ConsumeEvents(ctx context.Context, handler func(event *domain.SubmissionEvent) error) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-b.events:
				_ = handler(e)
			}
		}
	}()
	return nil
}

// Pending returns the number of queued events
func (b *EventBus) Pending() int {
	return len(b.events)
}
