package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// Storage is the subset of the fiber storage interface the ledger needs
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

type ledgerEntry struct {
	SubmissionID string    `json:"submission_id"`
	JobID        int64     `json:"job_id"`
	Folder       string    `json:"folder"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type submissionLedger struct {
	store Storage
	ttl   time.Duration
	log   *zap.Logger
}

// NewSubmissionLedger creates a Redis backed ledger, entries expire after ttl (0 keeps them)
func NewSubmissionLedger(store Storage, ttl time.Duration, log *zap.Logger) port.SubmissionLedger {
	return &submissionLedger{
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

func ledgerKey(inputFile string) string {
	return "submitted:" + inputFile
}

func (l *submissionLedger) IsSubmitted(ctx context.Context, inputFile string) (bool, error) {
	val, err := l.store.Get(ledgerKey(inputFile))
	if err != nil {
		return false, err
	}
	// fiber storage returns nil for missing keys
	return val != nil, nil
}

func (l *submissionLedger) MarkSubmitted(ctx context.Context, inputFile string, s *domain.Submission) error {
	data, err := json.Marshal(ledgerEntry{
		SubmissionID: s.ID.String(),
		JobID:        s.JobID,
		Folder:       s.Folder,
		SubmittedAt:  s.SubmittedAt,
	})
	if err != nil {
		return err
	}

	if err := l.store.Set(ledgerKey(inputFile), data, l.ttl); err != nil {
		l.log.Error("Failed to mark submission", zap.String("input", inputFile), zap.Error(err))
		return err
	}
	return nil
}
