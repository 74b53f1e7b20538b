// Package port provides behavior interfaces that connect services to adapters.
package port

import (
	"context"
	"io"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/google/uuid"
)

// SequenceSource lists and loads FASTA input files
type SequenceSource interface {
	ListInputs(ctx context.Context) ([]string, error)
	Load(ctx context.Context, path string) ([]domain.FastaEntry, error)
}

// ScriptRenderer turns a descriptor into a batch script
type ScriptRenderer interface {
	Render(w io.Writer, job domain.JobDescriptor, env domain.Environment, command string) error
}

// BatchScheduler submits scripts to the cluster and reports job states
type BatchScheduler interface {
	Submit(ctx context.Context, dir, script string) (int64, error)
	States(ctx context.Context, jobID int64) ([]string, error)
}

// SubmissionRepository defines how submissions are persisted
type SubmissionRepository interface {
	Save(ctx context.Context, s *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	UpdateState(ctx context.Context, id uuid.UUID, state domain.JobState) error
	ListActive(ctx context.Context) ([]*domain.Submission, error)
}

// FoldRecordRepository stores collected fold results
type FoldRecordRepository interface {
	SaveRecords(ctx context.Context, records []domain.FoldRecord) (int64, error)
}

// SubmissionLedger remembers which input files were already submitted
type SubmissionLedger interface {
	IsSubmitted(ctx context.Context, inputFile string) (bool, error)
	MarkSubmitted(ctx context.Context, inputFile string, s *domain.Submission) error
}

// EventPublisher publishes submission events
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *domain.SubmissionEvent) error
}

// EventConsumer delivers submission events to handler until ctx is done
type EventConsumer interface {
	ConsumeEvents(ctx context.Context, handler func(event *domain.SubmissionEvent) error) error
}

// ResultReader reads the records fold workers appended for one input file
type ResultReader interface {
	Read(ctx context.Context, path string) ([]domain.FoldRecord, error)
}

// ResultWriter exports collected records
type ResultWriter interface {
	Write(ctx context.Context, out string, records []domain.FoldRecord) error
}

// ProcessRunner runs one external program to completion and returns its exit code
type ProcessRunner interface {
	Run(ctx context.Context, program string, args []string, env []string) (int, error)
}
