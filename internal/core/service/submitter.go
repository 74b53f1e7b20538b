package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// SubmitterOptions controls where and how array jobs are prepared
type SubmitterOptions struct {
	WorkDir       string
	WorkerScript  string // copied into every job folder
	ScriptName    string // e.g. sub_fold.sh
	FolderPattern string // e.g. F%03d
	ArrayTaskArg  string // e.g. ${SLURM_ARRAY_TASK_ID}
	Profile       string
	Job           domain.JobDescriptor
	Env           domain.Environment
	DryRun        bool
	Force         bool
}

// SubmitReport summarizes one batch run
type SubmitReport struct {
	Submitted []*domain.Submission
	Skipped   []string
}

// SubmitterService turns input files into scheduler array jobs
type SubmitterService struct {
	source    port.SequenceSource
	renderer  port.ScriptRenderer
	scheduler port.BatchScheduler
	repo      port.SubmissionRepository
	ledger    port.SubmissionLedger
	events    port.EventPublisher
	opts      SubmitterOptions
	log       *zap.Logger
}

func NewSubmitterService(
	source port.SequenceSource,
	renderer port.ScriptRenderer,
	scheduler port.BatchScheduler,
	repo port.SubmissionRepository,
	ledger port.SubmissionLedger,
	events port.EventPublisher,
	opts SubmitterOptions,
	log *zap.Logger,
) *SubmitterService {
	if opts.ScriptName == "" {
		opts.ScriptName = "sub_fold.sh"
	}
	if opts.FolderPattern == "" {
		opts.FolderPattern = "F%03d"
	}
	if opts.ArrayTaskArg == "" {
		opts.ArrayTaskArg = "${SLURM_ARRAY_TASK_ID}"
	}
	return &SubmitterService{
		source:    source,
		renderer:  renderer,
		scheduler: scheduler,
		repo:      repo,
		ledger:    ledger,
		events:    events,
		opts:      opts,
		log:       log,
	}
}

// SubmitAll submits one array job per input file. A failing file does not
// stop the batch; all failures are returned joined.
func (s *SubmitterService) SubmitAll(ctx context.Context) (*SubmitReport, error) {
	files, err := s.source.ListInputs(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("Found input files", zap.Int("count", len(files)))

	report := &SubmitReport{}
	var errs []error
	for j, file := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		sub, err := s.SubmitFile(ctx, j, file)
		switch {
		case errors.Is(err, domain.ErrNoEntries), errors.Is(err, domain.ErrAlreadySubmitted):
			s.log.Warn("Skipping input file", zap.Int("j", j), zap.String("file", file), zap.Error(err))
			report.Skipped = append(report.Skipped, file)
		case err != nil:
			s.log.Error("Failed to submit input file", zap.Int("j", j), zap.String("file", file), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		default:
			report.Submitted = append(report.Submitted, sub)
		}
	}

	return report, errors.Join(errs...)
}

// SubmitFile prepares the folder of the j-th input file and submits its array job
func (s *SubmitterService) SubmitFile(ctx context.Context, j int, file string) (*domain.Submission, error) {
	s.log.Info("Submitting jobs for file", zap.Int("j", j), zap.String("file", file))

	entries, err := s.source.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	n := len(entries)
	s.log.Info("Number of entries in file", zap.Int("entries", n))
	if n == 0 {
		return nil, domain.ErrNoEntries
	}

	if !s.opts.Force {
		done, err := s.ledger.IsSubmitted(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to check ledger: %w", err)
		}
		if done {
			return nil, domain.ErrAlreadySubmitted
		}
	}

	folder := filepath.Join(s.opts.WorkDir, fmt.Sprintf(s.opts.FolderPattern, j))
	if err := s.prepareFolder(folder); err != nil {
		return nil, err
	}

	job := s.opts.Job.WithArray(n)
	job.Name = fmt.Sprintf("fold_%d", j)
	command := fmt.Sprintf("%s %s %s %s",
		s.opts.Env.Interpreter, filepath.Base(s.opts.WorkerScript), s.opts.ArrayTaskArg, strconv.Itoa(j))

	var script bytes.Buffer
	if err := s.renderer.Render(&script, job, s.opts.Env, command); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(folder, s.opts.ScriptName), script.Bytes(), 0755); err != nil {
		return nil, fmt.Errorf("failed to write job script: %w", err)
	}

	sub := domain.NewSubmission(j, file, folder, s.opts.Profile, n)
	if s.opts.DryRun {
		s.log.Info("Dry run, job script written", zap.String("folder", folder))
		return sub, nil
	}

	jobID, err := s.scheduler.Submit(ctx, folder, s.opts.ScriptName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sub.JobID = jobID
	sub.State = domain.JobStateSubmitted
	sub.SubmittedAt = now
	sub.UpdatedAt = now

	// the job is queued at this point, bookkeeping failures are only logged
	if err := s.repo.Save(ctx, sub); err != nil {
		s.log.Error("Failed to persist submission", zap.String("id", sub.ID.String()), zap.Error(err))
	}
	if err := s.ledger.MarkSubmitted(ctx, file, sub); err != nil {
		s.log.Error("Failed to update ledger", zap.String("file", file), zap.Error(err))
	}
	event := &domain.SubmissionEvent{Type: domain.EventSubmitted, Submission: sub, At: now}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish submission event", zap.Error(err))
	}

	s.log.Info("Submitted jobs for file",
		zap.String("folder", folder),
		zap.Int64("job_id", jobID),
		zap.Int("array_tasks", n))
	return sub, nil
}

func (s *SubmitterService) prepareFolder(folder string) error {
	if _, err := os.Stat(folder); err == nil {
		s.log.Info("Folder already exists, skipping creation", zap.String("folder", folder))
	} else if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", folder, err)
	}

	if s.opts.WorkerScript == "" {
		return nil
	}
	return copyFile(s.opts.WorkerScript, filepath.Join(folder, filepath.Base(s.opts.WorkerScript)))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open worker script: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
