package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const submissionsTable = "submissions"

var submissionColumns = []string{
	"id", "file_index", "input_file", "folder", "entry_count",
	"profile", "job_id", "state", "submitted_at", "updated_at",
}

type submissionRepository struct {
	db  *pgxpool.Pool
	qb  squirrel.StatementBuilderType
	log *zap.Logger
}

// NewSubmissionRepository creates a new postgres repository
func NewSubmissionRepository(db *pgxpool.Pool, qb squirrel.StatementBuilderType, log *zap.Logger) port.SubmissionRepository {
	return &submissionRepository{
		db:  db,
		qb:  qb,
		log: log,
	}
}

// saveQuery upserts a submission, only the scheduler facing fields change on conflict
func saveQuery(qb squirrel.StatementBuilderType, s *domain.Submission) (string, []interface{}, error) {
	return qb.Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(s.ID, s.FileIndex, s.InputFile, s.Folder, s.EntryCount,
			s.Profile, s.JobID, s.State, nullTime(s.SubmittedAt), s.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET job_id = EXCLUDED.job_id, state = EXCLUDED.state, " +
			"submitted_at = EXCLUDED.submitted_at, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func activeQuery(qb squirrel.StatementBuilderType) (string, []interface{}, error) {
	return qb.Select(submissionColumns...).
		From(submissionsTable).
		Where(squirrel.Gt{"job_id": 0}).
		Where(squirrel.NotEq{"state": []string{string(domain.JobStateCompleted), string(domain.JobStateFailed)}}).
		OrderBy("file_index ASC").
		ToSql()
}

func (r *submissionRepository) Save(ctx context.Context, s *domain.Submission) error {
	query, args, err := saveQuery(r.qb, s)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to save submission", zap.String("id", s.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query, args, err := r.qb.Select(submissionColumns...).
		From(submissionsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSubmission(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	return s, err
}

func (r *submissionRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.JobState) error {
	query, args, err := r.qb.Update(submissionsTable).
		Set("state", state).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *submissionRepository) ListActive(ctx context.Context) ([]*domain.Submission, error) {
	query, args, err := activeQuery(r.qb)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		s           domain.Submission
		submittedAt *time.Time
	)
	err := row.Scan(&s.ID, &s.FileIndex, &s.InputFile, &s.Folder, &s.EntryCount,
		&s.Profile, &s.JobID, &s.State, &submittedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if submittedAt != nil {
		s.SubmittedAt = *submittedAt
	}
	return &s, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
