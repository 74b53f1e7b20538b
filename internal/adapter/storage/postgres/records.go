package postgres

import (
	"context"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var foldResultColumns = []string{
	"source_file", "description", "sequence", "ptm", "plddt", "mean_plddt", "pdb", "created_at",
}

type foldRecordRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// NewFoldRecordRepository creates a repository that bulk loads records with COPY
func NewFoldRecordRepository(db *pgxpool.Pool, log *zap.Logger) port.FoldRecordRepository {
	return &foldRecordRepository{
		db:  db,
		log: log,
	}
}

func (r *foldRecordRepository) SaveRecords(ctx context.Context, records []domain.FoldRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"fold_results"}, foldResultColumns, pgx.CopyFromRows(recordRows(records, time.Now().UTC())))
	if err != nil {
		r.log.Error("Failed to copy fold results", zap.Int("records", len(records)), zap.Error(err))
		return 0, err
	}
	r.log.Info("Stored fold results", zap.Int64("rows", n))
	return n, nil
}

func recordRows(records []domain.FoldRecord, now time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []interface{}{
			rec.SourceFile, rec.Description, rec.Sequence, rec.PTM, rec.PLDDT, rec.MeanPLDDT, rec.PDB, now,
		})
	}
	return rows
}
