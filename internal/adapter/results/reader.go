// Package results reads the per input result files fold workers append to
// and exports collected records.
package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Suffix is appended to an input file name to get its result file
const Suffix = ".fdat"

type reader struct {
	log *zap.Logger
}

// NewReader creates a ResultReader
func NewReader(log *zap.Logger) port.ResultReader {
	return &reader{log: log}
}

// Read decodes every complete record of path. Workers hold an exclusive
// flock while appending, so the file is read under a shared one.
// A missing file yields no records.
func (r *reader) Read(ctx context.Context, path string) ([]domain.FoldRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	data, err := io.ReadAll(f)
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	if err != nil {
		return nil, err
	}

	var records []domain.FoldRecord
	for i, raw := range domain.SplitFoldRecords(string(data)) {
		rec, err := domain.DecodeFoldRecord(raw)
		if err != nil {
			r.log.Warn("Skipping malformed record", zap.String("file", path), zap.Int("index", i), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
