package service

import (
	"context"
	"fmt"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// CollectReport counts what the collector found
type CollectReport struct {
	Files   int
	Entries int
	Records int
	Stored  int64
}

// CollectorService gathers the records fold workers wrote next to each input file
type CollectorService struct {
	source       port.SequenceSource
	reader       port.ResultReader
	writer       port.ResultWriter
	records      port.FoldRecordRepository
	resultSuffix string
	log          *zap.Logger
}

func NewCollectorService(
	source port.SequenceSource,
	reader port.ResultReader,
	writer port.ResultWriter,
	records port.FoldRecordRepository,
	resultSuffix string,
	log *zap.Logger,
) *CollectorService {
	return &CollectorService{
		source:       source,
		reader:       reader,
		writer:       writer,
		records:      records,
		resultSuffix: resultSuffix,
		log:          log,
	}
}

// Collect reads every result file, writes <out>.csv.gz and stores the records
func (c *CollectorService) Collect(ctx context.Context, out string) (*CollectReport, error) {
	files, err := c.source.ListInputs(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info("Total input files", zap.Int("count", len(files)))

	report := &CollectReport{Files: len(files)}
	var all []domain.FoldRecord
	for i, file := range files {
		entries, err := c.source.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		recs, err := c.reader.Read(ctx, file+c.resultSuffix)
		if err != nil {
			return nil, fmt.Errorf("failed to read results of %s: %w", file, err)
		}

		report.Entries += len(entries)
		report.Records += len(recs)
		all = append(all, recs...)

		fields := []zap.Field{
			zap.String("file", file),
			zap.Int("entries", len(entries)),
			zap.Int("records", len(recs)),
		}
		if len(recs) < len(entries) {
			c.log.Warn(fmt.Sprintf("Processed input file %d/%d with missing records", i+1, len(files)), fields...)
		} else {
			c.log.Info(fmt.Sprintf("Processed input file %d/%d", i+1, len(files)), fields...)
		}
	}
	c.log.Info("Data gathering done", zap.Int("records", len(all)))

	if err := c.writer.Write(ctx, out, all); err != nil {
		return nil, err
	}
	stored, err := c.records.SaveRecords(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to store records: %w", err)
	}
	report.Stored = stored
	return report, nil
}
