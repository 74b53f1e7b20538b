package results

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// CSVHeader lists the exported columns in order
var CSVHeader = []string{"Description", "Sequence", "pTM_Score", "pLDDT_Score", "Mean_pLDDT_Score", "PDB", "FAA_File"}

type csvWriter struct {
	log *zap.Logger
}

// NewCSVWriter creates a ResultWriter producing <out>.csv.gz
func NewCSVWriter(log *zap.Logger) port.ResultWriter {
	return &csvWriter{log: log}
}

// Write streams records into <out>.csv.gz. On any failure the partial file is removed.
func (w *csvWriter) Write(ctx context.Context, out string, records []domain.FoldRecord) (err error) {
	path := out + ".csv.gz"
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	defer func() {
		if err == nil {
			return
		}
		gz.Close()
		f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			w.log.Warn("Failed to remove partial results file", zap.String("path", path), zap.Error(rmErr))
		}
	}()

	cw := csv.NewWriter(gz)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	w.log.Info("Collected results saved", zap.String("path", path), zap.Int("records", len(records)))
	return nil
}

func csvRow(rec domain.FoldRecord) []string {
	plddt := make([]byte, 0, len(rec.PLDDT)*8)
	plddt = append(plddt, '[')
	for i, v := range rec.PLDDT {
		if i > 0 {
			plddt = append(plddt, ' ')
		}
		plddt = strconv.AppendFloat(plddt, v, 'g', -1, 64)
	}
	plddt = append(plddt, ']')

	return []string{
		rec.Description,
		rec.Sequence,
		strconv.FormatFloat(rec.PTM, 'g', -1, 64),
		string(plddt),
		strconv.FormatFloat(rec.MeanPLDDT, 'g', -1, 64),
		rec.PDB,
		rec.SourceFile,
	}
}
