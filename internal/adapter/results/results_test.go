package results

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadSkipsMalformedAndPartial(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.faa"+Suffix)
	good := domain.FoldRecord{SourceFile: "a.faa", Description: "x", Sequence: "MG", PTM: 0.9, PLDDT: []float64{80, 90}, MeanPLDDT: 85, PDB: "END\n"}
	content := good.Encode() + "broken ~~~\n" + good.Encode() + "a.faa;;; half written"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := NewReader(zap.NewNop()).Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, good, records[0])
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()
	records, err := NewReader(zap.NewNop()).Read(context.Background(), filepath.Join(t.TempDir(), "none.fdat"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteCSVGzip(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "collected")
	records := []domain.FoldRecord{
		{SourceFile: "data/a.faa", Description: "a, quoted", Sequence: "MG", PTM: 0.5, PLDDT: []float64{1, 2.5}, MeanPLDDT: 1.75, PDB: "ATOM\nEND"},
	}
	require.NoError(t, NewCSVWriter(zap.NewNop()).Write(context.Background(), out, records))

	f, err := os.Open(out + ".csv.gz")
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	rows, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"a, quoted", "MG", "0.5", "[1 2.5]", "1.75", "ATOM\nEND", "data/a.faa"}, rows[1])
}

func TestWriteRemovesPartialFileOnFailure(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "collected")
	records := []domain.FoldRecord{{SourceFile: "data/a.faa", Description: "a", Sequence: "MG"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVWriter(zap.NewNop()).Write(ctx, out, records)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out+".csv.gz")
}
