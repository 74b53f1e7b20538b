package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crabzie/foldbatch/internal/adapter/fasta"
	"github.com/crabzie/foldbatch/internal/adapter/results"
	"github.com/crabzie/foldbatch/internal/adapter/storage/memory"
	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollect(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.faa")
	b := filepath.Join(dir, "b.faa")
	require.NoError(t, os.WriteFile(a, []byte(">a1\nMG\n>a2\nKK\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte(">b1\nLL\n"), 0644))

	rec := domain.FoldRecord{SourceFile: a, Description: "a1", Sequence: "MG", PTM: 0.7, PLDDT: []float64{70}, MeanPLDDT: 70, PDB: "END"}
	require.NoError(t, os.WriteFile(a+results.Suffix, []byte(rec.Encode()), 0644))
	// b.faa has not produced anything yet

	log := zap.NewNop()
	store := memory.NewFoldRecordRepository()
	collector := NewCollectorService(
		fasta.NewSource(dir, ".faa", log),
		results.NewReader(log),
		results.NewCSVWriter(log),
		store,
		results.Suffix,
		log,
	)

	out := filepath.Join(dir, "collected")
	report, err := collector.Collect(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, &CollectReport{Files: 2, Entries: 3, Records: 1, Stored: 1}, report)
	assert.FileExists(t, out+".csv.gz")
	assert.Equal(t, []domain.FoldRecord{rec}, store.Records())
}
