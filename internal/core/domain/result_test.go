package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWorkerRecord(t *testing.T) {
	t.Parallel()
	raw := "../data/a.faa;;; sp|P1;;; MGAG;;; [0.8731];;; [[0.91 0.82]\n [0.77 0.66]];;; 0.79;;; ATOM      1  N   MET A   1\nEND\n"

	rec, err := DecodeFoldRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, "../data/a.faa", rec.SourceFile)
	assert.Equal(t, "sp|P1", rec.Description)
	assert.Equal(t, "MGAG", rec.Sequence)
	assert.InDelta(t, 0.8731, rec.PTM, 1e-12)
	assert.Equal(t, []float64{0.91, 0.82, 0.77, 0.66}, rec.PLDDT)
	assert.InDelta(t, 0.79, rec.MeanPLDDT, 1e-12)
	assert.Equal(t, "ATOM      1  N   MET A   1\nEND\n", rec.PDB)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	rec := FoldRecord{
		SourceFile:  "data/b.faa",
		Description: "b",
		Sequence:    "KK",
		PTM:         0.5,
		PLDDT:       []float64{1, 2.5},
		MeanPLDDT:   1.75,
		PDB:         "END",
	}
	records := SplitFoldRecords(rec.Encode() + rec.Encode() + "data/b.faa;;; partial")
	require.Len(t, records, 2)

	got, err := DecodeFoldRecord(records[1])
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()
	_, err := DecodeFoldRecord("a;;; b;;; c")
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = DecodeFoldRecord("a;;; b;;; c;;; x;;; [1];;; 1;;; END")
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = DecodeFoldRecord("a;;; b;;; c;;; [1 2];;; [1];;; 1;;; END")
	require.ErrorIs(t, err, ErrMalformedRecord)
}
