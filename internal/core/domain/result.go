package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Worker result files hold one record per folded entry, fields separated by
// FieldSeparator and records terminated by RecordTerminator.
const (
	FieldSeparator   = ";;; "
	RecordTerminator = " ~~~\n"
	recordFields     = 7
)

// FoldRecord is the outcome of folding one sequence
type FoldRecord struct {
	SourceFile  string    `json:"source_file"`
	Description string    `json:"description"`
	Sequence    string    `json:"sequence"`
	PTM         float64   `json:"ptm"`
	PLDDT       []float64 `json:"plddt"`
	MeanPLDDT   float64   `json:"mean_plddt"`
	PDB         string    `json:"pdb"`
}

// Encode renders the record the way the fold workers append it
func (r FoldRecord) Encode() string {
	plddt := make([]string, len(r.PLDDT))
	for i, v := range r.PLDDT {
		plddt[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	fields := []string{
		r.SourceFile,
		r.Description,
		r.Sequence,
		strconv.FormatFloat(r.PTM, 'g', -1, 64),
		"[" + strings.Join(plddt, " ") + "]",
		strconv.FormatFloat(r.MeanPLDDT, 'g', -1, 64),
		r.PDB,
	}
	return strings.Join(fields, FieldSeparator) + RecordTerminator
}

// DecodeFoldRecord parses one record body without its terminator
func DecodeFoldRecord(raw string) (FoldRecord, error) {
	fields := strings.SplitN(raw, FieldSeparator, recordFields)
	if len(fields) != recordFields {
		return FoldRecord{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, len(fields), recordFields)
	}

	ptm, err := parseNumpyScalar(fields[3])
	if err != nil {
		return FoldRecord{}, fmt.Errorf("%w: pTM: %v", ErrMalformedRecord, err)
	}
	plddt, err := parseNumpyArray(fields[4])
	if err != nil {
		return FoldRecord{}, fmt.Errorf("%w: pLDDT: %v", ErrMalformedRecord, err)
	}
	mean, err := parseNumpyScalar(fields[5])
	if err != nil {
		return FoldRecord{}, fmt.Errorf("%w: mean pLDDT: %v", ErrMalformedRecord, err)
	}

	return FoldRecord{
		SourceFile:  strings.TrimSpace(fields[0]),
		Description: fields[1],
		Sequence:    fields[2],
		PTM:         ptm,
		PLDDT:       plddt,
		MeanPLDDT:   mean,
		PDB:         fields[6],
	}, nil
}

// SplitFoldRecords splits a result file into record bodies, dropping a
// trailing partial record that a worker may still be writing
func SplitFoldRecords(data string) []string {
	parts := strings.Split(data, RecordTerminator)
	// the last element is either empty or an unterminated record
	return parts[:len(parts)-1]
}

// numpy prints 0-d and 1-element arrays as "0.87" or "[0.87]"
func parseNumpyScalar(s string) (float64, error) {
	values, err := parseNumpyArray(s)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("want a single value, got %d", len(values))
	}
	return values[0], nil
}

// parseNumpyArray flattens the output of numpy.array2string
func parseNumpyArray(s string) ([]float64, error) {
	clean := strings.NewReplacer("[", " ", "]", " ", ",", " ").Replace(s)
	fields := strings.Fields(clean)
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
