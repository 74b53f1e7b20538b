package fasta

import (
	"bufio"
	"io"

	"github.com/crabzie/foldbatch/internal/core/domain"
)

// LineWidth is the sequence line width used by Write
const LineWidth = 60

// Write renders entries as FASTA, wrapping sequences at LineWidth
func Write(w io.Writer, entries []domain.FastaEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		bw.WriteString(">" + e.Description + "\n")
		for seq := e.Sequence; len(seq) > 0; {
			n := min(LineWidth, len(seq))
			bw.WriteString(seq[:n] + "\n")
			seq = seq[n:]
		}
	}
	return bw.Flush()
}
