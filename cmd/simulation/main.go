package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/crabzie/foldbatch/internal/adapter/fasta"
	"github.com/crabzie/foldbatch/internal/core/domain"
)

// aminoAcids are the 20 standard residues
const aminoAcids = "ACDEFGHIKLMNPQRSTVWY"

// simulation writes synthetic FASTA inputs so a submitter dry run can be
// exercised without real data
func main() {
	dir := flag.String("dir", "data", "directory to write the input files to")
	files := flag.Int("files", 3, "number of input files")
	maxEntries := flag.Int("max-entries", 5, "maximum entries per file")
	minLen := flag.Int("min-len", 30, "minimum sequence length")
	maxLen := flag.Int("max-len", 300, "maximum sequence length")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *minLen < 1 || *maxLen < *minLen || *maxEntries < 1 {
		log.Fatal("invalid length or entry bounds")
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal("Failed to create data dir:", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	fmt.Printf("Generating %d input files in %s...\n", *files, *dir)

	for i := 0; i < *files; i++ {
		n := rng.Intn(*maxEntries) + 1
		entries := make([]domain.FastaEntry, n)
		for k := range entries {
			entries[k] = domain.FastaEntry{
				Description: fmt.Sprintf("sim|SIM%03d_%02d synthetic protein", i, k),
				Sequence:    randomSequence(rng, *minLen+rng.Intn(*maxLen-*minLen+1)),
			}
		}

		path := filepath.Join(*dir, fmt.Sprintf("sim_%03d.faa", i))
		f, err := os.Create(path)
		if err != nil {
			log.Fatal("Failed to create input file:", err)
		}
		if err := fasta.Write(f, entries); err != nil {
			f.Close()
			log.Fatal("Failed to write input file:", err)
		}
		if err := f.Close(); err != nil {
			log.Fatal("Failed to close input file:", err)
		}
		fmt.Printf("   %s: %d entries\n", path, n)
	}
}

func randomSequence(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n + 1)
	b.WriteByte('M')
	for i := 1; i < n; i++ {
		b.WriteByte(aminoAcids[rng.Intn(len(aminoAcids))])
	}
	return b.String()
}
