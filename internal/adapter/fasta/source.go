// Package fasta provides the FASTA input adapter.
package fasta

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

type source struct {
	dir       string
	extension string
	log       *zap.Logger
}

// NewSource creates a source over the files in dir ending with extension
func NewSource(dir, extension string, log *zap.Logger) port.SequenceSource {
	return &source{
		dir:       dir,
		extension: extension,
		log:       log,
	}
}

// ListInputs returns matching files in raw directory order, unsorted. The
// fold worker picks its input with os.listdir(...)[j], and the array index j
// handed to it must name the same file.
func (s *source) ListInputs(ctx context.Context) ([]string, error) {
	d, err := os.Open(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	dirEntries, err := d.ReadDir(-1)
	d.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var files []string
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.extension) {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}

	s.log.Debug("Listed input files", zap.String("dir", s.dir), zap.Int("count", len(files)))
	return files, nil
}

func (s *source) Load(ctx context.Context, path string) ([]domain.FastaEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("FASTA file not found: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads FASTA records. Blank lines and lines starting with ';' or '#'
// are skipped, sequence lines are joined with spaces removed.
func Parse(r io.Reader) ([]domain.FastaEntry, error) {
	var (
		entries []domain.FastaEntry
		current *domain.FastaEntry
		chunks  []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Sequence = strings.ReplaceAll(strings.Join(chunks, ""), " ", "")
		entries = append(entries, *current)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ">") {
			flush()
			current = &domain.FastaEntry{Description: strings.TrimSpace(line[1:])}
			chunks = chunks[:0]
			continue
		}

		// sequence data before the first header has no record to belong to
		if current != nil {
			chunks = append(chunks, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return entries, nil
}
