// Package library scans a directory of source documents and decides which
// of them still need to be processed into a deck.
//
// A file is eligible when its extension is on the allow list (.txt, .md).
// Eligible files are identified by their content: the scanner computes an
// Adler-32 checksum and asks the catalog whether that exact
// (filename, checksum, deck) combination has been processed before. Edited
// files therefore always scan as unprocessed.
//
// Scanning stages pending records in memory only. The caller persists and
// links them with CommitLinks after note generation succeeded, so a failed
// run leaves no trace and the files stay eligible for the next scan.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/minddb/minddb/internal/catalog"
	"github.com/minddb/minddb/internal/checksum"
)

var (
	// ErrLibraryNotFound is returned when the library directory does not exist.
	ErrLibraryNotFound = errors.New("library directory not found")
	// ErrNoEligibleFiles is returned when the directory holds no allow-listed files.
	ErrNoEligibleFiles = errors.New("no eligible files in library")
	// ErrNoUnprocessedContent is returned when every eligible file has
	// already been processed for the target deck.
	ErrNoUnprocessedContent = errors.New("no unprocessed content in library")
)

// allowedExtensions is the file-type allow list. Anything else in the
// library directory is ignored.
var allowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// File is one unprocessed source document found by a scan. It is a pending
// record held in memory; nothing is written to the catalog until
// CommitLinks.
type File struct {
	Path     string
	Name     string
	Checksum uint32
	Content  string
}

// ScanResult holds the unprocessed files of one scan, in directory order.
type ScanResult struct {
	Files []File
}

// AggregateTranscript joins all unprocessed files into one document, each
// file introduced by a "# <filename>" heading.
func (r *ScanResult) AggregateTranscript() string {
	parts := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		parts = append(parts, fmt.Sprintf("# %s\n\n%s", f.Name, strings.TrimSpace(f.Content)))
	}
	return strings.Join(parts, "\n\n")
}

// Scanner finds unprocessed source documents for a deck.
type Scanner struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewScanner creates a scanner backed by the given catalog.
func NewScanner(cat catalog.Catalog, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{catalog: cat, logger: logger}
}

// ScanUnprocessed walks the library directory (non-recursively) and returns
// the eligible files not yet processed for deckName. Files whose content is
// empty after trimming carry nothing to generate from and are skipped. The
// returned records live only in memory; CommitLinks persists them after
// generation succeeds.
func (s *Scanner) ScanUnprocessed(ctx context.Context, libraryDir, deckName string) (*ScanResult, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, libraryDir)
		}
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	eligible := 0
	result := &ScanResult{}
	for _, entry := range entries {
		if entry.IsDir() || !allowedExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		eligible++

		path := filepath.Join(libraryDir, entry.Name())
		sum, err := checksum.File(path)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s: %w", entry.Name(), err)
		}

		processed, err := s.catalog.IsFileProcessed(ctx, entry.Name(), sum, deckName)
		if err != nil {
			return nil, fmt.Errorf("failed to check processing state of %s: %w", entry.Name(), err)
		}
		if processed {
			s.logger.Debug("skipping processed file",
				"file", entry.Name(), "checksum", sum, "deck", deckName)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			s.logger.Debug("skipping empty file", "file", entry.Name())
			continue
		}

		result.Files = append(result.Files, File{
			Path:     path,
			Name:     entry.Name(),
			Checksum: sum,
			Content:  string(content),
		})
	}

	if eligible == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEligibleFiles, libraryDir)
	}
	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: deck %q", ErrNoUnprocessedContent, deckName)
	}

	s.logger.Info("library scan complete",
		"dir", libraryDir, "eligible", eligible, "unprocessed", len(result.Files))
	return result, nil
}

// CommitLinks persists the pending records and marks them processed for
// the deck: each file gets its transcript row inserted (idempotently) and
// linked. Call this only after note generation and persistence succeeded.
func (s *Scanner) CommitLinks(ctx context.Context, deckID int64, files []File) error {
	for _, f := range files {
		transcriptID, err := s.catalog.GetOrInsertTranscript(ctx, f.Name, f.Checksum)
		if err != nil {
			return fmt.Errorf("failed to persist transcript for %s: %w", f.Name, err)
		}
		if _, err := s.catalog.LinkTranscriptToDeck(ctx, deckID, transcriptID); err != nil {
			return fmt.Errorf("failed to link transcript %d to deck %d: %w", transcriptID, deckID, err)
		}
	}
	return nil
}
