package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minddb/minddb/internal/catalog"
	"github.com/minddb/minddb/internal/checksum"
)

func setupScanner(t *testing.T) (*Scanner, *catalog.Store) {
	store, err := catalog.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewScanner(store, nil), store
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanUnprocessed_MissingDirectory(t *testing.T) {
	scanner, _ := setupScanner(t)

	_, err := scanner.ScanUnprocessed(context.Background(),
		filepath.Join(t.TempDir(), "nope"), "Biology")
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestScanUnprocessed_NoEligibleFiles(t *testing.T) {
	scanner, _ := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "notes.pdf", "binary stuff")
	writeFile(t, dir, "image.png", "png")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	_, err := scanner.ScanUnprocessed(context.Background(), dir, "Biology")
	assert.ErrorIs(t, err, ErrNoEligibleFiles)
}

func TestScanUnprocessed_PendingRecordsStayInMemory(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "lecture01.txt", "The cell is the unit of life.")
	writeFile(t, dir, "lecture02.md", "Mitochondria produce ATP.")
	writeFile(t, dir, "slides.pdf", "ignored")

	ctx := context.Background()
	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.Len(t, result.Files, 2)

	// Directory order
	assert.Equal(t, "lecture01.txt", result.Files[0].Name)
	assert.Equal(t, "lecture02.md", result.Files[1].Name)
	assert.Equal(t, checksum.Bytes([]byte("The cell is the unit of life.")),
		result.Files[0].Checksum)

	// Nothing touches the catalog until CommitLinks
	for _, f := range result.Files {
		transcripts, err := store.GetTranscripts(ctx, f.Name)
		require.NoError(t, err)
		assert.Empty(t, transcripts)
	}
}

func TestScanUnprocessed_SkipsProcessedFiles(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "lecture01.txt", "old content")
	writeFile(t, dir, "lecture02.txt", "new content")

	ctx := context.Background()
	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)

	// Mark lecture01 as already processed for this deck
	sum := checksum.Bytes([]byte("old content"))
	transcriptID, err := store.GetOrInsertTranscript(ctx, "lecture01.txt", sum)
	require.NoError(t, err)
	_, err = store.LinkTranscriptToDeck(ctx, deck.ID, transcriptID)
	require.NoError(t, err)

	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "lecture02.txt", result.Files[0].Name)
}

func TestScanUnprocessed_SkipsEmptyFiles(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "empty01.txt", "")
	writeFile(t, dir, "blank02.md", "  \n\t\n")
	writeFile(t, dir, "lecture03.txt", "real content")

	ctx := context.Background()
	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "lecture03.txt", result.Files[0].Name)

	// Empty files leave no transcript rows behind
	transcripts, err := store.GetTranscripts(ctx, "empty01.txt")
	require.NoError(t, err)
	assert.Empty(t, transcripts)
}

func TestScanUnprocessed_OnlyEmptyContent(t *testing.T) {
	scanner, _ := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "empty01.txt", "")
	writeFile(t, dir, "blank02.md", "\n\n")

	_, err := scanner.ScanUnprocessed(context.Background(), dir, "Biology")
	assert.ErrorIs(t, err, ErrNoUnprocessedContent)
}

func TestScanUnprocessed_EditedFileScansAgain(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "lecture01.txt", "version one")

	ctx := context.Background()
	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)

	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.NoError(t, scanner.CommitLinks(ctx, deck.ID, result.Files))

	// Fully processed now
	_, err = scanner.ScanUnprocessed(ctx, dir, "Biology")
	assert.ErrorIs(t, err, ErrNoUnprocessedContent)

	// Editing the file changes its checksum and makes it eligible again
	require.NoError(t, os.WriteFile(path, []byte("version two"), 0o644))
	result, err = scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "version two", result.Files[0].Content)
}

func TestScanUnprocessed_PerDeckIndependence(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "lecture01.txt", "shared content")

	ctx := context.Background()
	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)

	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.NoError(t, scanner.CommitLinks(ctx, deck.ID, result.Files))

	// The same file is still unprocessed for a different deck
	result, err = scanner.ScanUnprocessed(ctx, dir, "Chemistry")
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
}

func TestCommitLinks(t *testing.T) {
	scanner, store := setupScanner(t)
	dir := t.TempDir()
	writeFile(t, dir, "lecture01.txt", "content a")
	writeFile(t, dir, "lecture02.txt", "content b")

	ctx := context.Background()
	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)

	result, err := scanner.ScanUnprocessed(ctx, dir, "Biology")
	require.NoError(t, err)
	require.NoError(t, scanner.CommitLinks(ctx, deck.ID, result.Files))

	for _, f := range result.Files {
		// The transcript row exists now and the file counts as processed
		transcripts, err := store.GetTranscripts(ctx, f.Name)
		require.NoError(t, err)
		require.Len(t, transcripts, 1)

		processed, err := store.IsFileProcessed(ctx, f.Name, f.Checksum, "Biology")
		require.NoError(t, err)
		assert.True(t, processed)
	}
}

func TestAggregateTranscript(t *testing.T) {
	result := &ScanResult{Files: []File{
		{Name: "lecture01.txt", Content: "The cell is the unit of life.\n"},
		{Name: "lecture02.md", Content: "Mitochondria produce ATP."},
	}}

	want := "# lecture01.txt\n\nThe cell is the unit of life.\n\n" +
		"# lecture02.md\n\nMitochondria produce ATP."
	assert.Equal(t, want, result.AggregateTranscript())
}
