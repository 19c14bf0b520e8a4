package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minddb/minddb/internal/catalog"
)

func setupExporter(t *testing.T) (*Exporter, *catalog.Store) {
	store, err := catalog.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, nil), store
}

func strPtr(s string) *string { return &s }

func insertNote(t *testing.T, store *catalog.Store, deckID int64, question string) int64 {
	id, err := store.InsertNote(context.Background(), &catalog.Note{
		DeckID:        deckID,
		Question:      question,
		AnswerA:       strPtr("right"),
		AnswerB:       strPtr("wrong"),
		AnswerC:       strPtr("wrong"),
		AnswerD:       strPtr("wrong"),
		CorrectAnswer: strPtr("a"),
		Explanation:   "because",
	})
	require.NoError(t, err)
	return id
}

func TestExport(t *testing.T) {
	exporter, store := setupExporter(t)
	ctx := context.Background()

	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)
	insertNote(t, store, deck.ID, "first question")
	insertNote(t, store, deck.ID, "second question")

	var buf bytes.Buffer
	result, err := exporter.Export(ctx, "Biology", "anki-desktop", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NotesExported)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	// Creation order, tab-separated
	assert.Equal(t,
		"first question\tright\twrong\twrong\twrong\ta\tbecause", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "second question\t"))

	// The batch is recorded in the catalog
	notes, err := store.GetNotesByClientImport(ctx, result.ClientImportID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestExport_SkipsDeliveredNotes(t *testing.T) {
	exporter, store := setupExporter(t)
	ctx := context.Background()

	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)
	insertNote(t, store, deck.ID, "first question")

	var buf bytes.Buffer
	_, err = exporter.Export(ctx, "Biology", "anki-desktop", &buf)
	require.NoError(t, err)

	// Everything delivered; a second export has nothing to do
	_, err = exporter.Export(ctx, "Biology", "anki-desktop", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNothingToExport)

	// New notes since the last batch go out alone
	insertNote(t, store, deck.ID, "third question")
	buf.Reset()
	result, err := exporter.Export(ctx, "Biology", "anki-desktop", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesExported)
	assert.True(t, strings.HasPrefix(buf.String(), "third question\t"))
}

func TestExport_PerClientIndependence(t *testing.T) {
	exporter, store := setupExporter(t)
	ctx := context.Background()

	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)
	insertNote(t, store, deck.ID, "first question")

	_, err = exporter.Export(ctx, "Biology", "anki-desktop", &bytes.Buffer{})
	require.NoError(t, err)

	// A different client still gets the note
	result, err := exporter.Export(ctx, "Biology", "anki-mobile", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotesExported)
}

func TestExport_UnknownDeck(t *testing.T) {
	exporter, _ := setupExporter(t)

	_, err := exporter.Export(context.Background(), "Nope", "anki-desktop", &bytes.Buffer{})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestExport_FlattensControlCharacters(t *testing.T) {
	exporter, store := setupExporter(t)
	ctx := context.Background()

	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)
	insertNote(t, store, deck.ID, "line one\nline\ttwo")

	var buf bytes.Buffer
	_, err = exporter.Export(ctx, "Biology", "anki-desktop", &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "line one line two\t"))
}
