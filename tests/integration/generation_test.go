package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minddb/minddb/internal/catalog"
	"github.com/minddb/minddb/internal/export"
	"github.com/minddb/minddb/internal/genai"
	"github.com/minddb/minddb/internal/library"
	"github.com/minddb/minddb/internal/pipeline"
)

// TestFullGenerationFlow drives the complete flow against a real on-disk
// catalog: scan a library, generate and review notes through a scripted
// generator, persist them, export them, and verify a second run has
// nothing left to do.
func TestFullGenerationFlow(t *testing.T) {
	dir := t.TempDir()
	libraryDir := filepath.Join(dir, "library")
	require.NoError(t, os.Mkdir(libraryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libraryDir, "lecture01.txt"),
		[]byte("The mitochondrion produces ATP through oxidative phosphorylation."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(libraryDir, "lecture02.md"),
		[]byte("The nucleus stores the genome."), 0o644))

	store, err := catalog.Open(filepath.Join(dir, "catalogs"), "Biology")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	gen := &scriptedGenerator{}
	scanner := library.NewScanner(store, nil)
	p := pipeline.New(gen, store, scanner, pipeline.Config{
		QuestionCount:        2,
		MaxConcurrentReviews: 2,
		ReviewTimeout:        5 * time.Second,
		ReviewAttempts:       3,
		ReviewRetryDelay:     time.Millisecond,
		DraftCooldown:        0,
	}, nil)

	ctx := context.Background()
	stats, err := p.Run(ctx, libraryDir, "Biology")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesProcessed)
	assert.Equal(t, 2, stats.NotesCreated)

	// The aggregate transcript carried both files to the summarize stage
	assert.Contains(t, gen.summarizedText, "# lecture01.txt")
	assert.Contains(t, gen.summarizedText, "# lecture02.md")

	// A second run finds nothing new
	_, err = p.Run(ctx, libraryDir, "Biology")
	assert.ErrorIs(t, err, library.ErrNoUnprocessedContent)

	// Export delivers both notes once
	exporter := export.New(store, nil)
	var buf bytes.Buffer
	result, err := exporter.Export(ctx, "Biology", "anki-desktop", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NotesExported)
	assert.Len(t, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), 2)

	_, err = exporter.Export(ctx, "Biology", "anki-desktop", &bytes.Buffer{})
	assert.ErrorIs(t, err, export.ErrNothingToExport)

	// Deleting the deck clears notes but keeps transcript history
	deck, err := store.GetOrCreateDeck(ctx, "Biology")
	require.NoError(t, err)
	deleted, err := store.DeleteDeckAndNotes(ctx, deck.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	transcripts, err := store.GetTranscripts(ctx, "lecture01.txt")
	require.NoError(t, err)
	assert.Len(t, transcripts, 1)
}

// scriptedGenerator plays the provider side of the pipeline.
type scriptedGenerator struct {
	summarizedText string
	draftCount     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req genai.Request) (*genai.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload interface{}
	switch {
	case strings.Contains(req.Prompt, "topic summary"):
		g.summarizedText = req.Prompt
		payload = pipeline.TopicSummary{
			Title:       "Cell Biology",
			Summary:     "Organelles and their functions.",
			KeyConcepts: []string{"mitochondria", "nucleus"},
		}
	case strings.Contains(req.Prompt, "multiple-choice study questions"):
		g.draftCount++
		payload = pipeline.QuestionList{Questions: []pipeline.Question{
			question("What produces ATP?"),
			question("What stores the genome?"),
		}}
	default:
		payload = pipeline.ReviewedQuestion{
			Verdict:  pipeline.VerdictSatisfactory,
			Question: question(fmt.Sprintf("reviewed %d", g.draftCount)),
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &genai.Result{Raw: raw, Provider: "scripted", Model: "scripted"}, nil
}

func (g *scriptedGenerator) Provider() string { return "scripted" }
func (g *scriptedGenerator) Model() string    { return "scripted" }
func (g *scriptedGenerator) Close() error     { return nil }

func question(text string) pipeline.Question {
	return pipeline.Question{
		Question:      text,
		AnswerA:       "right",
		AnswerB:       "wrong",
		AnswerC:       "wrong",
		AnswerD:       "wrong",
		CorrectAnswer: "a",
		Explanation:   "because",
	}
}
