// Package export delivers generated notes to an external client as
// tab-separated values, recording each delivery in the catalog so a note
// is never handed to the same client twice.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minddb/minddb/internal/catalog"
)

// ErrNothingToExport is returned when every note in the deck has already
// been delivered to the client.
var ErrNothingToExport = errors.New("no undelivered notes in deck")

// Exporter writes undelivered notes for a client and records the batch.
type Exporter struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// New creates an exporter.
func New(cat catalog.Catalog, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{catalog: cat, logger: logger}
}

// Result reports one export batch.
type Result struct {
	ClientImportID int64
	NotesExported  int
}

// Export writes every note of the deck not yet delivered to clientID as
// TSV rows on w, then records the delivery as one client import. Columns:
// question, the four answers, correct answer letter, explanation.
func (e *Exporter) Export(ctx context.Context, deckName, clientID string, w io.Writer) (*Result, error) {
	decks, err := e.catalog.GetAllDecks(ctx)
	if err != nil {
		return nil, err
	}
	var deck *catalog.Deck
	for _, d := range decks {
		if d.Name == deckName {
			deck = d
			break
		}
	}
	if deck == nil {
		return nil, fmt.Errorf("deck %q: %w", deckName, catalog.ErrNotFound)
	}

	notes, err := e.catalog.GetNotesByDeckID(ctx, deck.ID)
	if err != nil {
		return nil, err
	}

	pending := make([]*catalog.Note, 0, len(notes))
	for _, note := range notes {
		delivered, err := e.deliveredTo(ctx, note.ID, clientID)
		if err != nil {
			return nil, err
		}
		if !delivered {
			pending = append(pending, note)
		}
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: deck %q, client %q", ErrNothingToExport, deckName, clientID)
	}

	// Oldest first so the client sees notes in creation order
	for i, j := 0, len(pending)-1; i < j; i, j = i+1, j-1 {
		pending[i], pending[j] = pending[j], pending[i]
	}

	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	for _, note := range pending {
		record := []string{
			flatten(note.Question),
			flatten(deref(note.AnswerA)),
			flatten(deref(note.AnswerB)),
			flatten(deref(note.AnswerC)),
			flatten(deref(note.AnswerD)),
			deref(note.CorrectAnswer),
			flatten(note.Explanation),
		}
		if err := tsv.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write note %d: %w", note.ID, err)
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return nil, err
	}

	// Record the batch only after the rows were written out
	importID, err := e.catalog.CreateClientImport(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, note := range pending {
		if err := e.catalog.LinkNoteToClientImport(ctx, note.ID, importID); err != nil {
			return nil, fmt.Errorf("failed to record delivery of note %d: %w", note.ID, err)
		}
	}

	e.logger.Info("exported notes",
		"deck", deckName, "client", clientID, "count", len(pending), "import", importID)
	return &Result{ClientImportID: importID, NotesExported: len(pending)}, nil
}

// deliveredTo reports whether the note went out in any earlier batch for
// this client.
func (e *Exporter) deliveredTo(ctx context.Context, noteID int64, clientID string) (bool, error) {
	imports, err := e.catalog.GetClientImportsByNote(ctx, noteID)
	if err != nil {
		return false, err
	}
	for _, ci := range imports {
		if ci.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// flatten keeps one note per TSV row
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
