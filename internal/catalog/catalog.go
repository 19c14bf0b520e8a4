package catalog

import (
	"context"
	"time"
)

// Catalog defines the persistence interface for decks, transcripts, notes
// and client-import provenance.
type Catalog interface {
	// Transcript operations
	InsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error)
	GetOrInsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error)
	GetTranscript(ctx context.Context, transcriptID int64) (*Transcript, error)
	GetTranscripts(ctx context.Context, filename string) ([]*Transcript, error)
	DeleteTranscripts(ctx context.Context, filename string) (int64, error)

	// Deck operations
	InsertDeck(ctx context.Context, name string) (int64, error)
	GetDeck(ctx context.Context, deckID int64) (*Deck, error)
	GetAllDecks(ctx context.Context) ([]*Deck, error)
	GetOrCreateDeck(ctx context.Context, name string) (*Deck, error)
	ListDecks(ctx context.Context) ([]string, error)
	DeleteDeckAndNotes(ctx context.Context, deckID int64) (bool, error)

	// Processing provenance
	IsFileProcessed(ctx context.Context, filename string, checksum uint32, deckName string) (bool, error)
	LinkTranscriptToDeck(ctx context.Context, deckID, transcriptID int64) (int64, error)
	GetDeckTranscripts(ctx context.Context, deckID int64) ([]*Transcript, error)

	// Note operations
	InsertNote(ctx context.Context, note *Note) (int64, error)
	GetNote(ctx context.Context, noteID int64) (*Note, error)
	GetNotesByDeckID(ctx context.Context, deckID int64) ([]*Note, error)

	// Client-import operations
	CreateClientImport(ctx context.Context, clientID string) (int64, error)
	GetClientImport(ctx context.Context, importID int64) (*ClientImport, error)
	LinkNoteToClientImport(ctx context.Context, noteID, clientImportID int64) error
	GetNotesByClientImport(ctx context.Context, clientImportID int64) ([]*Note, error)
	GetClientImportsByNote(ctx context.Context, noteID int64) ([]*ClientImport, error)

	// Database operations
	ListTables(ctx context.Context) ([]string, error)
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a catalog transaction.
type Tx interface {
	Commit() error
	Rollback() error
	Catalog
}

// Deck is a named collection of notes.
type Deck struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Transcript is one content-addressed version of a source document.
// Two rows may share a filename when the file's content changed; the
// (Filename, Checksum) pair is the identity.
type Transcript struct {
	ID        int64
	Filename  string
	Checksum  uint32
	CreatedAt time.Time
}

// TranscriptDeckProcessing links a transcript to a deck it has been
// processed for. Its existence means "this exact content version has
// already produced notes in this deck".
type TranscriptDeckProcessing struct {
	ID           int64
	DeckID       int64
	TranscriptID int64
	CreatedAt    time.Time
}

// Note is one generated multiple-choice flashcard record.
type Note struct {
	ID            int64
	DeckID        int64
	Question      string
	AnswerA       *string
	AnswerB       *string
	AnswerC       *string
	AnswerD       *string
	CorrectAnswer *string // one of "a".."d" when set
	Explanation   string
	CreatedAt     time.Time
}

// ClientImport records one delivery batch of notes to a consuming
// client application.
type ClientImport struct {
	ID        int64
	ClientID  string
	CreatedAt time.Time
}
