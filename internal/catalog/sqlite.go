package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store implements the Catalog interface using SQLite
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single connection: the catalog is a single-writer store
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open opens (creating if necessary) the catalog database <name>.db in dir
// and applies pending schema migrations.
func Open(dir, name string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return OpenPath(filepath.Join(dir, name+".db"))
}

// OpenPath opens a catalog at an explicit database path. Tests use
// ":memory:" here.
func OpenPath(dbPath string) (*Store, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Exists reports whether a catalog database file is present at dir/<name>.db.
func Exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name+".db"))
	return err == nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *Store) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// storeTx wraps a SQL transaction
type storeTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *storeTx) Commit() error {
	return t.tx.Commit()
}

func (t *storeTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *storeTx) querier() querier {
	return t.tx
}

func (s *Store) querier() querier {
	return s.db
}

// Transcript operations

func (s *Store) insertTranscriptWithQuerier(ctx context.Context, q querier, filename string, checksum uint32) (int64, error) {
	query := `
		INSERT INTO transcripts (filename, checksum, created_at)
		VALUES (?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query, filename, int64(checksum), time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert transcript: %w", constraintError(err, "transcripts"))
	}
	return result.LastInsertId()
}

// InsertTranscript unconditionally inserts a transcript row and returns its id.
func (s *Store) InsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error) {
	return s.insertTranscriptWithQuerier(ctx, s.querier(), filename, checksum)
}

func (s *Store) getOrInsertTranscriptWithQuerier(ctx context.Context, q querier, filename string, checksum uint32) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM transcripts WHERE filename = ? AND checksum = ?",
		filename, int64(checksum)).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	return s.insertTranscriptWithQuerier(ctx, q, filename, checksum)
}

// GetOrInsertTranscript returns the id of the transcript matching the exact
// (filename, checksum) pair, inserting one if absent. At most one row exists
// per distinct content version of a filename.
func (s *Store) GetOrInsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error) {
	return s.getOrInsertTranscriptWithQuerier(ctx, s.querier(), filename, checksum)
}

func scanTranscript(row interface{ Scan(...interface{}) error }) (*Transcript, error) {
	var t Transcript
	var checksum int64
	if err := row.Scan(&t.ID, &t.Filename, &checksum, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Checksum = uint32(checksum)
	return &t, nil
}

func (s *Store) getTranscriptWithQuerier(ctx context.Context, q querier, transcriptID int64) (*Transcript, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, filename, checksum, created_at FROM transcripts WHERE id = ?",
		transcriptID)
	t, err := scanTranscript(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTranscript retrieves a transcript by id.
func (s *Store) GetTranscript(ctx context.Context, transcriptID int64) (*Transcript, error) {
	return s.getTranscriptWithQuerier(ctx, s.querier(), transcriptID)
}

func (s *Store) getTranscriptsWithQuerier(ctx context.Context, q querier, filename string) ([]*Transcript, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, filename, checksum, created_at
		FROM transcripts
		WHERE filename = ?
		ORDER BY created_at DESC, id DESC
	`, filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	transcripts := make([]*Transcript, 0)
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}
	return transcripts, rows.Err()
}

// GetTranscripts retrieves every content version recorded for a filename,
// newest first.
func (s *Store) GetTranscripts(ctx context.Context, filename string) ([]*Transcript, error) {
	return s.getTranscriptsWithQuerier(ctx, s.querier(), filename)
}

func (s *Store) deleteTranscriptsWithQuerier(ctx context.Context, q querier, filename string) (int64, error) {
	result, err := q.ExecContext(ctx, "DELETE FROM transcripts WHERE filename = ?", filename)
	if err != nil {
		return 0, constraintError(err, "transcripts")
	}
	return result.RowsAffected()
}

// DeleteTranscripts removes all transcript rows for a filename and returns
// the number deleted.
func (s *Store) DeleteTranscripts(ctx context.Context, filename string) (int64, error) {
	return s.deleteTranscriptsWithQuerier(ctx, s.querier(), filename)
}

// Deck operations

func (s *Store) insertDeckWithQuerier(ctx context.Context, q querier, name string) (int64, error) {
	result, err := q.ExecContext(ctx,
		"INSERT INTO decks (name, created_at) VALUES (?, ?)", name, time.Now())
	if err != nil {
		return 0, constraintError(err, "decks")
	}
	return result.LastInsertId()
}

// InsertDeck inserts a new deck row and returns its id. Deck names are
// unique; a duplicate name yields a ConstraintError.
func (s *Store) InsertDeck(ctx context.Context, name string) (int64, error) {
	return s.insertDeckWithQuerier(ctx, s.querier(), name)
}

func (s *Store) getDeckWithQuerier(ctx context.Context, q querier, deckID int64) (*Deck, error) {
	var deck Deck
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM decks WHERE id = ?", deckID).
		Scan(&deck.ID, &deck.Name, &deck.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// GetDeck retrieves a deck by id.
func (s *Store) GetDeck(ctx context.Context, deckID int64) (*Deck, error) {
	return s.getDeckWithQuerier(ctx, s.querier(), deckID)
}

func (s *Store) getAllDecksWithQuerier(ctx context.Context, q querier) ([]*Deck, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, created_at FROM decks ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	decks := make([]*Deck, 0)
	for rows.Next() {
		var deck Deck
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.CreatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, &deck)
	}
	return decks, rows.Err()
}

// GetAllDecks retrieves all decks, newest first.
func (s *Store) GetAllDecks(ctx context.Context) ([]*Deck, error) {
	return s.getAllDecksWithQuerier(ctx, s.querier())
}

func (s *Store) getOrCreateDeckWithQuerier(ctx context.Context, q querier, name string) (*Deck, error) {
	var deck Deck
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM decks WHERE name = ?", name).
		Scan(&deck.ID, &deck.Name, &deck.CreatedAt)
	if err == nil {
		return &deck, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	id, err := s.insertDeckWithQuerier(ctx, q, name)
	if err != nil {
		return nil, err
	}
	return s.getDeckWithQuerier(ctx, q, id)
}

// GetOrCreateDeck returns the deck with the exact name, creating it first
// if absent. Idempotent under the single-writer model.
func (s *Store) GetOrCreateDeck(ctx context.Context, name string) (*Deck, error) {
	return s.getOrCreateDeckWithQuerier(ctx, s.querier(), name)
}

func (s *Store) listDecksWithQuerier(ctx context.Context, q querier) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT name FROM decks ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListDecks lists all deck names, newest first.
func (s *Store) ListDecks(ctx context.Context) ([]string, error) {
	return s.listDecksWithQuerier(ctx, s.querier())
}

// DeleteDeckAndNotes removes a deck together with its transcript links,
// its notes and those notes' client-import links, inside one transaction.
// Returns false if the deck does not exist. On any failure mid-transaction
// everything rolls back; no partial deletion is observable.
func (s *Store) DeleteDeckAndNotes(ctx context.Context, deckID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM decks WHERE id = ?", deckID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// Delete in dependency order: links first, then notes, then the deck.
	steps := []struct {
		query string
		args  []interface{}
	}{
		{"DELETE FROM transcript_deck_processing WHERE deck_id = ?", []interface{}{deckID}},
		{`DELETE FROM note_client_imports
		  WHERE note_id IN (SELECT id FROM notes WHERE deck_id = ?)`, []interface{}{deckID}},
		{"DELETE FROM notes WHERE deck_id = ?", []interface{}{deckID}},
		{"DELETE FROM decks WHERE id = ?", []interface{}{deckID}},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, step.args...); err != nil {
			return false, fmt.Errorf("failed to delete deck %d: %w", deckID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Processing provenance

func (s *Store) isFileProcessedWithQuerier(ctx context.Context, q querier, filename string, checksum uint32, deckName string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `
		SELECT 1 FROM transcripts t
		JOIN transcript_deck_processing tdp ON t.id = tdp.transcript_id
		JOIN decks d ON d.id = tdp.deck_id
		WHERE t.filename = ?
		AND t.checksum = ?
		AND d.name = ?
		LIMIT 1
	`, filename, int64(checksum), deckName).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsFileProcessed reports whether a transcript with the exact
// (filename, checksum) pair is linked to a deck with the exact name.
// An edited file always comes back false because its checksum changed.
func (s *Store) IsFileProcessed(ctx context.Context, filename string, checksum uint32, deckName string) (bool, error) {
	return s.isFileProcessedWithQuerier(ctx, s.querier(), filename, checksum, deckName)
}

func (s *Store) linkTranscriptToDeckWithQuerier(ctx context.Context, q querier, deckID, transcriptID int64) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO transcript_deck_processing (deck_id, transcript_id, created_at)
		VALUES (?, ?, ?)
	`, deckID, transcriptID, time.Now())
	if err != nil {
		return 0, constraintError(err, "transcript_deck_processing")
	}
	return result.LastInsertId()
}

// LinkTranscriptToDeck records that a transcript has been processed for a
// deck. Unknown ids and duplicate pairs yield a ConstraintError.
func (s *Store) LinkTranscriptToDeck(ctx context.Context, deckID, transcriptID int64) (int64, error) {
	return s.linkTranscriptToDeckWithQuerier(ctx, s.querier(), deckID, transcriptID)
}

func (s *Store) getDeckTranscriptsWithQuerier(ctx context.Context, q querier, deckID int64) ([]*Transcript, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.filename, t.checksum, t.created_at
		FROM transcripts t
		JOIN transcript_deck_processing tdp ON t.id = tdp.transcript_id
		WHERE tdp.deck_id = ?
		ORDER BY t.created_at DESC, t.id DESC
	`, deckID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	transcripts := make([]*Transcript, 0)
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, t)
	}
	return transcripts, rows.Err()
}

// GetDeckTranscripts lists every transcript linked to a deck, newest first.
func (s *Store) GetDeckTranscripts(ctx context.Context, deckID int64) ([]*Transcript, error) {
	return s.getDeckTranscriptsWithQuerier(ctx, s.querier(), deckID)
}

// Note operations

func (s *Store) insertNoteWithQuerier(ctx context.Context, q querier, note *Note) (int64, error) {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO notes (
			deck_id, question, answer_a, answer_b, answer_c, answer_d,
			correct_answer, explanation, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.DeckID, note.Question, note.AnswerA, note.AnswerB, note.AnswerC,
		note.AnswerD, note.CorrectAnswer, note.Explanation, now)
	if err != nil {
		return 0, constraintError(err, "notes")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	note.ID = id
	note.CreatedAt = now
	return id, nil
}

// InsertNote inserts a note. A correct answer outside {a, b, c, d} or an
// unknown deck id yields a ConstraintError.
func (s *Store) InsertNote(ctx context.Context, note *Note) (int64, error) {
	return s.insertNoteWithQuerier(ctx, s.querier(), note)
}

const noteColumns = `id, deck_id, question, answer_a, answer_b, answer_c,
	answer_d, correct_answer, explanation, created_at`

func scanNote(row interface{ Scan(...interface{}) error }) (*Note, error) {
	var note Note
	var answerA, answerB, answerC, answerD, correct, explanation sql.NullString
	err := row.Scan(&note.ID, &note.DeckID, &note.Question,
		&answerA, &answerB, &answerC, &answerD, &correct, &explanation,
		&note.CreatedAt)
	if err != nil {
		return nil, err
	}
	if answerA.Valid {
		note.AnswerA = &answerA.String
	}
	if answerB.Valid {
		note.AnswerB = &answerB.String
	}
	if answerC.Valid {
		note.AnswerC = &answerC.String
	}
	if answerD.Valid {
		note.AnswerD = &answerD.String
	}
	if correct.Valid {
		note.CorrectAnswer = &correct.String
	}
	if explanation.Valid {
		note.Explanation = explanation.String
	}
	return &note, nil
}

func (s *Store) getNoteWithQuerier(ctx context.Context, q querier, noteID int64) (*Note, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", noteID)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// GetNote retrieves a note by id.
func (s *Store) GetNote(ctx context.Context, noteID int64) (*Note, error) {
	return s.getNoteWithQuerier(ctx, s.querier(), noteID)
}

func (s *Store) getNotesByDeckIDWithQuerier(ctx context.Context, q querier, deckID int64) ([]*Note, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE deck_id = ?
		ORDER BY created_at DESC, id DESC
	`, deckID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := make([]*Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// GetNotesByDeckID lists every note belonging to a deck, newest first.
func (s *Store) GetNotesByDeckID(ctx context.Context, deckID int64) ([]*Note, error) {
	return s.getNotesByDeckIDWithQuerier(ctx, s.querier(), deckID)
}

// Client-import operations

func (s *Store) createClientImportWithQuerier(ctx context.Context, q querier, clientID string) (int64, error) {
	result, err := q.ExecContext(ctx,
		"INSERT INTO client_imports (client_id, created_at) VALUES (?, ?)",
		clientID, time.Now())
	if err != nil {
		return 0, constraintError(err, "client_imports")
	}
	return result.LastInsertId()
}

// CreateClientImport records a new delivery batch for an external client.
func (s *Store) CreateClientImport(ctx context.Context, clientID string) (int64, error) {
	return s.createClientImportWithQuerier(ctx, s.querier(), clientID)
}

func (s *Store) getClientImportWithQuerier(ctx context.Context, q querier, importID int64) (*ClientImport, error) {
	var ci ClientImport
	err := q.QueryRowContext(ctx,
		"SELECT id, client_id, created_at FROM client_imports WHERE id = ?",
		importID).Scan(&ci.ID, &ci.ClientID, &ci.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

// GetClientImport retrieves a client import by id.
func (s *Store) GetClientImport(ctx context.Context, importID int64) (*ClientImport, error) {
	return s.getClientImportWithQuerier(ctx, s.querier(), importID)
}

func (s *Store) linkNoteToClientImportWithQuerier(ctx context.Context, q querier, noteID, clientImportID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO note_client_imports (note_id, client_import_id)
		VALUES (?, ?)
	`, noteID, clientImportID)
	if err != nil {
		return constraintError(err, "note_client_imports")
	}
	return nil
}

// LinkNoteToClientImport records that a note was delivered in an import
// batch. Unknown ids and duplicate pairs yield a ConstraintError.
func (s *Store) LinkNoteToClientImport(ctx context.Context, noteID, clientImportID int64) error {
	return s.linkNoteToClientImportWithQuerier(ctx, s.querier(), noteID, clientImportID)
}

func (s *Store) getNotesByClientImportWithQuerier(ctx context.Context, q querier, clientImportID int64) ([]*Note, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT n.id, n.deck_id, n.question, n.answer_a, n.answer_b,
		       n.answer_c, n.answer_d, n.correct_answer, n.explanation,
		       n.created_at
		FROM notes n
		JOIN note_client_imports nci ON n.id = nci.note_id
		WHERE nci.client_import_id = ?
	`, clientImportID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := make([]*Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// GetNotesByClientImport lists the notes delivered in an import batch.
func (s *Store) GetNotesByClientImport(ctx context.Context, clientImportID int64) ([]*Note, error) {
	return s.getNotesByClientImportWithQuerier(ctx, s.querier(), clientImportID)
}

func (s *Store) getClientImportsByNoteWithQuerier(ctx context.Context, q querier, noteID int64) ([]*ClientImport, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ci.id, ci.client_id, ci.created_at
		FROM client_imports ci
		JOIN note_client_imports nci ON ci.id = nci.client_import_id
		WHERE nci.note_id = ?
	`, noteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	imports := make([]*ClientImport, 0)
	for rows.Next() {
		var ci ClientImport
		if err := rows.Scan(&ci.ID, &ci.ClientID, &ci.CreatedAt); err != nil {
			return nil, err
		}
		imports = append(imports, &ci)
	}
	return imports, rows.Err()
}

// GetClientImportsByNote lists every import batch a note was delivered in.
func (s *Store) GetClientImportsByNote(ctx context.Context, noteID int64) ([]*ClientImport, error) {
	return s.getClientImportsByNoteWithQuerier(ctx, s.querier(), noteID)
}

// ListTables lists all tables in the catalog database.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Transaction implementations

func (t *storeTx) InsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error) {
	return t.store.insertTranscriptWithQuerier(ctx, t.querier(), filename, checksum)
}

func (t *storeTx) GetOrInsertTranscript(ctx context.Context, filename string, checksum uint32) (int64, error) {
	return t.store.getOrInsertTranscriptWithQuerier(ctx, t.querier(), filename, checksum)
}

func (t *storeTx) GetTranscript(ctx context.Context, transcriptID int64) (*Transcript, error) {
	return t.store.getTranscriptWithQuerier(ctx, t.querier(), transcriptID)
}

func (t *storeTx) GetTranscripts(ctx context.Context, filename string) ([]*Transcript, error) {
	return t.store.getTranscriptsWithQuerier(ctx, t.querier(), filename)
}

func (t *storeTx) DeleteTranscripts(ctx context.Context, filename string) (int64, error) {
	return t.store.deleteTranscriptsWithQuerier(ctx, t.querier(), filename)
}

func (t *storeTx) InsertDeck(ctx context.Context, name string) (int64, error) {
	return t.store.insertDeckWithQuerier(ctx, t.querier(), name)
}

func (t *storeTx) GetDeck(ctx context.Context, deckID int64) (*Deck, error) {
	return t.store.getDeckWithQuerier(ctx, t.querier(), deckID)
}

func (t *storeTx) GetAllDecks(ctx context.Context) ([]*Deck, error) {
	return t.store.getAllDecksWithQuerier(ctx, t.querier())
}

func (t *storeTx) GetOrCreateDeck(ctx context.Context, name string) (*Deck, error) {
	return t.store.getOrCreateDeckWithQuerier(ctx, t.querier(), name)
}

func (t *storeTx) ListDecks(ctx context.Context) ([]string, error) {
	return t.store.listDecksWithQuerier(ctx, t.querier())
}

func (t *storeTx) DeleteDeckAndNotes(ctx context.Context, deckID int64) (bool, error) {
	// Cascade delete manages its own transaction
	return false, errors.New("delete deck inside a transaction not supported")
}

func (t *storeTx) IsFileProcessed(ctx context.Context, filename string, checksum uint32, deckName string) (bool, error) {
	return t.store.isFileProcessedWithQuerier(ctx, t.querier(), filename, checksum, deckName)
}

func (t *storeTx) LinkTranscriptToDeck(ctx context.Context, deckID, transcriptID int64) (int64, error) {
	return t.store.linkTranscriptToDeckWithQuerier(ctx, t.querier(), deckID, transcriptID)
}

func (t *storeTx) GetDeckTranscripts(ctx context.Context, deckID int64) ([]*Transcript, error) {
	return t.store.getDeckTranscriptsWithQuerier(ctx, t.querier(), deckID)
}

func (t *storeTx) InsertNote(ctx context.Context, note *Note) (int64, error) {
	return t.store.insertNoteWithQuerier(ctx, t.querier(), note)
}

func (t *storeTx) GetNote(ctx context.Context, noteID int64) (*Note, error) {
	return t.store.getNoteWithQuerier(ctx, t.querier(), noteID)
}

func (t *storeTx) GetNotesByDeckID(ctx context.Context, deckID int64) ([]*Note, error) {
	return t.store.getNotesByDeckIDWithQuerier(ctx, t.querier(), deckID)
}

func (t *storeTx) CreateClientImport(ctx context.Context, clientID string) (int64, error) {
	return t.store.createClientImportWithQuerier(ctx, t.querier(), clientID)
}

func (t *storeTx) GetClientImport(ctx context.Context, importID int64) (*ClientImport, error) {
	return t.store.getClientImportWithQuerier(ctx, t.querier(), importID)
}

func (t *storeTx) LinkNoteToClientImport(ctx context.Context, noteID, clientImportID int64) error {
	return t.store.linkNoteToClientImportWithQuerier(ctx, t.querier(), noteID, clientImportID)
}

func (t *storeTx) GetNotesByClientImport(ctx context.Context, clientImportID int64) ([]*Note, error) {
	return t.store.getNotesByClientImportWithQuerier(ctx, t.querier(), clientImportID)
}

func (t *storeTx) GetClientImportsByNote(ctx context.Context, noteID int64) ([]*ClientImport, error) {
	return t.store.getClientImportsByNoteWithQuerier(ctx, t.querier(), noteID)
}

func (t *storeTx) ListTables(ctx context.Context) ([]string, error) {
	return t.store.ListTables(ctx)
}

func (t *storeTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *storeTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
