// Package catalog provides persistent storage for decks, transcripts and
// generated notes using SQLite.
//
// # Overview
//
// The catalog is the system of record for everything the note generator
// produces. It tracks which transcript files (identified by filename plus
// Adler-32 checksum) have been processed into which decks, the notes that
// came out of each run, and which notes were handed off to an external
// client in an import batch.
//
// # Content addressing
//
// A transcript row is keyed by the exact (filename, checksum) pair. Editing
// a source file changes its checksum and therefore produces a distinct
// transcript row; the old row remains as history. IsFileProcessed answers
// the question "has this exact content been processed into this deck", so
// edited files are always picked up again.
//
// # Schema
//
// Six tables, created by statically declared migrations (see migrations.go):
//
//   - decks:                       named note collections, name is unique
//   - transcripts:                 source files by (filename, checksum)
//   - transcript_deck_processing:  which transcript fed which deck
//   - notes:                       generated multiple-choice notes
//   - client_imports:              delivery batches for external clients
//   - note_client_imports:         which note went out in which batch
//
// Migration state lives in a schema_version table and versions are compared
// with semantic versioning, so re-opening an up-to-date catalog is a no-op.
//
// # Concurrency
//
// The store holds a single connection (SetMaxOpenConns(1)) with WAL mode
// enabled. All writes are serialized through that connection, which is the
// intended usage model: one generation run owns the catalog at a time.
//
// # Usage
//
//	store, err := catalog.Open(dir, "MyCatalog")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	deck, err := store.GetOrCreateDeck(ctx, "Biology")
//	...
package catalog
