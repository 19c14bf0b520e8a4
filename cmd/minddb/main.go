// Command minddb turns a library of lecture transcripts into reviewed
// multiple-choice notes stored in a per-deck SQLite catalog.
//
// Usage:
//
//	minddb [flags] create <deck>                 generate notes for a deck
//	minddb [flags] notes <deck>                  list a deck's notes
//	minddb [flags] decks                         list decks
//	minddb [flags] delete-deck <deck>            delete a deck and its notes
//	minddb [flags] export <deck> <client-id>     export undelivered notes as TSV
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/minddb/minddb/internal/catalog"
	"github.com/minddb/minddb/internal/config"
	"github.com/minddb/minddb/internal/export"
	"github.com/minddb/minddb/internal/genai"
	"github.com/minddb/minddb/internal/library"
	"github.com/minddb/minddb/internal/pipeline"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "minddb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "path to config file")
	catalogName := flag.String("catalog", "", "catalog name (default: derived from deck name)")
	outPath := flag.String("o", "", "output file for export (default: stdout)")
	yes := flag.Bool("y", false, "skip confirmation prompts")
	verbose := flag.Bool("v", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("minddb %s (built %s)\n", version, buildTime)
		fmt.Printf("Build Mode: %s, SQLite Driver: %s\n", catalog.BuildMode, catalog.DriverName)
		return nil
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// Logs go to stderr; stdout is reserved for command output
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("no command given")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, logger: logger, catalogName: *catalogName, assumeYes: *yes}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "create":
		return app.create(ctx, rest)
	case "notes":
		return app.notes(ctx, rest)
	case "decks":
		return app.decks(ctx)
	case "delete-deck":
		return app.deleteDeck(ctx, rest)
	case "export":
		return app.export(ctx, rest, *outPath)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type app struct {
	cfg         config.Config
	logger      *slog.Logger
	catalogName string
	assumeYes   bool
}

// openCatalog opens the catalog for a deck. Each deck lives in its own
// catalog file named after the deck unless -catalog overrides it.
func (a *app) openCatalog(deckName string) (*catalog.Store, error) {
	name := a.catalogName
	if name == "" {
		name = CamelCase(deckName)
	}
	return catalog.Open(a.cfg.Catalog.Dir, name)
}

func (a *app) create(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minddb create <deck>")
	}
	deckName := args[0]

	store, err := a.openCatalog(deckName)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	generator, err := genai.NewFromEnv()
	if err != nil {
		return err
	}
	defer func() { _ = generator.Close() }()

	scanner := library.NewScanner(store, a.logger)
	p := pipeline.New(generator, store, scanner, pipeline.Config{
		QuestionCount:        a.cfg.Pipeline.QuestionCount,
		MaxConcurrentReviews: a.cfg.Pipeline.MaxConcurrentReviews,
		ReviewTimeout:        a.cfg.Pipeline.ReviewTimeout,
		ReviewAttempts:       a.cfg.Pipeline.ReviewAttempts,
		ReviewRetryDelay:     a.cfg.Pipeline.ReviewRetryDelay,
		DraftCooldown:        a.cfg.Pipeline.DraftCooldown,
	}, a.logger)

	stats, err := p.Run(ctx, a.cfg.Library.Dir, deckName)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d file(s), created %d note(s) (%d revised) in %s\n",
		stats.FilesProcessed, stats.NotesCreated, stats.Revised,
		stats.Duration.Round(10*time.Millisecond))
	return nil
}

func (a *app) notes(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minddb notes <deck>")
	}
	deckName := args[0]

	store, err := a.openCatalog(deckName)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	deck, err := findDeck(ctx, store, deckName)
	if err != nil {
		return err
	}
	notes, err := store.GetNotesByDeckID(ctx, deck.ID)
	if err != nil {
		return err
	}

	for _, note := range notes {
		fmt.Printf("[%d] %s\n", note.ID, wrap(note.Question, 80))
		if note.CorrectAnswer != nil {
			fmt.Printf("    correct: %s\n", *note.CorrectAnswer)
		}
	}
	fmt.Printf("%d note(s) in deck %q\n", len(notes), deck.Name)
	return nil
}

func (a *app) decks(ctx context.Context) error {
	if a.catalogName == "" {
		return errors.New("decks requires -catalog")
	}
	store, err := a.openCatalog("")
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	decks, err := store.GetAllDecks(ctx)
	if err != nil {
		return err
	}
	for _, deck := range decks {
		fmt.Printf("[%d] %s (created %s)\n",
			deck.ID, deck.Name, deck.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *app) deleteDeck(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: minddb delete-deck <deck>")
	}
	deckName := args[0]

	store, err := a.openCatalog(deckName)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	deck, err := findDeck(ctx, store, deckName)
	if err != nil {
		return err
	}

	if !a.assumeYes {
		fmt.Printf("Delete deck %q and ALL its notes? [y/N] ", deckName)
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	deleted, err := store.DeleteDeckAndNotes(ctx, deck.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("deck %q: %w", deckName, catalog.ErrNotFound)
	}
	fmt.Printf("Deleted deck %q and its notes\n", deckName)
	return nil
}

func (a *app) export(ctx context.Context, args []string, outPath string) error {
	if len(args) != 2 {
		return errors.New("usage: minddb export <deck> <client-id>")
	}
	deckName, clientID := args[0], args[1]

	store, err := a.openCatalog(deckName)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	exporter := export.New(store, a.logger)
	result, err := exporter.Export(ctx, deckName, clientID, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d note(s) in batch %d\n",
		result.NotesExported, result.ClientImportID)
	return nil
}

func findDeck(ctx context.Context, store *catalog.Store, name string) (*catalog.Deck, error) {
	decks, err := store.GetAllDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, deck := range decks {
		if deck.Name == name {
			return deck, nil
		}
	}
	return nil, fmt.Errorf("deck %q: %w", name, catalog.ErrNotFound)
}

// wrap breaks text onto lines no wider than width, indenting continuation
// lines to match the listing layout.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n    ")
				lineLen = 4
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

// CamelCase derives a catalog file name from a deck name: "cell biology"
// becomes "CellBiology". Characters outside letters and digits separate
// words and are dropped.
func CamelCase(s string) string {
	out := make([]rune, 0, len(s))
	upperNext := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			out = append(out, unicode.ToUpper(r))
			upperNext = false
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
