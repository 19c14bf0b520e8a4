package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/minddb/minddb/internal/catalog"
	"github.com/minddb/minddb/internal/genai"
	"github.com/minddb/minddb/internal/library"
)

// TopicSummary is the structured output of the summarize stage. The list
// fields may be empty when the material gives nothing to fill them with.
type TopicSummary struct {
	Title           string   `json:"title" jsonschema:"description=Short title for the overall subject"`
	Summary         string   `json:"summary" jsonschema:"description=Faithful summary of the source material"`
	KeyConcepts     []string `json:"key_concepts" jsonschema:"description=Concepts a student must master"`
	CaseStudies     []string `json:"case_studies" jsonschema:"description=Case studies or concrete examples the material uses"`
	Methodologies   []string `json:"methodologies" jsonschema:"description=Methodologies or metrics the material introduces"`
	Recommendations []string `json:"practical_recommendations" jsonschema:"description=Practical recommendations the material gives"`
}

// Question is one drafted multiple-choice question.
type Question struct {
	Question      string `json:"question"`
	AnswerA       string `json:"answer_a"`
	AnswerB       string `json:"answer_b"`
	AnswerC       string `json:"answer_c"`
	AnswerD       string `json:"answer_d"`
	CorrectAnswer string `json:"correct_answer" jsonschema:"enum=a,enum=b,enum=c,enum=d"`
	Explanation   string `json:"explanation"`
}

// QuestionList wraps the draft stage output so the schema root is an object.
type QuestionList struct {
	Questions []Question `json:"questions"`
}

// Review results a reviewer may return.
const (
	VerdictSatisfactory     = "satisfactory"
	VerdictNeedsImprovement = "needs_improvement"
)

// ReviewedQuestion is the structured output of one review call. The
// question it carries is what gets persisted, whatever the verdict says.
type ReviewedQuestion struct {
	Verdict       string   `json:"review_result" jsonschema:"enum=satisfactory,enum=needs_improvement"`
	Justification string   `json:"justification_for_changes" jsonschema:"description=Why the question was changed; empty when satisfactory"`
	Question      Question `json:"question"`
}

// Config tunes the generation pipeline.
type Config struct {
	// QuestionCount is the number of questions to draft per run
	QuestionCount int
	// MaxConcurrentReviews bounds in-flight review calls
	MaxConcurrentReviews int64
	// ReviewTimeout caps one review attempt
	ReviewTimeout time.Duration
	// ReviewAttempts is the total attempts per question, including the first
	ReviewAttempts int
	// ReviewRetryDelay is the fixed wait between review attempts
	ReviewRetryDelay time.Duration
	// DraftCooldown is the pause between drafting and review, giving
	// provider rate limits room to recover after the large draft call
	DraftCooldown time.Duration
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount:        10,
		MaxConcurrentReviews: 1,
		ReviewTimeout:        30 * time.Second,
		ReviewAttempts:       3,
		ReviewRetryDelay:     10 * time.Second,
		DraftCooldown:        60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.QuestionCount <= 0 {
		c.QuestionCount = def.QuestionCount
	}
	if c.MaxConcurrentReviews <= 0 {
		c.MaxConcurrentReviews = def.MaxConcurrentReviews
	}
	if c.ReviewTimeout <= 0 {
		c.ReviewTimeout = def.ReviewTimeout
	}
	if c.ReviewAttempts <= 0 {
		c.ReviewAttempts = def.ReviewAttempts
	}
	return c
}

// Stats summarizes one pipeline run.
type Stats struct {
	FilesProcessed   int
	QuestionsDrafted int
	NotesCreated     int
	Revised          int
	Duration         time.Duration
}

// Pipeline turns unprocessed library content into reviewed notes.
type Pipeline struct {
	generator genai.Generator
	catalog   catalog.Catalog
	scanner   *library.Scanner
	config    Config
	logger    *slog.Logger
}

// New creates a pipeline.
func New(gen genai.Generator, cat catalog.Catalog, scanner *library.Scanner, config Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		generator: gen,
		catalog:   cat,
		scanner:   scanner,
		config:    config.withDefaults(),
		logger:    logger,
	}
}

// Run executes the full pipeline for one deck: scan the library, summarize
// the unprocessed material, draft questions, review each one, persist the
// notes and finally mark the source files as processed. A failure anywhere
// before persistence leaves the files unmarked so the next run retries
// them.
//
// Note persistence is per note. If an insert fails partway through, notes
// already inserted stay in the catalog; the files are still not marked
// processed, so a rerun can produce duplicates for this deck.
func (p *Pipeline) Run(ctx context.Context, libraryDir, deckName string) (*Stats, error) {
	start := time.Now()

	scan, err := p.scanner.ScanUnprocessed(ctx, libraryDir, deckName)
	if err != nil {
		return nil, err
	}
	transcript := scan.AggregateTranscript()

	summary, err := p.summarize(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("summarize stage: %w", err)
	}
	p.logger.Info("summarized source material",
		"deck", deckName, "title", summary.Title, "concepts", len(summary.KeyConcepts))

	// Drafting sees the summary for coverage and the full transcript as
	// the factual authority
	draft, err := p.draft(ctx, summary, transcript)
	if err != nil {
		return nil, fmt.Errorf("draft stage: %w", err)
	}
	if len(draft.Questions) == 0 {
		return nil, fmt.Errorf("draft stage: %w: model returned no questions", genai.ErrGenerationFailed)
	}
	p.logger.Info("drafted questions", "deck", deckName, "count", len(draft.Questions))

	if p.config.DraftCooldown > 0 {
		p.logger.Debug("cooling down before review", "wait", p.config.DraftCooldown)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.config.DraftCooldown):
		}
	}

	reviewed, err := p.reviewAll(ctx, draft.Questions, summary)
	if err != nil {
		return nil, fmt.Errorf("review stage: %w", err)
	}

	deck, err := p.catalog.GetOrCreateDeck(ctx, deckName)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		FilesProcessed:   len(scan.Files),
		QuestionsDrafted: len(draft.Questions),
	}
	for _, r := range reviewed {
		if r.Verdict == VerdictNeedsImprovement {
			stats.Revised++
		}
		q := r.Question
		normalizeQuestion(&q)
		note := &catalog.Note{
			DeckID:        deck.ID,
			Question:      q.Question,
			AnswerA:       &q.AnswerA,
			AnswerB:       &q.AnswerB,
			AnswerC:       &q.AnswerC,
			AnswerD:       &q.AnswerD,
			CorrectAnswer: &q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if _, err := p.catalog.InsertNote(ctx, note); err != nil {
			return nil, fmt.Errorf("failed to persist note: %w", err)
		}
		stats.NotesCreated++
	}

	if err := p.scanner.CommitLinks(ctx, deck.ID, scan.Files); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	p.logger.Info("pipeline complete",
		"deck", deckName, "notes", stats.NotesCreated,
		"revised", stats.Revised, "duration", stats.Duration)
	return stats, nil
}

func (p *Pipeline) summarize(ctx context.Context, transcript string) (*TopicSummary, error) {
	var summary TopicSummary
	err := genai.GenerateInto(ctx, p.generator, genai.Request{
		Prompt:     summaryPrompt(transcript),
		System:     summarySystemRole,
		Schema:     genai.SchemaFor[TopicSummary](),
		SchemaName: summarySchemaName,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (p *Pipeline) draft(ctx context.Context, summary *TopicSummary, transcript string) (*QuestionList, error) {
	var list QuestionList
	err := genai.GenerateInto(ctx, p.generator, genai.Request{
		Prompt:     draftPrompt(summary, transcript, p.config.QuestionCount),
		System:     defaultSystemRole,
		Schema:     genai.SchemaFor[QuestionList](),
		SchemaName: draftSchemaName,
	}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// reviewAll reviews every question under bounded concurrency. Results come
// back in draft order regardless of completion order. The first permanent
// failure (or exhausted retries) cancels the remaining reviews and fails
// the whole stage.
func (p *Pipeline) reviewAll(ctx context.Context, questions []Question, summary *TopicSummary) ([]ReviewedQuestion, error) {
	results := make([]ReviewedQuestion, len(questions))
	sem := semaphore.NewWeighted(p.config.MaxConcurrentReviews)

	g, gctx := errgroup.WithContext(ctx)
	for i := range questions {
		i := i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			reviewed, err := p.reviewOne(gctx, &questions[i], summary)
			if err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			results[i] = *reviewed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reviewOne runs the review call for a single question with a fixed-delay
// retry. Each attempt is capped by ReviewTimeout; a timed-out attempt
// counts against ReviewAttempts like any transient failure.
func (p *Pipeline) reviewOne(ctx context.Context, q *Question, summary *TopicSummary) (*ReviewedQuestion, error) {
	retryConfig := genai.RetryConfig{
		MaxAttempts: p.config.ReviewAttempts,
		BaseDelay:   p.config.ReviewRetryDelay,
		MaxDelay:    p.config.ReviewRetryDelay,
		Multiplier:  1.0,
	}

	reviewed, err := genai.Retry(ctx, retryConfig, func() (*ReviewedQuestion, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.config.ReviewTimeout)
		defer cancel()

		var r ReviewedQuestion
		err := genai.GenerateInto(attemptCtx, p.generator, genai.Request{
			Prompt:     reviewPrompt(q, summary),
			System:     defaultSystemRole,
			Schema:     genai.SchemaFor[ReviewedQuestion](),
			SchemaName: reviewSchemaName,
		}, &r)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: review attempt timed out after %s",
					genai.ErrTransient, p.config.ReviewTimeout)
			}
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		// Exhausting the retry budget is a permanent failure for this run,
		// even when every individual attempt only failed transiently.
		if errors.Is(err, genai.ErrTransient) {
			return nil, fmt.Errorf("%w: review attempts exhausted: %v",
				genai.ErrGenerationFailed, err)
		}
		return nil, err
	}

	// The reviewer's output is used either way; the verdict only feeds stats
	p.logger.Debug("question reviewed", "verdict", reviewed.Verdict)
	return reviewed, nil
}
