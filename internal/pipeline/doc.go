// Package pipeline orchestrates note generation for a deck in three
// stages: summarize the unprocessed library content, draft multiple-choice
// questions from the summary and the full transcript, and review every
// drafted question individually before persisting it.
//
// Review runs under bounded concurrency with a per-question attempt
// timeout and a fixed-delay retry. The reviewer's output is always what
// gets persisted, whether its verdict was "satisfactory" or
// "needs_improvement". Source files are marked processed only after every
// note was written, so a failed run is retried in full next time.
package pipeline
