// Package genai produces schema-bound JSON completions from LLM providers.
//
// A Generator takes a prompt plus a JSON schema (reflected from a Go struct
// with SchemaFor) and returns a raw payload guaranteed by the provider to
// conform to that schema. Two providers are implemented: Anthropic, which
// obtains structure by forcing a tool call, and OpenAI, which uses the
// json_schema response format. NewFromEnv picks one from MINDDB_PROVIDER
// or the available API keys.
//
// Failures are split into two kinds. ErrTransient covers anything a retry
// may fix: throttling, timeouts, server errors, network failures and
// malformed payloads. ErrGenerationFailed covers permanent rejections such
// as auth errors and refusals. Retry honors that split and backs off only
// on transient errors.
//
// Completions are cached in an LRU keyed by a hash of provider, model,
// schema name and prompt, so re-running a pipeline over unchanged input
// does not re-bill the same calls.
package genai
