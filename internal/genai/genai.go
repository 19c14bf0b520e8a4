package genai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/invopop/jsonschema"
)

// Common errors
var (
	ErrEmptyPrompt         = errors.New("prompt cannot be empty")
	ErrTransient           = errors.New("transient generation failure")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrNoProviderEnabled   = errors.New("no generation provider configured")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Request asks a provider for one structured completion. The provider must
// return JSON conforming to Schema.
type Request struct {
	Prompt     string
	System     string // Optional system instruction
	MaxTokens  int
	Model      string // Optional: override default model
	Schema     *jsonschema.Schema
	SchemaName string // Tool / response-format name for the schema
}

// Result is the raw structured payload returned by a provider.
type Result struct {
	Raw      json.RawMessage
	Provider string
	Model    string
	Hash     string // Request hash for caching
}

// Generator is implemented by model providers that produce schema-bound
// JSON completions.
type Generator interface {
	// Generate produces one completion conforming to req.Schema
	Generate(ctx context.Context, req Request) (*Result, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the default model name
	Model() string

	// Close releases any resources held by the generator
	Close() error
}

// SchemaFor reflects a JSON schema from a Go struct type. The schema is
// inlined (no $ref indirection) because providers reject referenced schemas.
func SchemaFor[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
	}
	var v T
	return reflector.Reflect(&v)
}

// GenerateInto runs a request and unmarshals the structured payload into
// out. A payload that does not decode is treated as transient: the model
// may well produce valid output on a retry.
func GenerateInto(ctx context.Context, g Generator, req Request, out interface{}) error {
	result, err := g.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result.Raw, out); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", ErrTransient, err)
	}
	return nil
}

// ValidateRequest checks a request before it hits a provider.
func ValidateRequest(req Request) error {
	if req.Prompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// ComputeHash produces the cache key for a request: identical prompts
// against the same model and schema are identical completions for our
// purposes.
func ComputeHash(provider, model, schemaName, prompt string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(schemaName))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache provides in-memory LRU caching of completions by request hash
type Cache struct {
	cache *lru.Cache[string, *Result]
}

// NewCache creates a new completion cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 1000
	}
	cache, err := lru.New[string, *Result](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, *Result](1000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached result. A copy is returned so caller
// mutations cannot affect the cached value.
func (c *Cache) Get(hash string) (*Result, bool) {
	result, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	rawCopy := make(json.RawMessage, len(result.Raw))
	copy(rawCopy, result.Raw)
	return &Result{
		Raw:      rawCopy,
		Provider: result.Provider,
		Model:    result.Model,
		Hash:     result.Hash,
	}, true
}

// Set stores a result in cache with automatic LRU eviction
func (c *Cache) Set(hash string, result *Result) {
	c.cache.Add(hash, result)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}
