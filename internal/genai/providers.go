package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider configuration
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	// Default models
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultOpenAIModel    = "gpt-4o"

	// Default endpoints
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultOpenAIBaseURL    = "https://api.openai.com"

	anthropicAPIVersion = "2023-06-01"

	// DefaultMaxTokens bounds a completion when the request does not
	DefaultMaxTokens = 4096

	// Retry configuration for transport-level failures
	MaxAttempts       = 3
	InitialBackoffMs  = 500
	MaxBackoffMs      = 10000
	BackoffMultiplier = 2.0
)

// Environment variables
const (
	EnvProvider        = "MINDDB_PROVIDER"
	EnvModel           = "MINDDB_MODEL"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

// classifyHTTPError maps an API status code onto the transient/permanent
// error split. Throttling, timeouts and server errors are worth retrying;
// everything else (auth, bad request) is not.
func classifyHTTPError(statusCode int, body []byte) error {
	if statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= 500 {
		return fmt.Errorf("%w: api error %d: %s", ErrTransient, statusCode, string(body))
	}
	return fmt.Errorf("%w: api error %d: %s", ErrGenerationFailed, statusCode, string(body))
}

// AnthropicProvider implements Generator against the Anthropic Messages
// API. Structured output is obtained by declaring the response schema as a
// tool and forcing the model to call it.
type AnthropicProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewAnthropicProvider creates an Anthropic generator
func NewAnthropicProvider(apiKey string, cache *Cache) (*AnthropicProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAnthropicAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvAnthropicAPIKey)
	}

	model := os.Getenv(EnvModel)
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultAnthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		cache: cache,
	}, nil
}

// SetBaseURL overrides the API endpoint. Tests point this at a local
// httptest server.
func (a *AnthropicProvider) SetBaseURL(url string) {
	a.baseURL = url
}

func (a *AnthropicProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = a.model
	}

	hash := ComputeHash(ProviderAnthropic, model, req.SchemaName, req.Prompt)
	if a.cache != nil {
		if result, ok := a.cache.Get(hash); ok {
			return result, nil
		}
	}

	config := DefaultRetryConfig()
	raw, err := Retry(ctx, config, func() (json.RawMessage, error) {
		return a.callAPI(ctx, req, model)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Raw:      raw,
		Provider: ProviderAnthropic,
		Model:    model,
		Hash:     hash,
	}
	if a.cache != nil {
		a.cache.Set(hash, result)
	}
	return result, nil
}

func (a *AnthropicProvider) callAPI(ctx context.Context, req Request, model string) (json.RawMessage, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.System != "" {
		reqBody["system"] = req.System
	}
	if req.Schema != nil {
		reqBody["tools"] = []map[string]interface{}{
			{
				"name":         req.SchemaName,
				"description":  "Record the structured response.",
				"input_schema": req.Schema,
			},
		}
		reqBody["tool_choice"] = map[string]interface{}{
			"type": "tool",
			"name": req.SchemaName,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: api call: %v", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, classifyHTTPError(resp.StatusCode, bodyBytes)
	}

	var apiResp struct {
		Content []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransient, err)
	}

	for _, block := range apiResp.Content {
		if block.Type == "tool_use" {
			return block.Input, nil
		}
		if req.Schema == nil && block.Type == "text" {
			return json.RawMessage(block.Text), nil
		}
	}
	return nil, fmt.Errorf("%w: no structured content in response", ErrTransient)
}

func (a *AnthropicProvider) Provider() string { return ProviderAnthropic }
func (a *AnthropicProvider) Model() string    { return a.model }
func (a *AnthropicProvider) Close() error     { return nil }

// OpenAIProvider implements Generator against the OpenAI Chat Completions
// API using json_schema response format.
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates an OpenAI generator
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	model := os.Getenv(EnvModel)
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultOpenAIBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		cache: cache,
	}, nil
}

// SetBaseURL overrides the API endpoint. Tests point this at a local
// httptest server.
func (o *OpenAIProvider) SetBaseURL(url string) {
	o.baseURL = url
}

func (o *OpenAIProvider) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = o.model
	}

	hash := ComputeHash(ProviderOpenAI, model, req.SchemaName, req.Prompt)
	if o.cache != nil {
		if result, ok := o.cache.Get(hash); ok {
			return result, nil
		}
	}

	config := DefaultRetryConfig()
	raw, err := Retry(ctx, config, func() (json.RawMessage, error) {
		return o.callAPI(ctx, req, model)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Raw:      raw,
		Provider: ProviderOpenAI,
		Model:    model,
		Hash:     hash,
	}
	if o.cache != nil {
		o.cache.Set(hash, result)
	}
	return result, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, req Request, model string) (json.RawMessage, error) {
	messages := make([]map[string]interface{}, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]interface{}{
			"role": "system", "content": req.System,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role": "user", "content": req.Prompt,
	})

	reqBody := map[string]interface{}{
		"model":    model,
		"messages": messages,
	}
	if req.MaxTokens > 0 {
		reqBody["max_tokens"] = req.MaxTokens
	}
	if req.Schema != nil {
		reqBody["response_format"] = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   req.SchemaName,
				"schema": req.Schema,
			},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: api call: %v", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, classifyHTTPError(resp.StatusCode, bodyBytes)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransient, err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrTransient)
	}
	if refusal := apiResp.Choices[0].Message.Refusal; refusal != "" {
		return nil, fmt.Errorf("%w: model refused: %s", ErrGenerationFailed, refusal)
	}

	content := apiResp.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrTransient)
	}
	return json.RawMessage(content), nil
}

func (o *OpenAIProvider) Provider() string { return ProviderOpenAI }
func (o *OpenAIProvider) Model() string    { return o.model }
func (o *OpenAIProvider) Close() error     { return nil }
