package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	structuringSystemPrompt = `You are a professional recipe parser for restaurant operations.
Extract recipe information from the provided text and return ONLY valid JSON conforming to the supplied schema.

Requirements:
- Extract recipe name, description, category and servings.
- Parse EVERY ingredient line with its quantity and unit; keep quantity null when the source gives no amount (e.g. "salt to taste").
- Preserve quantities, units and ingredient names exactly as written.
- Split instructions into clear ordered steps.
- Identify common allergens present in the ingredients (gluten, dairy, eggs, soy, nuts, shellfish, fish).`
)

// OpenRouterConfig holds configuration for the OpenRouter structuring client.
type OpenRouterConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	RateLimit  int // requests per minute
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client // optional (tests)
}

// OpenRouterClient implements StructuringClient against the OpenRouter
// chat-completions API using structured output.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	limiter    *RateLimiter
	client     *http.Client
}

// NewOpenRouterClient creates a new OpenRouter structuring client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "anthropic/claude-sonnet-4"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 150
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenRouterClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    NewRateLimiter(cfg.RateLimit),
		client:     httpClient,
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string { return OpenRouterName }

type orMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type orResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

type orRequest struct {
	Model          string            `json:"model"`
	Messages       []orMessage       `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat *orResponseFormat `json:"response_format,omitempty"`
}

type orResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Structure sends one structuring request and returns the parsed JSON
// document. It fails explicitly on malformed output rather than truncating.
func (c *OpenRouterClient) Structure(ctx context.Context, req *StructureRequest) (*StructureResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	userPrompt := req.Text
	if req.SourceName != "" {
		userPrompt = fmt.Sprintf("Source file: %s\n\n%s", req.SourceName, req.Text)
	}

	body := orRequest{
		Model: c.model,
		Messages: []orMessage{
			{Role: "system", Content: structuringSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   4000,
	}
	if len(req.Schema) > 0 {
		body.ResponseFormat = &orResponseFormat{Type: "json_schema", JSONSchema: req.Schema}
	}

	attempts := 0
	var orResp orResponse

	err := retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.post(ctx, "/chat/completions", &body, &orResp)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)

	result := &StructureResult{
		Provider:  OpenRouterName,
		Model:     c.model,
		Attempts:  attempts,
		RequestID: requestID,
	}
	if err != nil {
		result.Elapsed = time.Since(start)
		return result, fmt.Errorf("structuring request failed: %w", err)
	}

	if orResp.Error != nil {
		result.Elapsed = time.Since(start)
		return result, fmt.Errorf("structuring service error: %s", orResp.Error.Message)
	}
	if len(orResp.Choices) == 0 {
		result.Elapsed = time.Since(start)
		return result, fmt.Errorf("structuring service returned no choices")
	}

	parsed, err := ParseStructuredJSON(orResp.Choices[0].Message.Content)
	if err != nil {
		result.Elapsed = time.Since(start)
		return result, fmt.Errorf("malformed structured output: %w", err)
	}
	if len(req.Schema) > 0 {
		if err := ValidateAgainstSchema(parsed, req.Schema); err != nil {
			result.Elapsed = time.Since(start)
			return result, fmt.Errorf("structured output rejected: %w", err)
		}
	}

	result.JSON = parsed
	result.PromptTokens = orResp.Usage.PromptTokens
	result.CompletionTokens = orResp.Usage.CompletionTokens
	result.Elapsed = time.Since(start)
	return result, nil
}

// post performs one HTTP round trip. Non-2xx responses with retryable status
// codes return plain errors so retry.Do tries again; everything else is
// wrapped as unrecoverable.
func (c *OpenRouterClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
		if retryableStatus(resp.StatusCode) {
			return apiErr
		}
		return retry.Unrecoverable(apiErr)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return nil
}

// retryableStatus reports whether a status code is worth retrying.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestEntityTooLarge:
		return true
	}
	return code >= 500
}
