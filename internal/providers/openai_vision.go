package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIVisionName         = "openai"
	openAIVisionDefaultModel = "gpt-4o"

	visionPrompt = `Extract all text from this recipe image. Focus on:
- Recipe name
- Ingredients (with quantities and units)
- Instructions/steps
- Yield/servings information

Return the text in a structured, readable format. Preserve quantities, units
and ingredient names exactly as shown.`
)

// OpenAIVisionConfig holds configuration for the vision provider.
type OpenAIVisionConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	RateLimit  int // requests per minute
	MaxRetries int
	BaseURL    string       // optional (tests)
	HTTPClient *http.Client // optional (tests)
}

// OpenAIVisionClient implements VisionProvider using the official OpenAI SDK.
type OpenAIVisionClient struct {
	model   string
	timeout time.Duration
	limiter *RateLimiter
	client  openai.Client
}

// NewOpenAIVisionClient creates a new vision client.
func NewOpenAIVisionClient(cfg OpenAIVisionConfig) *OpenAIVisionClient {
	if cfg.Model == "" {
		cfg.Model = openAIVisionDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIVisionClient{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: NewRateLimiter(cfg.RateLimit),
		client:  openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIVisionClient) Name() string { return OpenAIVisionName }

// ExtractText submits one page image and returns the text it contains.
func (c *OpenAIVisionClient) ExtractText(ctx context.Context, req *VisionRequest) (*VisionResult, error) {
	start := time.Now()

	if len(req.Image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt := visionPrompt
	if req.Context != "" {
		prompt = req.Context + "\n\n" + prompt
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		imageMIME(req.Image), base64.StdEncoding.EncodeToString(req.Image))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		MaxTokens: openai.Int(2000),
	})
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("vision service returned no choices")
	}

	return &VisionResult{
		Text:     resp.Choices[0].Message.Content,
		Provider: OpenAIVisionName,
		Model:    c.model,
		Attempts: 1,
		Elapsed:  time.Since(start),
	}, nil
}

// imageMIME sniffs the media type of a rendered page image.
func imageMIME(data []byte) string {
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "image/jpeg"
	}
	return "image/png"
}
