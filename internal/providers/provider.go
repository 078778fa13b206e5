// Package providers wraps the external AI services the pipeline depends on:
// a natural-language structuring service and an image-understanding (vision)
// service. Both are modeled as injectable interfaces so the deterministic
// parts of the pipeline are unit-testable without network access.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// StructuringClient turns raw recipe text into a structured, recipe-shaped
// JSON document that conforms to the request schema.
type StructuringClient interface {
	// Structure sends one structuring request. A non-nil error means the
	// service did not return a usable structured response.
	Structure(ctx context.Context, req *StructureRequest) (*StructureResult, error)

	// Name returns the client identifier (e.g. "openrouter", "mock").
	Name() string
}

// VisionProvider extracts text from a single rendered page image.
type VisionProvider interface {
	// ExtractText reads the page image and returns the text it contains.
	ExtractText(ctx context.Context, req *VisionRequest) (*VisionResult, error)

	// Name returns the provider identifier (e.g. "openai", "mock").
	Name() string
}

// StructureRequest is one call to the structuring service.
type StructureRequest struct {
	Text       string          // concatenated page text for one source file
	SourceName string          // original filename, passed as context
	Schema     json.RawMessage // JSON schema the response must conform to
	Timeout    time.Duration   // per-call timeout (0 = client default)
	RequestID  string
}

// StructureResult is the structured response plus call metadata.
type StructureResult struct {
	JSON json.RawMessage `json:"json"`

	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
	RequestID string        `json:"request_id"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// VisionRequest is one page image submitted for text extraction.
type VisionRequest struct {
	Image     []byte        // rendered page, PNG or JPEG
	PageIndex int           // 0-based, for context in the prompt
	Context   string        // optional extra context ("page 3 of a recipe document")
	Timeout   time.Duration // per-call timeout (0 = client default)
}

// VisionResult is the extracted text plus call metadata.
type VisionResult struct {
	Text string `json:"text"`

	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
}
