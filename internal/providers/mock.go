package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockName = "mock"

// MockStructuring is a StructuringClient for tests.
type MockStructuring struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailFor      map[string]bool // keyed by SourceName, fails only those requests
	ResponseJSON json.RawMessage

	// ResponseFor overrides ResponseJSON per source name.
	ResponseFor map[string]json.RawMessage

	requestCount atomic.Int64
}

// Name returns the client identifier.
func (m *MockStructuring) Name() string { return MockName }

// Requests returns the number of calls made so far.
func (m *MockStructuring) Requests() int64 { return m.requestCount.Load() }

// Structure returns the configured response.
func (m *MockStructuring) Structure(ctx context.Context, req *StructureRequest) (*StructureResult, error) {
	count := m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.ShouldFail || m.FailFor[req.SourceName] {
		return nil, fmt.Errorf("mock structuring configured to fail")
	}

	doc := m.ResponseJSON
	if override, ok := m.ResponseFor[req.SourceName]; ok {
		doc = override
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("mock structuring has no response configured")
	}

	return &StructureResult{
		JSON:      doc,
		Provider:  MockName,
		Model:     "mock-model",
		Attempts:  1,
		RequestID: fmt.Sprintf("mock-%d", count),
	}, nil
}

// MockVision is a VisionProvider for tests.
type MockVision struct {
	Latency      time.Duration
	ShouldFail   bool
	ResponseText string

	requestCount atomic.Int64
}

// Name returns the provider identifier.
func (m *MockVision) Name() string { return MockName }

// Requests returns the number of calls made so far.
func (m *MockVision) Requests() int64 { return m.requestCount.Load() }

// ExtractText returns the configured text.
func (m *MockVision) ExtractText(ctx context.Context, req *VisionRequest) (*VisionResult, error) {
	m.requestCount.Add(1)

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.ShouldFail {
		return nil, fmt.Errorf("mock vision configured to fail")
	}

	text := m.ResponseText
	if text == "" {
		text = "mock vision text"
	}

	return &VisionResult{
		Text:     text,
		Provider: MockName,
		Model:    "mock-model",
		Attempts: 1,
	}, nil
}
