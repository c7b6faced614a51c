package client

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// Generator defines the model call made by a search.
// *genai.Models satisfies it; tests inject MockGenerator.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// MockGenerator is a mock implementation of Generator for testing.
// It records the last request and returns a canned response.
type MockGenerator struct {
	mu sync.Mutex

	Response *genai.GenerateContentResponse
	Err      error

	// Request tracking
	LastModel    string
	LastContents []*genai.Content
	LastConfig   *genai.GenerateContentConfig
	CallCount    int
}

// NewMockGenerator creates a MockGenerator returning resp and err.
func NewMockGenerator(resp *genai.GenerateContentResponse, err error) *MockGenerator {
	return &MockGenerator{Response: resp, Err: err}
}

// GenerateContent records the request and returns the canned response.
func (m *MockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastModel = model
	m.LastContents = contents
	m.LastConfig = config
	return m.Response, m.Err
}

// Ensure MockGenerator implements the interface
var _ Generator = &MockGenerator{}

// Ensure the SDK models service implements the interface
var _ Generator = (*genai.Models)(nil)
