// Package llm provides hosted language-model client functionality.
package llm

import "context"

// Request is one blocking completion call: a system instruction plus a user
// prompt. The response is expected to contain either a JSON object or a
// single expression string depending on the caller.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Client defines the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a completion for the request and returns raw text.
	Complete(ctx context.Context, req Request) (string, error)

	// Model returns the configured model name.
	Model() string
}
