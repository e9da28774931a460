package twin

import (
	"context"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// StreamFn receives each text delta as it is generated
type StreamFn func(delta string)

// GenerateRequest is the input to a completion backend
type GenerateRequest struct {
	System  string              // Rendered system prompt
	History schema.Conversation // Prior messages, oldest first, already truncated
	Message string              // The new user message
}

// Generator is the interface that wraps a completion backend
type Generator interface {
	// Return the provider name
	Name() string

	// Return the model name used for completions
	Model() string

	// Generate returns the complete assistant reply. When fn is non-nil,
	// deltas are passed to fn as they arrive and the concatenation of all
	// deltas equals the returned text.
	Generate(ctx context.Context, req GenerateRequest, fn StreamFn) (string, error)
}
