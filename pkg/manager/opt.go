package manager

import (
	"log/slog"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	prompt "github.com/dilettacal/digital-twin/pkg/prompt"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring a manager
type Opt func(*Manager) error

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithGenerator sets the completion backend
func WithGenerator(generator twin.Generator) Opt {
	return func(m *Manager) error {
		if generator == nil {
			return twin.ErrBadParameter.With("generator is required")
		}
		m.generator = generator
		return nil
	}
}

// WithStore sets the conversation storage backend.
// If not set, an in-memory store is used by default.
func WithStore(store schema.Store) Opt {
	return func(m *Manager) error {
		if store == nil {
			return twin.ErrBadParameter.With("store is required")
		}
		m.store = store
		return nil
	}
}

// WithPrompt sets the system prompt renderer
func WithPrompt(prompt *prompt.Prompt) Opt {
	return func(m *Manager) error {
		if prompt == nil {
			return twin.ErrBadParameter.With("prompt is required")
		}
		m.prompt = prompt
		return nil
	}
}

// WithHistoryLimit sets how many stored messages are passed to the generator
func WithHistoryLimit(n int) Opt {
	return func(m *Manager) error {
		if n < 0 {
			return twin.ErrBadParameter.Withf("invalid history limit: %d", n)
		}
		m.historyLimit = n
		return nil
	}
}

// WithTracer sets the tracer used for spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(m *Manager) error {
		m.tracer = tracer
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Opt {
	return func(m *Manager) error {
		if logger == nil {
			return twin.ErrBadParameter.With("logger is required")
		}
		m.logger = logger
		return nil
	}
}
