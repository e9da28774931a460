/*
manager implements the chat service: it validates requests, keeps the
conversation history of each session in a store, renders the persona system
prompt and asks a completion backend for the reply.
*/
package manager

import (
	"hash/fnv"
	"log/slog"
	"sync"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	prompt "github.com/dilettacal/digital-twin/pkg/prompt"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	store "github.com/dilettacal/digital-twin/pkg/store"
	version "github.com/dilettacal/digital-twin/pkg/version"
	gootel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Manager struct {
	generator    twin.Generator
	store        schema.Store
	prompt       *prompt.Prompt
	tracer       trace.Tracer
	logger       *slog.Logger
	historyLimit int
	locks        [lockStripes]sync.Mutex
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultHistoryLimit is the number of stored messages passed to the
	// generator as context
	DefaultHistoryLimit = 20

	tracerName  = "github.com/dilettacal/digital-twin/pkg/manager"
	lockStripes = 64
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a manager. A generator is required; the store defaults to
// memory and the prompt to the embedded persona.
func New(opts ...Opt) (*Manager, error) {
	m := new(Manager)
	m.historyLimit = DefaultHistoryLimit
	m.logger = slog.Default()

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	// Check and set defaults
	if m.generator == nil {
		return nil, twin.ErrBadParameter.With("generator is required")
	}
	if m.store == nil {
		m.store = store.NewMemoryStore()
	}
	if m.prompt == nil {
		prompt, err := prompt.New(prompt.DefaultPersona())
		if err != nil {
			return nil, err
		}
		m.prompt = prompt
	}
	if m.tracer == nil {
		m.tracer = gootel.Tracer(tracerName)
	}

	// Return success
	return m, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generator returns the completion backend
func (m *Manager) Generator() twin.Generator {
	return m.generator
}

// Store returns the conversation store
func (m *Manager) Store() schema.Store {
	return m.store
}

// Prompt returns the system prompt renderer
func (m *Manager) Prompt() *prompt.Prompt {
	return m.prompt
}

// Info describes the service
func (m *Manager) Info() schema.InfoResponse {
	return schema.InfoResponse{
		Message:  "AI Digital Twin API",
		Version:  version.Version(),
		Storage:  m.store.Name(),
		Provider: m.generator.Name(),
		Model:    m.generator.Model(),
	}
}

// Health reports the service status
func (m *Manager) Health() schema.HealthResponse {
	return schema.HealthResponse{
		Status:   "healthy",
		Storage:  m.store.Name(),
		Provider: m.generator.Name(),
		Model:    m.generator.Model(),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// lock serialises turns within one session, so that concurrent requests
// never interleave their load and save
func (m *Manager) lock(session string) func() {
	h := fnv.New32a()
	h.Write([]byte(session))
	mu := &m.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
