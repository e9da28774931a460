package manager

import (
	"context"
	"strings"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	uuid "github.com/google/uuid"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Validate checks a chat request and returns it with a session identifier,
// minting a new one when the request has none. Errors wrap
// twin.ErrBadParameter and carry a detail suitable for the user.
func (m *Manager) Validate(req schema.ChatRequest) (schema.ChatRequest, error) {
	if err := schema.ValidateMessage(req.Message); err != nil {
		return req, twin.ErrBadParameter.With(err.Error())
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	} else if err := schema.ValidateSessionID(req.SessionID); err != nil {
		return req, twin.ErrBadParameter.With(err.Error())
	}
	req.Message = strings.TrimSpace(req.Message)
	return req, nil
}

// Chat processes a message within a session. If fn is non-nil, text deltas
// are streamed to the callback as they arrive. The user message and the reply
// are stored only when generation succeeds.
func (m *Manager) Chat(ctx context.Context, req schema.ChatRequest, fn twin.StreamFn) (_ *schema.ChatResponse, err error) {
	req, err = m.Validate(req)
	if err != nil {
		return nil, err
	}

	// Otel span
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Chat",
		attribute.String("session", req.SessionID),
		attribute.String("provider", m.generator.Name()),
		attribute.Bool("stream", fn != nil),
	)
	defer func() { endSpan(err) }()

	// One turn at a time per session
	unlock := m.lock(req.SessionID)
	defer unlock()

	// Load the conversation
	conversation, err := m.store.Load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// Render the system prompt
	system, err := m.prompt.System(time.Now())
	if err != nil {
		return nil, err
	}

	// Generate the reply
	start := time.Now()
	reply, err := m.generator.Generate(ctx, twin.GenerateRequest{
		System:  system,
		History: conversation.Last(m.historyLimit),
		Message: req.Message,
	}, fn)
	if err != nil {
		m.logger.WarnContext(ctx, "generation failed", "session", req.SessionID, "provider", m.generator.Name(), "error", err)
		return nil, err
	}
	m.logger.DebugContext(ctx, "generated reply", "session", req.SessionID, "provider", m.generator.Name(), "duration", time.Since(start))

	// Store both halves of the turn
	conversation.Append(
		schema.NewMessage(schema.RoleUser, req.Message),
		schema.NewMessage(schema.RoleAssistant, reply),
	)
	if err := m.store.Save(ctx, req.SessionID, conversation); err != nil {
		return nil, err
	}

	// Return success
	return &schema.ChatResponse{
		Response:  reply,
		SessionID: req.SessionID,
	}, nil
}
