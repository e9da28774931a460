package manager

import (
	"context"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Conversation returns the stored messages of a session. An unknown session
// returns an empty list of messages.
func (m *Manager) Conversation(ctx context.Context, session string) (_ *schema.ConversationResponse, err error) {
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Conversation",
		attribute.String("session", session),
	)
	defer func() { endSpan(err) }()

	if err := schema.ValidateSessionID(session); err != nil {
		return nil, twin.ErrBadParameter.With(err.Error())
	}
	messages, err := m.store.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = schema.Conversation{}
	}
	return &schema.ConversationResponse{
		SessionID: session,
		Messages:  messages,
	}, nil
}

// Sessions returns the identifiers of all stored sessions
func (m *Manager) Sessions(ctx context.Context) (_ []string, err error) {
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Sessions")
	defer func() { endSpan(err) }()

	sessions, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []string{}
	}
	return sessions, nil
}
