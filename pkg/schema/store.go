package schema

import "context"

////////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Store persists the conversation history of each session
type Store interface {
	// Load returns the conversation for a session, or an empty conversation
	// when nothing has been stored yet
	Load(ctx context.Context, session string) (Conversation, error)

	// Save replaces the stored conversation for a session
	Save(ctx context.Context, session string, messages Conversation) error

	// List returns the identifiers of all stored sessions
	List(ctx context.Context) ([]string, error)

	// Name returns a short label for the storage backend, e.g. "local" or "s3"
	Name() string
}
