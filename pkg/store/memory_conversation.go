package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// MemoryStore is an in-memory implementation of schema.Store.
// It is safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]schema.Conversation
}

var _ schema.Store = (*MemoryStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMemoryStore creates a new empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]schema.Conversation),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (*MemoryStore) Name() string {
	return "memory"
}

// Load returns a copy of the stored conversation
func (m *MemoryStore) Load(_ context.Context, id string) (schema.Conversation, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	conversation, ok := m.conversations[id]
	if !ok {
		return schema.Conversation{}, nil
	}
	return slices.Clone(conversation), nil
}

// Save stores a copy of the conversation
func (m *MemoryStore) Save(_ context.Context, id string, conversation schema.Conversation) error {
	if err := checkID(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations[id] = append(schema.Conversation{}, conversation...)
	return nil
}

// List returns the stored session identifiers in lexical order
func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.conversations)), nil
}
