package sse

import "sync"

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Session holds the identifier assigned by the server for a conversation.
// The first non-empty identifier wins and is never replaced.
type Session struct {
	mu sync.Mutex
	id string
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSession returns a session, optionally already pinned to id
func NewSession(id string) *Session {
	return &Session{id: id}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ID returns the pinned identifier, or an empty string
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Pin sets the identifier if none is set yet, and returns true if this
// call set it
func (s *Session) Pin(id string) bool {
	if s == nil || id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" {
		return false
	}
	s.id = id
	return true
}
