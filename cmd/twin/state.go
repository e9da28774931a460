package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// State remembers client settings between runs, in a JSON file on disk
type State struct {
	mu   sync.Mutex
	path string
	data stateData
}

type stateData struct {
	Session  string `json:"session,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewState loads the state at the given file path. A missing file is an
// empty state.
func NewState(path string) (*State, error) {
	s := &State{path: path}

	// Load existing file (ignore if it doesn't exist)
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&s.data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// state returns the client state for the executable, stored in the user's
// config directory
func (g *Globals) state() (*State, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewState(filepath.Join(dir, g.execName, "state.json"))
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Session returns the last session used with an endpoint
func (s *State) Session(endpoint string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Endpoint != endpoint {
		return ""
	}
	return s.data.Session
}

// SetSession remembers the session used with an endpoint, and persists
// the state. An empty session clears it.
func (s *State) SetSession(endpoint, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Session == session && s.data.Endpoint == endpoint {
		return nil
	}
	s.data = stateData{Session: session, Endpoint: endpoint}
	return s.save()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// save writes the state to disk as indented JSON, creating parent
// directories as needed.
func (s *State) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
