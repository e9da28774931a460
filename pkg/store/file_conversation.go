package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// FileStore is a file-backed implementation of schema.Store.
// Each conversation is stored as {id}.json in a directory.
// It is safe for concurrent use.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

var _ schema.Store = (*FileStore)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewFileStore creates a new file-backed conversation store in the given
// directory. The directory is created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the storage label
func (*FileStore) Name() string {
	return "local"
}

// Dir returns the directory conversations are stored in
func (f *FileStore) Dir() string {
	return f.dir
}

// Load reads a conversation from disk. A session with no file yet has an
// empty conversation.
func (f *FileStore) Load(_ context.Context, id string) (schema.Conversation, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var conversation schema.Conversation
	if err := readJSON(jsonPath(f.dir, id), fmt.Sprintf("session %q", id), &conversation); errors.Is(err, twin.ErrNotFound) {
		return schema.Conversation{}, nil
	} else if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Save writes a conversation to disk, replacing any previous version
func (f *FileStore) Save(_ context.Context, id string, conversation schema.Conversation) error {
	if err := checkID(id); err != nil {
		return err
	}
	if conversation == nil {
		conversation = schema.Conversation{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return writeJSON(jsonPath(f.dir, id), conversation)
}

// List returns the stored session identifiers in lexical order
func (f *FileStore) List(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids, err := readJSONDir(f.dir)
	if err != nil {
		return nil, err
	}

	// Skip files which could not have been written by Save
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if checkID(id) == nil {
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result, nil
}
