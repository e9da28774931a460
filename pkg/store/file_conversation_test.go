package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	store "github.com/dilettacal/digital-twin/pkg/store"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

// Test NewFileStore creates directory
func Test_file_001(t *testing.T) {
	assert := assert.New(t)
	dir := filepath.Join(t.TempDir(), "history")
	s, err := store.NewFileStore(dir)
	assert.NoError(err)
	assert.Equal("local", s.Name())
	assert.Equal(dir, s.Dir())
	_, err = os.Stat(dir)
	assert.NoError(err)
}

// Test NewFileStore with empty dir returns error
func Test_file_002(t *testing.T) {
	assert := assert.New(t)
	_, err := store.NewFileStore("")
	assert.Error(err)
}

func Test_file_003(t *testing.T) {
	runStoreTests(t, func() schema.Store {
		s, err := store.NewFileStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

// Test Save writes a private JSON file
func Test_file_004(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.TODO(), "abc", schema.Conversation{schema.NewMessage(schema.RoleUser, "Hello")}))
	info, err := os.Stat(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.Equal(store.FilePerm, info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.Contains(string(data), `"role": "user"`)
}

// Test List ignores unrelated files
func Test_file_005(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad name.json"), []byte("[]"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o700))
	require.NoError(t, s.Save(context.TODO(), "good", nil))

	ids, err := s.List(context.TODO())
	assert.NoError(err)
	assert.Equal([]string{"good"}, ids)
}

// Test corrupt file returns an error
func Test_file_006(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{"), 0o600))
	_, err = s.Load(context.TODO(), "corrupt")
	assert.Error(err)
}
