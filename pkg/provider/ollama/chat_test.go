package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	ollama "github.com/dilettacal/digital-twin/pkg/provider/ollama"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []ollama.Message `json:"messages"`
	Options  map[string]any   `json:"options"`
	Stream   bool             `json:"stream"`
}

func newServer(t *testing.T, requests *[]chatRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(ollama.Response{
				Model:   req.Model,
				Message: ollama.Message{Role: "assistant", Content: "Hello there"},
				Done:    true,
			})
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for _, chunk := range []string{"Hello", " there", ""} {
			enc.Encode(ollama.Response{
				Model:   req.Model,
				Message: ollama.Message{Role: "assistant", Content: chunk},
				Done:    chunk == "",
			})
			w.(http.Flusher).Flush()
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var testRequest = twin.GenerateRequest{
	System: "You are a twin.",
	History: schema.Conversation{
		{Role: schema.RoleUser, Content: "Hi"},
		{Role: schema.RoleAssistant, Content: "Hello!"},
	},
	Message: "Who are you?",
}

func Test_Chat_001(t *testing.T) {
	assert := assert.New(t)
	var requests []chatRequest
	srv := newServer(t, &requests)

	client, err := ollama.New(srv.URL, "")
	require.NoError(t, err)
	assert.Equal("ollama", client.Name())
	assert.Equal(ollama.DefaultModel, client.Model())

	reply, err := client.Generate(context.Background(), testRequest, nil)
	require.NoError(t, err)
	assert.Equal("Hello there", reply)

	require.Len(t, requests, 1)
	assert.False(requests[0].Stream)
	assert.Equal(ollama.DefaultModel, requests[0].Model)
	assert.Equal(0.7, requests[0].Options["temperature"])
	require.Len(t, requests[0].Messages, 4)
	assert.Equal("system", requests[0].Messages[0].Role)
	assert.Equal("You are a twin.", requests[0].Messages[0].Content)
	assert.Equal("Who are you?", requests[0].Messages[3].Content)
}

func Test_Chat_002(t *testing.T) {
	assert := assert.New(t)
	var requests []chatRequest
	srv := newServer(t, &requests)

	client, err := ollama.New(srv.URL+"/api/", "mistral")
	require.NoError(t, err)

	var deltas []string
	reply, err := client.Generate(context.Background(), testRequest, func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)
	assert.Equal("Hello there", reply)
	assert.Equal([]string{"Hello", " there"}, deltas)
	require.Len(t, requests, 1)
	assert.True(requests[0].Stream)
	assert.Equal("mistral", requests[0].Model)
}

func Test_Chat_003(t *testing.T) {
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := ollama.New(srv.URL, "")
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), testRequest, nil)
	assert.ErrorIs(err, twin.ErrUpstream)
}
