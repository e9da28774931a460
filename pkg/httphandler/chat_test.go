package httphandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	httpclient "github.com/dilettacal/digital-twin/pkg/httpclient"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	sse "github.com/dilettacal/digital-twin/pkg/sse"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_Chat_001(t *testing.T) {
	// JSON reply, with the session minted by the server
	assert := assert.New(t)
	mux := serveMux(newManager(t, new(mockGenerator)), nil)

	w := postChat(mux, schema.ChatRequest{Message: "Hello there"}, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp schema.ChatResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal("You said Hello there", resp.Response)
	assert.NotEmpty(resp.SessionID)

	// The turn is stored
	w = get(mux, "/conversation/"+resp.SessionID)
	require.Equal(t, http.StatusOK, w.Code)
	var conversation schema.ConversationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&conversation))
	assert.Equal(resp.SessionID, conversation.SessionID)
	require.Len(t, conversation.Messages, 2)
	assert.Equal("Hello there", conversation.Messages[0].Content)
	assert.Equal("You said Hello there", conversation.Messages[1].Content)

	// And listed
	w = get(mux, "/conversation")
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sessions))
	assert.Equal([]string{resp.SessionID}, sessions)
}

func Test_Chat_002(t *testing.T) {
	// Validation failures are 400 with a detail, in either format
	mux := serveMux(newManager(t, new(mockGenerator)), nil)
	tests := []struct {
		req    schema.ChatRequest
		detail string
	}{
		{schema.ChatRequest{Message: ""}, "Message cannot be empty."},
		{schema.ChatRequest{Message: "a"}, "Message is too short. Please provide a meaningful message."},
		{schema.ChatRequest{Message: "Hello", SessionID: "a/b"}, "Session ID contains invalid characters."},
	}
	for _, test := range tests {
		for _, accept := range []string{"application/json", "text/event-stream"} {
			w := postChat(mux, test.req, accept)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, test.detail, decodeDetail(t, w))
		}
	}
}

func Test_Chat_003(t *testing.T) {
	// Rate limiting by session returns 429 with a detail
	assert := assert.New(t)
	mux := serveMux(newManager(t, new(mockGenerator)), newLimiter(t, 1))

	w := postChat(mux, schema.ChatRequest{Message: "Hello", SessionID: "s1"}, "")
	assert.Equal(http.StatusOK, w.Code)
	w = postChat(mux, schema.ChatRequest{Message: "Hello", SessionID: "s1"}, "")
	assert.Equal(http.StatusTooManyRequests, w.Code)
	assert.Contains(decodeDetail(t, w), "Rate limit exceeded")

	// Other sessions are not affected
	w = postChat(mux, schema.ChatRequest{Message: "Hello", SessionID: "s2"}, "")
	assert.Equal(http.StatusOK, w.Code)

	// Anonymous clients are told apart by address
	w = postChat(mux, schema.ChatRequest{Message: "Hello"}, "", "X-Forwarded-For", "10.0.0.1")
	assert.Equal(http.StatusOK, w.Code)
	w = postChat(mux, schema.ChatRequest{Message: "Hello"}, "", "X-Forwarded-For", "10.0.0.1")
	assert.Equal(http.StatusTooManyRequests, w.Code)
}

func Test_Chat_004(t *testing.T) {
	// Generator errors map to statuses
	tests := []struct {
		err    error
		status int
	}{
		{twin.ErrRateLimited.With("throttled"), http.StatusTooManyRequests},
		{twin.ErrForbidden.With("Access denied"), http.StatusForbidden},
		{twin.ErrUpstream.With("bad gateway"), http.StatusBadGateway},
		{twin.ErrInternalServerError.With("boom"), http.StatusInternalServerError},
	}
	for _, test := range tests {
		mux := serveMux(newManager(t, &mockGenerator{err: test.err}), nil)
		w := postChat(mux, schema.ChatRequest{Message: "Hello"}, "application/json")
		assert.Equal(t, test.status, w.Code)
		assert.Equal(t, twin.Detail(test.err), decodeDetail(t, w))
	}
}

func Test_Chat_005(t *testing.T) {
	// Content negotiation
	assert := assert.New(t)
	mux := serveMux(newManager(t, new(mockGenerator)), nil)

	w := postChat(mux, schema.ChatRequest{Message: "Hello"}, "text/html")
	assert.Equal(http.StatusNotAcceptable, w.Code)

	w = postChat(mux, schema.ChatRequest{Message: "Hello"}, "*/*")
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Header().Get("Content-Type"), "application/json")

	w = postChat(mux, schema.ChatRequest{Message: "Hello"}, "application/json, text/event-stream")
	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Header().Get("Content-Type"), "text/event-stream")

	r := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	assert.Equal(http.StatusMethodNotAllowed, w.Code)
}

func Test_Chat_006(t *testing.T) {
	// A streamed conversation through the client, end to end
	assert := assert.New(t)
	srv := httptest.NewServer(serveMux(newManager(t, new(mockGenerator)), nil))
	defer srv.Close()

	client, err := httpclient.New(srv.URL)
	require.NoError(t, err)
	conversation, err := client.NewConversation()
	require.NoError(t, err)

	var partials []string
	var final string
	sink := sse.SinkFuncs{
		Partial: func(text string) { partials = append(partials, text) },
		Final:   func(text string) { final = text },
	}

	outcome, err := conversation.Turn(context.Background(), "Hello there", sink)
	require.NoError(t, err)
	assert.Equal(sse.StateTerminated, outcome.State)
	assert.Equal("You said Hello there", final)
	require.NotEmpty(t, partials)
	assert.Equal("You said Hello there", partials[len(partials)-1])
	assert.NotEmpty(conversation.SessionID())

	// The second turn reuses the session
	outcome, err = conversation.Turn(context.Background(), "Again please", sink)
	require.NoError(t, err)
	assert.Equal("You said Again please", final)
	assert.Equal(conversation.SessionID(), outcome.SessionID)

	history, err := client.GetConversation(context.Background(), conversation.SessionID())
	require.NoError(t, err)
	assert.Len(history.Messages, 4)
}

func Test_Chat_007(t *testing.T) {
	// A generator failure mid-stream arrives as an error event
	assert := assert.New(t)
	srv := httptest.NewServer(serveMux(newManager(t, &mockGenerator{err: twin.ErrUpstream.With("model unavailable")}), nil))
	defer srv.Close()

	client, err := httpclient.New(srv.URL)
	require.NoError(t, err)
	conversation, err := client.NewConversation()
	require.NoError(t, err)

	var detail string
	outcome, err := conversation.Turn(context.Background(), "Hello there", sse.SinkFuncs{
		Error: func(text string) { detail = text },
	})
	require.NoError(t, err)
	assert.Equal("model unavailable", detail)
	assert.ErrorIs(outcome.Err, sse.ErrUpstream)
	assert.NotEmpty(outcome.SessionID)
	assert.False(strings.Contains(detail, "upstream error"))
}
