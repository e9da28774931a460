package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	httpclient "github.com/dilettacal/digital-twin/pkg/httpclient"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	sse "github.com/dilettacal/digital-twin/pkg/sse"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

func event(name string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return "event: " + name + "\ndata: " + string(data) + "\n\n"
}

func writeEvents(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, e := range events {
		io.WriteString(w, e)
		w.(http.Flusher).Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, handler http.HandlerFunc) *httpclient.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := httpclient.New(srv.URL + "/api")
	require.NoError(t, err)
	return c
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_Send_001(t *testing.T) {
	// A one-shot JSON reply
	assert := assert.New(t)
	var request map[string]any
	var accept, contentType string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&request)
		writeJSON(w, http.StatusOK, schema.ChatResponse{Response: "Hi!", SessionID: "s1"})
	})

	exchange, err := c.Send(context.Background(), "Hello", "")
	require.NoError(t, err)
	defer exchange.Close()

	oneshot, ok := exchange.(*httpclient.OneShot)
	require.True(t, ok)
	assert.Equal("Hi!", oneshot.Response.Response)
	assert.Equal("s1", oneshot.Response.SessionID)
	assert.Equal("Hello", request["message"])
	assert.NotContains(request, "session_id")
	assert.Contains(accept, "text/event-stream")
	assert.Contains(accept, "application/json")
	assert.Equal("application/json", contentType)
}

func Test_Send_002(t *testing.T) {
	// A streamed reply returns the live body
	assert := assert.New(t)
	var request schema.ChatRequest
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&request)
		writeEvents(w, event("token", schema.StreamToken{Delta: "x"}))
	})

	exchange, err := c.Send(context.Background(), "Hello", "abc")
	require.NoError(t, err)
	defer exchange.Close()

	streaming, ok := exchange.(*httpclient.Streaming)
	require.True(t, ok)
	data, err := io.ReadAll(streaming.Body)
	assert.NoError(err)
	assert.Equal("event: token\ndata: {\"delta\":\"x\"}\n\n", string(data))
	assert.Equal("abc", request.SessionID)
}

func Test_Send_003(t *testing.T) {
	// WithoutStream only accepts JSON
	assert := assert.New(t)
	var accept string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		writeJSON(w, http.StatusOK, schema.ChatResponse{Response: "ok"})
	})
	exchange, err := c.Send(context.Background(), "Hello", "", httpclient.WithoutStream())
	require.NoError(t, err)
	exchange.Close()
	assert.Equal("application/json", accept)
}

func Test_Send_004(t *testing.T) {
	// Non-success statuses are classified
	tests := []struct {
		status int
		body   string
		kind   httpclient.ErrorKind
		detail string
		is     error
	}{
		{http.StatusTooManyRequests, `{"detail":"slow down"}`, httpclient.KindRateLimited, "slow down", twin.ErrRateLimited},
		{http.StatusBadRequest, `{"message":"Message cannot be empty."}`, httpclient.KindValidation, "Message cannot be empty.", twin.ErrBadParameter},
		{http.StatusUnprocessableEntity, `{"detail":"bad field"}`, httpclient.KindValidation, "bad field", twin.ErrBadParameter},
		{http.StatusInternalServerError, `{"detail":"db password is hunter2"}`, httpclient.KindServer, "The service is temporarily unavailable. Please try again later.", twin.ErrInternalServerError},
		{http.StatusBadGateway, ``, httpclient.KindServer, "The service is temporarily unavailable. Please try again later.", twin.ErrInternalServerError},
		{http.StatusNotFound, `not here`, httpclient.KindUnknown, "not here", nil},
		{http.StatusForbidden, ``, httpclient.KindUnknown, "Forbidden", nil},
	}
	for _, test := range tests {
		t.Run(http.StatusText(test.status), func(t *testing.T) {
			assert := assert.New(t)
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				io.WriteString(w, test.body)
			})
			exchange, err := c.Send(context.Background(), "Hello", "")
			assert.Nil(exchange)

			var apperr *httpclient.ApplicationError
			require.True(t, errors.As(err, &apperr))
			assert.Equal(test.status, apperr.Status)
			assert.Equal(test.kind, apperr.Kind)
			assert.Equal(test.detail, apperr.Detail)
			assert.Equal(test.body, apperr.Body())
			if test.is != nil {
				assert.ErrorIs(err, test.is)
			}
			assert.NotContains(err.Error(), "hunter2")
		})
	}
}

func Test_Send_005(t *testing.T) {
	// No response is a transport error
	assert := assert.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := httpclient.New(url)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "Hello", "")

	var transporterr *httpclient.TransportError
	assert.True(errors.As(err, &transporterr))
}

func Test_Send_006(t *testing.T) {
	// An undecodable one-shot body is a transport error
	assert := assert.New(t)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "{")
	})
	_, err := c.Send(context.Background(), "Hello", "")
	var transporterr *httpclient.TransportError
	assert.True(errors.As(err, &transporterr))
}

func Test_New_001(t *testing.T) {
	assert := assert.New(t)
	_, err := httpclient.New("not a url")
	assert.ErrorIs(err, twin.ErrBadParameter)
}

func Test_Conversation_001(t *testing.T) {
	// The session from the first stream is reused unmodified
	assert := assert.New(t)
	var sessions []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var request schema.ChatRequest
		json.NewDecoder(r.Body).Decode(&request)
		sessions = append(sessions, request.SessionID)
		id := "abc"
		if request.SessionID != "" {
			id = "def"
		}
		writeEvents(w,
			event("session", schema.StreamSession{SessionID: id}),
			event("token", schema.StreamToken{Delta: "Hel"}),
			event("token", schema.StreamToken{Delta: "lo"}),
			event("done", schema.StreamDone{Response: "Hello"}),
		)
	})

	conversation, err := c.NewConversation()
	require.NoError(t, err)
	assert.Equal("", conversation.SessionID())

	var partials []string
	var final string
	sink := sse.SinkFuncs{
		Partial: func(text string) { partials = append(partials, text) },
		Final:   func(text string) { final = text },
		Error:   func(detail string) { t.Error("unexpected error:", detail) },
	}

	outcome, err := conversation.Turn(context.Background(), "Hi", sink)
	require.NoError(t, err)
	assert.Equal([]string{"Hel", "Hello"}, partials)
	assert.Equal("Hello", final)
	assert.Equal("abc", outcome.SessionID)

	outcome, err = conversation.Turn(context.Background(), "Again", sink)
	require.NoError(t, err)
	assert.Equal("abc", outcome.SessionID)
	assert.Equal([]string{"", "abc"}, sessions)
}

func Test_Conversation_002(t *testing.T) {
	// A one-shot reply pins the session and calls OnFinal
	assert := assert.New(t)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, schema.ChatResponse{Response: "Hi!", SessionID: "s9"})
	})
	conversation, err := c.NewConversation(httpclient.WithSendOpts(httpclient.WithoutStream()))
	require.NoError(t, err)

	var final string
	outcome, err := conversation.Turn(context.Background(), "Hello", sse.SinkFuncs{
		Final: func(text string) { final = text },
	})
	require.NoError(t, err)
	assert.Equal("Hi!", final)
	assert.True(outcome.OK())
	assert.Equal("s9", conversation.SessionID())
}

func Test_Conversation_003(t *testing.T) {
	// Application errors are returned without sink calls
	assert := assert.New(t)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, schema.ErrorResponse{Detail: "slow down"})
	})
	conversation, err := c.NewConversation(httpclient.WithSessionID("resume"))
	require.NoError(t, err)

	called := false
	sink := sse.SinkFuncs{
		Final: func(string) { called = true },
		Error: func(string) { called = true },
	}
	_, err = conversation.Turn(context.Background(), "Hello", sink)
	assert.ErrorIs(err, twin.ErrRateLimited)
	assert.False(called)
	assert.Equal("resume", conversation.SessionID())
}

func Test_Conversation_004(t *testing.T) {
	// A new turn cancels the one in flight
	assert := assert.New(t)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var request schema.ChatRequest
		json.NewDecoder(r.Body).Decode(&request)
		if request.Message == "slow" {
			writeEvents(w, event("token", schema.StreamToken{Delta: "partial"}))
			<-r.Context().Done()
			return
		}
		writeEvents(w, event("done", schema.StreamDone{Response: "fast"}))
	})
	conversation, err := c.NewConversation()
	require.NoError(t, err)

	started := make(chan struct{})
	type result struct {
		outcome sse.Outcome
		err     error
	}
	first := make(chan result, 1)
	go func() {
		var once bool
		outcome, err := conversation.Turn(context.Background(), "slow", sse.SinkFuncs{
			Partial: func(string) {
				if !once {
					once = true
					close(started)
				}
			},
			Final: func(string) { t.Error("unexpected final") },
			Error: func(string) { t.Error("unexpected error") },
		})
		first <- result{outcome, err}
	}()
	<-started

	var final string
	outcome, err := conversation.Turn(context.Background(), "fast", sse.SinkFuncs{
		Final: func(text string) { final = text },
	})
	require.NoError(t, err)
	assert.True(outcome.OK())
	assert.Equal("fast", final)

	r := <-first
	assert.ErrorIs(r.err, context.Canceled)
	assert.Equal(sse.StateCancelled, r.outcome.State)
}

func Test_Conversation_005(t *testing.T) {
	// Cancel abandons the turn in flight
	assert := assert.New(t)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, event("token", schema.StreamToken{Delta: "partial"}))
		<-r.Context().Done()
	})
	conversation, err := c.NewConversation()
	require.NoError(t, err)

	started := make(chan struct{})
	errs := make(chan error, 1)
	go func() {
		var once bool
		_, err := conversation.Turn(context.Background(), "slow", sse.SinkFuncs{
			Partial: func(string) {
				if !once {
					once = true
					close(started)
				}
			},
		})
		errs <- err
	}()
	<-started
	conversation.Cancel()
	assert.ErrorIs(<-errs, context.Canceled)
}
