package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	httphandler "github.com/dilettacal/digital-twin/pkg/httphandler"
	manager "github.com/dilettacal/digital-twin/pkg/manager"
	ratelimit "github.com/dilettacal/digital-twin/pkg/ratelimit"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// MOCK GENERATOR

type mockGenerator struct {
	err error
}

func (*mockGenerator) Name() string  { return "mock" }
func (*mockGenerator) Model() string { return "mock-1" }

func (g *mockGenerator) Generate(_ context.Context, req twin.GenerateRequest, fn twin.StreamFn) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	reply := "You said " + req.Message
	if fn != nil {
		for _, word := range strings.SplitAfter(reply, " ") {
			fn(word)
		}
	}
	return reply, nil
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

func newManager(t *testing.T, generator twin.Generator) *manager.Manager {
	t.Helper()
	m, err := manager.New(manager.WithGenerator(generator))
	require.NoError(t, err)
	return m
}

func newLimiter(t *testing.T, max int) *ratelimit.Limiter {
	t.Helper()
	limiter, err := ratelimit.New(max, time.Minute, 0)
	require.NoError(t, err)
	return limiter
}

func serveMux(manager *manager.Manager, limiter *ratelimit.Limiter) *http.ServeMux {
	mux := http.NewServeMux()
	path, handler, _ := httphandler.InfoHandler(manager, limiter)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.HealthHandler(manager)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.ChatHandler(manager, limiter)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.ConversationListHandler(manager)
	mux.HandleFunc(path, handler)
	path, handler, _ = httphandler.ConversationGetHandler(manager)
	mux.HandleFunc(path, handler)
	return mux
}

func postChat(mux http.Handler, req schema.ChatRequest, accept string, header ...string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if accept != "" {
		r.Header.Set("Accept", accept)
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp schema.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Detail
}
