package schema

import (
	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// ChatRequest is the body of a POST /chat request
type ChatRequest struct {
	Message   string `json:"message" arg:"" help:"Message text"`
	SessionID string `json:"session_id,omitempty" help:"Session identifier" optional:""`
}

// ChatResponse is the one-shot (non-streamed) reply to a ChatRequest
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ErrorResponse is the body returned with a non-success status. Either
// Detail or Message carries the human-readable reason.
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

// ConversationResponse is the reply to GET /conversation/{session}
type ConversationResponse struct {
	SessionID string       `json:"session_id"`
	Messages  Conversation `json:"messages"`
}

// HealthResponse is the reply to GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Provider string `json:"ai_provider"`
	Model    string `json:"ai_model"`
}

// RateLimits describes the configured per-client limits
type RateLimits struct {
	MaxRequests     int     `json:"max_requests"`
	WindowSeconds   int     `json:"window_seconds"`
	CooldownSeconds float64 `json:"cooldown_seconds"`
}

// InfoResponse is the reply to GET /
type InfoResponse struct {
	Message    string     `json:"message"`
	Version    string     `json:"version,omitempty"`
	Storage    string     `json:"storage"`
	Provider   string     `json:"ai_provider"`
	Model      string     `json:"ai_model"`
	RateLimits RateLimits `json:"rate_limits"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Reason returns the human-readable reason, preferring Detail over Message
func (e ErrorResponse) Reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r ChatRequest) String() string {
	return types.Stringify(r)
}

func (r ChatResponse) String() string {
	return types.Stringify(r)
}

func (r ErrorResponse) String() string {
	return types.Stringify(r)
}

func (r ConversationResponse) String() string {
	return types.Stringify(r)
}

func (r HealthResponse) String() string {
	return types.Stringify(r)
}

func (r InfoResponse) String() string {
	return types.Stringify(r)
}
