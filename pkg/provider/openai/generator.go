package openai

import (
	"context"
	"io"
	"strings"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	Delta        chatMessage `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type chatCompletionResponse struct {
	Id      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate returns the reply to a message. When fn is not nil the reply is
// requested as a server-sent event stream and fn receives each text delta.
func (c *Client) Generate(ctx context.Context, req twin.GenerateRequest, fn twin.StreamFn) (string, error) {
	payload, err := client.NewJSONRequest(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages(req),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      fn != nil,
	})
	if err != nil {
		return "", err
	}

	// Streaming path
	if fn != nil {
		return c.generateStream(ctx, payload, fn)
	}

	// Non-streaming path
	var response chatCompletionResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("chat", "completions")); err != nil {
		return "", mapError(ctx, err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", twin.ErrUpstream.With("unexpected response format")
	}
	return response.Choices[0].Message.Content, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) generateStream(ctx context.Context, payload client.Payload, fn twin.StreamFn) (string, error) {
	var content strings.Builder
	callback := func(event client.TextStreamEvent) error {
		// Check for [DONE] sentinel
		if strings.TrimSpace(event.Data) == "[DONE]" {
			return io.EOF
		}

		var chunk chatCompletionResponse
		if err := event.Json(&chunk); err != nil {
			return err
		}
		if len(chunk.Choices) == 0 {
			return nil
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			content.WriteString(delta)
			fn(delta)
		}
		return nil
	}

	var discard chatCompletionResponse
	if err := c.DoWithContext(ctx, payload, &discard,
		client.OptPath("chat", "completions"),
		client.OptTextStreamCallback(callback),
	); err != nil && err != io.EOF {
		return "", mapError(ctx, err)
	}
	return content.String(), nil
}

func messages(req twin.GenerateRequest) []chatMessage {
	result := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		result = append(result, chatMessage{Role: schema.RoleSystem, Content: req.System})
	}
	for _, message := range req.History {
		if message.Role == schema.RoleUser || message.Role == schema.RoleAssistant {
			result = append(result, chatMessage{Role: message.Role, Content: message.Content})
		}
	}
	return append(result, chatMessage{Role: schema.RoleUser, Content: req.Message})
}

func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return twin.ErrUpstream.Withf("openai: %v", err)
}
