package ollama

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is a chat message in the ollama format
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is a chat response, or one chunk of a streamed response
type Response struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`
	Reason    string    `json:"done_reason,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type reqChat struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
	Stream   bool           `json:"stream"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Response) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate returns the reply to a message. When fn is not nil the reply is
// streamed and fn receives each text delta as it arrives.
func (c *Client) Generate(ctx context.Context, prompt twin.GenerateRequest, fn twin.StreamFn) (string, error) {
	// Request
	req, err := client.NewJSONRequest(reqChat{
		Model:    c.model,
		Messages: messages(prompt),
		Options:  c.options,
		Stream:   fn != nil,
	})
	if err != nil {
		return "", err
	}

	// Response
	var response strings.Builder
	var delta Response
	reqOpts := []client.RequestOpt{client.OptPath("chat")}
	if fn != nil {
		reqOpts = append(reqOpts, client.OptJsonStreamCallback(func(v any) error {
			if v, ok := v.(*Response); !ok || v == nil {
				return twin.ErrUpstream.Withf("invalid stream response: %v", v)
			} else if v.Error != "" {
				return twin.ErrUpstream.With(v.Error)
			} else if v.Message.Content != "" {
				response.WriteString(v.Message.Content)
				fn(v.Message.Content)
			}
			return nil
		}))
	}
	if err := c.DoWithContext(ctx, req, &delta, reqOpts...); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", twin.ErrUpstream.Withf("ollama: %v", err)
	}

	// We return the accumulated stream or the single response
	if fn != nil {
		return response.String(), nil
	}
	if delta.Error != "" {
		return "", twin.ErrUpstream.With(delta.Error)
	}
	if delta.Message.Content == "" {
		return "", twin.ErrUpstream.With("unexpected Ollama response format")
	}
	return delta.Message.Content, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func messages(prompt twin.GenerateRequest) []Message {
	result := make([]Message, 0, len(prompt.History)+2)
	if prompt.System != "" {
		result = append(result, Message{Role: schema.RoleSystem, Content: prompt.System})
	}
	for _, message := range prompt.History {
		if message.Role == schema.RoleUser || message.Role == schema.RoleAssistant {
			result = append(result, Message{Role: message.Role, Content: message.Content})
		}
	}
	return append(result, Message{Role: schema.RoleUser, Content: prompt.Message})
}
