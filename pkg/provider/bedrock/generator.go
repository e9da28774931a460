package bedrock

import (
	"context"
	"errors"
	"strings"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	types "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Generate returns the reply to a message. When fn is not nil the reply is
// streamed and fn receives each text delta as it arrives.
func (c *Client) Generate(ctx context.Context, req twin.GenerateRequest, fn twin.StreamFn) (string, error) {
	input := c.converseInput(req)
	c.logger.Debug("bedrock request", "model", c.model, "messages", len(input.Messages), "stream", fn != nil)

	if fn == nil {
		output, err := c.client.Converse(ctx, input)
		if err != nil {
			return "", mapError(err)
		}
		return textFromOutput(output)
	}

	output, err := c.client.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         input.ModelId,
		Messages:        input.Messages,
		System:          input.System,
		InferenceConfig: input.InferenceConfig,
	})
	if err != nil {
		return "", mapError(err)
	}

	stream := c.stream(output)
	defer stream.Close()

	var text strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-stream.Events():
			if !ok {
				if err := stream.Err(); err != nil {
					return "", mapError(err)
				}
				return text.String(), nil
			}
			if delta := textFromEvent(event); delta != "" {
				text.WriteString(delta)
				fn(delta)
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) converseInput(req twin.GenerateRequest) *bedrockruntime.ConverseInput {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.model),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.maxTokens),
			Temperature: aws.Float32(c.temperature),
			TopP:        aws.Float32(c.topP),
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}
	for _, message := range req.History {
		if msg := toMessage(message); msg != nil {
			input.Messages = append(input.Messages, *msg)
		}
	}

	// The conversation must open with a user message
	for len(input.Messages) > 0 && input.Messages[0].Role != types.ConversationRoleUser {
		input.Messages = input.Messages[1:]
	}

	input.Messages = append(input.Messages, types.Message{
		Role:    types.ConversationRoleUser,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Message}},
	})
	return input
}

func toMessage(message schema.Message) *types.Message {
	if message.Content == "" {
		return nil
	}
	var role types.ConversationRole
	switch message.Role {
	case schema.RoleUser:
		role = types.ConversationRoleUser
	case schema.RoleAssistant:
		role = types.ConversationRoleAssistant
	default:
		return nil
	}
	return &types.Message{
		Role:    role,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: message.Content}},
	}
}

func textFromOutput(output *bedrockruntime.ConverseOutput) (string, error) {
	if output == nil {
		return "", twin.ErrUpstream.With("unexpected Bedrock response format")
	}
	message, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", twin.ErrUpstream.With("unexpected Bedrock response format")
	}
	var text strings.Builder
	for _, block := range message.Value.Content {
		if block, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(block.Value)
		}
	}
	if text.Len() == 0 {
		return "", twin.ErrUpstream.With("unexpected Bedrock response format")
	}
	return text.String(), nil
}

func textFromEvent(event types.ConverseStreamOutput) string {
	if event, ok := event.(*types.ConverseStreamOutputMemberContentBlockDelta); ok {
		if delta, ok := event.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
			return delta.Value
		}
	}
	return ""
}

// mapError converts an API error code into a service error
func mapError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationException":
			return twin.ErrBadParameter.With("Invalid message format for Bedrock")
		case "AccessDeniedException", "UnrecognizedClientException":
			return twin.ErrForbidden.With("Access denied to Bedrock model")
		case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
			return twin.ErrRateLimited.With(apiErr.ErrorMessage())
		}
		return twin.ErrUpstream.Withf("bedrock: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return twin.ErrUpstream.Withf("bedrock: %v", err)
}
