package httpclient

import (
	"context"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetConversation retrieves the stored messages of a session
func (c *Client) GetConversation(ctx context.Context, session string) (*schema.ConversationResponse, error) {
	if session == "" {
		return nil, twin.ErrBadParameter.With("session ID cannot be empty")
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversation", session)}

	// Perform request
	var response schema.ConversationResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// Sessions returns the identifiers of all stored sessions
func (c *Client) Sessions(ctx context.Context) ([]string, error) {
	var response []string
	if err := c.DoWithContext(ctx, client.NewRequest(), &response, client.OptPath("conversation")); err != nil {
		return nil, err
	}
	return response, nil
}

// Health returns the service health
func (c *Client) Health(ctx context.Context) (*schema.HealthResponse, error) {
	var response schema.HealthResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &response, client.OptPath("health")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Info returns the service description, including its rate limits
func (c *Client) Info(ctx context.Context) (*schema.InfoResponse, error) {
	var response schema.InfoResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}
