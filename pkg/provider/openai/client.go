/*
openai implements a completion backend for the OpenAI chat completions API,
or any server compatible with it.
https://platform.openai.com/docs/api-reference/chat
*/
package openai

import (
	// Packages
	twin "github.com/dilettacal/digital-twin"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
	model       string
	maxTokens   int
	temperature float64
}

var _ twin.Generator = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName     = "openai"
	DefaultEndpoint = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new generator with the given API key. Use client.OptEndpoint
// to target a compatible server instead of the OpenAI API.
func New(apiKey, model string, opts ...client.ClientOpt) (*Client, error) {
	if apiKey == "" {
		return nil, twin.ErrBadParameter.With("missing api key")
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]client.ClientOpt{
		client.OptEndpoint(DefaultEndpoint),
	}, append(opts,
		client.OptReqToken(client.Token{Scheme: client.Bearer, Value: apiKey}),
	)...)
	if c, err := client.New(opts...); err != nil {
		return nil, err
	} else {
		return &Client{c, model, 2000, 0.7}, nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the provider name
func (*Client) Name() string {
	return defaultName
}

// Model returns the model name
func (c *Client) Model() string {
	return c.model
}
