/*
ollama implements a completion backend for a local ollama server
https://github.com/ollama/ollama/blob/main/docs/api.md
*/
package ollama

import (
	"strings"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
	model   string
	options map[string]any
}

var _ twin.Generator = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName     = "ollama"
	DefaultEndpoint = "http://127.0.0.1:11434"
	DefaultModel    = "llama3.2"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new generator for an ollama server, which should be something
// like "http://localhost:11434". The "/api" path is appended when missing.
func New(endPoint, model string, opts ...client.ClientOpt) (*Client, error) {
	if endPoint == "" {
		endPoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	endPoint = strings.TrimSuffix(endPoint, "/")
	if !strings.HasSuffix(endPoint, "/api") {
		endPoint += "/api"
	}

	// Create client
	client, err := client.New(append(opts, client.OptEndpoint(endPoint))...)
	if err != nil {
		return nil, err
	}

	// Return the client
	return &Client{
		Client: client,
		model:  model,
		options: map[string]any{
			"temperature": 0.7,
			"top_p":       0.9,
			"num_predict": 2000,
		},
	}, nil
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
