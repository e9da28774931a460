package httpclient

import (
	"net/http"
	"net/url"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a digital twin HTTP client that wraps the base HTTP client
// and provides typed methods for interacting with the chat API.
type Client struct {
	*client.Client
	endpoint *url.URL
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new chat client with the given base URL and options.
// The url parameter should point to the API endpoint, e.g.
// "http://localhost:8000/api".
func New(endpoint string, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	if u, err := url.Parse(endpoint); err != nil {
		return nil, twin.ErrBadParameter.Withf("endpoint: %v", err)
	} else if u.Scheme == "" || u.Host == "" {
		return nil, twin.ErrBadParameter.Withf("endpoint: %q", endpoint)
	} else {
		c.endpoint = u
	}
	if client, err := client.New(append(opts, client.OptEndpoint(endpoint))...); err != nil {
		return nil, err
	} else {
		c.Client = client
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// url returns the endpoint with path elements appended
func (c *Client) url(elem ...string) string {
	return c.endpoint.JoinPath(elem...).String()
}

// streamClient returns the underlying http client without an overall
// timeout, so a streamed body can be read for as long as the context allows
func (c *Client) streamClient() *http.Client {
	if c.Client == nil || c.Client.Client == nil {
		return http.DefaultClient
	}
	hc := *c.Client.Client
	hc.Timeout = 0
	return &hc
}
