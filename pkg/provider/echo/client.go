/*
echo implements an offline completion backend which replies with the user's
own message. It requires no credentials or network access, and streams the
reply word by word as real backends do.
*/
package echo

import (
	"context"
	"fmt"
	"strings"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	delay time.Duration
	reply func(twin.GenerateRequest) string
}

// Opt is a functional option for configuring the echo client
type Opt func(*Client) error

var _ twin.Generator = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultName  = "echo"
	defaultModel = "echo-1"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new echo client
func New(opts ...Opt) (*Client, error) {
	c := &Client{
		reply: defaultReply,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithDelay pauses between streamed words
func WithDelay(delay time.Duration) Opt {
	return func(c *Client) error {
		if delay < 0 {
			return twin.ErrBadParameter.Withf("invalid delay: %v", delay)
		}
		c.delay = delay
		return nil
	}
}

// WithReply replaces the function which composes a reply
func WithReply(fn func(twin.GenerateRequest) string) Opt {
	return func(c *Client) error {
		if fn == nil {
			return twin.ErrBadParameter.With("reply function is required")
		}
		c.reply = fn
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the provider name
func (*Client) Name() string {
	return defaultName
}

// Model returns the model name
func (*Client) Model() string {
	return defaultModel
}

// Generate returns the reply. When fn is not nil the reply is delivered
// word by word before returning.
func (c *Client) Generate(ctx context.Context, req twin.GenerateRequest, fn twin.StreamFn) (string, error) {
	response := c.reply(req)
	if fn == nil {
		return response, ctx.Err()
	}
	for i, word := range strings.Fields(response) {
		if i > 0 {
			word = " " + word
			if err := c.wait(ctx); err != nil {
				return "", err
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fn(word)
	}
	return response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func defaultReply(req twin.GenerateRequest) string {
	return fmt.Sprintf("You said: %s", strings.Join(strings.Fields(req.Message), " "))
}

func (c *Client) wait(ctx context.Context) error {
	if c.delay == 0 {
		return nil
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
