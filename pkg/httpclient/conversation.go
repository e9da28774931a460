package httpclient

import (
	"context"
	"sync"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	sse "github.com/dilettacal/digital-twin/pkg/sse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Conversation is a sequence of turns sharing one session. At most one
// turn is in flight: starting a turn cancels the previous one and waits
// for its read loop to exit.
type Conversation struct {
	client      *Client
	session     *sse.Session
	reassembler *sse.Reassembler
	sendOpts    []SendOpt
	sseOpts     []sse.Opt

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// ConversationOpt is a functional option for a conversation
type ConversationOpt func(*Conversation) error

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewConversation returns a conversation which sends turns through the client
func (c *Client) NewConversation(opts ...ConversationOpt) (*Conversation, error) {
	conversation := &Conversation{
		client:  c,
		session: sse.NewSession(""),
	}
	for _, opt := range opts {
		if err := opt(conversation); err != nil {
			return nil, err
		}
	}

	// The reassembler pins stream session events into the shared session
	reassembler, err := sse.NewReassembler(append(conversation.sseOpts, sse.WithSession(conversation.session))...)
	if err != nil {
		return nil, err
	}
	conversation.reassembler = reassembler

	return conversation, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithSessionID resumes an existing session
func WithSessionID(id string) ConversationOpt {
	return func(c *Conversation) error {
		if id == "" {
			return twin.ErrBadParameter.With("session id is empty")
		}
		c.session = sse.NewSession(id)
		return nil
	}
}

// WithSendOpts applies options to every turn
func WithSendOpts(opts ...SendOpt) ConversationOpt {
	return func(c *Conversation) error {
		c.sendOpts = append(c.sendOpts, opts...)
		return nil
	}
}

// WithStreamOpts configures the reassembler, for example its logger
func WithStreamOpts(opts ...sse.Opt) ConversationOpt {
	return func(c *Conversation) error {
		c.sseOpts = append(c.sseOpts, opts...)
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// SessionID returns the pinned session identifier, or an empty string
// before the server has assigned one
func (c *Conversation) SessionID() string {
	return c.session.ID()
}

// Turn sends a message under the pinned session and reports the reply to
// the sink. Transport and application errors are returned without any
// sink call. When the turn is cancelled, either through ctx or by a newer
// turn, the outcome state is sse.StateCancelled and the context error is
// returned.
func (c *Conversation) Turn(ctx context.Context, message string, sink sse.Sink) (sse.Outcome, error) {
	ctx, done := c.begin(ctx)
	defer done()

	exchange, err := c.client.Send(ctx, message, c.session.ID(), c.sendOpts...)
	if ctx.Err() != nil {
		if exchange != nil {
			exchange.Close()
		}
		return c.cancelled(), ctx.Err()
	} else if err != nil {
		return sse.Outcome{}, err
	}
	defer exchange.Close()

	switch exchange := exchange.(type) {
	case *OneShot:
		c.session.Pin(exchange.Response.SessionID)
		if sink != nil {
			sink.OnFinal(exchange.Response.Response)
		}
		return sse.Outcome{
			State:     sse.StateTerminated,
			Text:      exchange.Response.Response,
			SessionID: c.session.ID(),
		}, nil
	case *Streaming:
		return c.reassembler.Consume(ctx, exchange.Body, sink)
	default:
		return sse.Outcome{}, twin.ErrInternalServerError.Withf("unexpected exchange %T", exchange)
	}
}

// Cancel abandons the turn in flight, if any, and waits for it to return
func (c *Conversation) Cancel() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// begin registers a new turn, cancelling and waiting for the previous one.
// The returned function must be called when the turn returns.
func (c *Conversation) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	c.mu.Lock()
	prevCancel, prevDone := c.cancel, c.done
	c.cancel, c.done = cancel, done
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	return ctx, func() {
		cancel()
		c.mu.Lock()
		if c.done == done {
			c.cancel, c.done = nil, nil
		}
		c.mu.Unlock()
		close(done)
	}
}

func (c *Conversation) cancelled() sse.Outcome {
	return sse.Outcome{
		State:     sse.StateCancelled,
		SessionID: c.session.ID(),
	}
}
