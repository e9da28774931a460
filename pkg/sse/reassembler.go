package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	// Packages
	twin "github.com/dilettacal/digital-twin"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Reassembler turns a chunked event stream into sink calls. A Reassembler
// may be reused for consecutive turns; all per-turn state lives in Consume.
type Reassembler struct {
	logger   *slog.Logger
	session  *Session
	readSize int
}

// Opt configures a Reassembler
type Opt func(*Reassembler) error

// State is the lifecycle state of a turn
type State int

// Outcome describes how a turn ended
type Outcome struct {
	State     State
	Text      string // Final reply, when the turn succeeded
	Detail    string // Failure reason passed to the sink
	Err       error  // ErrUpstream or ErrTerminated on failure
	SessionID string // Pinned session after the turn
	Skipped   int    // Number of malformed frames skipped
}

// turn holds the state of one Consume call
type turn struct {
	*Reassembler
	sink    Sink
	text    strings.Builder
	outcome Outcome
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StateReading State = iota
	StateTerminated
	StateCancelled
)

const (
	defaultReadSize = 4 * 1024
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewReassembler returns a new reassembler with the given options
func NewReassembler(opts ...Opt) (*Reassembler, error) {
	r := &Reassembler{
		logger:   slog.Default(),
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.session == nil {
		r.session = NewSession("")
	}
	return r, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithLogger sets the logger for skipped frames and ignored events
func WithLogger(logger *slog.Logger) Opt {
	return func(r *Reassembler) error {
		if logger == nil {
			return twin.ErrBadParameter.With("logger is nil")
		}
		r.logger = logger
		return nil
	}
}

// WithSession shares a session between turns, so the identifier pinned
// by one turn is visible to the next
func WithSession(session *Session) Opt {
	return func(r *Reassembler) error {
		if session == nil {
			return twin.ErrBadParameter.With("session is nil")
		}
		r.session = session
		return nil
	}
}

// WithReadSize sets the size of each read from the stream
func WithReadSize(n int) Opt {
	return func(r *Reassembler) error {
		if n <= 0 {
			return twin.ErrBadParameter.Withf("read size %d", n)
		}
		r.readSize = n
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Session returns the session which stream session events are pinned to
func (r *Reassembler) Session() *Session {
	return r.session
}

// Consume reads the stream until a terminal event, the end of the stream
// or cancellation of the context. The sink receives zero or more partial
// updates followed by exactly one of OnFinal or OnError, unless the
// context is cancelled, in which case the reader is closed (when it is an
// io.Closer), the sink receives nothing further and the context error is
// returned.
func (r *Reassembler) Consume(ctx context.Context, rd io.Reader, sink Sink) (Outcome, error) {
	if sink == nil {
		sink = SinkFuncs{}
	}
	t := &turn{Reassembler: r, sink: sink}
	t.outcome.State = StateReading

	// Unblock a pending read when the context is cancelled
	if closer, ok := rd.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			closer.Close()
		})
		defer stop()
	}

	var frames frameBuffer
	buf := make([]byte, r.readSize)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			frames.write(buf[:n])
			for {
				raw, ok := frames.next()
				if !ok {
					break
				}
				if ctx.Err() != nil {
					return t.cancel(ctx)
				}
				if t.dispatch(raw) {
					return t.result(), nil
				}
			}
		}
		if ctx.Err() != nil {
			return t.cancel(ctx)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.logger.Warn("stream read failed", "error", err)
			}
			if n := frames.len(); n > 0 {
				r.logger.Debug("discarding partial frame", "bytes", n)
			}
			t.close()
			return t.result(), nil
		}
	}
}

// OK returns true if the turn ended with a final reply
func (o Outcome) OK() bool {
	return o.State == StateTerminated && o.Err == nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// dispatch handles one raw frame and returns true when the turn has
// terminated
func (t *turn) dispatch(raw string) bool {
	frame, ok := ParseFrame(raw)
	if !ok {
		return false
	}
	event, err := Decode(frame)
	if err != nil {
		t.outcome.Skipped++
		t.logger.Warn("skipping malformed frame", "event", frame.Event, "error", err)
		return false
	}

	switch event.Kind {
	case KindSession:
		if t.session.Pin(event.SessionID) {
			t.logger.Debug("session pinned", "session", event.SessionID)
		} else if event.SessionID != t.session.ID() {
			t.logger.Debug("ignoring session change", "session", event.SessionID, "pinned", t.session.ID())
		}
	case KindToken:
		if event.Delta == "" {
			return false
		}
		t.text.WriteString(event.Delta)
		t.sink.OnPartial(t.text.String())
	case KindDone:
		t.final(event.Text)
		return true
	case KindError:
		detail := event.Detail
		if detail == "" {
			detail = ErrUpstream.Error()
		}
		t.fail(detail, ErrUpstream.With(detail))
		return true
	case KindMessage, KindUnknown:
		t.logger.Debug("ignoring event", "event", event.Name)
	}
	return false
}

// close applies the end of stream policy: promote whatever has
// accumulated, or report that nothing arrived
func (t *turn) close() {
	if t.text.Len() > 0 {
		t.final(t.text.String())
	} else {
		t.fail(ErrTerminated.Error(), ErrTerminated)
	}
}

func (t *turn) final(text string) {
	t.outcome.State = StateTerminated
	t.outcome.Text = text
	t.sink.OnFinal(text)
}

func (t *turn) fail(detail string, err error) {
	t.outcome.State = StateTerminated
	t.outcome.Detail = detail
	t.outcome.Err = err
	t.sink.OnError(detail)
}

func (t *turn) cancel(ctx context.Context) (Outcome, error) {
	t.outcome.State = StateCancelled
	t.outcome.Text = ""
	return t.result(), ctx.Err()
}

func (t *turn) result() Outcome {
	t.outcome.SessionID = t.session.ID()
	return t.outcome
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateTerminated:
		return "terminated"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
