package sse

import (
	"encoding/json"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Kind is the variant tag of a decoded stream event
type Kind int

// Event is a decoded frame. Which payload field is set depends on Kind.
type Event struct {
	Kind      Kind
	Name      string // Event name as received
	SessionID string // KindSession
	Delta     string // KindToken
	Text      string // KindDone
	Detail    string // KindError
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	KindUnknown Kind = iota
	KindSession
	KindToken
	KindDone
	KindError
	KindMessage
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// KindOf maps an event name onto its variant. Names outside the protocol
// map to KindUnknown.
func KindOf(name string) Kind {
	switch name {
	case schema.EventSession:
		return KindSession
	case schema.EventToken:
		return KindToken
	case schema.EventDone:
		return KindDone
	case schema.EventError:
		return KindError
	case schema.EventMessage:
		return KindMessage
	default:
		return KindUnknown
	}
}

// Decode interprets the JSON payload of a frame according to its event
// name. Payloads of message and unknown events are not interpreted. A
// payload that is not valid for its event returns ErrProtocol.
func Decode(frame Frame) (Event, error) {
	event := Event{
		Kind: KindOf(frame.Event),
		Name: frame.Event,
	}

	var err error
	switch event.Kind {
	case KindSession:
		var payload schema.StreamSession
		err = json.Unmarshal([]byte(frame.Data), &payload)
		event.SessionID = payload.SessionID
	case KindToken:
		var payload schema.StreamToken
		err = json.Unmarshal([]byte(frame.Data), &payload)
		event.Delta = payload.Delta
	case KindDone:
		var payload schema.StreamDone
		err = json.Unmarshal([]byte(frame.Data), &payload)
		event.Text = payload.Response
	case KindError:
		var payload schema.StreamError
		err = json.Unmarshal([]byte(frame.Data), &payload)
		event.Detail = payload.Detail
	case KindMessage, KindUnknown:
		// Tolerated, not interpreted
	}
	if err != nil {
		return Event{}, ErrProtocol.Withf("%s: %v", frame.Event, err)
	}

	return event, nil
}

// Terminal returns true for events which end the stream
func (e Event) Terminal() bool {
	return e.Kind == KindDone || e.Kind == KindError
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (k Kind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindToken:
		return "token"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}
