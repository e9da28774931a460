package httpclient

import (
	"io"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Exchange is the negotiated shape of a chat reply, either *OneShot or
// *Streaming. The caller must call Close when done with it.
type Exchange interface {
	Close() error

	exchange()
}

// OneShot is a complete reply decoded from a JSON body
type OneShot struct {
	Response schema.ChatResponse
}

// Streaming is a live event stream. Body is read by a reassembler.
type Streaming struct {
	Body io.ReadCloser
}

var _ Exchange = (*OneShot)(nil)
var _ Exchange = (*Streaming)(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (*OneShot) Close() error {
	return nil
}

func (s *Streaming) Close() error {
	if s.Body == nil {
		return nil
	}
	return s.Body.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (*OneShot) exchange()   {}
func (*Streaming) exchange() {}
