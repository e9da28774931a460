package sse

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Sink receives the progress of one turn: zero or more partial updates
// followed by exactly one call to OnFinal or OnError.
type Sink interface {
	// OnPartial receives the accumulated reply so far
	OnPartial(text string)

	// OnFinal receives the authoritative final reply
	OnFinal(text string)

	// OnError receives a human-readable failure reason
	OnError(detail string)
}

// SinkFuncs adapts a set of functions to the Sink interface. Nil
// functions are skipped.
type SinkFuncs struct {
	Partial func(text string)
	Final   func(text string)
	Error   func(detail string)
}

var _ Sink = SinkFuncs{}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (s SinkFuncs) OnPartial(text string) {
	if s.Partial != nil {
		s.Partial(text)
	}
}

func (s SinkFuncs) OnFinal(text string) {
	if s.Final != nil {
		s.Final(text)
	}
}

func (s SinkFuncs) OnError(detail string) {
	if s.Error != nil {
		s.Error(detail)
	}
}
