package sse

import (
	// Packages
	twin "github.com/dilettacal/digital-twin"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	// ErrProtocol is returned for a frame whose payload cannot be decoded.
	// Such frames are skipped and never end the stream.
	ErrProtocol = twin.ErrStreamProtocol

	// ErrTerminated is reported when the stream closes before any reply
	ErrTerminated = twin.ErrStreamTerminated

	// ErrUpstream is reported when the server sends an error event
	ErrUpstream = twin.ErrUpstream
)
