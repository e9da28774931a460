package sse

import (
	"bytes"
	"strings"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Frame is one blank-line delimited unit of an event stream
type Frame struct {
	Event string // Event name, "message" when the frame has no event line
	Data  string // Concatenated data lines
}

// frameBuffer accumulates raw bytes and yields complete frames. Frames are
// only converted to text once their delimiter has arrived, so a multi-byte
// sequence split across reads is never decoded in halves.
type frameBuffer struct {
	buf []byte
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	delimiter = []byte("\n\n")
	crlf      = []byte("\r\n")
	lf        = []byte("\n")
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseFrame parses the text of a single frame, without its delimiter.
// It returns false when the frame carries no payload.
func ParseFrame(raw string) (Frame, bool) {
	var frame Frame
	var data strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			frame.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			data.WriteString(strings.TrimPrefix(value, " "))
		}
	}
	if data.Len() == 0 {
		return Frame{}, false
	}
	if frame.Event == "" {
		frame.Event = schema.EventMessage
	}
	frame.Data = data.String()
	return frame, true
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// write appends bytes read from the stream. CRLF line endings are folded
// to LF; a trailing CR is kept until the next write completes the pair.
func (b *frameBuffer) write(p []byte) {
	b.buf = append(b.buf, p...)
	if bytes.Contains(b.buf, crlf) {
		b.buf = bytes.ReplaceAll(b.buf, crlf, lf)
	}
}

// next removes and returns the oldest complete frame
func (b *frameBuffer) next() (string, bool) {
	idx := bytes.Index(b.buf, delimiter)
	if idx < 0 {
		return "", false
	}
	frame := string(b.buf[:idx])
	b.buf = b.buf[idx+len(delimiter):]
	if len(b.buf) == 0 {
		b.buf = nil
	}
	return frame, true
}

// len returns the number of buffered bytes not yet part of a complete frame
func (b *frameBuffer) len() int {
	return len(b.buf)
}
