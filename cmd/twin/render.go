package main

import (
	"fmt"
	"io"
	"strings"

	// Packages
	sse "github.com/dilettacal/digital-twin/pkg/sse"
	markdown "github.com/dilettacal/digital-twin/pkg/ui/markdown"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// turnWriter renders one turn. On a terminal the reply is drawn as it
// grows; otherwise only the final reply is written.
type turnWriter struct {
	w        io.Writer
	live     bool
	markdown *markdown.Renderer
	printed  string
}

var _ sse.Sink = (*turnWriter)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newTurnWriter(w io.Writer, live bool, md *markdown.Renderer) *turnWriter {
	return &turnWriter{w: w, live: live, markdown: md}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (t *turnWriter) OnPartial(text string) {
	if !t.live {
		return
	}
	if strings.HasPrefix(text, t.printed) {
		fmt.Fprint(t.w, text[len(t.printed):])
	} else {
		// The reply was rewritten, start a fresh line
		fmt.Fprint(t.w, "\n", text)
	}
	t.printed = text
}

func (t *turnWriter) OnFinal(text string) {
	switch {
	case t.printed != "" && strings.HasPrefix(text, t.printed):
		fmt.Fprintln(t.w, text[len(t.printed):])
	case t.printed != "":
		fmt.Fprint(t.w, "\n", text, "\n")
	case t.markdown != nil:
		fmt.Fprint(t.w, t.markdown.Render(text))
	default:
		fmt.Fprintln(t.w, text)
	}
	t.printed = text
}

func (t *turnWriter) OnError(detail string) {
	if t.printed != "" {
		fmt.Fprintln(t.w)
	}
	fmt.Fprintln(t.w, "error:", detail)
}
