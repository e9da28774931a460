// Package markdown renders assistant replies for a terminal, as styled
// markdown through glamour or as plain word-wrapped text.
package markdown

import (
	"strings"

	// Packages
	glamour "github.com/charmbracelet/glamour"
	twin "github.com/dilettacal/digital-twin"
	wordwrap "github.com/muesli/reflow/wordwrap"
	termenv "github.com/muesli/termenv"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Renderer struct {
	width    int
	style    string
	renderer *glamour.TermRenderer
}

// Opt is a functional option for a renderer
type Opt func(*Renderer) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultWidth = 80
	StyleDark    = "dark"
	StyleLight   = "light"
	StyleNoTTY   = "notty"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a renderer. Unless a style is set, it is chosen from the
// terminal background, which should be queried before any other terminal
// input is read.
func New(opts ...Opt) (*Renderer, error) {
	r := &Renderer{width: DefaultWidth}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.style == "" {
		r.style = StyleDark
		if !termenv.HasDarkBackground() {
			r.style = StyleLight
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(r.style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	return r, nil
}

// WithWidth sets the wrap width
func WithWidth(width int) Opt {
	return func(r *Renderer) error {
		if width <= 0 {
			return twin.ErrBadParameter.Withf("invalid width: %d", width)
		}
		r.width = width
		return nil
	}
}

// WithStyle sets the glamour style by name, for example "dark" or "notty"
func WithStyle(style string) Opt {
	return func(r *Renderer) error {
		if style = strings.TrimSpace(style); style == "" {
			return twin.ErrBadParameter.With("style is required")
		}
		r.style = style
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render returns text rendered as markdown, or wrapped as plain text when
// it cannot be rendered
func (r *Renderer) Render(text string) string {
	if out, err := r.renderer.Render(text); err == nil {
		return out
	}
	return Wrap(text, r.width)
}

// Wrap word-wraps plain text to the given width
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}
