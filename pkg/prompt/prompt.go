/*
prompt renders the system prompt for the twin from a persona and a
text/template. A default persona and template are embedded.
*/
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Prompt renders system prompts. It is safe for concurrent use.
type Prompt struct {
	persona *Persona
	tmpl    *template.Template
}

// Opt is a functional option for a Prompt
type Opt func(*Prompt) error

// data is passed to the template
type data struct {
	*Persona
	Now string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	timeFormat = "2006-01-02 15:04:05"
)

var (
	//go:embed default.tmpl
	defaultTemplate string

	//go:embed persona.yaml
	defaultPersona []byte
)

var funcs = template.FuncMap{
	"numbered": numbered,
	"yaml":     toYAML,
	"join":     strings.Join,
	"trim":     strings.TrimSpace,
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a prompt for the persona, using the default template unless
// another is set with an option
func New(persona *Persona, opts ...Opt) (*Prompt, error) {
	if persona == nil {
		return nil, twin.ErrBadParameter.With("persona is required")
	}
	p := &Prompt{persona: persona}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.tmpl == nil {
		if err := WithTemplate(defaultTemplate)(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithTemplate sets the template text
func WithTemplate(text string) Opt {
	return func(p *Prompt) error {
		tmpl, err := template.New("system").Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return twin.ErrBadParameter.Withf("template: %v", err)
		}
		p.tmpl = tmpl
		return nil
	}
}

// WithTemplateFile reads the template text from a file
func WithTemplateFile(path string) Opt {
	return func(p *Prompt) error {
		text, err := os.ReadFile(path)
		if err != nil {
			return twin.ErrNotFound.Withf("template: %v", err)
		}
		return WithTemplate(string(text))(p)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Persona returns the persona the prompt speaks for
func (p *Prompt) Persona() *Persona {
	return p.persona
}

// System renders the system prompt at the given time
func (p *Prompt) System(now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data{
		Persona: p.persona,
		Now:     now.Format(timeFormat),
	}); err != nil {
		return "", twin.ErrInternalServerError.Withf("template: %v", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func numbered(items []string) string {
	var buf strings.Builder
	for i, item := range items {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%d. %s", i+1, item)
	}
	return buf.String()
}

func toYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
