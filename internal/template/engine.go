package template

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders user-supplied Go templates with the sprig function set.
type Engine struct {
	strict bool
	funcs  template.FuncMap
}

// Option configures an Engine.
type Option func(*Engine)

// Strict makes a reference to a missing map key an error instead of
// rendering "<no value>".
func Strict() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithFuncs adds functions on top of the sprig set. Later entries win.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// New creates a template engine.
func New(opts ...Option) *Engine {
	e := &Engine{funcs: sprig.TxtFuncMap()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse compiles text with the engine's functions.
func (e *Engine) Parse(name, text string) (*template.Template, error) {
	t := template.New(name).Funcs(e.funcs)
	if e.strict {
		t = t.Option("missingkey=error")
	}
	parsed, err := t.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", name, err)
	}
	return parsed, nil
}

// Execute renders text with data into w.
func (e *Engine) Execute(w io.Writer, name, text string, data any) error {
	t, err := e.Parse(name, text)
	if err != nil {
		return err
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return nil
}

// Render renders text with data and returns the result.
func (e *Engine) Render(name, text string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, text, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderLine is Render with a trailing newline guaranteed, for terminal
// output of one record per line.
func (e *Engine) RenderLine(name, text string, data any) (string, error) {
	out, err := e.Render(name, text, data)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// MergeData merges maps into one; later maps override earlier keys.
func MergeData(maps ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
