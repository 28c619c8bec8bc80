package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrAborted is returned when the user interrupts or closes input.
var ErrAborted = errors.New("input aborted")

// Prompter asks the user for values on the terminal.
type Prompter interface {
	// Line reads one line of visible input.
	Line(prompt string) (string, error)
	// Secret reads one line without echoing it.
	Secret(prompt string) (string, error)
}

// Config selects the streams a ReadlinePrompter uses. Zero values mean the
// process's standard streams.
type Config struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
	// Interactive overrides terminal detection when set.
	Interactive *bool
}

// ReadlinePrompter is a Prompter backed by readline.
type ReadlinePrompter struct {
	cfg Config
}

// New creates a ReadlinePrompter.
func New(cfg Config) *ReadlinePrompter {
	return &ReadlinePrompter{cfg: cfg}
}

func (p *ReadlinePrompter) instance(prompt string) (*readline.Instance, error) {
	rc := &readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		Stdin:           p.cfg.Stdin,
		Stdout:          p.cfg.Stdout,
		Stderr:          p.cfg.Stderr,
		// One-shot prompts keep no history.
		DisableAutoSaveHistory: true,
	}
	if p.cfg.Interactive != nil {
		interactive := *p.cfg.Interactive
		rc.FuncIsTerminal = func() bool { return interactive }
	}
	rl, err := readline.NewEx(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return rl, nil
}

// Line implements Prompter.
func (p *ReadlinePrompter) Line(prompt string) (string, error) {
	rl, err := p.instance(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	return finish(line, err)
}

// Secret implements Prompter.
func (p *ReadlinePrompter) Secret(prompt string) (string, error) {
	rl, err := p.instance("")
	if err != nil {
		return "", err
	}
	defer rl.Close()

	b, err := rl.ReadPassword(prompt)
	return finish(string(b), err)
}

func finish(line string, err error) (string, error) {
	switch {
	case errors.Is(err, readline.ErrInterrupt), errors.Is(err, io.EOF):
		if line = strings.TrimSpace(line); line != "" && errors.Is(err, io.EOF) {
			return line, nil
		}
		return "", ErrAborted
	case err != nil:
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Required asks with ask until a non-blank answer is given, up to attempts
// times.
func Required(ask func(string) (string, error), prompt string, attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		v, err := ask(prompt)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no value given for %q", strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(prompt), ":")))
}
