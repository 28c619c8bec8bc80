package formatting

import (
	"fmt"
	"io"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rounded go-pretty table
	FormatPlain OutputFormat = "plain" // kubectl-style columns
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat returns the output format named by s. An empty string
// selects FormatTable.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatPlain, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table, plain, json, yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format    OutputFormat
	NoHeaders bool // Suppress the header row in table output
	Color     bool // Colorize table output
}

// Formatter writes command results.
type Formatter interface {
	Statuses(w io.Writer, statuses []Status) error
	Profiles(w io.Writer, profiles []ProfileRow) error
}

// NewFormatter returns the formatter for options.Format.
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &jsonFormatter{}
	case FormatYAML:
		return &yamlFormatter{}
	case FormatPlain:
		return &plainFormatter{options: options}
	default:
		return &tableFormatter{options: options}
	}
}
