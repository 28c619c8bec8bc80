package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type jsonFormatter struct{}

func (f *jsonFormatter) Statuses(w io.Writer, statuses []Status) error {
	return f.write(w, statuses)
}

func (f *jsonFormatter) Profiles(w io.Writer, profiles []ProfileRow) error {
	return f.write(w, profiles)
}

func (f *jsonFormatter) write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

type yamlFormatter struct{}

func (f *yamlFormatter) Statuses(w io.Writer, statuses []Status) error {
	return f.write(w, statuses)
}

func (f *yamlFormatter) Profiles(w io.Writer, profiles []ProfileRow) error {
	return f.write(w, profiles)
}

func (f *yamlFormatter) write(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
