package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"apiconnect/pkg/logging"
	"apiconnect/pkg/oauth"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appConfigDir   = "apiconnect"
	configFileName = "config.yaml"
)

// DefaultPath returns the profile file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appConfigDir, configFileName)
}

// File is the on-disk set of named connection profiles.
type File struct {
	// Path is where the file was loaded from.
	Path string `yaml:"-"`

	DefaultProfile string             `yaml:"defaultProfile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one named connection configuration as written in the file.
type Profile struct {
	GrantType string `yaml:"grantType"`
	Settings  `yaml:",inline"`

	BaseAuthorizationURL string   `yaml:"authorizationUrl,omitempty"`
	RedirectURL          string   `yaml:"redirectUrl,omitempty"`
	DisconnectURL        string   `yaml:"disconnectUrl,omitempty"`
	Scopes               []string `yaml:"scopes,omitempty"`
}

// ApplyTo copies the profile onto cfg. Authorization-code fields are only
// copied when cfg is an *AuthorizationCode.
func (p Profile) ApplyTo(cfg Configuration) {
	*cfg.Common() = p.Settings

	ac, ok := cfg.(*AuthorizationCode)
	if !ok {
		return
	}
	ac.BaseAuthorizationURL = p.BaseAuthorizationURL
	ac.RedirectURL = p.RedirectURL
	ac.DisconnectURL = p.DisconnectURL
	for _, s := range p.Scopes {
		ac.AddScope(oauth.Scope(s))
	}
}

// LoadFile reads, schema-checks and decodes the profile file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{
				FilePath:    path,
				ErrorType:   ErrorTypeNotFound,
				Message:     "profile file does not exist",
				Suggestions: []string{fmt.Sprintf("create %s or pass --config", path)},
				Err:         err,
			}
		}
		logging.Info("Config", "Error reading %s: %s", path, err)
		return nil, &ConfigurationError{FilePath: path, ErrorType: ErrorTypeIO, Message: "failed to read profile file", Err: err}
	}

	return Parse(path, data)
}

// Parse schema-checks and decodes profile file contents. path is only used
// for error reporting.
func Parse(path string, data []byte) (*File, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{FilePath: path, ErrorType: ErrorTypeParse, Message: "malformed YAML", Details: err.Error(), Err: err}
	}

	if err := ValidateSchema(doc); err != nil {
		return nil, &ConfigurationError{
			FilePath:  path,
			ErrorType: ErrorTypeValidation,
			Message:   "profile file does not match the expected structure",
			Details:   err.Error(),
			Err:       err,
		}
	}

	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, &ConfigurationError{FilePath: path, ErrorType: ErrorTypeParse, Message: "failed to decode profiles", Details: err.Error(), Err: err}
	}
	f.Path = path

	logging.Info("Config", "Loaded %d profile(s) from %s", len(f.Profiles), path)
	return f, nil
}

// Names returns the profile names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile resolves a profile by name. An empty name selects the file's
// default profile, or the only profile when there is exactly one.
func (f *File) Profile(name string) (string, Profile, error) {
	if name == "" {
		name = f.DefaultProfile
	}
	if name == "" && len(f.Profiles) == 1 {
		for only := range f.Profiles {
			name = only
		}
	}
	if name == "" {
		return "", Profile{}, &ConfigurationError{
			FilePath:    f.Path,
			ErrorType:   ErrorTypeNotFound,
			Message:     "no profile selected",
			Suggestions: []string{"pass --profile", "set defaultProfile in the profile file"},
		}
	}

	p, ok := f.Profiles[name]
	if !ok {
		return "", Profile{}, &ConfigurationError{
			FilePath:    f.Path,
			Profile:     name,
			ErrorType:   ErrorTypeNotFound,
			Message:     "profile not found",
			Suggestions: []string{fmt.Sprintf("available profiles: %v", f.Names())},
		}
	}
	return name, p, nil
}
