package cmd

import (
	"fmt"
	"os"
	"strings"

	"apiconnect/internal/config"
	"apiconnect/internal/connection"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/prompt"
	"apiconnect/pkg/logging"

	"github.com/spf13/cobra"
)

// profileRef is a resolved, env-overridden profile.
type profileRef struct {
	Name    string
	Profile config.Profile
	Default bool
}

// newPrompter is replaced in tests.
var newPrompter = func(cmd *cobra.Command) prompt.Prompter {
	return prompt.New(prompt.Config{Stderr: cmd.ErrOrStderr()})
}

func (o *rootOptions) configPath() string {
	if p := strings.TrimSpace(o.ConfigPath); p != "" {
		return p
	}
	return config.DefaultPath()
}

func (o *rootOptions) loadFile() (*config.File, error) {
	return config.LoadFile(o.configPath())
}

// selectProfiles returns the profile chosen by --profile (or the default),
// or every profile when all is set.
func (o *rootOptions) selectProfiles(all bool) ([]profileRef, error) {
	f, err := o.loadFile()
	if err != nil {
		return nil, err
	}

	if all {
		if len(f.Profiles) == 0 {
			return nil, &config.ConfigurationError{FilePath: f.Path, ErrorType: config.ErrorTypeNotFound, Message: "no profiles defined"}
		}
		refs := make([]profileRef, 0, len(f.Profiles))
		for _, name := range f.Names() {
			p := f.Profiles[name]
			p.ApplyEnv(name)
			refs = append(refs, profileRef{Name: name, Profile: p, Default: name == f.DefaultProfile})
		}
		return refs, nil
	}

	name, p, err := f.Profile(o.Profile)
	if err != nil {
		return nil, err
	}
	p.ApplyEnv(name)
	return []profileRef{{Name: name, Profile: p, Default: name == f.DefaultProfile}}, nil
}

// buildConfiguration turns a profile into a typed configuration.
func buildConfiguration(factory *connection.Factory, ref profileRef) (config.Configuration, error) {
	cfg, err := factory.MakeConfiguration(ref.Profile.GrantType)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &errdefs.InvalidGrantTypeError{GrantType: ref.Profile.GrantType}
	}
	ref.Profile.ApplyTo(cfg)
	return cfg, nil
}

// askMissingPasswords prompts for blank key store passwords.
func (o *rootOptions) askMissingPasswords(cmd *cobra.Command, name string, s *config.Settings) error {
	if !o.AskPasswords {
		return nil
	}
	p := newPrompter(cmd)
	if strings.TrimSpace(s.StorePassword) == "" {
		v, err := prompt.Required(p.Secret, fmt.Sprintf("Key store password for %s: ", name), 3)
		if err != nil {
			return err
		}
		s.StorePassword = v
	}
	if strings.TrimSpace(s.KeyPassword) == "" {
		v, err := prompt.Required(p.Secret, fmt.Sprintf("Private key password for %s (enter the store password if they match): ", name), 3)
		if err != nil {
			return err
		}
		s.KeyPassword = v
	}
	return nil
}

// keyStoreFiles lists the files a watcher should follow for refs.
func keyStoreFiles(cfgs []config.Configuration) []string {
	var files []string
	for _, cfg := range cfgs {
		s := cfg.Common()
		files = append(files, s.SSLCertPath)
		if s.CACertPath != "" {
			files = append(files, s.CACertPath)
		}
	}
	return files
}

// notConnectedError reports a completed exchange that produced no usable
// token.
func notConnectedError(profile string, conn connection.Connection) error {
	msg := fmt.Sprintf("profile %s is not connected", profile)
	if conn == nil {
		return errdefs.NewConnectionError("connect", msg, nil)
	}
	if rsp := conn.ErrorResponse(); rsp != "" {
		msg += ": token server answered " + rsp
	}
	return errdefs.NewConnectionError("connect", msg, nil)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func warnf(format string, args ...interface{}) {
	logging.Warn("CLI", format, args...)
}
