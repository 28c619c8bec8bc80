package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/formatting"
	"apiconnect/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidation indicates the configuration or profile file is invalid.
	ExitCodeValidation = 2
	// ExitCodeConnection indicates the token exchange or API call failed.
	ExitCodeConnection = 3
)

var version = "dev"

// SetVersion sets the version reported by the CLI. It is called from the
// main package to inject the build version.
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath   string
	Profile      string
	EnvFiles     []string
	LogLevel     string
	LogFormat    string
	OutputFormat string
	NoHeaders    bool
	Quiet        bool
	AskPasswords bool
}

func (o *rootOptions) formatOptions() (formatting.Options, error) {
	format, err := formatting.ParseFormat(o.OutputFormat)
	if err != nil {
		return formatting.Options{}, err
	}
	return formatting.Options{Format: format, NoHeaders: o.NoHeaders}, nil
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "apiconnect",
		Short: "Obtain OAuth 2.0 tokens over mutual TLS",
		Long: `apiconnect obtains OAuth 2.0 access tokens from a token server that
requires a client certificate, using the client-credentials or the
authorization-code grant, and calls APIs with them.

Connection profiles are read from a YAML file, by default
$XDG_CONFIG_HOME/apiconnect/config.yaml.`,
		Version: version,
		// Errors are reported once by Execute; usage is not repeated for them.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "apiconnect version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Profile file (default $XDG_CONFIG_HOME/apiconnect/config.yaml)")
	flags.StringVarP(&opts.Profile, "profile", "p", "", "Profile to use (default: the file's defaultProfile)")
	flags.StringSliceVar(&opts.EnvFiles, "env-file", nil, "Load APICONNECT_* variables from these .env files (default ./.env)")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", string(logging.FormatText), "Log format (text, json)")
	flags.StringVarP(&opts.OutputFormat, "output", "o", "table", "Output format (table, plain, json, yaml)")
	flags.BoolVar(&opts.NoHeaders, "no-headers", false, "Suppress header row in table output")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress progress indicators")
	flags.BoolVar(&opts.AskPasswords, "ask-passwords", false, "Prompt for key store passwords missing from the profile")

	root.AddCommand(
		newVersionCmd(),
		newValidateCmd(opts),
		newConnectCmd(opts),
		newAuthorizeCmd(opts),
		newCallCmd(opts),
	)
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return err
	}
	var format logging.Format
	switch o.LogFormat {
	case string(logging.FormatText), "":
		format = logging.FormatText
	case string(logging.FormatJSON):
		format = logging.FormatJSON
	default:
		return fmt.Errorf("unsupported log format %q (text, json)", o.LogFormat)
	}
	logging.Init(level, format, cmd.ErrOrStderr())

	if err := config.LoadEnv(o.EnvFiles...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Execute is the main entry point for the CLI application. It runs the
// command tree and exits with a code derived from the returned error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root, err)
		stop()
		os.Exit(getExitCode(err))
	}
}

func printError(cmd *cobra.Command, err error) {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), cfgErr.DetailedError())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}

// getExitCode determines the appropriate exit code based on the error type.
// A validation failure wrapped by a connection error counts as validation.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errdefs.IsValidationError(err), errdefs.IsInvalidGrantType(err):
		return ExitCodeValidation
	}

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeValidation
	}
	if errdefs.IsConnectionError(err) {
		return ExitCodeConnection
	}
	return ExitCodeError
}
