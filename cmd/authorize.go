package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"apiconnect/internal/callback"
	"apiconnect/internal/config"
	"apiconnect/internal/connection"
	"apiconnect/internal/errdefs"
	"apiconnect/pkg/logging"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

type authorizeOptions struct {
	Listen    string
	NoBrowser bool
	Timeout   time.Duration
	Template  string
}

// openBrowser is replaced in tests.
var openBrowser = func(cmd *cobra.Command, u string) error {
	browser.Stdout = cmd.ErrOrStderr()
	browser.Stderr = cmd.ErrOrStderr()
	return browser.OpenURL(u)
}

func newAuthorizeCmd(root *rootOptions) *cobra.Command {
	opts := &authorizeOptions{}

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Run the authorization-code flow for a profile",
		Long: `Authorize builds the authorization URL for an authorization_code profile,
opens it in the browser and waits for the redirect carrying the code. The
returned state must match the one sent; the code is then exchanged for a
token over mutual TLS.

When the profile's redirect URL is a plain-http loopback address, or
--listen is given, a local server receives the redirect. Otherwise the
redirect URL is pasted at the prompt.

Examples:
  apiconnect authorize --profile portal
  apiconnect authorize --listen 127.0.0.1:8085
  apiconnect authorize --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorize(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Receive the redirect on this host:port; the redirect URL sent uses the bound address")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", callback.DefaultTimeout, "How long to wait for the redirect")
	cmd.Flags().StringVar(&opts.Template, "template", "", "Render the connection with a Go template (sprig functions available)")
	return cmd
}

func runAuthorize(cmd *cobra.Command, root *rootOptions, opts *authorizeOptions) error {
	ctx := cmd.Context()

	outOpts, err := root.formatOptions()
	if err != nil {
		return err
	}
	refs, err := root.selectProfiles(false)
	if err != nil {
		return err
	}
	ref := refs[0]

	factory := connection.DefaultFactory()
	cfg, err := buildConfiguration(factory, ref)
	if err != nil {
		return err
	}
	ac, ok := cfg.(*config.AuthorizationCode)
	if !ok {
		return errdefs.NewValidationError(errdefs.CheckConfigurationSet,
			fmt.Sprintf("profile %s uses the %s grant; authorize needs authorization_code", ref.Name, cfg.GrantType()))
	}
	if err := root.askMissingPasswords(cmd, ref.Name, ac.Common()); err != nil {
		return err
	}

	conn, err := factory.MakeConnection(ac)
	if err != nil {
		return err
	}
	acConn := conn.(*connection.AuthorizationCodeConnection)

	srv := callbackServer(opts, ac)

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if srv != nil {
		redirect, err := srv.Start(waitCtx)
		if err != nil {
			return err
		}
		defer srv.Stop()
		ac.RedirectURL = redirect
	}

	authURL, err := acConn.AuthorizationURL()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL to authorize %s:\n\n  %s\n\n", ref.Name, authURL)
	if !opts.NoBrowser {
		if err := openBrowser(cmd, authURL); err != nil {
			warnf("could not open a browser: %v", err)
		}
	}

	var result *callback.Result
	if srv != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for the redirect...")
		result, err = srv.Wait(waitCtx)
	} else {
		result, err = readRedirect(cmd)
	}
	if err != nil {
		return fmt.Errorf("no authorization received: %w", err)
	}
	if err := result.Err(); err != nil {
		return errdefs.NewConnectionError("authorize", "authorization server refused", err)
	}

	if err := acConn.CompleteAuthorization(result.Code, result.State); err != nil {
		return err
	}
	logging.Debug("CLI", "authorization code received for %s", ref.Name)

	res := connectResult{ref: ref, cfg: ac, conn: acConn}
	res.err = acConn.Connect(ctx)
	if err := printResults(cmd, outOpts, opts.Template, []connectResult{res}); err != nil {
		return err
	}
	return res.failure()
}

// callbackServer returns the local redirect receiver, or nil when the
// redirect has to be pasted.
func callbackServer(opts *authorizeOptions, ac *config.AuthorizationCode) *callback.Server {
	if opts.Listen != "" {
		path := "/callback"
		if u, err := url.Parse(strings.TrimSpace(ac.RedirectURL)); err == nil && u.Path != "" {
			path = u.Path
		}
		return callback.NewServer(opts.Listen, path)
	}

	srv, err := callback.NewServerForRedirect(ac.RedirectURL)
	if err != nil {
		logging.Debug("CLI", "redirect not served locally: %v", err)
		return nil
	}
	return srv
}

func readRedirect(cmd *cobra.Command) (*callback.Result, error) {
	line, err := newPrompter(cmd).Line("Paste the URL you were redirected to: ")
	if err != nil {
		return nil, err
	}
	return callback.ParseRedirect(line)
}
