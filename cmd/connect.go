package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"apiconnect/internal/config"
	"apiconnect/internal/connection"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/formatting"
	"apiconnect/internal/template"
	"apiconnect/internal/tlsclient"
	"apiconnect/internal/validation"
	"apiconnect/pkg/logging"
	"apiconnect/pkg/oauth"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelConnects bounds concurrent token exchanges for --all.
const maxParallelConnects = 4

type connectOptions struct {
	All      bool
	Watch    bool
	Template string
}

func newConnectCmd(root *rootOptions) *cobra.Command {
	opts := &connectOptions{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Obtain a client-credentials token and report the connection",
		Long: `Connect validates a profile, exchanges its client credentials for an
access token over mutual TLS and prints the resulting connection state.
Access tokens are masked in the output.

Examples:
  apiconnect connect                         # default profile
  apiconnect connect --profile prod -o json
  apiconnect connect --all                   # every profile, in parallel
  apiconnect connect --watch                 # reconnect when the key store changes
  apiconnect connect --template '{{ .profile }} expires {{ .expiresAt | date "15:04" }}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Connect every profile in the file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Keep running and reconnect when key store files change")
	cmd.Flags().StringVar(&opts.Template, "template", "", "Render each connection with a Go template (sprig functions available)")
	return cmd
}

// connectResult is the outcome of connecting one profile.
type connectResult struct {
	ref  profileRef
	cfg  config.Configuration
	conn connection.Connection
	err  error
}

func (r connectResult) status() formatting.Status {
	if r.conn == nil {
		s := formatting.Status{
			Profile:   r.ref.Name,
			GrantType: r.ref.Profile.GrantType,
			State:     connection.StateUnconfigured.String(),
		}
		if r.err != nil {
			s.Error = r.err.Error()
		}
		return s
	}
	return formatting.NewStatus(r.ref.Name, r.conn, r.err)
}

func (r connectResult) failure() error {
	if r.err != nil {
		return r.err
	}
	if r.conn == nil || !r.conn.IsAlive() {
		return notConnectedError(r.ref.Name, r.conn)
	}
	return nil
}

func runConnect(cmd *cobra.Command, root *rootOptions, opts *connectOptions) error {
	ctx := cmd.Context()

	if opts.All && root.Profile != "" {
		return fmt.Errorf("--all and --profile cannot be combined")
	}
	outOpts, err := root.formatOptions()
	if err != nil {
		return err
	}
	refs, err := root.selectProfiles(opts.All)
	if err != nil {
		return err
	}

	results := connectProfiles(ctx, cmd, root, refs)
	if err := printResults(cmd, outOpts, opts.Template, results); err != nil {
		return err
	}

	if opts.Watch {
		return watchAndReconnect(ctx, cmd, root, opts, refs, results)
	}
	return summarize(results)
}

// connectProfiles connects every ref, up to maxParallelConnects at a time.
// A failing profile does not stop the others.
func connectProfiles(ctx context.Context, cmd *cobra.Command, root *rootOptions, refs []profileRef) []connectResult {
	results := make([]connectResult, len(refs))

	stop := startSpinner(cmd, root, fmt.Sprintf(" Connecting %d profile(s)...", len(refs)))
	defer stop()

	var g errgroup.Group
	g.SetLimit(maxParallelConnects)
	if root.AskPasswords {
		g.SetLimit(1)
	}
	for i, ref := range refs {
		g.Go(func() error {
			results[i] = connectProfile(ctx, cmd, root, ref)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func connectProfile(ctx context.Context, cmd *cobra.Command, root *rootOptions, ref profileRef) connectResult {
	res := connectResult{ref: ref}
	factory := connection.DefaultFactory()

	res.cfg, res.err = buildConfiguration(factory, ref)
	if res.err != nil {
		return res
	}
	if res.cfg.GrantType() == oauth.GrantTypeAuthorizationCode {
		res.err = errdefs.NewValidationError(errdefs.CheckTokenRequest,
			"authorization_code profiles need a user authorization; run apiconnect authorize",
			validation.FieldAuthorizationCodeVal)
		return res
	}
	if res.err = root.askMissingPasswords(cmd, ref.Name, res.cfg.Common()); res.err != nil {
		return res
	}

	res.conn, res.err = factory.MakeConnection(res.cfg)
	if res.err != nil {
		return res
	}
	res.err = res.conn.Connect(ctx)
	if res.err != nil {
		logging.Error("CLI", res.err, "profile %s failed to connect", ref.Name)
	}
	return res
}

func printResults(cmd *cobra.Command, outOpts formatting.Options, tmpl string, results []connectResult) error {
	statuses := make([]formatting.Status, len(results))
	for i, r := range results {
		statuses[i] = r.status()
	}

	if tmpl == "" {
		return formatting.NewFormatter(outOpts).Statuses(cmd.OutOrStdout(), statuses)
	}

	engine := template.New()
	now := map[string]any{"now": time.Now()}
	for _, s := range statuses {
		line, err := engine.RenderLine("connect", tmpl, template.MergeData(s.Data(), now))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return nil
}

func summarize(results []connectResult) error {
	if len(results) == 1 {
		return results[0].failure()
	}
	failed := 0
	for _, r := range results {
		if r.failure() != nil {
			failed++
		}
	}
	if failed > 0 {
		return errdefs.NewConnectionError("connect", fmt.Sprintf("%d of %d profiles failed to connect", failed, len(results)), nil)
	}
	return nil
}

// watchAndReconnect reconnects every profile whenever a key store or trust
// bundle changes, until ctx ends.
func watchAndReconnect(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *connectOptions, refs []profileRef, initial []connectResult) error {
	outOpts, err := root.formatOptions()
	if err != nil {
		return err
	}

	var cfgs []config.Configuration
	for _, r := range initial {
		if r.cfg != nil {
			cfgs = append(cfgs, r.cfg)
		}
	}
	files := keyStoreFiles(cfgs)
	if len(files) == 0 {
		return summarize(initial)
	}

	var mu sync.Mutex
	watcher := tlsclient.NewKeyStoreWatcher(tlsclient.WatcherConfig{
		Files: files,
		OnChange: func() {
			mu.Lock()
			defer mu.Unlock()
			logging.Info("CLI", "key material changed, reconnecting")
			results := connectProfiles(ctx, cmd, root, refs)
			if err := printResults(cmd, outOpts, opts.Template, results); err != nil {
				logging.Error("CLI", err, "failed to print connection status")
			}
		},
	})
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch key stores: %w", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			warnf("failed to stop key store watcher: %v", err)
		}
	}()

	logging.Info("CLI", "watching %d file(s) for changes", len(files))
	<-ctx.Done()
	return nil
}

// startSpinner shows progress on an interactive stderr and returns a stop
// function.
func startSpinner(cmd *cobra.Command, root *rootOptions, suffix string) func() {
	if root.Quiet || cmd.ErrOrStderr() != os.Stderr || !isTerminal(os.Stderr) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}
