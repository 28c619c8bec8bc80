package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"apiconnect/internal/errdefs"
	"apiconnect/internal/formatting"
	"apiconnect/pkg/logging"

	"github.com/spf13/cobra"
)

// maxCallResponseBytes bounds how much of an API response is printed.
const maxCallResponseBytes = 10 << 20

type callOptions struct {
	Method  string
	Data    string
	Headers []string
	Raw     bool
}

func newCallCmd(root *rootOptions) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call PATH",
		Short: "Connect and call the profile's API with the access token",
		Long: `Call connects a client_credentials profile and sends one request to
apiRequestUrl + PATH over the same mutual-TLS transport, with the access
token as bearer credential. JSON responses are indented unless --raw is set.

Examples:
  apiconnect call /v1/accounts
  apiconnect call /v1/payments -X POST -d '{"amount": 10}' -H 'Content-Type: application/json'
  apiconnect call /v1/payments -X POST -d @payment.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Request body, or @file to read it from a file")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print the response body unchanged")
	return cmd
}

// apiURL joins base and path with exactly one slash.
func apiURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

func requestBody(data string) (io.Reader, error) {
	if data == "" {
		return nil, nil
	}
	if strings.HasPrefix(data, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		return strings.NewReader(string(b)), nil
	}
	return strings.NewReader(data), nil
}

func runCall(cmd *cobra.Command, root *rootOptions, opts *callOptions, path string) error {
	ctx := cmd.Context()

	refs, err := root.selectProfiles(false)
	if err != nil {
		return err
	}
	ref := refs[0]
	if strings.TrimSpace(ref.Profile.APIRequestURL) == "" {
		return errdefs.NewValidationError(errdefs.CheckConfigurationSet,
			fmt.Sprintf("profile %s has no apiRequestUrl", ref.Name), "api_request_url")
	}

	body, err := requestBody(opts.Data)
	if err != nil {
		return err
	}

	stop := startSpinner(cmd, root, " Connecting...")
	res := connectProfile(ctx, cmd, root, ref)
	stop()
	if err := res.failure(); err != nil {
		return err
	}

	client, err := res.conn.HTTPClient(ctx)
	if err != nil {
		return err
	}

	target := apiURL(ref.Profile.APIRequestURL, path)
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(opts.Method), target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for _, h := range opts.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	logging.Debug("CLI", "%s %s", req.Method, target)
	resp, err := client.Do(req)
	if err != nil {
		return errdefs.NewConnectionError("call", "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCallResponseBytes))
	if err != nil {
		return errdefs.NewConnectionError("call", "failed to read response", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", resp.Proto, resp.Status)
	out := string(data)
	if !opts.Raw && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		out = formatting.PrettyJSONBytes(data)
	}
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	if resp.StatusCode >= 400 {
		return errdefs.NewConnectionError("call", fmt.Sprintf("API answered %s", resp.Status), nil)
	}
	return nil
}
