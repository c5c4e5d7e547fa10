package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaborage/zephyr/config"
	"github.com/gaborage/zephyr/header"
	"github.com/gaborage/zephyr/http"
	"github.com/gaborage/zephyr/logger"
	"github.com/gaborage/zephyr/observability"
)

// RequestOptions holds options for the request command
type RequestOptions struct {
	Expect  []int
	Timeout time.Duration
	Headers []string
	Params  []string
	Data    string
	JSON    bool
	Include bool
}

// NewRequestCommand creates the request command
func NewRequestCommand(global *GlobalOptions) *cobra.Command {
	opts := &RequestOptions{}

	cmd := &cobra.Command{
		Use:   "request METHOD [SEGMENT...]",
		Short: "Send a request and check its status",
		Long: `Composes a URI from the configured root and the given path segments, sends
the request and prints the response body.

The command fails when the response times out or its status is not one of the
expected codes. Failures worth retrying exit with status 75.`,
		Example: `  # Fetch a user
  zephyr request GET users 1 --root http://api.example.com

  # Create one, expecting 201, and decode the JSON reply
  zephyr request POST users --json --expect 201 --data '{"name":"ada"}'

  # Query parameters and extra headers
  zephyr request GET search -p q=go -p page=2 -H "X-Team: core"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), global, opts, args)
		},
	}

	cmd.Flags().IntSliceVarP(&opts.Expect, "expect", "e", []int{200}, "Expected status codes")
	cmd.Flags().DurationVarP(&opts.Timeout, "timeout", "t", 0, "Request timeout (defaults to client.timeout)")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, `Extra header as "Name: value"`)
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Query parameter as key=value")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", `Request body; "@file" reads a file and "-" reads stdin`)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Send and decode JSON (GET, POST and PUT only)")
	cmd.Flags().BoolVarP(&opts.Include, "include", "i", false, "Print the status and response headers")

	return cmd
}

func runRequest(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, global *GlobalOptions, opts *RequestOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Pretty)

	provider, err := observability.NewProvider(cfg.Observability, log)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := observability.Shutdown(provider, observability.DefaultShutdownTimeout); shutdownErr != nil {
			log.Warn().Err(shutdownErr).Msg("Failed to flush telemetry")
		}
	}()

	client, err := newClient(cfg, log, provider)
	if err != nil {
		return err
	}

	req, err := buildRequest(cfg, opts, args[1:])
	if err != nil {
		return err
	}

	body, err := readData(opts.Data, stdin)
	if err != nil {
		return err
	}

	resp, err := dispatch(ctx, client, http.CustomMethod(args[0]), req, body, opts.JSON)
	if err != nil {
		if failed, ok := http.AsFailedRequest(err); ok {
			return fmt.Errorf("%w (retryable: %t)", failed, failed.Retryable())
		}
		return err
	}

	return printResponse(stdout, resp, opts)
}

// newClient builds a client from the loaded configuration.
func newClient(cfg *config.Config, log logger.Logger, provider observability.Provider) (http.Client, error) {
	b := http.NewBuilder(cfg.Client.Root).
		WithLogger(log).
		WithUserAgent(cfg.Client.UserAgent).
		WithDebug(cfg.Client.Debug).
		WithRateLimit(cfg.Client.RateLimit).
		WithTLS(http.TLSOptions{
			CACert: cfg.Client.TLS.CACert,
			Cert:   cfg.Client.TLS.Cert,
			Key:    cfg.Client.TLS.Key,
		}).
		WithTracerProvider(provider.TracerProvider()).
		WithMeterProvider(provider.MeterProvider())

	for name, value := range cfg.Client.Headers {
		b = b.WithDefaultHeader(name, value)
	}
	if cfg.Client.RequestID {
		b = b.WithRequestID()
	}

	return b.Build()
}

func buildRequest(cfg *config.Config, opts *RequestOptions, segments []string) (*http.Request, error) {
	path, err := parsePathSpec(segments, opts.Params)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(opts.Headers))
	for _, line := range opts.Headers {
		name, value, ok := header.ParseLine(line)
		if !ok {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", line)
		}
		headers[name] = value
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.Client.Timeout
	}

	return &http.Request{
		Expect:  opts.Expect,
		Timeout: timeout,
		Path:    path,
		Headers: headers,
	}, nil
}

func readData(data string, stdin io.Reader) ([]byte, error) {
	switch {
	case data == "":
		return nil, nil
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body from stdin: %w", err)
		}
		return b, nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		return b, nil
	default:
		return []byte(data), nil
	}
}

func dispatch(ctx context.Context, client http.Client, method http.Method, req *http.Request, body []byte, asJSON bool) (*http.Response, error) {
	if !asJSON {
		if len(body) > 0 {
			req.Body = body
		}
		return client.Do(ctx, method, req)
	}

	var entity any
	if len(body) > 0 {
		if !json.Valid(body) {
			return nil, errors.New("--json body is not valid JSON")
		}
		entity = json.RawMessage(body)
	}

	switch method {
	case http.MethodGet:
		return client.GetJSON(ctx, req)
	case http.MethodPost:
		return client.PostJSON(ctx, req, entity)
	case http.MethodPut:
		return client.PutJSON(ctx, req, entity)
	default:
		return nil, fmt.Errorf("--json does not support %s", method)
	}
}

func printResponse(w io.Writer, resp *http.Response, opts *RequestOptions) error {
	if opts.Include {
		fmt.Fprintf(w, "HTTP %d\n", resp.StatusCode)
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, value := range resp.Headers[name] {
				fmt.Fprintf(w, "%s: %s\n", name, value)
			}
		}
		fmt.Fprintln(w)
	}

	if opts.JSON && resp.JSON != nil {
		out, err := json.MarshalIndent(resp.JSON, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format response: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	}

	if resp.HasBody && len(resp.Body) > 0 {
		_, err := w.Write(resp.Body)
		return err
	}
	return nil
}
