package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gaborage/zephyr/config"
	"github.com/gaborage/zephyr/http"
	"github.com/gaborage/zephyr/uri"
)

// Exit codes reported by the CLI.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitRetryable = 75 // EX_TEMPFAIL
)

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	Root       string
}

// loadConfig reads the config file (if any) plus ZEPHYR_* variables and
// applies the --root override.
func (g *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.Root != "" {
		cfg.Client.Root = g.Root
	}
	if cfg.Client.Root == "" {
		return nil, errors.New("no root URI configured: pass --root or set " + config.EnvVar("client.root"))
	}
	return cfg, nil
}

// ExitCode maps a command error to a process exit code. Failed requests that
// are worth retrying get a distinct code so scripts can loop on it.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if failed, ok := http.AsFailedRequest(err); ok && failed.Retryable() {
		return ExitRetryable
	}
	return ExitFailure
}

// parsePathSpec turns positional segments and key=value params into a path
// spec. Repeated keys render as repeated pairs.
func parsePathSpec(segments, params []string) (uri.PathSpec, error) {
	parts := make([]any, 0, len(segments)+1)
	for _, s := range segments {
		parts = append(parts, s)
	}
	if len(params) == 0 {
		return uri.Path(parts...), nil
	}

	query := uri.Params{}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		switch existing := query[key].(type) {
		case nil:
			query[key] = value
		case []any:
			query[key] = append(existing, value)
		default:
			query[key] = []any{existing, value}
		}
	}
	return uri.Path(append(parts, query)...), nil
}
