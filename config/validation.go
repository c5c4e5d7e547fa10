package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Observability protocols
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// EndpointStdout routes a signal to standard output.
const EndpointStdout = "stdout"

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks a loaded configuration. The first problem found is
// returned, wrapped around a *ConfigError.
func Validate(cfg *Config) error {
	if err := validateClient(&cfg.Client); err != nil {
		return fmt.Errorf("client config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if err := validateObservability(&cfg.Observability); err != nil {
		return fmt.Errorf("observability config: %w", err)
	}

	return nil
}

func validateClient(cfg *ClientConfig) error {
	if cfg.Root != "" {
		u, err := url.Parse(cfg.Root)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewInvalidFieldError("client.root", fmt.Sprintf("%q is not an absolute URI", cfg.Root), nil)
		}
	}

	if cfg.Timeout < time.Millisecond {
		return NewInvalidFieldError("client.timeout", fmt.Sprintf("must be at least 1ms, got %s", cfg.Timeout), nil)
	}

	if cfg.RateLimit < 0 {
		return NewInvalidFieldError("client.ratelimit", fmt.Sprintf("must not be negative, got %d", cfg.RateLimit), nil)
	}

	if cfg.TLS.Key != "" && cfg.TLS.Cert == "" {
		return NewMissingFieldError("client.tls.cert")
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(validLogLevels, cfg.Level) {
		return NewInvalidFieldError("log.level", fmt.Sprintf("unknown level %q", cfg.Level), validLogLevels)
	}
	return nil
}

func validateObservability(cfg *ObservabilityConfig) error {
	protocols := []string{ProtocolHTTP, ProtocolGRPC}
	if !slices.Contains(protocols, cfg.Protocol) {
		return NewInvalidFieldError("observability.protocol", fmt.Sprintf("unknown protocol %q", cfg.Protocol), protocols)
	}
	if (cfg.Trace.Enabled() || cfg.Metrics.Enabled()) && cfg.Service == "" {
		return NewMissingFieldError("observability.service")
	}
	return nil
}
