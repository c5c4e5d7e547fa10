package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the full zephyr configuration. The embedded koanf instance keeps
// raw keys reachable through GetString.
type Config struct {
	Client        ClientConfig        `koanf:"client" json:"client" yaml:"client"`
	Log           LogConfig           `koanf:"log" json:"log" yaml:"log"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`

	k *koanf.Koanf `json:"-" yaml:"-"`
}

// ClientConfig holds the HTTP client settings.
type ClientConfig struct {
	Root      string        `koanf:"root" json:"root" yaml:"root"`
	Timeout   time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout"`
	UserAgent string        `koanf:"useragent" json:"useragent" yaml:"useragent"`
	// Debug enables verbose transport output.
	Debug     bool `koanf:"debug" json:"debug" yaml:"debug"`
	RequestID bool `koanf:"requestid" json:"requestid" yaml:"requestid"`
	// RateLimit caps requests per second; zero disables it.
	RateLimit int               `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	Headers   map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	TLS       TLSConfig         `koanf:"tls" json:"tls" yaml:"tls"`
}

// TLSConfig points at PEM files.
type TLSConfig struct {
	CACert string `koanf:"cacert" json:"cacert" yaml:"cacert"`
	Cert   string `koanf:"cert" json:"cert" yaml:"cert"`
	Key    string `koanf:"key" json:"key" yaml:"key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// ObservabilityConfig selects trace and metric exporters.
//
// An empty endpoint disables the signal, "stdout" prints it and anything else
// is an OTLP collector address.
type ObservabilityConfig struct {
	Service  string         `koanf:"service" json:"service" yaml:"service"`
	Protocol string         `koanf:"protocol" json:"protocol" yaml:"protocol"`
	Insecure bool           `koanf:"insecure" json:"insecure" yaml:"insecure"`
	Trace    EndpointConfig `koanf:"trace" json:"trace" yaml:"trace"`
	Metrics  EndpointConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// EndpointConfig names one exporter destination.
type EndpointConfig struct {
	Endpoint string `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
}

// Enabled reports whether an exporter is configured.
func (e EndpointConfig) Enabled() bool {
	return e.Endpoint != ""
}
