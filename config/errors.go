package config

import (
	"errors"
	"strings"
)

// Sentinels matched by errors.Is on any *ConfigError of that kind.
var (
	ErrMissingField = errors.New("missing config field")
	ErrInvalidField = errors.New("invalid config field")
)

// ConfigError points at one offending key and says how to fix it.
//
//nolint:revive // stutters
type ConfigError struct {
	Field   string // dotted key, e.g. "client.timeout"
	Message string
	Hint    string

	kind error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	b.WriteString(e.Field)
	if e.Message != "" {
		b.WriteByte(' ')
		b.WriteString(e.Message)
	}
	if e.Hint != "" {
		b.WriteString(" (")
		b.WriteString(e.Hint)
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap exposes ErrMissingField or ErrInvalidField.
func (e *ConfigError) Unwrap() error {
	return e.kind
}

// EnvVar returns the environment variable that sets key.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// NewMissingFieldError reports a required key with no value.
func NewMissingFieldError(field string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: "is required",
		Hint:    "set " + EnvVar(field) + " or " + field + " in the config file",
		kind:    ErrMissingField,
	}
}

// NewInvalidFieldError reports a key whose value was rejected. validOptions,
// when given, are listed in the hint.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{Field: field, Message: message, kind: ErrInvalidField}
	if len(validOptions) > 0 {
		err.Hint = "one of: " + strings.Join(validOptions, ", ")
	}
	return err
}
