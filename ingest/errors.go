package ingest

import "fmt"

// ConfigError marks a bad request parameter or missing configuration. It is
// surfaced to API callers as a client error, never retried.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func newConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}
