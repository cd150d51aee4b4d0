package config

import (
	"errors"
	"strings"
)

// ConfigurationError is fatal: a component that receives one must not start.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// NewConfigurationError builds a single-problem ConfigurationError.
func NewConfigurationError(problem string) *ConfigurationError {
	return &ConfigurationError{Problems: []string{problem}}
}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
