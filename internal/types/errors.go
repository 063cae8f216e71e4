package types

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is
	ErrConfiguration = errors.New("configuration error")

	// ErrShapeMismatch matches every *ShapeMismatchError via errors.Is
	ErrShapeMismatch = errors.New("shape mismatch")
)

// ConfigurationError reports malformed input detected before any search begins
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError creates a ConfigurationError with a formatted reason
func NewConfigurationError(field, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ShapeMismatchError reports a candidate whose length does not match the Component Set
type ShapeMismatchError struct {
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: candidate has %d genes, layout expects %d", e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error {
	return ErrShapeMismatch
}
