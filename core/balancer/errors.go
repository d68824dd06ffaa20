package balancer

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when an intermediate or final value does not
	// fit in an int64.
	ErrOverflow = errors.New("balancer: arithmetic overflow")
	// ErrInvalidObservation is returned when per-cycle inputs are out of range.
	ErrInvalidObservation = errors.New("balancer: invalid observation")
	// ErrNonPositiveScale is returned by Percentage for a precision or
	// denominator that is not strictly positive.
	ErrNonPositiveScale = errors.New("balancer: precision and denominator must be positive")
)

// ConfigError reports an invalid station parameter.
type ConfigError struct {
	Field string
	Value int64
	Rule  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Field, e.Value, e.Rule)
}

func invalidObservation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidObservation, fmt.Sprintf(format, args...))
}
