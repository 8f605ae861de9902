package scaler

import (
	"errors"
	"fmt"

	"github.com/san-kum/deqscale/internal/dynamo"
	"github.com/san-kum/deqscale/internal/symbolic"
)

var (
	// ErrConfiguration indicates an inconsistent problem definition or maxima.
	ErrConfiguration = errors.New("scaler: invalid configuration")

	// ErrIntegrationFailed indicates a trial run that did not reach the end of the span.
	ErrIntegrationFailed = errors.New("scaler: trial integration failed")

	// ErrDegenerateScale indicates a state whose scale factor is zero or not finite.
	ErrDegenerateScale = errors.New("scaler: degenerate scale")
)

type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IntegrationError carries the failed solution so callers can inspect how far
// the solver got.
type IntegrationError struct {
	Solution *dynamo.Solution
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrIntegrationFailed, e.Solution.Message)
}

func (e *IntegrationError) Unwrap() []error {
	if e.Solution.Err != nil {
		return []error{ErrIntegrationFailed, e.Solution.Err}
	}
	return []error{ErrIntegrationFailed}
}

type DegenerateScaleError struct {
	Symbol  symbolic.Symbol
	Maximum float64
	Factor  float64
}

func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("%v: state %s has maximum %g (scale %g)", ErrDegenerateScale, e.Symbol, e.Maximum, e.Maximum*e.Factor)
}

func (e *DegenerateScaleError) Unwrap() error {
	return ErrDegenerateScale
}
