package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// ErrInvalidInput marks data the engines refuse to consume: missing or
	// non-finite values, unknown or duplicate variable names.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig marks engine parameters rejected at construction.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDegenerateStatistics marks a statistic that cannot be computed
	// from the data at hand (exhausted degrees of freedom, zero variance).
	ErrDegenerateStatistics = errors.New("degenerate statistics")
)

// DegenerateReason names why a statistic could not be computed
type DegenerateReason string

const (
	ReasonDegreesOfFreedom DegenerateReason = "degrees_of_freedom_exhausted"
	ReasonZeroVariance     DegenerateReason = "zero_variance"
	ReasonSingularDesign   DegenerateReason = "singular_design"
)

// DegenerateStatisticsError reports the offending variables of a failed
// independence test or score evaluation. J is -1 for single-target scores.
type DegenerateStatisticsError struct {
	Reason       DegenerateReason
	I, J         int
	Conditioning []int
	Samples      int
	Detail       string
}

func (e *DegenerateStatisticsError) Error() string {
	var b strings.Builder
	b.WriteString(ErrDegenerateStatistics.Error())
	b.WriteString(": ")
	b.WriteString(string(e.Reason))
	if e.J >= 0 {
		fmt.Fprintf(&b, " for pair (%d, %d)", e.I, e.J)
	} else {
		fmt.Fprintf(&b, " for target %d", e.I)
	}
	fmt.Fprintf(&b, " given %v with n=%d", e.Conditioning, e.Samples)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *DegenerateStatisticsError) Unwrap() error {
	return ErrDegenerateStatistics
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewInputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerateStatistics)
}
