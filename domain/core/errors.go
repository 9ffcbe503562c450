package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrMetricNotFound = fmt.Errorf("%w: metric", ErrNotFound)

	// Recoverable per-unit conditions. These are reported inline on result
	// records; they never abort sibling units in the same batch.
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrUndefinedStatistic = errors.New("statistic is mathematically undefined")

	// Configuration errors fail fast, before any computation starts.
	ErrConfiguration         = errors.New("invalid configuration")
	ErrUnknownCorrection     = fmt.Errorf("%w: unknown correction method", ErrConfiguration)
	ErrNegativeRepetitions   = fmt.Errorf("%w: repetition count must be positive", ErrConfiguration)
	ErrInvalidConfidence     = fmt.Errorf("%w: confidence level must be in (0, 1)", ErrConfiguration)
	ErrMissingGroupLabels    = fmt.Errorf("%w: group labels required but not supplied", ErrConfiguration)
	ErrGroupLabelLenMismatch = fmt.Errorf("%w: group label count does not match observation count", ErrConfiguration)

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, field, reason)
}

func NewInsufficientDataError(observed, minimum int) error {
	return fmt.Errorf("%w: %d observations, minimum %d", ErrInsufficientData, observed, minimum)
}

func NewUndefinedStatisticError(statistic, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUndefinedStatistic, statistic, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUndefinedStatistic)
}
