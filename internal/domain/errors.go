package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a factor has no values to normalize.
	ErrNoData = errors.New("no factor values")

	// ErrInvalidValue is returned for NaN or infinite raw values.
	ErrInvalidValue = errors.New("invalid factor value")

	// ErrInvalidWeights is returned for negative, non-finite, or all-zero weights.
	ErrInvalidWeights = errors.New("invalid weights")
)

// MissingFactorError reports a county with no value for one factor kind.
type MissingFactorError struct {
	County string
	Kind   FactorKind
}

func (e *MissingFactorError) Error() string {
	return fmt.Sprintf("missing %s factor for county %s", e.Kind, e.County)
}

// KeySetMismatchError reports normalized factor maps that do not cover the same
// counties. County is present in the Present kind and absent from Absent.
type KeySetMismatchError struct {
	County  string
	Present FactorKind
	Absent  FactorKind
}

func (e *KeySetMismatchError) Error() string {
	return fmt.Sprintf("factor key sets differ: county %s has %s but no %s", e.County, e.Present, e.Absent)
}
