package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not computable
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrSingularSystem   = errors.New("singular normal-equations system")

	// Input errors
	ErrUnknownColumn  = errors.New("unknown column")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrNotCategorical = errors.New("column is not categorical")
	ErrEmptyTable     = errors.New("table has no columns")
	ErrInvalidDegree  = errors.New("invalid polynomial degree")
)

// NewInsufficientDataError reports how many observations a statistic needed.
func NewInsufficientDataError(what string, need, have int) error {
	return fmt.Errorf("%w: %s needs at least %d observations, have %d", ErrInsufficientData, what, need, have)
}

// NewUnknownColumnError names the missing column.
func NewUnknownColumnError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// IsNotComputable reports whether err means a statistic could not be produced
// from the data, as opposed to a caller mistake.
func IsNotComputable(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrSingularSystem)
}

// IsInputError reports whether err was caused by a bad request.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrNotNumeric) ||
		errors.Is(err, ErrNotCategorical) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrInvalidDegree)
}
