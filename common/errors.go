package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them, so
// callers can decide whether to skip or abort with errors.Is.
var (
	// ErrorInvalidInput: missing or wrongly-typed column, bad parameter.
	ErrorInvalidInput = errors.New("invalid input")
	// ErrorDomain: the statistic is undefined for the given data.
	ErrorDomain = errors.New("domain error")
)

var (
	ErrorInvalidValue   = kind(ErrorInvalidInput, "invalid value")
	ErrorColumnNotFound = kind(ErrorInvalidInput, "column not found")
	ErrorColumnType     = kind(ErrorInvalidInput, "column has wrong type")
	ErrorNotBinary      = kind(ErrorInvalidInput, "column is not binary")
	ErrorUnsupported    = kind(ErrorInvalidInput, "unsupported format")

	ErrorEmptyGroup         = kind(ErrorDomain, "group has no members")
	ErrorZeroRisk           = kind(ErrorDomain, "reference risk is zero")
	ErrorTooFewGroups       = kind(ErrorDomain, "fewer than two non-empty groups")
	ErrorTooFewObservations = kind(ErrorDomain, "group has fewer than two observations")
	ErrorZeroVariance       = kind(ErrorDomain, "within-group variance is zero")
	ErrorEmptyInput         = kind(ErrorDomain, "no values to compute on")
)

type kindError struct {
	kind error
	msg  string
}

func kind(k error, msg string) error {
	return &kindError{kind: k, msg: msg}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

func IsDomainError(err error) bool {
	return errors.Is(err, ErrorDomain)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrorInvalidInput)
}

// ColumnError attaches the column name to err.
func ColumnError(err error, column string) error {
	return fmt.Errorf("column %q: %w", column, err)
}
