package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below wrap these so callers can use errors.Is.
var (
	ErrNuclideNotFound                = errors.New("nuclide not found")
	ErrUnrecognizedHalfLifeUnit       = errors.New("unrecognized half-life unit")
	ErrMissingDCF                     = errors.New("dose conversion factor unavailable")
	ErrInvalidReleaseFractionOverride = errors.New("invalid release fraction override")
	ErrInvalidNumericInput            = errors.New("invalid numeric input")
	ErrInvalidInput                   = errors.New("invalid input")
)

// NuclideNotFoundError reports a nuclide absent from every dataset consulted.
type NuclideNotFoundError struct {
	Nuclide string
	Dataset string
}

func (e *NuclideNotFoundError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("nuclide %s not found in any dataset", e.Nuclide)
	}
	return fmt.Sprintf("nuclide %s not found in %s", e.Nuclide, e.Dataset)
}

func (e *NuclideNotFoundError) Unwrap() error { return ErrNuclideNotFound }

// HalfLifeUnitError reports a half-life string without a recognised unit suffix.
type HalfLifeUnitError struct {
	Value string
}

func (e *HalfLifeUnitError) Error() string {
	return fmt.Sprintf("half-life %q has no recognised unit suffix", e.Value)
}

func (e *HalfLifeUnitError) Unwrap() error { return ErrUnrecognizedHalfLifeUnit }

// NumericInputError reports a table cell or input value that is not a usable number.
type NumericInputError struct {
	Field   string
	Nuclide string
	Value   string
}

func (e *NumericInputError) Error() string {
	if e.Nuclide == "" {
		return fmt.Sprintf("%s: %q is not a usable number", e.Field, e.Value)
	}
	return fmt.Sprintf("%s for %s: %q is not a usable number", e.Field, e.Nuclide, e.Value)
}

func (e *NumericInputError) Unwrap() error { return ErrInvalidNumericInput }

// MissingDCFError describes a pathway whose dose conversion factor could not be resolved.
// It is reported as a warning, never as a failure.
type MissingDCFError struct {
	Nuclide string
	Key     DCFKey
}

func (e *MissingDCFError) Error() string {
	return fmt.Sprintf("no %s dose conversion factor for %s", e.Key, e.Nuclide)
}

func (e *MissingDCFError) Unwrap() error { return ErrMissingDCF }
