package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks arguments rejected at an engine boundary.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData marks inputs too short for the requested operation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSymbolNotFound is returned by bar providers for unknown tickers.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// ParamError describes which argument failed and why. It unwraps to Kind.
type ParamError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *ParamError) Unwrap() error { return e.Kind }

// InvalidParam builds a ParamError of kind ErrInvalidParameter.
func InvalidParam(field, format string, args ...any) error {
	return &ParamError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrInvalidParameter}
}

// InsufficientData builds a ParamError of kind ErrInsufficientData.
func InsufficientData(field, format string, args ...any) error {
	return &ParamError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrInsufficientData}
}
