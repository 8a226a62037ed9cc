// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidPriceLevels = errors.New("invalid price levels: entry equals stop loss")
	ErrNonPositiveBalance = errors.New("account balance must be greater than 0")
	ErrGuardrailBlocked   = errors.New("blocked by daily guardrail")
	ErrNoStrategySelected = errors.New("no strategy selected")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrStrategyNotFound   = errors.New("strategy not found")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrInputValidation    = errors.New("input validation failed")
	ErrDatabaseError      = errors.New("database error")
	ErrImportInvalid      = errors.New("invalid import file")
	ErrCoachUnavailable   = errors.New("ai coach unavailable: api key not configured")
	ErrNothingToExport    = errors.New("nothing to export: journal and strategies are empty")
	ErrInsufficientTrades = errors.New("not enough trades")
	ErrCancelled          = errors.New("cancelled by user")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// GuardrailError represents a refused save because a daily limit was reached.
type GuardrailError struct {
	Rule    string
	Current float64
	Limit   float64
	Message string
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("guardrail [%s]: %s (current: %.2f, limit: %.2f)", e.Rule, e.Message, e.Current, e.Limit)
}

func (e *GuardrailError) Unwrap() error {
	return ErrGuardrailBlocked
}

// NewGuardrailError creates a new GuardrailError.
func NewGuardrailError(rule string, current, limit float64, message string) *GuardrailError {
	return &GuardrailError{
		Rule:    rule,
		Current: current,
		Limit:   limit,
		Message: message,
	}
}

// StoreError represents a persistence failure.
type StoreError struct {
	Op     string
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s %s]: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets StoreError match ErrDatabaseError in addition to its cause.
func (e *StoreError) Is(target error) bool {
	return target == ErrDatabaseError
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity string, err error) *StoreError {
	return &StoreError{
		Op:     op,
		Entity: entity,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines several errors into one.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
