package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition violations: abort the offending call, never the pipeline.
	ErrSchemaMismatch = errors.New("sample identifiers disagree between matrix and labels")
	ErrEmptyGraph     = errors.New("interaction graph has no nodes")

	// Group resolution errors
	ErrInsufficientSamples = errors.New("fewer than 2 samples resolved for group")
	ErrUnknownCondition    = errors.New("condition not present in sample labels")

	// Evaluation errors
	ErrDegenerateSplit = errors.New("test partition contains a single class")
	ErrNoModels        = errors.New("no model specs supplied")

	// Ingest errors
	ErrFeatureNotFound = errors.New("feature not found in matrix")
	ErrMalformedInput  = errors.New("malformed tabular input")
)

// Error constructors with context
func NewSchemaMismatchError(detail string) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, detail)
}

func NewInsufficientSamplesError(condition string, n int) error {
	return fmt.Errorf("%w: condition %q resolved %d sample(s)", ErrInsufficientSamples, condition, n)
}

func NewMalformedInputError(path string, line int, reason string) error {
	return fmt.Errorf("%w: %s line %d: %s", ErrMalformedInput, path, line, reason)
}

// Error checking helpers
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrEmptyGraph)
}

func IsInsufficientSamples(err error) bool {
	return errors.Is(err, ErrInsufficientSamples)
}

func IsDegenerateSplit(err error) bool {
	return errors.Is(err, ErrDegenerateSplit)
}
