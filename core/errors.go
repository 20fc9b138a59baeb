package core

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrExtraction    = errors.New("extraction error")
	ErrRender        = errors.New("render error")
	ErrMerge         = errors.New("merge error")
)

// StageError records the failing operation together with its error kind.
type StageError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConfigurationError wraps err as a configuration failure.
func ConfigurationError(op string, err error) error {
	return &StageError{Kind: ErrConfiguration, Op: op, Err: err}
}

// ExtractionError wraps err as an extraction failure.
func ExtractionError(op string, err error) error {
	return &StageError{Kind: ErrExtraction, Op: op, Err: err}
}

// RenderError wraps err as a render failure.
func RenderError(op string, err error) error {
	return &StageError{Kind: ErrRender, Op: op, Err: err}
}

// MergeError wraps err as a merge failure.
func MergeError(op string, err error) error {
	return &StageError{Kind: ErrMerge, Op: op, Err: err}
}
