package chain

import (
	"errors"
	"fmt"
)

// StructuralError reports a chain state that cannot be processed at all.
//
// Structural errors are fatal for a sweep: they are detected at entry to a
// move and returned to the caller. Rejected proposals are never errors.
type StructuralError struct {
	// Code identifies the error category.
	Code StructuralErrorCode

	// Message is a human-readable description.
	Message string

	// Case is the offending case, if any.
	Case Case
}

// StructuralErrorCode categorizes structural errors.
type StructuralErrorCode string

const (
	// ErrCodeLengthMismatch indicates a slice length differs from N.
	ErrCodeLengthMismatch StructuralErrorCode = "LENGTH_MISMATCH"

	// ErrCodeCaseOutOfRange indicates an infector outside 1..N.
	ErrCodeCaseOutOfRange StructuralErrorCode = "CASE_OUT_OF_RANGE"

	// ErrCodeSelfInfection indicates a case recorded as its own infector.
	ErrCodeSelfInfection StructuralErrorCode = "SELF_INFECTION"

	// ErrCodeNegativeScale indicates a negative proposal standard deviation.
	ErrCodeNegativeScale StructuralErrorCode = "NEGATIVE_SCALE"
)

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Case != None {
		return fmt.Sprintf("%s: %s (case=%d)", e.Code, e.Message, int(e.Case))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructural returns true if err is, or wraps, a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// HasCode returns true if err is a StructuralError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code StructuralErrorCode) bool {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewLengthError creates a StructuralError for a slice of the wrong length.
func NewLengthError(field string, got, want int) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeLengthMismatch,
		Message: fmt.Sprintf("%s has length %d, want %d", field, got, want),
	}
}

// NewRangeError creates a StructuralError for an infector outside 1..n.
func NewRangeError(c, infector Case, n int) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeCaseOutOfRange,
		Message: fmt.Sprintf("infector %d outside 1..%d", int(infector), n),
		Case:    c,
	}
}

// NewSelfInfectionError creates a StructuralError for alpha[c] == c.
func NewSelfInfectionError(c Case) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeSelfInfection,
		Message: "case is its own infector",
		Case:    c,
	}
}

// NewScaleError creates a StructuralError for a negative proposal scale.
func NewScaleError(name string, sd float64) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeNegativeScale,
		Message: fmt.Sprintf("%s must be >= 0, got %v", name, sd),
	}
}
