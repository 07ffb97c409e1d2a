package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error code constants.
const (
	ErrCodeRead    = "C001" // Config file could not be read
	ErrCodeParse   = "C002" // YAML/JSON syntax or unknown field
	ErrCodeSchema  = "C003" // CUE compile or schema violation
	ErrCodeInvalid = "C004" // Field value out of range
)

// Error describes an invalid configuration.
type Error struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

func invalid(field, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Field: field, Message: message}
}
