package boarddto

import (
	"errors"
	"fmt"
)

// Code is the machine-readable error code returned to clients.
type Code string

const (
	CodeMalformedPosition      Code = "MALFORMED_POSITION"
	CodeInvalidOption          Code = "INVALID_OPTION"
	CodeInvalidSquareReference Code = "INVALID_SQUARE_REFERENCE"
	CodeUnsupportedTheme       Code = "UNSUPPORTED_THEME"
	CodeUnsupportedFormat      Code = "UNSUPPORTED_FORMAT"
	CodeRenderFailure          Code = "RENDER_FAILURE"
	CodeRenderTimeout          Code = "RENDER_TIMEOUT"
)

// DomainError carries the offending parameter and value so the transport can
// build an actionable client message.
type DomainError struct {
	Code    Code
	Message string
	Param   string
	Value   string
	Cause   error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Param != "" {
		msg = fmt.Sprintf("%s (%s=%q)", msg, e.Param, e.Value)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if msg != "" {
		return msg
	}
	return "board render error"
}

func (e *DomainError) Unwrap() error { return e.Cause }

// ClientError reports whether the failure was caused by the request itself.
func (e *DomainError) ClientError() bool {
	switch e.Code {
	case CodeMalformedPosition, CodeInvalidOption, CodeInvalidSquareReference, CodeUnsupportedFormat:
		return true
	default:
		return false
	}
}

func newError(code Code, param, value, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Param: param, Value: value, Message: fmt.Sprintf(format, args...)}
}

func MalformedPosition(value, format string, args ...any) *DomainError {
	return newError(CodeMalformedPosition, "fen", value, format, args...)
}

func InvalidOption(param, value, format string, args ...any) *DomainError {
	return newError(CodeInvalidOption, param, value, format, args...)
}

func InvalidSquareReference(param, value, format string, args ...any) *DomainError {
	return newError(CodeInvalidSquareReference, param, value, format, args...)
}

func UnsupportedTheme(theme, format string, args ...any) *DomainError {
	return newError(CodeUnsupportedTheme, "theme", theme, format, args...)
}

func UnsupportedFormat(value string) *DomainError {
	return newError(CodeUnsupportedFormat, "format", value, "unsupported output format")
}

// RenderFailure wraps a rasterization failure. It is never retried.
func RenderFailure(cause error, format string, args ...any) *DomainError {
	e := newError(CodeRenderFailure, "", "", format, args...)
	e.Cause = cause
	return e
}

// WithParam returns a copy of e attributed to another parameter.
func (e *DomainError) WithParam(param, value string) *DomainError {
	cp := *e
	cp.Param = param
	cp.Value = value
	return &cp
}

// CodeOf extracts the code of the first DomainError in err's chain.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
