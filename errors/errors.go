// Package errors provides error handling for the Akismet API client
package errors

import (
	stderrors "errors"
	"fmt"
)

// AkismetError represents the different types of errors that can occur
type AkismetError struct {
	Type    ErrorType
	Message string
	// HTTP status code, set for transport errors caused by a non-2xx response
	StatusCode int
	// Value of the x-akismet-alert-code header, if any
	AlertCode string
	// Target URL of the failed request, if known
	URL   string
	Cause error
}

// ErrorType represents the type of error
type ErrorType int

const (
	TransportError ErrorType = iota
	ServiceAlertError
	ProtocolError
	DebugHelpError
	ConfigError
	SerdeError
	ParseError
	IOError
	UnknownError
)

// String returns a short, stable name for the error type
func (t ErrorType) String() string {
	switch t {
	case TransportError:
		return "transport"
	case ServiceAlertError:
		return "service_alert"
	case ProtocolError:
		return "protocol"
	case DebugHelpError:
		return "debug_help"
	case ConfigError:
		return "config"
	case SerdeError:
		return "serde"
	case ParseError:
		return "parse"
	case IOError:
		return "io"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (e *AkismetError) Error() string {
	switch e.Type {
	case TransportError:
		if e.URL != "" {
			return fmt.Sprintf("HTTP request to %s failed: %s", e.URL, e.Message)
		}
		return fmt.Sprintf("HTTP request failed: %s", e.Message)
	case ServiceAlertError:
		if e.AlertCode != "" {
			return fmt.Sprintf("Akismet alert %s: %s", e.AlertCode, e.Message)
		}
		return fmt.Sprintf("Akismet alert: %s", e.Message)
	case ProtocolError:
		return fmt.Sprintf("Unexpected Akismet response: %s", e.Message)
	case DebugHelpError:
		return fmt.Sprintf("Akismet debug help: %s", e.Message)
	case ConfigError:
		return fmt.Sprintf("Configuration error: %s", e.Message)
	case SerdeError:
		return fmt.Sprintf("Serialization/Deserialization error: %s", e.Message)
	case ParseError:
		return fmt.Sprintf("Parsing error: %s", e.Message)
	case IOError:
		return fmt.Sprintf("IO error: %s", e.Message)
	case UnknownError:
		return "Unknown error"
	default:
		return fmt.Sprintf("Unknown error: %s", e.Message)
	}
}

// Unwrap returns the underlying cause error
func (e *AkismetError) Unwrap() error {
	return e.Cause
}

// IsType reports whether err, or any error it wraps, is an AkismetError of type t
func IsType(err error, t ErrorType) bool {
	var ae *AkismetError
	return stderrors.As(err, &ae) && ae.Type == t
}

// NewTransportError creates a transport error for a non-2xx response
func NewTransportError(statusCode int, status string, url string) *AkismetError {
	return &AkismetError{
		Type:       TransportError,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, status),
		StatusCode: statusCode,
		URL:        url,
	}
}

// NewTransportErrorWithCause creates a transport error for a request that never produced a response
func NewTransportErrorWithCause(url string, cause error) *AkismetError {
	return &AkismetError{
		Type:    TransportError,
		Message: cause.Error(),
		URL:     url,
		Cause:   cause,
	}
}

// NewServiceAlertError creates an error from the x-akismet-alert-* headers
func NewServiceAlertError(code string, message string) *AkismetError {
	return &AkismetError{
		Type:      ServiceAlertError,
		Message:   message,
		AlertCode: code,
	}
}

// NewProtocolError creates an error for a 2xx response with an unexpected body
func NewProtocolError(message string) *AkismetError {
	return &AkismetError{
		Type:    ProtocolError,
		Message: message,
	}
}

// NewDebugHelpError creates an error from the x-akismet-debug-help header
func NewDebugHelpError(message string) *AkismetError {
	return &AkismetError{
		Type:    DebugHelpError,
		Message: message,
	}
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *AkismetError {
	return &AkismetError{
		Type:    ConfigError,
		Message: message,
	}
}

// NewSerdeError creates a new serialization/deserialization error
func NewSerdeError(cause error) *AkismetError {
	return &AkismetError{
		Type:    SerdeError,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewParseError creates a new parsing error for a named wire field
func NewParseError(field string, cause error) *AkismetError {
	return &AkismetError{
		Type:    ParseError,
		Message: fmt.Sprintf("%s: %v", field, cause),
		Cause:   cause,
	}
}

// NewIOError creates a new IO error
func NewIOError(cause error) *AkismetError {
	return &AkismetError{
		Type:    IOError,
		Message: cause.Error(),
		Cause:   cause,
	}
}

// NewUnknownError creates a new unknown error
func NewUnknownError() *AkismetError {
	return &AkismetError{
		Type:    UnknownError,
		Message: "",
	}
}
