package models

import (
	"errors"
	"fmt"
	"net/http"
)

const ErrorTitle = "Rewards Service Error"

// ErrorKind partitions every pipeline failure into the categories the API
// layer knows how to report. Anything not carrying a RequestError is treated
// as an upstream failure with a generic message.
type ErrorKind uint8

const (
	ErrorKind_Validation ErrorKind = iota
	ErrorKind_Policy
	ErrorKind_NotFound
	ErrorKind_Upstream
	ErrorKind_Oracle
	ErrorKind_Transport
)

// RequestError is the single error type that crosses the service/API
// boundary. Reason is safe to return to the caller; the wrapped cause is
// logged only.
type RequestError struct {
	Kind   ErrorKind
	Reason string
	cause  error
}

func (e *RequestError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.cause)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

// Status maps the error kind to an HTTP status code.
func (e *RequestError) Status() int {
	switch e.Kind {
	case ErrorKind_Validation, ErrorKind_Policy:
		return http.StatusBadRequest
	case ErrorKind_NotFound:
		return http.StatusNotFound
	case ErrorKind_Transport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is what the API layer is allowed to surface. Upstream and
// oracle failures are deliberately generic.
func (e *RequestError) UserMessage() string {
	switch e.Kind {
	case ErrorKind_Upstream, ErrorKind_Oracle:
		return "internal error, request failed"
	case ErrorKind_Transport:
		return "upstream service unavailable"
	default:
		return e.Reason
	}
}

func NewValidationError(reason string) error {
	return &RequestError{Kind: ErrorKind_Validation, Reason: reason}
}

func NewPolicyError(reason string) error {
	return &RequestError{Kind: ErrorKind_Policy, Reason: reason}
}

func NewNotFoundError(reason string) error {
	return &RequestError{Kind: ErrorKind_NotFound, Reason: reason}
}

func NewUpstreamError(reason string, cause error) error {
	return &RequestError{Kind: ErrorKind_Upstream, Reason: reason, cause: cause}
}

// NewTransportError marks failures reaching an upstream service at all, as
// opposed to a reachable service returning something unusable. Retryable.
func NewTransportError(reason string, cause error) error {
	return &RequestError{Kind: ErrorKind_Transport, Reason: reason, cause: cause}
}

// NewOracleError marks responses from the scoring oracle that did not conform
// to the requested schema. Logged distinctly from transport errors.
func NewOracleError(reason string, cause error) error {
	return &RequestError{Kind: ErrorKind_Oracle, Reason: reason, cause: cause}
}

// AsRequestError unwraps err into a RequestError, defaulting unknown errors
// to the upstream category so no internal detail leaks to callers.
func AsRequestError(err error) *RequestError {
	reqErr := new(RequestError)
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return &RequestError{Kind: ErrorKind_Upstream, Reason: "unexpected error", cause: err}
}
