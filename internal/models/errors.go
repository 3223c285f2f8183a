package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RequestError into the failure categories the
// client distinguishes. The categories mirror how the GitHub API reports
// failures: malformed endpoints, transport errors, authentication and
// rate-limit rejections, other server errors, and local decoding failures.
type ErrorKind int

const (
	// KindUnknown is the fallback classification for failures that do not
	// match any other category.
	KindUnknown ErrorKind = iota

	// KindInvalidEndpoint indicates the endpoint did not form a
	// well-formed absolute URL. No request was issued.
	KindInvalidEndpoint

	// KindTransport indicates a connectivity-level failure (DNS, TLS,
	// connection reset, timeout). Always retryable by the caller.
	KindTransport

	// KindUnauthorized indicates an HTTP 401 response. The stored token,
	// if any, is a strong candidate for invalidation.
	KindUnauthorized

	// KindRateLimited indicates an HTTP 403 response whose message names
	// the API rate limit.
	KindRateLimited

	// KindServer indicates any other HTTP status >= 400.
	KindServer

	// KindDecoding indicates a well-formed HTTP response whose body did
	// not match the expected shape. Not retryable.
	KindDecoding
)

// String returns the wire-style name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidEndpoint:
		return "invalid_endpoint"
	case KindTransport:
		return "transport_error"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limit_exceeded"
	case KindServer:
		return "server_error"
	case KindDecoding:
		return "decoding_error"
	default:
		return "unknown"
	}
}

// RequestError is the typed failure returned by the HTTP client. It carries
// the classification kind, the HTTP status code when a response was
// received, the server-provided message when one could be parsed, and the
// underlying error when the failure originated locally.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode > 0:
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the underlying error for errors.Is/errors.As chains.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewInvalidEndpoint creates a RequestError for a malformed endpoint URL.
func NewInvalidEndpoint(endpoint string) *RequestError {
	return &RequestError{Kind: KindInvalidEndpoint, Message: endpoint}
}

// NewTransportError wraps a connectivity-level failure.
func NewTransportError(err error) *RequestError {
	return &RequestError{Kind: KindTransport, Err: err}
}

// NewUnauthorized creates a RequestError for an HTTP 401 response.
func NewUnauthorized(message string) *RequestError {
	return &RequestError{Kind: KindUnauthorized, StatusCode: 401, Message: message}
}

// NewRateLimited creates a RequestError for a rate-limit rejection.
func NewRateLimited(message string) *RequestError {
	return &RequestError{Kind: KindRateLimited, StatusCode: 403, Message: message}
}

// NewServerError creates a RequestError for any other status >= 400.
func NewServerError(statusCode int, message string) *RequestError {
	return &RequestError{Kind: KindServer, StatusCode: statusCode, Message: message}
}

// NewDecodingError wraps a response-body decoding failure.
func NewDecodingError(err error) *RequestError {
	return &RequestError{Kind: KindDecoding, Err: err}
}

// KindOf returns the classification kind of err, or KindUnknown when err is
// not a RequestError.
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is a RequestError classified as an
// HTTP 401 rejection.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsRateLimited reports whether err is a RequestError classified as a
// rate-limit rejection.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// AuthError represents a failure of an authentication operation. It carries
// a stable machine-readable code and an optional human-readable description.
type AuthError struct {
	// Code identifies the failure category (e.g. "token_not_found").
	Code string `json:"error"`
	// Description provides additional human-readable error information.
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

// WithDescription returns a copy of the error carrying the given
// description, so the sentinel values below stay immutable.
func (e *AuthError) WithDescription(description string) *AuthError {
	return &AuthError{Code: e.Code, Description: description}
}

// Is matches AuthError values by code so sentinel comparison via errors.Is
// works regardless of the attached description.
func (e *AuthError) Is(target error) bool {
	var authErr *AuthError
	if !errors.As(target, &authErr) {
		return false
	}
	return e.Code == authErr.Code
}

var (
	// ErrTokenNotFound indicates no access token exists in the credential
	// store.
	ErrTokenNotFound = &AuthError{Code: "token_not_found"}

	// ErrAuthorizationFailed indicates the OAuth authorization step
	// failed: the user cancelled, the provider rejected the request, or
	// the anti-forgery state did not match.
	ErrAuthorizationFailed = &AuthError{Code: "authorization_failed"}

	// ErrNetwork indicates a network failure during an authentication
	// operation.
	ErrNetwork = &AuthError{Code: "network_error"}

	// ErrBiometricUnavailable indicates the local re-validation mechanism
	// is not available on this platform.
	ErrBiometricUnavailable = &AuthError{Code: "biometric_unavailable"}

	// ErrLoginInProgress indicates a login flow is already in flight;
	// concurrent login attempts are rejected rather than interleaved.
	ErrLoginInProgress = &AuthError{Code: "login_in_progress"}

	// ErrAuthUnknown is the fallback authentication error.
	ErrAuthUnknown = &AuthError{Code: "unknown"}
)
