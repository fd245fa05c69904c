package domain

import (
	"errors"
	"fmt"
)

// AuthErrorKind enumerates the closed set of business failures the
// backend can signal, either through HTTP status or through meta.code
// inside an otherwise successful response.
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthInvalidCredentials
	AuthAccountBlocked
	AuthServerMaintenance
	AuthCustom
)

// AuthError is a business failure. Its message is safe to show to the
// end user as the failure reason.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthInvalidCredentials:
		return "username or password is incorrect"
	case AuthAccountBlocked:
		return "your account has been blocked, contact an administrator"
	case AuthServerMaintenance:
		return "the server is under maintenance, try again later"
	case AuthCustom:
		return e.Message
	default:
		return "an unknown error occurred"
	}
}

// NewAuthError builds a business error of the given kind.
func NewAuthError(kind AuthErrorKind) *AuthError {
	return &AuthError{Kind: kind}
}

// NewCustomError wraps a server-supplied business message verbatim.
func NewCustomError(message string) *AuthError {
	return &AuthError{Kind: AuthCustom, Message: message}
}

// MapStatusCode translates a business-error code into an AuthError.
// Codes outside the table return nil so they can pass through as
// plain server errors instead of being misread as business failures.
func MapStatusCode(code int) *AuthError {
	switch code {
	case 400, 401:
		return NewAuthError(AuthInvalidCredentials)
	case 403:
		return NewAuthError(AuthAccountBlocked)
	case 500, 503:
		return NewAuthError(AuthServerMaintenance)
	default:
		return nil
	}
}

// AsAuthError unwraps err into the business family.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// InfraErrorKind enumerates infrastructure failures. They are never
// conflated with the business family: callers surface them as a
// generic failure and log the cause.
type InfraErrorKind int

const (
	InfraUnknown InfraErrorKind = iota
	InfraTransport
	InfraServer
	InfraDecoding
	InfraInvalidResponse
)

// InfraError is a transport or protocol level failure. For
// InfraServer the HTTP status and raw body are retained so the
// response pipeline can attempt a precise business mapping first.
type InfraError struct {
	Kind   InfraErrorKind
	Status int
	Body   []byte
	cause  error
}

func (e *InfraError) Error() string {
	switch e.Kind {
	case InfraTransport:
		return fmt.Sprintf("transport failure: %v", e.cause)
	case InfraServer:
		return fmt.Sprintf("server returned status %d", e.Status)
	case InfraDecoding:
		return fmt.Sprintf("decode response: %v", e.cause)
	case InfraInvalidResponse:
		return "response envelope reported success without data"
	default:
		return fmt.Sprintf("unexpected failure: %v", e.cause)
	}
}

func (e *InfraError) Unwrap() error { return e.cause }

// NewTransportError classifies a connectivity or timeout failure.
func NewTransportError(cause error) *InfraError {
	return &InfraError{Kind: InfraTransport, cause: cause}
}

// NewServerError records a non-2xx HTTP response with its raw body.
func NewServerError(status int, body []byte) *InfraError {
	return &InfraError{Kind: InfraServer, Status: status, Body: body}
}

// NewDecodingError classifies an undecodable or invalid payload.
func NewDecodingError(cause error) *InfraError {
	return &InfraError{Kind: InfraDecoding, cause: cause}
}

// NewInvalidResponseError flags a success envelope with missing data.
func NewInvalidResponseError() *InfraError {
	return &InfraError{Kind: InfraInvalidResponse}
}

// NewUnknownError classifies any other transport-layer fault.
func NewUnknownError(cause error) *InfraError {
	return &InfraError{Kind: InfraUnknown, cause: cause}
}

// AsInfraError unwraps err into the infrastructure family.
func AsInfraError(err error) (*InfraError, bool) {
	var infraErr *InfraError
	if errors.As(err, &infraErr) {
		return infraErr, true
	}
	return nil, false
}
