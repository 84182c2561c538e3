package auth

import (
	"errors"
	"fmt"
)

// Kind identifies why a request failed authentication or authorization.
// The string value is the code written to the client.
type Kind string

const (
	KindMissingHeader        Kind = "authorization_header_missing"
	KindMalformedHeader      Kind = "invalid_header"
	KindMalformedToken       Kind = "invalid_token"
	KindUnknownSigningKey    Kind = "unknown_signing_key"
	KindInvalidSignature     Kind = "invalid_signature"
	KindTokenExpired         Kind = "token_expired"
	KindInvalidAudience      Kind = "invalid_audience"
	KindInvalidIssuer        Kind = "invalid_issuer"
	KindNoPermissionsInToken Kind = "permissions_missing"
	KindPermissionNotFound   Kind = "permission_not_found"
)

// Error is a typed authentication/authorization failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// wrap returns a copy of the sentinel carrying the underlying cause.
func (e *Error) wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

var (
	// ErrMissingHeader is returned when the request has no Authorization header
	ErrMissingHeader = &Error{Kind: KindMissingHeader, Message: "Authorization header is expected."}

	// ErrMalformedHeader is returned when the Authorization header is not "Bearer <token>"
	ErrMalformedHeader = &Error{Kind: KindMalformedHeader, Message: "Authorization header must be bearer token."}

	// ErrMalformedToken is returned when the token cannot be decoded
	ErrMalformedToken = &Error{Kind: KindMalformedToken, Message: "Unable to parse authentication token."}

	// ErrUnknownSigningKey is returned when no trusted key matches the token's key id
	ErrUnknownSigningKey = &Error{Kind: KindUnknownSigningKey, Message: "Unable to find the appropriate key."}

	// ErrInvalidSignature is returned when the token signature does not verify
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature, Message: "Token signature could not be verified."}

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = &Error{Kind: KindTokenExpired, Message: "Token expired."}

	// ErrInvalidAudience is returned when the token audience is not the expected one
	ErrInvalidAudience = &Error{Kind: KindInvalidAudience, Message: "Incorrect audience, please check the audience."}

	// ErrInvalidIssuer is returned when the token issuer is not the expected one
	ErrInvalidIssuer = &Error{Kind: KindInvalidIssuer, Message: "Incorrect issuer, please check the issuer."}

	// ErrNoPermissionsInToken is returned when a valid token carries no permissions claim
	ErrNoPermissionsInToken = &Error{Kind: KindNoPermissionsInToken, Message: "Permissions not included in JWT."}

	// ErrPermissionNotFound is returned when the required permission was not granted
	ErrPermissionNotFound = &Error{Kind: KindPermissionNotFound, Message: "Permission not found."}
)

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
