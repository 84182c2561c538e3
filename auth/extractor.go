package auth

import (
	"net/http"
	"strings"
)

// AuthorizationHeader is the header carrying the bearer credential.
const AuthorizationHeader = "Authorization"

// ExtractBearerToken returns the bearer token from the request's Authorization header.
//
// The header must consist of exactly two space-separated parts, the first of which is
// "bearer" in any case. Anything else is ErrMalformedHeader; a missing header is
// ErrMissingHeader.
func ExtractBearerToken(r *http.Request) (string, error) {
	values, ok := r.Header[http.CanonicalHeaderKey(AuthorizationHeader)]
	if !ok || len(values) == 0 {
		return "", ErrMissingHeader
	}

	parts := strings.Split(values[0], " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}

	return parts[1], nil
}
