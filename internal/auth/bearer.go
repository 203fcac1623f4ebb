package auth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNoAuthHeader indicates the request carried no Authorization header.
	ErrNoAuthHeader = errors.New("authorization header missing")
	// ErrMalformedAuthHeader indicates the Authorization header is not a bearer credential.
	ErrMalformedAuthHeader = errors.New("malformed authorization header")
)

// GetBearerToken extracts the bearer credential from the request headers.
func GetBearerToken(headers http.Header) (string, error) {
	value := strings.TrimSpace(headers.Get("Authorization"))
	if value == "" {
		return "", ErrNoAuthHeader
	}

	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedAuthHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedAuthHeader
	}
	return token, nil
}
