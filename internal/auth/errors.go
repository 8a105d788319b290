package auth

import "errors"

var (
	// ErrNoToken is returned when a token is required but empty.
	ErrNoToken = errors.New("no token provided")
	// ErrUnauthorized is returned when the API server rejects a token.
	ErrUnauthorized = errors.New("invalid token")
)
