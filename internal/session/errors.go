package session

import "errors"

// AuthenticationError wraps a validator or token store failure. It is surfaced
// to the user through the store and never aborts the process.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err is an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}
