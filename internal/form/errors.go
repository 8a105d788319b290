package form

import (
	"errors"
	"fmt"
)

var (
	// ErrParse means the draft is not valid YAML.
	ErrParse = errors.New("unable to parse YAML")
	// ErrMissingAPIVersion means the draft parsed but has no apiVersion.
	ErrMissingAPIVersion = errors.New("missing apiVersion")
)

// ValidationError is a draft rejected before deployment. It is shown inline
// and never reaches the deploy callback.
type ValidationError struct {
	Err    error  // ErrParse or ErrMissingAPIVersion
	Reason string // parser detail for ErrParse
}

// Message returns the text shown to the user.
func (e *ValidationError) Message() string {
	if errors.Is(e.Err, ErrParse) {
		return fmt.Sprintf("Unable to parse the given YAML. Got: %s", e.Reason)
	}
	return "Unable parse the resource. Make sure it contains a valid apiVersion"
}

func (e *ValidationError) Error() string {
	return e.Message()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
