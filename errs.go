package tupletree

import "errors"

var (
	// ErrTypeMismatch marks supplied values whose shape does not match
	// the declared field type, including undeclared and missing fields.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMalformedReference marks references constructed from anything
	// other than a string.
	ErrMalformedReference = errors.New("malformed reference")
)
