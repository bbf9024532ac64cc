package schema

import "errors"

// ErrSchema marks unknown-type and unknown-field failures. Operations that
// hit it are not retried.
var ErrSchema = errors.New("schema error")
