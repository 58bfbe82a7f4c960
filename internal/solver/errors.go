package solver

import "errors"

// ErrInvalidInput tags a malformed problem, surfaced before any model is
// built. Wrapped with context via fmt.Errorf("%w: ...", ErrInvalidInput).
var ErrInvalidInput = errors.New("invalid input")
