package ddcore

import "errors"

// Error kinds from the error-handling design. Every operation either
// completes or surfaces one of these — wrapped with fmt.Errorf("%w", ...)
// and operation/input-identifying context — to the caller. None is ever
// silently swallowed.
var (
	// ErrInvalidArgument covers: a terminal where an internal pointer was
	// required, a generator not delivered in its declared order, or a label
	// beyond MaxLabel.
	ErrInvalidArgument = errors.New("dd: invalid argument")

	// ErrDomainUnset is returned by domain.Get when no domain has been set.
	ErrDomainUnset = errors.New("dd: no variable domain set")

	// ErrOutOfRange is returned when a label consumer/iterator adapter runs
	// past the end of its backing sequence.
	ErrOutOfRange = errors.New("dd: out of range")

	// ErrIO wraps an underlying filesystem failure. Fatal: the operation
	// that triggered it cannot be retried without fixing the environment.
	ErrIO = errors.New("dd: I/O failure")

	// ErrResourceExhausted is returned when a temporary-disk or memory
	// budget is exceeded. Fatal, like ErrIO.
	ErrResourceExhausted = errors.New("dd: resource exhausted")
)
