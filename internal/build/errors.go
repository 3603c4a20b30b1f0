package build

import "errors"

// ErrInvalidConstraint indicates a Constraint was applied to a State type
// it does not know how to interpret (BasicState's own constraints require
// a BasicState, for instance).
var ErrInvalidConstraint = errors.New("build: invalid constraint")
