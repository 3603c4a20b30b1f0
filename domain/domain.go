// Package domain implements the variable-domain singleton:
// a shared, immutable descriptor set once
// and unset explicitly. Per the Design Note, a Context value is also
// provided for callers who want an explicit instance instead of the
// package-level default — the global remains for API compatibility with
// call sites (constructors, satcount) that do not thread one through.
package domain

import (
	"fmt"
	"sync"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// Context is an explicit, non-global variable domain: an ordered list of
// labels (ascending, per the convention used throughout this module) with
// O(1) size/membership queries.
type Context struct {
	labels []uint32
	index  map[uint32]int
}

// NewContext builds a Context over the given labels, which must already be
// in ascending order and within [0, ddcore.MaxLabel]. A label beyond
// MaxLabel is reported as ddcore.ErrInvalidArgument rather than panicking.
func NewContext(labels []uint32) (*Context, error) {
	idx := make(map[uint32]int, len(labels))
	for i, l := range labels {
		if l > ddcore.MaxLabel {
			return nil, fmt.Errorf("%w: label %d exceeds MaxLabel %d", ddcore.ErrInvalidArgument, l, ddcore.MaxLabel)
		}
		idx[l] = i
	}
	cp := make([]uint32, len(labels))
	copy(cp, labels)
	return &Context{labels: cp, index: idx}, nil
}

// Size returns the number of variables in the domain.
func (c *Context) Size() int { return len(c.labels) }

// Labels returns the domain's labels in ascending order. The returned slice
// is owned by the caller.
func (c *Context) Labels() []uint32 {
	out := make([]uint32, len(c.labels))
	copy(out, c.labels)
	return out
}

// Contains reports whether label is a member of the domain.
func (c *Context) Contains(label uint32) bool {
	_, ok := c.index[label]
	return ok
}

var (
	mu      sync.RWMutex
	current *Context
)

// Set installs the process-wide default domain, replacing whatever was set
// before. Algorithms never mutate this concurrently with a sweep in flight;
// callers are responsible for calling Set before starting work that relies
// on it. Returns ddcore.ErrInvalidArgument if any label exceeds MaxLabel,
// leaving the previous domain (if any) installed.
func Set(labels []uint32) error {
	ctx, err := NewContext(labels)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	current = ctx
	return nil
}

// Unset clears the process-wide default domain.
func Unset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

// IsSet reports whether a default domain is currently installed.
func IsSet() bool {
	mu.RLock()
	defer mu.RUnlock()
	return current != nil
}

// Get returns the process-wide default domain, or ddcore.ErrDomainUnset if
// none has been installed.
func Get() (*Context, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, ddcore.ErrDomainUnset
	}
	return current, nil
}

// Size returns the default domain's size, or 0 if none is set.
func Size() int {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return 0
	}
	return len(current.labels)
}
