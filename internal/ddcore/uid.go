package ddcore

// UID is a Pointer with its flag bit cleared; it uniquely names a node
// (terminal or internal) independent of how some other pointer refers to
// it with a negation/taint bit set.
type UID struct {
	p Pointer
}

// NewUID clears p's flag bit and wraps it as a UID.
func NewUID(p Pointer) UID {
	return UID{p: p.WithFlag(false)}
}

// TerminalUID returns the UID of the given terminal value.
func TerminalUID(value bool) UID {
	return NewUID(NewTerminal(value, false))
}

// InternalUID returns the UID of an internal `(label, id)` node, or
// ErrInvalidArgument if label exceeds MaxLabel.
func InternalUID(label uint32, id uint64) (UID, error) {
	p, err := NewInternal(label, id, false)
	if err != nil {
		return UID{}, err
	}
	return NewUID(p), nil
}

// Pointer returns the underlying (flag-cleared) pointer.
func (u UID) Pointer() Pointer { return u.p }

func (u UID) IsTerminal() bool  { return u.p.IsTerminal() }
func (u UID) IsInternal() bool  { return u.p.IsInternal() }
func (u UID) Value() bool       { return u.p.Value() }
func (u UID) Label() uint32     { return u.p.Label() }
func (u UID) ID() uint64        { return u.p.ID() }
func (u UID) String() string    { return u.p.String() }

// As returns u as a Pointer carrying the given flag bit (e.g. to build an
// out-of-order terminal arc's target, or a BDD's complemented root edge).
func (u UID) As(flag bool) Pointer { return u.p.WithFlag(flag) }

// CompareUID orders UIDs the same way Compare orders Pointers.
func CompareUID(a, b UID) int { return Compare(a.p, b.p) }
