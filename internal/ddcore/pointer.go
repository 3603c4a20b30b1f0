// Package ddcore holds the pure value types shared by every sweep: Pointer,
// UID, Node, Arc, Tuple, and Request. Nothing here touches disk; it is the
// vocabulary the levelized file model and the algorithmic sweeps are built
// from.
package ddcore

import "fmt"

// Pointer is a 64-bit tagged reference to either a terminal value, an
// internal node, or the nil sentinel. The bit layout is private; callers use
// the accessor methods below, per the project's rule that pointer tagging
// never leaks past this type.
type Pointer struct {
	raw uint64
}

const (
	bitTerminal = 63 // 1 => terminal-class pointer (terminal value or nil)
	bitFlag     = 62 // negation / taint bit
	bitNil      = 61 // only meaningful when bitTerminal is set

	labelBits = 24
	idBits    = 62 - labelBits // 38

	// MaxLabel is the largest representable variable label.
	MaxLabel = uint32(1)<<labelBits - 1
	// MaxID is the largest representable level-local identifier.
	MaxID = uint64(1)<<idBits - 1

	idMask = uint64(1)<<idBits - 1
)

// Outdegree is the number of children a Node has. The spec's data model
// leaves room (via this constant and Terminal's bool-backed value) for
// future ADD/MDD/QMDD variants without committing to them now.
const Outdegree = 2

// NilPointer is the sentinel distinct from every terminal and internal
// pointer.
func NilPointer() Pointer {
	return Pointer{raw: uint64(1)<<bitTerminal | uint64(1)<<bitNil}
}

// NewTerminal builds a terminal pointer carrying a boolean value and a flag
// bit (negation/taint).
func NewTerminal(value bool, flag bool) Pointer {
	var raw uint64 = uint64(1) << bitTerminal
	if flag {
		raw |= uint64(1) << bitFlag
	}
	if value {
		raw |= 1
	}
	return Pointer{raw: raw}
}

// NewInternal builds an internal pointer `(label, id)` with label <=
// MaxLabel and id <= MaxID. A label beyond MaxLabel is a caller-supplied
// value (a user-chosen variable number) and is reported as
// ErrInvalidArgument rather than panicking; an id beyond MaxID can only
// come from this package's own level-width bookkeeping, so it stays a
// panic.
func NewInternal(label uint32, id uint64, flag bool) (Pointer, error) {
	if label > MaxLabel {
		return Pointer{}, fmt.Errorf("%w: label %d exceeds MaxLabel %d", ErrInvalidArgument, label, MaxLabel)
	}
	if id > MaxID {
		panic(fmt.Sprintf("ddcore: id %d exceeds MaxID %d", id, MaxID))
	}
	raw := uint64(label)<<idBits | (id & idMask)
	if flag {
		raw |= uint64(1) << bitFlag
	}
	return Pointer{raw: raw}, nil
}

// IsNil reports whether p is the nil sentinel.
func (p Pointer) IsNil() bool {
	return p.raw>>bitTerminal&1 == 1 && p.raw>>bitNil&1 == 1
}

// IsTerminal reports whether p names a terminal value (false for Nil).
func (p Pointer) IsTerminal() bool {
	return p.raw>>bitTerminal&1 == 1 && p.raw>>bitNil&1 == 0
}

// IsInternal reports whether p names an internal `(label, id)` node.
func (p Pointer) IsInternal() bool {
	return p.raw>>bitTerminal&1 == 0
}

// Flag returns the negation/taint bit.
func (p Pointer) Flag() bool {
	return p.raw>>bitFlag&1 == 1
}

// WithFlag returns a copy of p with the flag bit set to v.
func (p Pointer) WithFlag(v bool) Pointer {
	if v {
		return Pointer{raw: p.raw | uint64(1)<<bitFlag}
	}
	return Pointer{raw: p.raw &^ (uint64(1) << bitFlag)}
}

// Value returns the terminal's boolean value.
//
// Precondition: p.IsTerminal().
func (p Pointer) Value() bool {
	if !p.IsTerminal() {
		panic("ddcore: Value() called on a non-terminal pointer")
	}
	return p.raw&1 == 1
}

// Label returns the internal pointer's variable label.
//
// Precondition: p.IsInternal().
func (p Pointer) Label() uint32 {
	if !p.IsInternal() {
		panic("ddcore: Label() called on a non-internal pointer")
	}
	return uint32(p.raw >> idBits)
}

// ID returns the internal pointer's level-local identifier.
//
// Precondition: p.IsInternal().
func (p Pointer) ID() uint64 {
	if !p.IsInternal() {
		panic("ddcore: ID() called on a non-internal pointer")
	}
	return p.raw & idMask
}

// labelOrInf returns Label() for internal pointers and a sentinel larger
// than MaxLabel for terminals, so level comparisons need not special-case
// terminals separately.
func (p Pointer) labelOrInf() uint64 {
	if p.IsInternal() {
		return uint64(p.Label())
	}
	return uint64(MaxLabel) + 1
}

// Compare orders pointers so that internal pointers sort lexicographically
// by (label, id), all terminals sort after all internal pointers, and Nil
// sorts last of all (Nil should not normally participate in a sweep's
// comparisons, but a total order keeps sort.Slice well-defined).
func Compare(a, b Pointer) int {
	if a.IsNil() || b.IsNil() {
		switch {
		case a.IsNil() && b.IsNil():
			return 0
		case a.IsNil():
			return 1
		default:
			return -1
		}
	}
	al, bl := a.labelOrInf(), b.labelOrInf()
	if al != bl {
		if al < bl {
			return -1
		}
		return 1
	}
	if a.IsInternal() {
		ai, bi := a.ID(), b.ID()
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	// Both terminal at this point (equal "level" sentinel).
	av, bv := a.Value(), b.Value()
	switch {
	case av == bv:
		if a.Flag() == b.Flag() {
			return 0
		}
		if !a.Flag() {
			return -1
		}
		return 1
	case !av:
		return -1
	default:
		return 1
	}
}

// Less is a convenience wrapper around Compare for use as a sort.Slice
// comparator.
func Less(a, b Pointer) bool { return Compare(a, b) < 0 }

// Bits returns the pointer's raw 64-bit encoding, for use by the on-disk
// record codec (internal/lfile); the bit layout itself stays private to
// this package otherwise.
func (p Pointer) Bits() uint64 { return p.raw }

// FromBits reconstructs a Pointer from a raw encoding previously obtained
// from Bits.
func FromBits(bits uint64) Pointer { return Pointer{raw: bits} }

func (p Pointer) String() string {
	switch {
	case p.IsNil():
		return "nil"
	case p.IsTerminal():
		return fmt.Sprintf("T(%v,flag=%v)", p.Value(), p.Flag())
	default:
		return fmt.Sprintf("(%d,%d,flag=%v)", p.Label(), p.ID(), p.Flag())
	}
}
