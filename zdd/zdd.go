// Package zdd is the public zero-suppressed decision diagram API:
// it wires internal/prod2, internal/reduce, internal/selectsweep,
// internal/count, internal/equality, and internal/convert into the
// operations a caller of this library actually sees. Binop, Union, Intsec,
// Diff, Complement and Project take the shared execpolicy.Policy.
package zdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/execpolicy"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/equality"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/prod2"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// ZDD is an owning handle onto a canonical, reduced zero-suppressed
// decision diagram's backing node file.
type ZDD struct {
	nf *lfile.NodeFile
}

func wrap(nf *lfile.NodeFile) ZDD { return ZDD{nf: nf} }

// File exposes the underlying node file, for the bdd package's conversion
// operations and for count/size callers that want a Semiring not yet
// wrapped here.
func (z ZDD) File() *lfile.NodeFile { return z.nf }

// Root is the diagram's root pointer.
func (z ZDD) Root() ddcore.Pointer { return z.nf.Root() }

// Retain returns a second owning reference to the same backing file.
func (z ZDD) Retain() ZDD { return ZDD{nf: z.nf.Retain()} }

// Close releases this reference.
func (z ZDD) Close() error { return z.nf.Close() }

// Empty is the family containing no sets.
func Empty() (ZDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return ZDD{}, err
	}
	nf, err := w.Close(ddcore.NewTerminal(false, false), true)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// Base is the family containing exactly the empty set.
func Base() (ZDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return ZDD{}, err
	}
	nf, err := w.Close(ddcore.NewTerminal(true, false), true)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// Singleton is the family containing exactly the one-element set {label}.
func Singleton(label uint32) (ZDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return ZDD{}, err
	}
	uid, err := ddcore.InternalUID(label, 0)
	if err != nil {
		return ZDD{}, err
	}
	if err := w.Push(ddcore.Node{
		UID:  uid,
		Low:  ddcore.NewTerminal(false, false),
		High: ddcore.NewTerminal(true, false),
	}); err != nil {
		return ZDD{}, err
	}
	w.PushLevel(label)
	nf, err := w.Close(uid.As(false), true)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// fullCube is the family 2^labels: every subset of labels is a member,
// realized as a chain of duplicate-pointer nodes (a ZDD's Rule 1
// collapses a node only when its high child is false, never on
// low == high, so this chain survives internal/reduce unchanged).
func fullCube(labels []uint32) (*lfile.NodeFile, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return nil, err
	}
	next := ddcore.NewTerminal(true, false)
	for i := len(labels) - 1; i >= 0; i-- {
		uid, err := ddcore.InternalUID(labels[i], 0)
		if err != nil {
			return nil, err
		}
		if err := w.Push(ddcore.Node{UID: uid, Low: next, High: next}); err != nil {
			return nil, err
		}
		w.PushLevel(labels[i])
		next = uid.As(false)
	}
	return w.Close(next, true)
}

// Binop is zdd_binop: the general two-argument product, parameterized by a
// prod2.BoolOp. Union, Intsec, and Diff are this fixed to the three
// standard combinators.
func Binop(ep execpolicy.Policy, a, b ZDD, op prod2.BoolOp, rec ddstats.Recorder) (ZDD, error) {
	_ = ep // Access/Memory have one implementation path today; see DESIGN.md.
	af, err := prod2.Run(a.nf, b.nf, prod2.ZDD, op, rec)
	if err != nil {
		return ZDD{}, err
	}
	nf, err := reduce.Run(af, reduce.ZDD, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// Union is zdd_union.
func Union(ep execpolicy.Policy, a, b ZDD, rec ddstats.Recorder) (ZDD, error) {
	return Binop(ep, a, b, prod2.Or, rec)
}

// Intsec is zdd_intsec.
func Intsec(ep execpolicy.Policy, a, b ZDD, rec ddstats.Recorder) (ZDD, error) {
	return Binop(ep, a, b, prod2.And, rec)
}

// Diff is zdd_diff.
func Diff(ep execpolicy.Policy, a, b ZDD, rec ddstats.Recorder) (ZDD, error) {
	return Binop(ep, a, b, prod2.Diff, rec)
}

// Equal is zdd_equal, dispatching to equality's canonical byte-wise fast
// path before falling back to its levelized-queue slow path.
func Equal(a, b ZDD, rec ddstats.Recorder) (bool, error) {
	return equality.Equal(a.nf, b.nf, rec)
}
