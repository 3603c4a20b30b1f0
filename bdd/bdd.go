// Package bdd is the public binary decision diagram API: it
// wires internal/prod2, internal/reduce, internal/quantify,
// internal/selectsweep, internal/count, and internal/equality into the
// operations a caller of this library actually sees, mirroring package
// zdd's structure one diagram kind over.
package bdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/execpolicy"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/equality"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/prod2"
	"github.com/zzenonn/go-dd/internal/quantify"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// BDD is an owning handle onto a canonical, reduced binary decision
// diagram's backing node file.
type BDD struct {
	nf *lfile.NodeFile
}

func wrap(nf *lfile.NodeFile) BDD { return BDD{nf: nf} }

// File exposes the underlying node file, for package zdd's conversion
// operations and for callers that want a count.Semiring not wrapped here.
func (b BDD) File() *lfile.NodeFile { return b.nf }

// Root is the diagram's root pointer.
func (b BDD) Root() ddcore.Pointer { return b.nf.Root() }

// Retain returns a second owning reference to the same backing file.
func (b BDD) Retain() BDD { return BDD{nf: b.nf.Retain()} }

// Close releases this reference.
func (b BDD) Close() error { return b.nf.Close() }

// Terminal is the constant-value diagram.
func Terminal(value bool) (BDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return BDD{}, err
	}
	nf, err := w.Close(ddcore.NewTerminal(value, false), true)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}

// Variable is the elementary diagram for x_label: false when label is
// unset, true when it is set.
func Variable(label uint32) (BDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return BDD{}, err
	}
	uid, err := ddcore.InternalUID(label, 0)
	if err != nil {
		return BDD{}, err
	}
	if err := w.Push(ddcore.Node{
		UID:  uid,
		Low:  ddcore.NewTerminal(false, false),
		High: ddcore.NewTerminal(true, false),
	}); err != nil {
		return BDD{}, err
	}
	w.PushLevel(label)
	nf, err := w.Close(uid.As(false), true)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}

// Apply is bdd_apply: the general two-argument product over a
// prod2.BoolOp.
func Apply(ep execpolicy.Policy, f, g BDD, op prod2.BoolOp, rec ddstats.Recorder) (BDD, error) {
	_ = ep // Access/Memory have one implementation path today; see DESIGN.md.
	af, err := prod2.Run(f.nf, g.nf, prod2.BDD, op, rec)
	if err != nil {
		return BDD{}, err
	}
	nf, err := reduce.Run(af, reduce.BDD, rec)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}

// Not negates f, realized as Apply with f standing in as both operands and
// a combinator that ignores its second argument — the standard trick for
// expressing a unary operation through a binary product construction
// without adding a second sweep.
func Not(ep execpolicy.Policy, f BDD, rec ddstats.Recorder) (BDD, error) {
	return Apply(ep, f, f, func(a, _ bool) bool { return !a }, rec)
}

// Ite is bdd_ite: (f ∧ g) ∨ (¬f ∧ h), composed from Not (itself one Apply)
// and three further Apply calls, decomposing if-then-else into
// conjunction/disjunction.
func Ite(ep execpolicy.Policy, f, g, h BDD, rec ddstats.Recorder) (BDD, error) {
	notF, err := Not(ep, f, rec)
	if err != nil {
		return BDD{}, err
	}
	defer notF.Close()

	thenBranch, err := Apply(ep, f, g, prod2.And, rec)
	if err != nil {
		return BDD{}, err
	}
	defer thenBranch.Close()

	elseBranch, err := Apply(ep, notF, h, prod2.And, rec)
	if err != nil {
		return BDD{}, err
	}
	defer elseBranch.Close()

	return Apply(ep, thenBranch, elseBranch, prod2.Or, rec)
}

// quantifyWith resolves ep's Quantify setting into the internal/quantify
// strategy function it names.
func quantifyWith(ep execpolicy.Policy) func(*lfile.NodeFile, []uint32, quantify.BoolOp, ddstats.Recorder) (*lfile.NodeFile, error) {
	switch ep.Quantify() {
	case execpolicy.QuantifyNested:
		return quantify.Nested
	case execpolicy.QuantifyPartial:
		return quantify.Partial
	case execpolicy.QuantifySingleton:
		return func(f *lfile.NodeFile, labels []uint32, op quantify.BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
			cur := f.Retain()
			for _, l := range labels {
				next, err := quantify.Singleton(cur, l, op, rec)
				cur.Close()
				if err != nil {
					return nil, err
				}
				cur = next
			}
			return cur, nil
		}
	default:
		return quantify.Auto
	}
}

// Exists is bdd_exists: eliminates every label in vars by OR-combining
// each one's cofactors, via whichever internal/quantify strategy ep names.
func Exists(ep execpolicy.Policy, f BDD, vars []uint32, rec ddstats.Recorder) (BDD, error) {
	nf, err := quantifyWith(ep)(f.nf, vars, quantify.Exists, rec)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}

// Forall is bdd_forall: eliminates every label in vars by AND-combining
// each one's cofactors.
func Forall(ep execpolicy.Policy, f BDD, vars []uint32, rec ddstats.Recorder) (BDD, error) {
	nf, err := quantifyWith(ep)(f.nf, vars, quantify.Forall, rec)
	if err != nil {
		return BDD{}, err
	}
	return wrap(nf), nil
}

// Equal is bdd_equal, dispatching to equality's canonical byte-wise fast
// path before falling back to its levelized-queue slow path.
func Equal(f, g BDD, rec ddstats.Recorder) (bool, error) {
	return equality.Equal(f.nf, g.nf, rec)
}
