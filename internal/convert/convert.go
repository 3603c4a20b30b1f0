// Package convert implements the BDD<->ZDD conversions
// (bdd_from_zdd, zdd_from_bdd): reinterpreting one diagram
// kind's characteristic function as the other's over an explicit domain.
//
// Both directions are the same composition — internal/prod2's two-argument
// product against a synthetic "full cube" over dom, combined with And, then
// internal/reduce — just reading the source diagram's missing-variable
// gaps under the opposite kind's cofactor policy from the one the output
// gets reduced with. No bespoke conversion sweep is needed: the existing
// product construction and reduce machinery already compute exactly this
// once pointed at the right operand and policy pair.
package convert

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/prod2"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// fullCube is the diagram representing "true for every assignment over
// dom", realized as a chain of duplicate-pointer nodes, one per label.
func fullCube(dom []uint32) (*lfile.NodeFile, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return nil, err
	}
	next := ddcore.NewTerminal(true, false)
	for i := len(dom) - 1; i >= 0; i-- {
		uid, err := ddcore.InternalUID(dom[i], 0)
		if err != nil {
			return nil, err
		}
		if err := w.Push(ddcore.Node{UID: uid, Low: next, High: next}); err != nil {
			return nil, err
		}
		w.PushLevel(dom[i])
		next = uid.As(false)
	}
	return w.Close(next, true)
}

// ToZDD is zdd_from_bdd: reinterprets f, a BDD whose characteristic
// function has support within dom, as the ZDD family of dom-subsets it is
// true on. Reading f's gaps under prod2.BDD (missing variable passes f's
// own subtree through unchanged on both branches — a BDD's actual
// semantics) and reducing the result under reduce.ZDD makes every dom
// variable f did not depend on into an explicit ZDD don't-care node.
func ToZDD(f *lfile.NodeFile, dom []uint32, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	cube, err := fullCube(dom)
	if err != nil {
		return nil, err
	}
	defer cube.Close()
	af, err := prod2.Run(f, cube, prod2.BDD, prod2.And, rec)
	if err != nil {
		return nil, err
	}
	return reduce.Run(af, reduce.ZDD, rec)
}

// ToBDD is bdd_from_zdd: reinterprets z, a ZDD family of dom-subsets, as the
// BDD computing its characteristic function over dom. Reading z's gaps
// under prod2.ZDD (missing variable forces the include branch to the empty
// family, a ZDD's actual semantics: an absent level is never in any
// member) and reducing under reduce.BDD collapses every level z never
// reached back down to a single false-terminal tail, since neither branch
// can ever be true past that point.
func ToBDD(z *lfile.NodeFile, dom []uint32, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	cube, err := fullCube(dom)
	if err != nil {
		return nil, err
	}
	defer cube.Close()
	af, err := prod2.Run(z, cube, prod2.ZDD, prod2.And, rec)
	if err != nil {
		return nil, err
	}
	return reduce.Run(af, reduce.BDD, rec)
}
