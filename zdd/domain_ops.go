package zdd

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/execpolicy"
	"github.com/zzenonn/go-dd/internal/prod2"
	"github.com/zzenonn/go-dd/internal/reduce"
	"github.com/zzenonn/go-dd/internal/selectsweep"
)

// Onset is zdd_onset: the subfamily whose members include var.
func Onset(z ZDD, vars []uint32, rec ddstats.Recorder) (ZDD, error) {
	nf, err := selectsweep.Run(z.nf, selectsweep.FromSlice(vars, true), selectsweep.Onset, reduce.ZDD, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// Offset is zdd_offset: the subfamily whose members exclude every label in
// vars — Restrict always fixing false, since offset only ever removes
// variables from consideration, never selects one (see
// internal/selectsweep.Restrict's doc comment).
func Offset(z ZDD, vars []uint32, rec ddstats.Recorder) (ZDD, error) {
	nf, err := selectsweep.Run(z.nf, selectsweep.FromSlice(vars, false), selectsweep.Restrict, reduce.ZDD, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// Complement is zdd_complement: 2^dom \ A, realized as the boolean
// difference between the full cube over dom and A — reusing internal/prod2
// and internal/reduce exactly as Binop does, rather than a bespoke
// complementing sweep (see DESIGN.md).
func Complement(ep execpolicy.Policy, z ZDD, dom []uint32, rec ddstats.Recorder) (ZDD, error) {
	cube, err := fullCube(dom)
	if err != nil {
		return ZDD{}, err
	}
	defer cube.Close()
	return Binop(ep, wrap(cube), z, prod2.Diff, rec)
}

// Expand is zdd_expand: widens A's domain to additionally include vars
// (which must not already appear in A), adding every variable in vars as a
// don't-care. Realized as prod2's BDD cofactor policy (missing variable
// passes its operand through unchanged on both branches, instead of
// ZDD's "missing means excluded") applied with And against the full cube
// over vars — at every level in vars the cube contributes an honest
// duplicate-pointer node, at every level already in A the cube has
// nothing, so BDD's pass-through cofactor leaves A's own structure alone.
// The Skip rule finishing the sweep is still reduce.ZDD, since the result
// is itself a ZDD.
func Expand(z ZDD, vars []uint32, rec ddstats.Recorder) (ZDD, error) {
	cube, err := fullCube(vars)
	if err != nil {
		return ZDD{}, err
	}
	defer cube.Close()
	af, err := prod2.Run(z.nf, cube, prod2.BDD, prod2.And, rec)
	if err != nil {
		return ZDD{}, err
	}
	nf, err := reduce.Run(af, reduce.ZDD, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// projectOne eliminates a single variable, forgetting whether each member
// contained it: members excluding v pass through via Offset unchanged,
// members including v have v stripped via Change, and the two groups are
// merged (with any resulting duplicates collapsed) via Union.
func projectOne(ep execpolicy.Policy, z ZDD, v uint32, rec ddstats.Recorder) (ZDD, error) {
	without, err := Offset(z, []uint32{v}, rec)
	if err != nil {
		return ZDD{}, err
	}
	withV, err := Onset(z, []uint32{v}, rec)
	if err != nil {
		without.Close()
		return ZDD{}, err
	}
	stripped, err := Change(withV, v, rec)
	withV.Close()
	if err != nil {
		without.Close()
		return ZDD{}, err
	}
	merged, err := Union(ep, without, stripped, rec)
	without.Close()
	stripped.Close()
	return merged, err
}

// Project is zdd_project: restricts A's support to keep, folding
// projectOne over every other label A's diagram mentions.
func Project(ep execpolicy.Policy, z ZDD, keep []uint32, rec ddstats.Recorder) (ZDD, error) {
	keepSet := make(map[uint32]bool, len(keep))
	for _, l := range keep {
		keepSet[l] = true
	}

	cur := z.Retain()
	for _, lv := range cur.nf.Levels() {
		if keepSet[lv.Label] {
			continue
		}
		next, err := projectOne(ep, cur, lv.Label, rec)
		cur.Close()
		if err != nil {
			return ZDD{}, err
		}
		cur = next
	}
	return cur, nil
}
