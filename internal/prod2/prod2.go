// Package prod2 implements the two-argument product construction:
// given two already-reduced node files and a Boolean combinator, it
// walks both top-down in lockstep, level by level, and writes an unreduced
// arc file whose nodes still need internal/reduce's Rule 1/Rule 2 sweep to
// become canonical. Request pairs are deduplicated per level so that a
// Boolean combination of two diagrams of size m and n stays proportional to
// m*n rather than recomputing shared sub-results, the structure-sharing
// property every product construction over decision diagrams exists for.
package prod2

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/lpq"
)

// BoolOp combines two terminal values, the building block boolean
// predicates compose from (e.g. a ZDD union/intersection/
// difference is this sweep parameterized by Or/And/Diff).
type BoolOp func(a, b bool) bool

var (
	And  BoolOp = func(a, b bool) bool { return a && b }
	Or   BoolOp = func(a, b bool) bool { return a || b }
	Xor  BoolOp = func(a, b bool) bool { return a != b }
	Diff BoolOp = func(a, b bool) bool { return a && !b }
	Imp  BoolOp = func(a, b bool) bool { return !a || b }
)

// Policy is the one diagram-kind-specific decision the sweep needs: how a
// pointer with no node at the level currently being expanded cofactors on
// the low (branch=false) and high (branch=true) assignment of that level's
// variable. BDD and ZDD disagree here — a BDD's missing variable is a
// don't-care (same sub-function either way); a ZDD's missing variable means
// that variable is excluded from every member of the represented family, so
// selecting it (branch=true) collapses to the empty-family terminal.
type Policy interface {
	Cofactor(p ddcore.Pointer, branch bool) ddcore.Pointer
}

type bddPolicy struct{}

func (bddPolicy) Cofactor(p ddcore.Pointer, _ bool) ddcore.Pointer { return p }

// BDD is the shared BDD cofactor policy.
var BDD Policy = bddPolicy{}

type zddPolicy struct{}

func (zddPolicy) Cofactor(p ddcore.Pointer, branch bool) ddcore.Pointer {
	if !branch {
		return p
	}
	return ddcore.NewTerminal(false, false)
}

// ZDD is the shared ZDD cofactor policy.
var ZDD Policy = zddPolicy{}

// reqPair is a pending (or already-resolved) product request: the pointer
// each operand diagram has standing in for its side of op.
type reqPair struct {
	l, r ddcore.Pointer
}

func levelOf(p ddcore.Pointer) uint32 {
	if p.IsInternal() {
		return p.Label()
	}
	return ddcore.MaxLabel + 1
}

func minLevel(pair reqPair) uint32 {
	a, b := levelOf(pair.l), levelOf(pair.r)
	if a < b {
		return a
	}
	return b
}

func pairLess(a, b reqPair) bool {
	if c := ddcore.Compare(a.l, b.l); c != 0 {
		return c < 0
	}
	return ddcore.Compare(a.r, b.r) < 0
}

// Run walks left and right in lockstep and returns the unreduced arc file
// representing op applied pointwise across every assignment. Callers
// finish the result with internal/reduce using the matching reduce.Policy
// (reduce.BDD for a BDD Policy here, reduce.ZDD for a ZDD one) — prod2
// itself never reduces, since Rule 1/Rule 2 collapsing is Reduce's
// responsibility alone (see DESIGN.md for why prod2 does not replicate
// eager shortcut/skippable pre-checks).
func Run(left, right *lfile.NodeFile, policy Policy, op BoolOp, rec ddstats.Recorder) (*lfile.ArcFile, error) {
	if rec == nil {
		rec = ddstats.Noop
	}

	la, err := lfile.OpenNodeRandomAccess(left)
	if err != nil {
		return nil, err
	}
	defer la.Close()
	ra, err := lfile.OpenNodeRandomAccess(right)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	w, err := lfile.CreateArcFile()
	if err != nil {
		return nil, err
	}

	q := lpq.NewUnbucketed[reqPair](pairLess)
	pairID := make(map[uint32]map[reqPair]uint64)
	nextID := make(map[uint32]uint64)

	// assign resolves pair to its final pointer: a terminal if both sides
	// have already collapsed, or the synthetic node it will become once its
	// level is processed (pushing it onto the queue the first time it is
	// seen at that level; later sightings reuse the same id, which is the
	// product construction's memoization).
	assign := func(pair reqPair) ddcore.Pointer {
		if pair.l.IsTerminal() && pair.r.IsTerminal() {
			return ddcore.NewTerminal(op(pair.l.Value(), pair.r.Value()), false)
		}
		level := minLevel(pair)
		ids, ok := pairID[level]
		if !ok {
			ids = make(map[reqPair]uint64)
			pairID[level] = ids
		}
		// level always comes from one of pair's own pointers' labels.
		if id, ok := ids[pair]; ok {
			uid, _ := ddcore.InternalUID(level, id)
			return uid.As(false)
		}
		id := nextID[level]
		nextID[level]++
		ids[pair] = id
		if err := q.Push(pair, level); err != nil {
			panic(err) // Unbucketed.Push never fails
		}
		uid, _ := ddcore.InternalUID(level, id)
		return uid.As(false)
	}

	root := assign(reqPair{left.Root(), right.Root()})

	var (
		curLevel  uint32
		haveLevel bool
		laLoaded  bool
		raLoaded  bool
	)
	ensureLevel := func(level uint32) {
		if haveLevel && level == curLevel {
			return
		}
		if haveLevel {
			w.PushLevel(curLevel, nextID[curLevel])
			rec.LevelProcessed(curLevel, nextID[curLevel])
		}
		curLevel, haveLevel = level, true
		laLoaded, raLoaded = false, false
	}

	for q.CanPull() {
		pair, _ := q.Pull()
		level := minLevel(pair)
		ensureLevel(level)
		if !laLoaded && la.HasNextLevel(level) {
			if err := la.SetupNextLevel(level); err != nil {
				return nil, err
			}
			laLoaded = true
		}
		if !raLoaded && ra.HasNextLevel(level) {
			if err := ra.SetupNextLevel(level); err != nil {
				return nil, err
			}
			raLoaded = true
		}

		lowL, highL := pair.l, pair.l
		if pair.l.IsInternal() && pair.l.Label() == level {
			n := la.At(ddcore.NewUID(pair.l))
			lowL, highL = n.Low, n.High
		} else {
			lowL, highL = policy.Cofactor(pair.l, false), policy.Cofactor(pair.l, true)
		}

		lowR, highR := pair.r, pair.r
		if pair.r.IsInternal() && pair.r.Label() == level {
			n := ra.At(ddcore.NewUID(pair.r))
			lowR, highR = n.Low, n.High
		} else {
			lowR, highR = policy.Cofactor(pair.r, false), policy.Cofactor(pair.r, true)
		}

		lowTarget := assign(reqPair{lowL, lowR})
		highTarget := assign(reqPair{highL, highR})

		id := pairID[level][pair]
		uid, _ := ddcore.InternalUID(level, id) // level is one of pair's own pointers' labels
		if err := w.Push(ddcore.Arc{Source: uid.As(false), Target: lowTarget}); err != nil {
			return nil, err
		}
		if err := w.Push(ddcore.Arc{Source: uid.As(true), Target: highTarget}); err != nil {
			return nil, err
		}
		rec.ArcsProduced(2)
	}
	if haveLevel {
		w.PushLevel(curLevel, nextID[curLevel])
		rec.LevelProcessed(curLevel, nextID[curLevel])
	}

	w.SetRoot(root)
	return w.Close()
}
