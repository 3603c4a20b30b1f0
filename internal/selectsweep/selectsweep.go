// Package selectsweep implements restrict/onset/offset: given
// a diagram and an assignment source fixing zero or more labels to a value,
// it walks the diagram top-down and either replaces a node whose own label
// is fixed with the cofactor the policy names, or keeps the node (itself
// possibly rewritten, for ZDD onset's low-truncation rule) and recurses into
// its children.
//
// Like internal/quantify, this package processes its input fully in memory:
// the whole diagram is loaded into a map once, and the walk is a recursive,
// memoized function over it rather than an external-memory level-by-level
// stream. See DESIGN.md.
package selectsweep

import (
	"sort"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// Generator yields assignments in strictly ascending label order, one call
// at a time, reporting ok=false once exhausted. It is the unified shape
// behind the three callback forms offered to callers (predicate, generator,
// random-access map); FromPredicate, FromSlice, FromAssignments, and
// FromMap adapt each of them to it.
type Generator func() (label uint32, value bool, ok bool)

// Assignment pairs a label with the value fixed for it.
type Assignment struct {
	Label uint32
	Value bool
}

// FromSlice fixes the same value at every label in labels, accepted in
// either order (the slice is sorted before use) — the shape zdd_onset and
// zdd_offset's single-variable-subset callbacks need.
func FromSlice(labels []uint32, value bool) Generator {
	pairs := make([]Assignment, len(labels))
	for i, l := range labels {
		pairs[i] = Assignment{Label: l, Value: value}
	}
	return FromAssignments(pairs)
}

// FromAssignments generalizes FromSlice to a distinct value per label, the
// shape bdd_restrict's general per-variable assignment needs.
func FromAssignments(pairs []Assignment) Generator {
	sorted := append([]Assignment(nil), pairs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	i := 0
	return func() (uint32, bool, bool) {
		if i >= len(sorted) {
			return 0, false, false
		}
		a := sorted[i]
		i++
		return a.Label, a.Value, true
	}
}

// FromMap adapts a random-access assignment source.
func FromMap(m map[uint32]bool) Generator {
	pairs := make([]Assignment, 0, len(m))
	for l, v := range m {
		pairs = append(pairs, Assignment{Label: l, Value: v})
	}
	return FromAssignments(pairs)
}

// FromPredicate adapts a predicate over labels, scanning every label from 0
// through maxLabel inclusive and fixing value at each one the predicate
// accepts.
func FromPredicate(pred func(label uint32) bool, maxLabel uint32, value bool) Generator {
	next := uint32(0)
	done := false
	return func() (uint32, bool, bool) {
		for !done {
			l := next
			if l == maxLabel {
				done = true
			} else {
				next++
			}
			if pred(l) {
				return l, value, true
			}
		}
		return 0, false, false
	}
}

// assignments is a Generator fully drained into a sorted lookup table, so a
// recursive (non-monotonic-order) walk can query it by level without the
// two-ahead buffering a strictly forward streaming cursor would need.
type assignments struct {
	labels []uint32
	values []bool
}

func drain(gen Generator) (*assignments, error) {
	a := &assignments{}
	first := true
	var prev uint32
	for {
		l, v, ok := gen()
		if !ok {
			break
		}
		if !first && l <= prev {
			return nil, ddcore.ErrInvalidArgument
		}
		a.labels = append(a.labels, l)
		a.values = append(a.values, v)
		prev, first = l, false
	}
	return a, nil
}

func (a *assignments) Fixed(level uint32) (bool, bool) {
	i := sort.Search(len(a.labels), func(i int) bool { return a.labels[i] >= level })
	if i < len(a.labels) && a.labels[i] == level {
		return a.values[i], true
	}
	return false, false
}

func (a *assignments) NextAtOrAfter(level uint32) (uint32, bool) {
	i := sort.Search(len(a.labels), func(i int) bool { return a.labels[i] >= level })
	if i < len(a.labels) {
		return a.labels[i], true
	}
	return 0, false
}

func (a *assignments) NextAfter(level uint32) (uint32, bool) {
	i := sort.Search(len(a.labels), func(i int) bool { return a.labels[i] > level })
	if i < len(a.labels) {
		return a.labels[i], true
	}
	return 0, false
}

// Lookup is the read-only view into the assignment source a Policy needs,
// kept separate from the Generator/assignments machinery so Policy stays a
// narrow, implementable interface.
type Lookup interface {
	// Fixed reports the value assigned at level, if any.
	Fixed(level uint32) (value bool, ok bool)
	// NextAtOrAfter reports the smallest assigned label >= level.
	NextAtOrAfter(level uint32) (label uint32, ok bool)
	// NextAfter reports the smallest assigned label > level.
	NextAfter(level uint32) (label uint32, ok bool)
}

// StepResult is either a forward (the node is skipped entirely and
// replaced by Pointer, which is itself transformed further) or a rewrite
// (the node is kept, with Low/High as the children to recurse into and
// re-emit under the node's own level) — the two shapes the original
// select_rec read-out covers.
type StepResult struct {
	Forward   bool
	Pointer   ddcore.Pointer
	Low, High ddcore.Pointer
}

// Policy is the one diagram-kind-specific decision this sweep needs: how a
// node whose own level has no fixed assignment is kept (KeepNode), how one
// whose level is fixed is cofactored (Fix), and how a terminal the walk
// reaches directly is adjusted (Terminal).
type Policy interface {
	KeepNode(n ddcore.Node, level uint32, a Lookup) StepResult
	Fix(n ddcore.Node, value bool, level uint32, a Lookup) StepResult
	Terminal(value bool, afterLevel uint32, a Lookup) ddcore.Pointer
}

type restrictPolicy struct{}

func (restrictPolicy) KeepNode(n ddcore.Node, _ uint32, _ Lookup) StepResult {
	return StepResult{Low: n.Low, High: n.High}
}

func (restrictPolicy) Fix(n ddcore.Node, value bool, _ uint32, _ Lookup) StepResult {
	return StepResult{Forward: true, Pointer: n.Child(value)}
}

func (restrictPolicy) Terminal(value bool, _ uint32, _ Lookup) ddcore.Pointer {
	return ddcore.NewTerminal(value, false)
}

// Restrict is bdd_restrict's policy. It also serves zdd_offset, which is
// exactly a Restrict whose generator always fixes false (FromSlice's value
// parameter), since offset only ever removes variables, never selects one.
var Restrict Policy = restrictPolicy{}

type onsetPolicy struct{}

func (onsetPolicy) KeepNode(n ddcore.Node, level uint32, a Lookup) StepResult {
	incl, ok := a.NextAtOrAfter(level)
	if !ok {
		return StepResult{Low: n.Low, High: n.High}
	}
	low := n.Low
	if low.IsTerminal() || low.Label() > incl {
		low = ddcore.NewTerminal(false, false)
	}
	if n.High.IsTerminal() || n.High.Label() > incl {
		return StepResult{Forward: true, Pointer: low}
	}
	return StepResult{Low: low, High: n.High}
}

func (onsetPolicy) Fix(n ddcore.Node, _ bool, level uint32, a Lookup) StepResult {
	if excl, ok := a.NextAfter(level); ok {
		if n.High.IsTerminal() || n.High.Label() > excl {
			return StepResult{Forward: true, Pointer: ddcore.NewTerminal(false, false)}
		}
	}
	return StepResult{Low: ddcore.NewTerminal(false, false), High: n.High}
}

func (onsetPolicy) Terminal(value bool, afterLevel uint32, a Lookup) ddcore.Pointer {
	if _, ok := a.NextAfter(afterLevel); ok {
		return ddcore.NewTerminal(false, false)
	}
	return ddcore.NewTerminal(value, false)
}

// Onset is zdd_onset's policy: a node at an assigned level drops its low
// child (onset only keeps members containing that variable), and any node
// whose low edge would otherwise skip past a still-pending assigned label
// has that edge truncated to the empty family, per
// original_source/src/adiar/zdd/subset.cpp's zdd_onset_policy.
var Onset Policy = onsetPolicy{}

type pendingNode struct {
	id        uint64
	low, high ddcore.Pointer
}

// Run walks f top-down under gen and policy, and returns the canonical
// result of reducePolicy's Reduce pass over the rewritten diagram
// (reduce.BDD for bdd_restrict, reduce.ZDD for zdd_onset/zdd_offset).
func Run(f *lfile.NodeFile, gen Generator, policy Policy, reducePolicy reduce.Policy, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if rec == nil {
		rec = ddstats.Noop
	}

	a, err := drain(gen)
	if err != nil {
		return nil, err
	}
	if len(a.labels) == 0 {
		return f.Retain(), nil
	}

	nodes := make(map[ddcore.Pointer]ddcore.Node)
	strm, err := f.Stream()
	if err != nil {
		return nil, err
	}
	for strm.CanPull() {
		n, _ := strm.Pull()
		nodes[n.UID.Pointer()] = n
	}
	if err := strm.Close(); err != nil {
		return nil, err
	}

	memo := make(map[[2]uint64]ddcore.Pointer)
	perLevel := make(map[uint32]map[[2]uint64]uint64)
	nextID := make(map[uint32]uint64)
	nodesByLevel := make(map[uint32][]pendingNode)

	emit := func(level uint32, low, high ddcore.Pointer) ddcore.Pointer {
		key := [2]uint64{low.Bits(), high.Bits()}
		ids, ok := perLevel[level]
		if !ok {
			ids = make(map[[2]uint64]uint64)
			perLevel[level] = ids
		}
		// level always comes from an already-resolved pointer's own label.
		if id, ok := ids[key]; ok {
			uid, _ := ddcore.InternalUID(level, id)
			return uid.As(false)
		}
		id := nextID[level]
		nextID[level]++
		ids[key] = id
		nodesByLevel[level] = append(nodesByLevel[level], pendingNode{id: id, low: low, high: high})
		uid, _ := ddcore.InternalUID(level, id)
		return uid.As(false)
	}

	var transform func(p ddcore.Pointer, afterLevel uint32) ddcore.Pointer
	transform = func(p ddcore.Pointer, afterLevel uint32) ddcore.Pointer {
		if p.IsTerminal() {
			return policy.Terminal(p.Value(), afterLevel, a)
		}
		key := [2]uint64{p.Bits(), uint64(afterLevel)}
		if v, ok := memo[key]; ok {
			return v
		}
		level := p.Label()
		n := nodes[p]
		var step StepResult
		if value, ok := a.Fixed(level); ok {
			step = policy.Fix(n, value, level, a)
		} else {
			step = policy.KeepNode(n, level, a)
		}
		var result ddcore.Pointer
		if step.Forward {
			result = transform(step.Pointer, level)
		} else {
			result = emit(level, transform(step.Low, level), transform(step.High, level))
		}
		memo[key] = result
		return result
	}

	root := transform(f.Root(), 0)

	w, err := lfile.CreateArcFile()
	if err != nil {
		return nil, err
	}
	levels := f.Levels() // bottom-up; reversed below for ArcWriter's top-down order
	for i := len(levels) - 1; i >= 0; i-- {
		label := levels[i].Label
		pend := nodesByLevel[label]
		if len(pend) == 0 {
			continue
		}
		for _, pn := range pend {
			uid, _ := ddcore.InternalUID(label, pn.id) // label is copied from f's own levels
			if err := w.Push(ddcore.Arc{Source: uid.As(false), Target: pn.low}); err != nil {
				return nil, err
			}
			if err := w.Push(ddcore.Arc{Source: uid.As(true), Target: pn.high}); err != nil {
				return nil, err
			}
		}
		w.PushLevel(label, uint64(len(pend)))
		rec.LevelProcessed(label, uint64(len(pend)))
		rec.ArcsProduced(uint64(2 * len(pend)))
	}
	w.SetRoot(root)
	af, err := w.Close()
	if err != nil {
		return nil, err
	}
	return reduce.Run(af, reducePolicy, rec)
}
