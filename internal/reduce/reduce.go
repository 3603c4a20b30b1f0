// Package reduce implements the bottom-up Reduce sweep: it turns an arc
// file produced by a top-down construction (internal/prod2,
// internal/quantify, internal/build) into a canonical node file, applying
// Rule 1 (forward a source whose children collapse per the policy, instead
// of building a node for it) and Rule 2 (collapse sources at the same
// level whose children are identical after resolution into one canonical
// node) level by level, from the level nearest the terminals up to the
// root.
//
// This implementation resolves child pointers with a plain in-memory map
// from original arc-file pointer to final resolved pointer, rather than
// driving resolution through a levelized priority queue: the levelized
// invariant (a child's label always exceeds its parent's) guarantees every
// child referenced by the level currently being processed was already
// resolved by an earlier (deeper) step, so no cross-level queueing is
// needed for correctness. The source node triples themselves come off a
// single lfile.NodeArcStream pulled exactly levels[i].Width nodes at a
// time: since the stream is sorted bottom-up by source, one level's
// candidates are always a contiguous prefix of what's left, so Reduce
// never holds more than one level of the diagram in memory at once. See
// DESIGN.md.
package reduce

import (
	"fmt"
	"sort"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// Policy lets BDD and ZDD specialize Reduce's Rule 1 without duplicating
// the sweep, per the Design Note on dispatching by static policy types.
type Policy interface {
	// Skip reports whether a source whose children resolve to low and high
	// may forward directly to the returned pointer instead of having a
	// node built for it.
	Skip(low, high ddcore.Pointer) (ddcore.Pointer, bool)
}

// bddPolicy is Rule 1 for ordinary binary decision diagrams: a node whose
// two children are identical is redundant and forwards to that child.
type bddPolicy struct{}

func (bddPolicy) Skip(low, high ddcore.Pointer) (ddcore.Pointer, bool) {
	if low == high {
		return low, true
	}
	return ddcore.Pointer{}, false
}

// BDD is the shared BDD reduction policy.
var BDD Policy = bddPolicy{}

// zddPolicy is Rule 1 for zero-suppressed decision diagrams: a node whose
// high child is the false terminal contributes nothing (selecting that
// variable can never be part of a family member) and forwards to its low
// child instead.
type zddPolicy struct{}

func (zddPolicy) Skip(low, high ddcore.Pointer) (ddcore.Pointer, bool) {
	if high.IsTerminal() && !high.Value() {
		return low, true
	}
	return ddcore.Pointer{}, false
}

// ZDD is the shared ZDD reduction policy.
var ZDD Policy = zddPolicy{}

// Run consumes af (closing it) and returns the canonical node file it
// reduces to.
func Run(af *lfile.ArcFile, policy Policy, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if rec == nil {
		rec = ddstats.Noop
	}
	defer af.Close()

	nas, err := lfile.OpenNodeArcStream(af)
	if err != nil {
		return nil, err
	}
	defer nas.Close()

	levels := af.Levels() // top-down (root-first) storage order
	resolved := make(map[uint64]ddcore.Pointer)

	nw, err := lfile.CreateNodeFile()
	if err != nil {
		return nil, err
	}

	resolveChild := func(p ddcore.Pointer) ddcore.Pointer {
		if p.IsTerminal() || p.IsNil() {
			return p
		}
		r, ok := resolved[p.Bits()]
		if !ok {
			panic("reduce: child referenced before its level was processed")
		}
		return r
	}

	for i := len(levels) - 1; i >= 0; i-- {
		label := levels[i].Label
		levelWidth := levels[i].Width

		type candidate struct {
			srcBits   uint64
			low, high ddcore.Pointer
		}
		candidates := make([]candidate, 0, levelWidth)

		var pulled uint64
		for ; pulled < levelWidth; pulled++ {
			if !nas.CanPull() {
				return nil, fmt.Errorf("reduce: arc file exhausted mid-level %d", label)
			}
			n, _ := nas.Pull()
			if n.UID.Label() != label {
				return nil, fmt.Errorf("reduce: node-arc stream out of levelized order: want label %d, got %d", label, n.UID.Label())
			}
			low := resolveChild(n.Low)
			high := resolveChild(n.High)
			if target, skip := policy.Skip(low, high); skip {
				resolved[n.UID.Pointer().Bits()] = target
				continue
			}
			candidates = append(candidates, candidate{srcBits: n.UID.Pointer().Bits(), low: low, high: high})
		}

		sort.Slice(candidates, func(a, b int) bool {
			ca, cb := candidates[a], candidates[b]
			return ddcore.ChildrenLess(
				ddcore.Node{Low: ca.low, High: ca.high},
				ddcore.Node{Low: cb.low, High: cb.high},
			)
		})

		sameAsPrev := func(i int) bool {
			return i > 0 && ddcore.SameChildren(
				ddcore.Node{Low: candidates[i-1].low, High: candidates[i-1].high},
				ddcore.Node{Low: candidates[i].low, High: candidates[i].high},
			)
		}

		// First pass over the sorted candidates counts distinct groups so
		// ids can be assigned max_id-downward in a single further pass.
		width := uint64(0)
		for i := range candidates {
			if !sameAsPrev(i) {
				width++
			}
		}

		nextID := width
		for i, c := range candidates {
			if !sameAsPrev(i) {
				nextID--
				// label is the level currently being processed, already
				// checked against ddcore.MaxLabel when the arc file's
				// source sweep first constructed it.
				uid, _ := ddcore.InternalUID(label, nextID)
				if err := nw.Push(ddcore.Node{UID: uid, Low: c.low, High: c.high}); err != nil {
					return nil, err
				}
				rec.NodesProduced(1)
			}
			finalUID, _ := ddcore.InternalUID(label, nextID)
			resolved[c.srcBits] = finalUID.As(false)
		}
		nw.PushLevel(label)
		rec.LevelProcessed(label, pulled)
	}

	root := resolveChild(af.Root())
	return nw.Close(root, true)
}
