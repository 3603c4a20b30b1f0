package zdd

import (
	"fmt"
	"sort"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// changeSweep rebuilds z with one label's membership toggled in every set,
// in an in-memory recursive-evaluator style (see
// internal/quantify's sweep, which this mirrors): a node above v passes
// through with its children recursively changed, a node at v has its low
// and high swapped (toggling whether v is present from here down), and a
// node or terminal strictly below v (i.e. whose label exceeds v, or which
// is a terminal reached before v was ever branched on) means v has never
// been decided — every set reachable from here implicitly excludes it, so
// change must insert it explicitly: a new node at v whose low is the empty
// family (no set here excluded v before, so none may after) and whose high
// is the untouched continuation.
type changeSweep struct {
	nodes    map[ddcore.Pointer]ddcore.Node
	v        uint32
	memo     map[ddcore.Pointer]ddcore.Pointer
	perLevel map[uint32]map[[2]uint64]uint64
	pending  map[uint32][]pendingChangeNode
	nextID   map[uint32]uint64
}

type pendingChangeNode struct {
	id        uint64
	low, high ddcore.Pointer
}

func (s *changeSweep) emit(level uint32, low, high ddcore.Pointer) ddcore.Pointer {
	if high.IsTerminal() && !high.Value() {
		return low
	}
	key := [2]uint64{low.Bits(), high.Bits()}
	ids, ok := s.perLevel[level]
	if !ok {
		ids = make(map[[2]uint64]uint64)
		s.perLevel[level] = ids
	}
	// level is always s.v or a label read off an already-resolved pointer in
	// the source diagram, both validated before this sweep starts.
	if id, ok := ids[key]; ok {
		uid, _ := ddcore.InternalUID(level, id)
		return uid.As(false)
	}
	id := s.nextID[level]
	s.nextID[level]++
	ids[key] = id
	s.pending[level] = append(s.pending[level], pendingChangeNode{id: id, low: low, high: high})
	uid, _ := ddcore.InternalUID(level, id)
	return uid.As(false)
}

func (s *changeSweep) rec(p ddcore.Pointer) ddcore.Pointer {
	if p.IsInternal() && p.Label() < s.v {
		if v, ok := s.memo[p]; ok {
			return v
		}
		n := s.nodes[p]
		result := s.emit(p.Label(), s.rec(n.Low), s.rec(n.High))
		s.memo[p] = result
		return result
	}
	if p.IsInternal() && p.Label() == s.v {
		n := s.nodes[p]
		return s.emit(s.v, n.High, n.Low)
	}
	// p is terminal, or an internal node whose label exceeds v: v has never
	// been branched on along this path.
	return s.emit(s.v, ddcore.NewTerminal(false, false), p)
}

// Change is zdd_change restricted to a single variable; callers toggling
// several variables fold this across vars in ascending order (toggling is
// commutative, since each pass only ever touches nodes above the one it
// just introduced).
func Change(z ZDD, v uint32, rec ddstats.Recorder) (ZDD, error) {
	if rec == nil {
		rec = ddstats.Noop
	}
	if v > ddcore.MaxLabel {
		return ZDD{}, fmt.Errorf("zdd: %w: label %d exceeds MaxLabel", ddcore.ErrInvalidArgument, v)
	}
	s := &changeSweep{
		nodes:    make(map[ddcore.Pointer]ddcore.Node),
		v:        v,
		memo:     make(map[ddcore.Pointer]ddcore.Pointer),
		perLevel: make(map[uint32]map[[2]uint64]uint64),
		pending:  make(map[uint32][]pendingChangeNode),
		nextID:   make(map[uint32]uint64),
	}
	strm, err := z.nf.Stream()
	if err != nil {
		return ZDD{}, err
	}
	for strm.CanPull() {
		n, _ := strm.Pull()
		s.nodes[n.UID.Pointer()] = n
	}
	if err := strm.Close(); err != nil {
		return ZDD{}, err
	}

	root := s.rec(z.nf.Root())

	var levels []uint32
	for l := range s.pending {
		levels = append(levels, l)
	}
	sort.Sort(uint32SliceZ(levels)) // ascending label order is top-down (root-first)

	w, err := lfile.CreateArcFile()
	if err != nil {
		return ZDD{}, err
	}
	for _, l := range levels {
		pend := s.pending[l]
		for _, pn := range pend {
			uid, _ := ddcore.InternalUID(l, pn.id) // l is s.v or a label copied from the source diagram
			if err := w.Push(ddcore.Arc{Source: uid.As(false), Target: pn.low}); err != nil {
				return ZDD{}, err
			}
			if err := w.Push(ddcore.Arc{Source: uid.As(true), Target: pn.high}); err != nil {
				return ZDD{}, err
			}
		}
		w.PushLevel(l, uint64(len(pend)))
		rec.LevelProcessed(l, uint64(len(pend)))
		rec.ArcsProduced(uint64(2 * len(pend)))
	}
	w.SetRoot(root)
	af, err := w.Close()
	if err != nil {
		return ZDD{}, err
	}
	nf, err := reduce.Run(af, reduce.ZDD, rec)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// ChangeAll folds Change across every label in vs, in ascending order.
func ChangeAll(z ZDD, vs []uint32, rec ddstats.Recorder) (ZDD, error) {
	order := append([]uint32(nil), vs...)
	sort.Sort(uint32SliceZ(order))

	cur := z.Retain()
	for _, v := range order {
		next, err := Change(cur, v, rec)
		cur.Close()
		if err != nil {
			return ZDD{}, err
		}
		cur = next
	}
	return cur, nil
}

type uint32SliceZ []uint32

func (s uint32SliceZ) Len() int           { return len(s) }
func (s uint32SliceZ) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32SliceZ) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
