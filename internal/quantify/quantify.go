// Package quantify implements BDD existential/universal quantification:
// eliminating one or more variables from a diagram by
// combining each eliminated node's two children with a Boolean combinator
// (Or for exists, And for forall).
//
// Unlike internal/reduce and internal/prod2, this package processes its
// input fully in memory rather than as an external-memory stream: once a
// node file's contents are loaded, a recursive, memoized-evaluator style
// is the natural fit for "rebuild every node above the eliminated variable,
// combine every node at it" — see DESIGN.md for why this trades the
// project's usual streaming discipline for a simpler, still-correct
// implementation here specifically.
package quantify

import (
	"sort"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// BoolOp combines two cofactors' quantified results.
type BoolOp func(a, b bool) bool

var (
	// Exists is or_op, the combinator bdd_exists eliminates a variable with.
	Exists BoolOp = func(a, b bool) bool { return a || b }
	// Forall is and_op, the combinator bdd_forall eliminates a variable with.
	Forall BoolOp = func(a, b bool) bool { return a && b }
)

// Singleton eliminates one variable.
func Singleton(f *lfile.NodeFile, label uint32, op BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	return sweep(f, map[uint32]bool{label: true}, op, rec)
}

// Nested eliminates every label in labels in one fused pass: a node above
// several target labels is rebuilt once, with every eliminated level along
// the way combined during the same recursive walk, rather than rebuilding
// the whole diagram once per variable the way Partial does.
func Nested(f *lfile.NodeFile, labels []uint32, op BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if len(labels) == 0 {
		return f.Retain(), nil
	}
	set := make(map[uint32]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return sweep(f, set, op, rec)
}

// Partial eliminates every label in labels one at a time, deepest first (so
// each subsequent pass starts from an already-shrunk diagram).
func Partial(f *lfile.NodeFile, labels []uint32, op BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if len(labels) == 0 {
		return f.Retain(), nil
	}
	order := append([]uint32(nil), labels...)
	sort.Sort(sort.Reverse(uint32Slice(order)))

	cur, err := Singleton(f, order[0], op, rec)
	if err != nil {
		return nil, err
	}
	for _, label := range order[1:] {
		next, err := Singleton(cur, label, op, rec)
		cur.Close()
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Auto picks Nested when eliminating more than one variable (so the
// rebuild amortizes across every target label) and Singleton for zero or
// one, standing in for this operation's execution-policy Auto default —
// see DESIGN.md's Open Question decisions.
func Auto(f *lfile.NodeFile, labels []uint32, op BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if len(labels) <= 1 {
		if len(labels) == 0 {
			return f.Retain(), nil
		}
		return Singleton(f, labels[0], op, rec)
	}
	return Nested(f, labels, op, rec)
}

type uint32Slice []uint32

func (s uint32Slice) Len() int           { return len(s) }
func (s uint32Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

type pendingNode struct {
	id        uint64
	low, high ddcore.Pointer
}

// sweep is shared by Singleton and Nested: labels names every variable to
// eliminate in this one pass.
type quantifySweep struct {
	nodes         map[ddcore.Pointer]ddcore.Node
	labels        map[uint32]bool
	maxLabel      uint32
	op            BoolOp
	transformMemo map[ddcore.Pointer]ddcore.Pointer
	resolveMemo   map[[2]uint64]ddcore.Pointer
	perLevel      map[uint32]map[[2]uint64]uint64
	nodesByLevel  map[uint32][]pendingNode
	nextID        map[uint32]uint64
}

func minLabel(a, b ddcore.Pointer) uint32 {
	al, bl := labelOrInf(a), labelOrInf(b)
	if al < bl {
		return al
	}
	return bl
}

func labelOrInf(p ddcore.Pointer) uint32 {
	if p.IsInternal() {
		return p.Label()
	}
	return ddcore.MaxLabel + 1
}

// emit records a new synthetic node at level, deduplicating repeated
// (low, high) pairs within the level and collapsing low == high away
// entirely (BDD Rule 1), so the reduce.Run pass that follows mostly just
// has to sort and renumber rather than rediscover these collapses itself.
func (s *quantifySweep) emit(level uint32, low, high ddcore.Pointer) ddcore.Pointer {
	if low == high {
		return low
	}
	key := [2]uint64{low.Bits(), high.Bits()}
	ids, ok := s.perLevel[level]
	if !ok {
		ids = make(map[[2]uint64]uint64)
		s.perLevel[level] = ids
	}
	// level always comes from an already-resolved pointer's own label.
	if id, ok := ids[key]; ok {
		uid, _ := ddcore.InternalUID(level, id)
		return uid.As(false)
	}
	id := s.nextID[level]
	s.nextID[level]++
	ids[key] = id
	s.nodesByLevel[level] = append(s.nodesByLevel[level], pendingNode{id: id, low: low, high: high})
	uid, _ := ddcore.InternalUID(level, id)
	return uid.As(false)
}

// resolve combines l and r with op, recursing level by level the way
// internal/prod2 does, but over one shared in-memory node set instead of
// two separate random-access files.
func (s *quantifySweep) resolve(l, r ddcore.Pointer) ddcore.Pointer {
	if l.IsTerminal() && r.IsTerminal() {
		return ddcore.NewTerminal(s.op(l.Value(), r.Value()), false)
	}
	key := [2]uint64{l.Bits(), r.Bits()}
	if v, ok := s.resolveMemo[key]; ok {
		return v
	}

	level := minLabel(l, r)
	lowL, highL := l, l
	if l.IsInternal() && l.Label() == level {
		n := s.nodes[ddcore.NewUID(l).Pointer()]
		lowL, highL = n.Low, n.High
	}
	lowR, highR := r, r
	if r.IsInternal() && r.Label() == level {
		n := s.nodes[ddcore.NewUID(r).Pointer()]
		lowR, highR = n.Low, n.High
	}

	result := s.emit(level, s.resolve(lowL, lowR), s.resolve(highL, highR))
	s.resolveMemo[key] = result
	return result
}

// transform rebuilds p with its children substituted: nodes above every
// target label are recreated unchanged but pointing at transformed
// children; a node at a target label is replaced by resolve's combination
// of its own children; nodes below every target label pass through as-is.
func (s *quantifySweep) transform(p ddcore.Pointer) ddcore.Pointer {
	if p.IsTerminal() {
		return p
	}
	if p.Label() > s.maxLabel {
		return p
	}
	if v, ok := s.transformMemo[p]; ok {
		return v
	}
	n := s.nodes[p]
	var result ddcore.Pointer
	if s.labels[p.Label()] {
		result = s.resolve(n.Low, n.High)
	} else {
		result = s.emit(p.Label(), s.transform(n.Low), s.transform(n.High))
	}
	s.transformMemo[p] = result
	return result
}

func sweep(f *lfile.NodeFile, labels map[uint32]bool, op BoolOp, rec ddstats.Recorder) (*lfile.NodeFile, error) {
	if rec == nil {
		rec = ddstats.Noop
	}

	// NodeFile.Levels reports bottom-up (terminal-nearest first) storage
	// order; ArcWriter.PushLevel wants top-down (root first), so the levels
	// this sweep walks for its output phase are reversed here once.
	bottomUp := f.Levels()
	levels := make([]lfile.LevelInfo, len(bottomUp))
	for i, lv := range bottomUp {
		levels[len(bottomUp)-1-i] = lv
	}
	present := false
	for _, lv := range levels {
		if labels[lv.Label] {
			present = true
			break
		}
	}
	if !present {
		return f.Retain(), nil
	}

	var maxLabel uint32
	for l := range labels {
		if l > maxLabel {
			maxLabel = l
		}
	}

	s := &quantifySweep{
		nodes:         make(map[ddcore.Pointer]ddcore.Node),
		labels:        labels,
		maxLabel:      maxLabel,
		op:            op,
		transformMemo: make(map[ddcore.Pointer]ddcore.Pointer),
		resolveMemo:   make(map[[2]uint64]ddcore.Pointer),
		perLevel:      make(map[uint32]map[[2]uint64]uint64),
		nodesByLevel:  make(map[uint32][]pendingNode),
		nextID:        make(map[uint32]uint64),
	}

	strm, err := f.Stream()
	if err != nil {
		return nil, err
	}
	for strm.CanPull() {
		n, _ := strm.Pull()
		s.nodes[n.UID.Pointer()] = n
	}
	if err := strm.Close(); err != nil {
		return nil, err
	}

	root := s.transform(f.Root())

	w, err := lfile.CreateArcFile()
	if err != nil {
		return nil, err
	}
	for _, lv := range levels {
		if labels[lv.Label] {
			continue // spliced away entirely by resolve
		}
		pend := s.nodesByLevel[lv.Label]
		if len(pend) == 0 {
			continue
		}
		for _, pn := range pend {
			uid, _ := ddcore.InternalUID(lv.Label, pn.id) // lv.Label is copied from f's own levels
			if err := w.Push(ddcore.Arc{Source: uid.As(false), Target: pn.low}); err != nil {
				return nil, err
			}
			if err := w.Push(ddcore.Arc{Source: uid.As(true), Target: pn.high}); err != nil {
				return nil, err
			}
		}
		w.PushLevel(lv.Label, uint64(len(pend)))
		rec.LevelProcessed(lv.Label, uint64(len(pend)))
		rec.ArcsProduced(uint64(2 * len(pend)))
	}
	w.SetRoot(root)
	af, err := w.Close()
	if err != nil {
		return nil, err
	}
	return reduce.Run(af, reduce.BDD, rec)
}
