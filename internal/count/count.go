// Package count implements satcount/pathcount/size: a
// bottom-up sweep computing, for every node, a value over a Semiring,
// using a one-level-back cache that only ever holds the most recently
// finished level's values, the shape a levelized on-disk node file
// naturally supports.
package count

import (
	"math"
	"math/big"
	"sort"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/domain"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// Semiring is the value domain a counting sweep accumulates over: a
// terminal's contribution, how two children combine (addition, for
// solution counting), and how a value is scaled across variables the
// sweep skips over (multiplication by 2^skip, the "don't care" factor
// domain-size accounting for satcount needs).
type Semiring[T any] interface {
	Terminal(value bool) T
	Combine(low, high T) T
	Lift(v T, skip uint64) T
}

// Int64Semiring counts solutions as a plain 64-bit integer. Overflows
// silently on diagrams with more than 2^63 solutions; BigIntSemiring is the
// unbounded alternative.
type Int64Semiring struct{}

func (Int64Semiring) Terminal(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func (Int64Semiring) Combine(low, high int64) int64 { return low + high }

func (Int64Semiring) Lift(v int64, skip uint64) int64 {
	return v << skip
}

// BigIntSemiring counts solutions as an arbitrary-precision integer. Every
// method returns a freshly allocated *big.Int; none mutates its arguments,
// since the sweep's one-level-back cache keeps a value alive across
// multiple parents that each lift it by a different skip.
type BigIntSemiring struct{}

func (BigIntSemiring) Terminal(value bool) *big.Int {
	if value {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

func (BigIntSemiring) Combine(low, high *big.Int) *big.Int {
	return new(big.Int).Add(low, high)
}

func (BigIntSemiring) Lift(v *big.Int, skip uint64) *big.Int {
	return new(big.Int).Lsh(v, uint(skip))
}

// Float64Semiring counts solutions (or any other additive quantity) as a
// floating-point value, for objectives expressed as float64.
type Float64Semiring struct{}

func (Float64Semiring) Terminal(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

func (Float64Semiring) Combine(low, high float64) float64 { return low + high }

func (Float64Semiring) Lift(v float64, skip uint64) float64 {
	return v * math.Pow(2, float64(skip))
}

// Size computes the plain "size"/"pathcount": the sum, over every
// terminal reachable from the root, of sr.Terminal, with no domain-size
// skip accounting (every level actually present in the diagram contributes
// exactly once; missing variables are not factored in).
func Size[T any](f *lfile.NodeFile, sr Semiring[T], rec ddstats.Recorder) (T, error) {
	if rec == nil {
		rec = ddstats.Noop
	}
	var zero T

	cur := make(map[uint64]T)
	strm, err := f.Stream()
	if err != nil {
		return zero, err
	}
	for _, lv := range f.Levels() {
		next := make(map[uint64]T, lv.Width)
		for i := uint64(0); i < lv.Width; i++ {
			n, ok := strm.Pull()
			if !ok {
				return zero, ddcore.ErrIO
			}
			low := plainChild(n.Low, cur, sr)
			high := plainChild(n.High, cur, sr)
			next[n.UID.Pointer().Bits()] = sr.Combine(low, high)
		}
		cur = next
		rec.LevelProcessed(lv.Label, lv.Width)
	}
	if err := strm.Close(); err != nil {
		return zero, err
	}

	root := f.Root()
	if root.IsTerminal() {
		return sr.Terminal(root.Value()), nil
	}
	return cur[root.Bits()], nil
}

func plainChild[T any](p ddcore.Pointer, cur map[uint64]T, sr Semiring[T]) T {
	if p.IsTerminal() {
		return sr.Terminal(p.Value())
	}
	return cur[p.Bits()]
}

// SatCount computes the domain-aware satcount: like Size, but every
// gap between a node's level and its resolved child's level (or the end of
// the domain, for a terminal child, or the domain's start, for the root) is
// factored in via Lift, so a BDD missing a variable counts that variable's
// both assignments rather than silently dropping it. Returns
// ddcore.ErrDomainUnset if no domain is installed (domain.Set).
func SatCount[T any](f *lfile.NodeFile, sr Semiring[T], rec ddstats.Recorder) (T, error) {
	if rec == nil {
		rec = ddstats.Noop
	}
	var zero T

	dctx, err := domain.Get()
	if err != nil {
		return zero, err
	}
	gaps := domainGaps{labels: dctx.Labels()}

	cur := make(map[uint64]T)
	strm, err := f.Stream()
	if err != nil {
		return zero, err
	}
	for _, lv := range f.Levels() {
		next := make(map[uint64]T, lv.Width)
		for i := uint64(0); i < lv.Width; i++ {
			n, ok := strm.Pull()
			if !ok {
				return zero, ddcore.ErrIO
			}
			low := liftChild(n.Low, lv.Label, cur, sr, gaps)
			high := liftChild(n.High, lv.Label, cur, sr, gaps)
			next[n.UID.Pointer().Bits()] = sr.Combine(low, high)
		}
		cur = next
		rec.LevelProcessed(lv.Label, lv.Width)
	}
	if err := strm.Close(); err != nil {
		return zero, err
	}

	root := f.Root()
	if root.IsTerminal() {
		return sr.Lift(sr.Terminal(root.Value()), uint64(len(gaps.labels))), nil
	}
	return sr.Lift(cur[root.Bits()], gaps.before(root.Label())), nil
}

func liftChild[T any](p ddcore.Pointer, parentLabel uint32, cur map[uint64]T, sr Semiring[T], gaps domainGaps) T {
	if p.IsTerminal() {
		return sr.Lift(sr.Terminal(p.Value()), gaps.after(parentLabel))
	}
	return sr.Lift(cur[p.Bits()], gaps.between(parentLabel, p.Label()))
}

// domainGaps answers "how many domain variables lie strictly in this range"
// queries by binary search over the domain's ascending label list.
type domainGaps struct {
	labels []uint32
}

// countLE returns the number of domain labels <= x.
func (g domainGaps) countLE(x uint32) int {
	return sort.Search(len(g.labels), func(i int) bool { return g.labels[i] > x })
}

// after returns the number of domain labels strictly greater than label.
func (g domainGaps) after(label uint32) uint64 {
	return uint64(len(g.labels) - g.countLE(label))
}

// before returns the number of domain labels strictly less than label.
func (g domainGaps) before(label uint32) uint64 {
	if label == 0 {
		return 0
	}
	return uint64(g.countLE(label - 1))
}

// between returns the number of domain labels strictly between parent and
// child (both exclusive); callers guarantee parent < child.
func (g domainGaps) between(parent, child uint32) uint64 {
	return g.before(child) - uint64(g.countLE(parent))
}
