// Package equality implements diagram equality: a byte-wise
// canonical fast path, falling back to a simultaneous top-down sweep over
// both diagrams' random-access node files when either input isn't
// canonical.
package equality

import (
	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/lpq"
)

// FastPath attempts a byte-wise canonical comparison: both
// inputs canonical, identical level-info sequence, and an identical node
// stream modulo each pointer's negation flag (ddcore.Pointer.WithFlag). ok
// reports whether the fast path was applicable; it is false when at least
// one input is not canonical (or a stream cannot be opened), and callers
// must then fall back to SlowPath.
func FastPath(a, b *lfile.NodeFile) (equal bool, ok bool) {
	if !a.Meta().Canonical || !b.Meta().Canonical {
		return false, false
	}

	la, lb := a.Levels(), b.Levels()
	if len(la) != len(lb) {
		return false, true
	}
	for i := range la {
		if la[i] != lb[i] {
			return false, true
		}
	}

	sa, err := a.Stream()
	if err != nil {
		return false, false
	}
	defer sa.Close()
	sb, err := b.Stream()
	if err != nil {
		return false, false
	}
	defer sb.Close()

	for sa.CanPull() {
		if !sb.CanPull() {
			return false, true
		}
		na, _ := sa.Pull()
		nb, _ := sb.Pull()
		if na.UID != nb.UID {
			return false, true
		}
		if na.Low.WithFlag(false) != nb.Low.WithFlag(false) {
			return false, true
		}
		if na.High.WithFlag(false) != nb.High.WithFlag(false) {
			return false, true
		}
	}
	if sb.CanPull() {
		return false, true
	}

	return a.Root().WithFlag(false) == b.Root().WithFlag(false), true
}

type reqPair struct{ l, r ddcore.Pointer }

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

// SlowPath runs the fallback: corresponding nodes are paired via
// a levelized queue of (left, right) requests, expanding top-down from the
// two roots. A pair whose sides sit at different levels, or whose left (or
// right) side is already paired with a different counterpart elsewhere in
// the diagram, refutes equality immediately.
func SlowPath(a, b *lfile.NodeFile, rec ddstats.Recorder) (bool, error) {
	if rec == nil {
		rec = ddstats.Noop
	}

	la, err := lfile.OpenNodeRandomAccess(a)
	if err != nil {
		return false, err
	}
	defer la.Close()
	ra, err := lfile.OpenNodeRandomAccess(b)
	if err != nil {
		return false, err
	}
	defer ra.Close()

	q := lpq.NewUnbucketed[reqPair](pairLess)
	seen := make(map[reqPair]bool)
	pairedRight := make(map[uint64]uint64) // left pointer bits -> the one right it may pair with
	pairedLeft := make(map[uint64]uint64)  // right pointer bits -> the one left it may pair with

	equal := true

	enqueue := func(l, r ddcore.Pointer) {
		if !equal {
			return
		}
		if l.IsTerminal() != r.IsTerminal() {
			equal = false
			return
		}
		if l.IsTerminal() {
			if l.Value() != r.Value() {
				equal = false
			}
			return
		}
		if l.Label() != r.Label() {
			equal = false
			return
		}
		if prev, ok := pairedRight[l.Bits()]; ok && prev != r.Bits() {
			equal = false
			return
		}
		if prev, ok := pairedLeft[r.Bits()]; ok && prev != l.Bits() {
			equal = false
			return
		}
		pairedRight[l.Bits()] = r.Bits()
		pairedLeft[r.Bits()] = l.Bits()

		pair := reqPair{l, r}
		if seen[pair] {
			return
		}
		seen[pair] = true
		if err := q.Push(pair, l.Label()); err != nil {
			panic(err) // Unbucketed.Push never fails
		}
	}

	enqueue(a.Root(), b.Root())

	var (
		curLevel  uint32
		haveLevel bool
		laLoaded  bool
		raLoaded  bool
	)

	for equal && q.CanPull() {
		pair, _ := q.Pull()
		level := minLevel(pair)
		if !haveLevel || level != curLevel {
			curLevel, haveLevel = level, true
			laLoaded, raLoaded = false, false
		}
		if !laLoaded && la.HasNextLevel(level) {
			if err := la.SetupNextLevel(level); err != nil {
				return false, err
			}
			laLoaded = true
		}
		if !raLoaded && ra.HasNextLevel(level) {
			if err := ra.SetupNextLevel(level); err != nil {
				return false, err
			}
			raLoaded = true
		}

		nl := la.At(ddcore.NewUID(pair.l))
		nr := ra.At(ddcore.NewUID(pair.r))
		enqueue(nl.Low, nr.Low)
		enqueue(nl.High, nr.High)
		rec.LPQPull()
	}

	return equal, nil
}

// Equal tries FastPath first and falls back to SlowPath only when at least
// one input is not canonical.
func Equal(a, b *lfile.NodeFile, rec ddstats.Recorder) (bool, error) {
	if equal, ok := FastPath(a, b); ok {
		return equal, nil
	}
	return SlowPath(a, b, rec)
}
