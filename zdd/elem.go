package zdd

import (
	"sort"

	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// walkElem follows a single root-to-terminal path through z, at each
// internal node choosing the branch preferLow names when that branch is
// feasible (its subtree is not the empty family) and the other branch
// otherwise, collecting every label taken along the way.
//
// MinElem wants preferLow=true: under the `x0 > x1 > …` ordering,
// excluding the most significant still-available variable whenever
// possible yields the lexicographically smallest member.  MaxElem wants
// preferLow=false, the symmetric rule for the largest member.
func walkElem(z ZDD, preferLow bool) ([]uint32, error) {
	ra, err := lfile.OpenNodeRandomAccess(z.nf)
	if err != nil {
		return nil, err
	}
	defer ra.Close()

	isEmpty := func(p ddcore.Pointer) bool { return p.IsTerminal() && !p.Value() }

	var labels []uint32
	p := z.nf.Root()
	for p.IsInternal() {
		if err := ra.SetupNextLevel(p.Label()); err != nil {
			return nil, err
		}
		n := ra.At(ddcore.NewUID(p))
		if preferLow {
			if !isEmpty(n.Low) {
				p = n.Low
				continue
			}
			labels = append(labels, p.Label())
			p = n.High
			continue
		}
		if !isEmpty(n.High) {
			labels = append(labels, p.Label())
			p = n.High
			continue
		}
		p = n.Low
	}
	if !p.Value() {
		return nil, ddcore.ErrInvalidArgument
	}
	return labels, nil
}

// elemZDD rebuilds the single chain of labels (already ascending) as its
// own ZDD, the {a} family minelem/maxelem return.
func elemZDD(labels []uint32) (ZDD, error) {
	w, err := lfile.CreateNodeFile()
	if err != nil {
		return ZDD{}, err
	}
	next := ddcore.NewTerminal(true, false)
	for i := len(labels) - 1; i >= 0; i-- {
		uid, err := ddcore.InternalUID(labels[i], 0)
		if err != nil {
			return ZDD{}, err
		}
		if err := w.Push(ddcore.Node{UID: uid, Low: ddcore.NewTerminal(false, false), High: next}); err != nil {
			return ZDD{}, err
		}
		w.PushLevel(labels[i])
		next = uid.As(false)
	}
	nf, err := w.Close(next, true)
	if err != nil {
		return ZDD{}, err
	}
	return wrap(nf), nil
}

// MinElem is zdd_minelem: the ZDD containing only A's lexicographically
// smallest member (taking x0 > x1 > …). Returns
// ddcore.ErrInvalidArgument if A is the empty family.
func MinElem(z ZDD) (ZDD, error) {
	labels, err := walkElem(z, true)
	if err != nil {
		return ZDD{}, err
	}
	return elemZDD(labels)
}

// MaxElem is zdd_maxelem: the ZDD containing only A's lexicographically
// largest member.
func MaxElem(z ZDD) (ZDD, error) {
	labels, err := walkElem(z, false)
	if err != nil {
		return ZDD{}, err
	}
	return elemZDD(labels)
}

// Contains is zdd_contains: reports whether set (given in ascending label
// order) is a member of z. A node's level exceeding set's next pending
// label means that variable is forced absent from every member reachable
// from here, so requiring it fails immediately.
func Contains(z ZDD, set []uint32) (bool, error) {
	sorted := append([]uint32(nil), set...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	ra, err := lfile.OpenNodeRandomAccess(z.nf)
	if err != nil {
		return false, err
	}
	defer ra.Close()

	p := z.nf.Root()
	i := 0
	for p.IsInternal() {
		label := p.Label()
		if err := ra.SetupNextLevel(label); err != nil {
			return false, err
		}
		n := ra.At(ddcore.NewUID(p))
		if i < len(sorted) && sorted[i] == label {
			p = n.High
			i++
			continue
		}
		if i < len(sorted) && sorted[i] < label {
			return false, nil
		}
		p = n.Low
	}
	return p.Value() && i == len(sorted), nil
}
