package count

import (
	"math"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// Optimal computes the minimum-cost family member, where costs[label] is
// the cost of selecting label's variable (0 for every variable not
// selected). It walks a node-file sweep, returning both the minimum cost and
// the sorted labels of the winning member.
//
// Unlike Size/SatCount, Optimal keeps every node's resolved cost in memory
// rather than a one-level-back cache: reconstructing the winning path
// needs random access back into levels the forward sweep already finished,
// which a single discarded-per-level cache cannot provide.
func Optimal(f *lfile.NodeFile, costs []float64, rec ddstats.Recorder) (float64, []uint32, error) {
	if rec == nil {
		rec = ddstats.Noop
	}

	nodes := make(map[uint64]ddcore.Node)
	bestCost := make(map[uint64]float64)

	strm, err := f.Stream()
	if err != nil {
		return 0, nil, err
	}
	for _, lv := range f.Levels() {
		if int(lv.Label) >= len(costs) {
			strm.Close()
			return 0, nil, ddcore.ErrInvalidArgument
		}
		for i := uint64(0); i < lv.Width; i++ {
			n, ok := strm.Pull()
			if !ok {
				strm.Close()
				return 0, nil, ddcore.ErrIO
			}
			bits := n.UID.Pointer().Bits()
			nodes[bits] = n

			low := terminalOrLookup(n.Low, bestCost)
			high := terminalOrLookup(n.High, bestCost) + costs[lv.Label]
			v := low
			if high < v {
				v = high
			}
			bestCost[bits] = v
		}
		rec.LevelProcessed(lv.Label, lv.Width)
	}
	if err := strm.Close(); err != nil {
		return 0, nil, err
	}

	root := f.Root()
	total := terminalOrLookup(root, bestCost)

	var labels []uint32
	cur := root
	for cur.IsInternal() {
		n := nodes[cur.Bits()]
		low := terminalOrLookup(n.Low, bestCost)
		high := terminalOrLookup(n.High, bestCost) + costs[cur.Label()]
		if high < low {
			labels = append(labels, cur.Label())
			cur = n.High
		} else {
			cur = n.Low
		}
	}
	return total, labels, nil
}

func terminalOrLookup(p ddcore.Pointer, bestCost map[uint64]float64) float64 {
	if p.IsTerminal() {
		if p.Value() {
			return 0
		}
		return math.Inf(1)
	}
	return bestCost[p.Bits()]
}
