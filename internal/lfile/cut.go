package lfile

import "github.com/zzenonn/go-dd/internal/ddcore"

// cutAccumulator tracks, while a writer is appending records level by level,
// the running per-level and per-two-level edge counts the planner uses to
// bound priority-queue and random-access buffer sizes.
//
// The two-level figure is approximated as the sum of the current and
// previous level's one-level cuts rather than a true count of edges
// skipping two levels; see DESIGN.md.
type cutAccumulator struct {
	curLevel  [numCutTypes]uint64
	prevLevel [numCutTypes]uint64
	max1      [numCutTypes]uint64
	max2      [numCutTypes]uint64
}

// observeChild records one out-edge target, bumping whichever cut buckets it
// belongs to.
func (c *cutAccumulator) observeChild(p ddcore.Pointer) {
	switch {
	case p.IsInternal():
		c.curLevel[CutInternal]++
		c.curLevel[CutInternalFalse]++
		c.curLevel[CutInternalTrue]++
		c.curLevel[CutAll]++
	case p.IsTerminal():
		if p.Value() {
			c.curLevel[CutInternalTrue]++
		} else {
			c.curLevel[CutInternalFalse]++
		}
		c.curLevel[CutAll]++
	}
}

// finishLevel folds the current level's counts into the running maxima and
// rolls curLevel into prevLevel. Must be called once per level, including
// after the last one, before reading max1/max2.
func (c *cutAccumulator) finishLevel() {
	for i := 0; i < numCutTypes; i++ {
		if c.curLevel[i] > c.max1[i] {
			c.max1[i] = c.curLevel[i]
		}
		two := c.curLevel[i] + c.prevLevel[i]
		if two > c.max2[i] {
			c.max2[i] = two
		}
	}
	c.prevLevel = c.curLevel
	c.curLevel = [numCutTypes]uint64{}
}
