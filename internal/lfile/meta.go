// Package lfile is the levelized file model: the on-disk
// representation of a diagram as a directory of fixed-named sub-streams plus
// a small metadata header, an owner-handle/borrowing-view lifetime split,
// and the node random-access buffer the sweeps use to look nodes up by uid.
//
// Every sweep in internal/{reduce,prod2,quantify,selectsweep,count,equality}
// reads and writes diagrams exclusively through this package; nothing above
// it touches a file descriptor directly.
package lfile

// Kind distinguishes a levelized file holding Node records (a finished,
// canonical diagram) from one holding Arc records (the raw output of a
// top-down sweep, before Reduce has run).
type Kind int

const (
	KindNode Kind = iota
	KindArc
)

func (k Kind) String() string {
	if k == KindArc {
		return "arc"
	}
	return "node"
}

// CutType distinguishes the four level-cut counts the planner (internal/
// planner) uses to size auxiliary structures: how many out-edges from a
// level point at another internal node; at an internal node or the false
// terminal; at an internal node or the true terminal; or anywhere.
type CutType int

const (
	CutInternal CutType = iota
	CutInternalFalse
	CutInternalTrue
	CutAll
	numCutTypes = 4
)

// LevelInfo is one level's entry in the "levels" sub-stream: the variable
// label and the number of records (nodes, or source-arcs) produced for that
// level.
type LevelInfo struct {
	Label uint32
	Width uint64
}

// Meta is the small aggregate header sealed into a levelized file's "meta"
// sub-stream once its writer is closed. It never grows with diagram size, so
// it is always read fully into memory.
type Meta struct {
	Version        uint32
	Kind           Kind
	Canonical      bool
	SemiTransposed bool
	Compressed     bool // arc sub-streams are zstd frames, not raw records

	Max1LevelCut      [numCutTypes]uint64
	Max2LevelCut      [numCutTypes]uint64
	NumberOfTerminals [2]uint64 // [false, true] terminal arc/request counts
	Width             uint64    // max LevelInfo.Width across all levels

	// Root holds the raw bit-encoding (ddcore.Pointer.Bits) of the diagram's
	// root pointer, which may itself name a terminal for a collapsed
	// diagram. Zero value only before a writer seals it.
	Root uint64
}

const metaVersion = 1
