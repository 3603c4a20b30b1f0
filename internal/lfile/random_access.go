package lfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// NodeRandomAccess is the node random-access buffer: it
// loads one level of a canonical node file into memory at a time and
// answers O(1) lookups by uid or by the canonical index formula
// idx = width - (max_id + 1 - id). Callers open it directly; no
// execution-policy setting chooses between it and a priority queue.
//
// This implementation assigns ids 0..width-1 within a level (internal/reduce
// does this when it numbers a level), so max_id is always width-1 and the
// formula above reduces to idx == id; it is still computed the general way
// so a future numbering scheme that leaves gaps keeps working.
type NodeRandomAccess struct {
	f      *os.File
	levels []LevelInfo
	byLabel map[uint32]int
	starts []int64

	curLevel int
	buf      []ddcore.Node
	root     ddcore.Pointer
}

// OpenNodeRandomAccess buffers nothing until SetupNextLevel is first called.
func OpenNodeRandomAccess(nf *NodeFile) (*NodeRandomAccess, error) {
	f, err := os.Open(filepath.Join(nf.Dir(), "internal"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	levels := nf.Levels()
	starts := make([]int64, len(levels))
	byLabel := make(map[uint32]int, len(levels))
	var offset int64
	for i, lv := range levels {
		starts[i] = offset
		byLabel[lv.Label] = i
		offset += int64(lv.Width)
	}
	return &NodeRandomAccess{
		f:       f,
		levels:  levels,
		byLabel: byLabel,
		starts:  starts,
		curLevel: -1,
		root:    nf.Root(),
	}, nil
}

// HasNextLevel reports whether label names a level present in this file.
func (r *NodeRandomAccess) HasNextLevel(label uint32) bool {
	_, ok := r.byLabel[label]
	return ok
}

// SetupNextLevel loads label's level into the in-memory buffer, replacing
// whatever was buffered before. A level is stored on disk in descending id
// order, so it is placed into the buffer reversed: buffer index idx holds
// the node with id idx.
func (r *NodeRandomAccess) SetupNextLevel(label uint32) error {
	i, ok := r.byLabel[label]
	if !ok {
		return ddcore.ErrOutOfRange
	}
	width := r.levels[i].Width
	raw := make([]byte, nodeSize*int(width))
	if width > 0 {
		if _, err := r.f.ReadAt(raw, r.starts[i]*nodeSize); err != nil {
			return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
		}
	}
	buf := make([]ddcore.Node, width)
	for j := range buf {
		buf[len(buf)-1-j] = decodeNode(raw[j*nodeSize : (j+1)*nodeSize])
	}
	r.curLevel = i
	r.buf = buf
	return nil
}

// AtIdx returns the idx'th node of the currently buffered level.
func (r *NodeRandomAccess) AtIdx(idx uint64) ddcore.Node { return r.buf[idx] }

// At returns the node named by uid, which must belong to the currently
// buffered level.
func (r *NodeRandomAccess) At(uid ddcore.UID) ddcore.Node {
	width := uint64(len(r.buf))
	maxID := width - 1
	idx := width - (maxID + 1 - uid.ID())
	return r.buf[idx]
}

// Root returns the diagram's root pointer, independent of which level is
// currently buffered.
func (r *NodeRandomAccess) Root() ddcore.Pointer { return r.root }

// Close releases the underlying file descriptor.
func (r *NodeRandomAccess) Close() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return nil
}
