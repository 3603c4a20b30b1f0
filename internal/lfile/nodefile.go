package lfile

import (
	"path/filepath"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// NodeStream reads Node records from a NodeFile's "internal" sub-stream,
// either in storage order (Stream) or root-first order (TopDownStream).
type NodeStream = recordStream[ddcore.Node]

// NodeWriter builds a canonical node file one level at a time. Reduce is the
// only algorithm that constructs one directly; every other component
// receives a *NodeFile from Reduce's output.
//
// Levels are pushed bottom-up (the level nearest the terminals first, the
// root's level last) because that is the order Reduce naturally produces
// them in; NodeFile.TopDownStream reverses the level order at read time
// (while preserving each level's own descending-id order) so consumers that
// want root-first iteration do not need Reduce itself to buffer anything.
type NodeWriter struct {
	handle *Handle
	rec    *recordWriter[ddcore.Node]
	cut    cutAccumulator

	levels        []LevelInfo
	curLevelCount uint64
	maxWidth      uint64
	numTerminals  [2]uint64
	closed        bool
}

// CreateNodeFile allocates a fresh backing directory and opens its "internal"
// sub-stream for writing.
func CreateNodeFile() (*NodeWriter, error) {
	dir, err := newTempDir("node")
	if err != nil {
		return nil, err
	}
	rec, err := createRecordWriter[ddcore.Node](filepath.Join(dir, "internal"), nodeSize, encodeNode)
	if err != nil {
		return nil, err
	}
	return &NodeWriter{handle: newHandle(dir), rec: rec}, nil
}

// Push appends one node to the current level. Nodes within a level must be
// pushed in descending (High, Low) order to satisfy the canonical node file
// invariant.
func (w *NodeWriter) Push(n ddcore.Node) error {
	w.curLevelCount++
	w.cut.observeChild(n.Low)
	w.cut.observeChild(n.High)
	return w.rec.Push(n)
}

// PushLevel seals the level just written under the given label and opens
// accounting for the next one. Call once per level, in the writer's
// bottom-up order.
func (w *NodeWriter) PushLevel(label uint32) {
	width := w.curLevelCount
	w.levels = append(w.levels, LevelInfo{Label: label, Width: width})
	if width > w.maxWidth {
		w.maxWidth = width
	}
	w.curLevelCount = 0
	w.cut.finishLevel()
}

// Close seals the file with its root pointer and canonicity flag, returning
// a read handle. root may itself be a terminal pointer for a diagram that
// collapsed entirely.
func (w *NodeWriter) Close(root ddcore.Pointer, canonical bool) (*NodeFile, error) {
	if w.closed {
		return nil, ddcore.ErrInvalidArgument
	}
	w.closed = true
	w.cut.finishLevel()
	if err := w.rec.Close(); err != nil {
		return nil, err
	}
	if err := writeLevels(w.handle.Dir(), w.levels); err != nil {
		return nil, err
	}
	meta := Meta{
		Version:      metaVersion,
		Kind:         KindNode,
		Canonical:    canonical,
		Max1LevelCut: w.cut.max1,
		Max2LevelCut: w.cut.max2,
		Width:        w.maxWidth,
		Root:         root.Bits(),
	}
	if err := writeMeta(w.handle.Dir(), meta); err != nil {
		return nil, err
	}
	return &NodeFile{handle: w.handle, meta: meta, levels: w.levels}, nil
}

// NodeFile is a read-only view of a sealed node file.
type NodeFile struct {
	handle *Handle
	meta   Meta
	levels []LevelInfo // bottom-up storage order
}

// OpenNodeFile reopens a previously sealed node file's directory.
func OpenNodeFile(dir string) (*NodeFile, error) {
	meta, err := readMeta(dir)
	if err != nil {
		return nil, err
	}
	levels, err := readLevels(dir)
	if err != nil {
		return nil, err
	}
	return &NodeFile{handle: newHandle(dir), meta: meta, levels: levels}, nil
}

// Meta returns the file's sealed metadata.
func (f *NodeFile) Meta() Meta { return f.meta }

// Levels returns level info in bottom-up (storage) order.
func (f *NodeFile) Levels() []LevelInfo {
	out := make([]LevelInfo, len(f.levels))
	copy(out, f.levels)
	return out
}

// Root returns the diagram's root pointer.
func (f *NodeFile) Root() ddcore.Pointer { return ddcore.FromBits(f.meta.Root) }

// Retain returns a second owning reference to the same backing file.
func (f *NodeFile) Retain() *NodeFile {
	f.handle.Acquire()
	return f
}

// Close releases this reference; the backing directory is removed once the
// last reference is closed.
func (f *NodeFile) Close() error { return f.handle.Close() }

// Dir exposes the backing directory, for NodeRandomAccess and tests.
func (f *NodeFile) Dir() string { return f.handle.Dir() }

// Stream reads nodes in storage (bottom-up) order — the order Reduce and
// the counting sweep want to consume a node file in.
func (f *NodeFile) Stream() (*NodeStream, error) {
	return openRecordStream[ddcore.Node](filepath.Join(f.handle.Dir(), "internal"), nodeSize, decodeNode)
}

// TopDownStream reads nodes root-first: level chunks are visited in reverse
// of storage order, but each chunk's own (already descending-id) order is
// preserved, so equality's fast path and any diagram-printing code see the
// canonical root-to-terminal traversal order.
func (f *NodeFile) TopDownStream() (*NodeStream, error) {
	s, err := openRecordStream[ddcore.Node](filepath.Join(f.handle.Dir(), "internal"), nodeSize, decodeNode)
	if err != nil {
		return nil, err
	}
	starts := make([]int64, len(f.levels))
	var offset int64
	for i, lv := range f.levels {
		starts[i] = offset
		offset += int64(lv.Width)
	}
	order := make([]int64, 0, offset)
	for i := len(f.levels) - 1; i >= 0; i-- {
		for j := int64(0); j < int64(f.levels[i].Width); j++ {
			order = append(order, starts[i]+j)
		}
	}
	return s.withOrder(order), nil
}
