package lfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/sorter"
)

// nodeArcRunSize bounds how many arcs OpenNodeArcStream buffers in memory
// per sorted run before spilling, the same figure internal/lpq's bucketed
// queue defaults to for the same reason: large enough that small diagrams
// never touch disk, small enough that a run's buffer is not itself a
// whole-diagram load.
const nodeArcRunSize = 1 << 16

// arcSubStreamNames lists an arc file's three on-disk sub-streams, the set
// WithCompression compresses (or decompresses on open) as a unit.
var arcSubStreamNames = [...]string{"internal", "terminals_in_order", "terminals_out_of_order"}

// ArcFileOption configures CreateArcFile.
type ArcFileOption func(*ArcWriter)

// WithCompression zstd-compresses an arc file's sub-streams once its writer
// closes, and transparently decompresses them (to an unlinked temp file
// kept open only for the reader's lifetime) whenever a stream is opened.
// Arc files are the transient intermediate data a top-down sweep hands to
// Reduce — unlike NodeFile, nothing ever seeks into them by offset, so
// compressing the whole sub-stream as one frame costs nothing but the
// encode/decode pass.
func WithCompression() ArcFileOption {
	return func(w *ArcWriter) { w.compressed = true }
}

// ArcStream reads Arc records from one of an ArcFile's sub-streams.
type ArcStream = recordStream[ddcore.Arc]

// ArcWriter builds an arc file one level at a time, the way a top-down sweep
// (internal/prod2, internal/quantify) produces its output: the root's level
// first, the level nearest the terminals last. Two arcs (low, high) are
// pushed per non-skipped request.
//
// Arcs whose target is an internal node go to the "internal" sub-stream, in
// the order Push is called; this implementation always classifies
// terminal-targeted arcs as out-of-order (see DESIGN.md) rather than
// exploiting the in-order fast path a sweep can sometimes guarantee, so
// Reduce always sorts the terminal arc stream before its first pass.
type ArcWriter struct {
	handle     *Handle
	internal   *recordWriter[ddcore.Arc]
	outOfOrder *recordWriter[ddcore.Arc]
	inOrder    *recordWriter[ddcore.Arc]
	cut        cutAccumulator

	levels           []LevelInfo
	internalCounts   []int64 // internal-arc count written per level, storage order
	curInternalCount int64
	maxWidth         uint64
	numTerminals     [2]uint64
	root             uint64
	closed           bool
	compressed       bool
}

// SetRoot records the sweep's requested root pointer, which may itself
// name a terminal for a diagram that collapsed entirely before any node
// was written. Reduce resolves this into the finished diagram's root.
func (w *ArcWriter) SetRoot(p ddcore.Pointer) { w.root = p.Bits() }

// CreateArcFile allocates a fresh backing directory and opens its three arc
// sub-streams for writing.
func CreateArcFile(opts ...ArcFileOption) (*ArcWriter, error) {
	dir, err := newTempDir("arc")
	if err != nil {
		return nil, err
	}
	internal, err := createRecordWriter[ddcore.Arc](filepath.Join(dir, "internal"), arcSize, encodeArc)
	if err != nil {
		return nil, err
	}
	inOrder, err := createRecordWriter[ddcore.Arc](filepath.Join(dir, "terminals_in_order"), arcSize, encodeArc)
	if err != nil {
		return nil, err
	}
	outOfOrder, err := createRecordWriter[ddcore.Arc](filepath.Join(dir, "terminals_out_of_order"), arcSize, encodeArc)
	if err != nil {
		return nil, err
	}
	w := &ArcWriter{handle: newHandle(dir), internal: internal, inOrder: inOrder, outOfOrder: outOfOrder}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Push appends one arc, routing it to the internal or (out-of-order)
// terminal sub-stream by its target's kind.
func (w *ArcWriter) Push(a ddcore.Arc) error {
	w.cut.observeChild(a.Target)
	if a.Target.IsInternal() {
		w.curInternalCount++
		return w.internal.Push(a)
	}
	if a.Target.Value() {
		w.numTerminals[1]++
	} else {
		w.numTerminals[0]++
	}
	return w.outOfOrder.Push(a)
}

// PushTerminalInOrder appends a terminal-targeted arc known to already be in
// an order consistent with Reduce's reverse-BFS consumption, letting Reduce
// skip sorting it. No call site currently produces such a guarantee; it is
// kept so a future sweep can opt in without an ArcWriter API change.
func (w *ArcWriter) PushTerminalInOrder(a ddcore.Arc) error {
	w.cut.observeChild(a.Target)
	if a.Target.Value() {
		w.numTerminals[1]++
	} else {
		w.numTerminals[0]++
	}
	return w.inOrder.Push(a)
}

// PushLevel seals the level just written (by request/source-node count) and
// records how many internal arcs it contributed, for ArcFile's per-level
// offset bookkeeping.
func (w *ArcWriter) PushLevel(label uint32, width uint64) {
	w.levels = append(w.levels, LevelInfo{Label: label, Width: width})
	w.internalCounts = append(w.internalCounts, w.curInternalCount)
	w.curInternalCount = 0
	if width > w.maxWidth {
		w.maxWidth = width
	}
	w.cut.finishLevel()
}

// Close seals the file, returning a read handle.
func (w *ArcWriter) Close() (*ArcFile, error) {
	if w.closed {
		return nil, ddcore.ErrInvalidArgument
	}
	w.closed = true
	w.cut.finishLevel()
	for _, wr := range []*recordWriter[ddcore.Arc]{w.internal, w.inOrder, w.outOfOrder} {
		if err := wr.Close(); err != nil {
			return nil, err
		}
	}
	if w.compressed {
		for _, name := range arcSubStreamNames {
			if err := compressSubStream(filepath.Join(w.handle.Dir(), name)); err != nil {
				return nil, err
			}
		}
	}
	if err := writeLevels(w.handle.Dir(), w.levels); err != nil {
		return nil, err
	}
	meta := Meta{
		Version:           metaVersion,
		Kind:              KindArc,
		SemiTransposed:    false,
		Compressed:        w.compressed,
		Max1LevelCut:      w.cut.max1,
		Max2LevelCut:      w.cut.max2,
		NumberOfTerminals: w.numTerminals,
		Width:             w.maxWidth,
		Root:              w.root,
	}
	if err := writeMeta(w.handle.Dir(), meta); err != nil {
		return nil, err
	}
	return &ArcFile{
		handle:         w.handle,
		meta:           meta,
		levels:         w.levels,
		internalCounts: w.internalCounts,
	}, nil
}

// ArcFile is a read-only view of a sealed arc file.
type ArcFile struct {
	handle         *Handle
	meta           Meta
	levels         []LevelInfo // top-down storage order (root's level first)
	internalCounts []int64     // parallel to levels; internal-arc count per level
}

// Meta returns the file's sealed metadata.
func (f *ArcFile) Meta() Meta { return f.meta }

// Root returns the sweep's requested root pointer, before Reduce resolves
// any forwarding.
func (f *ArcFile) Root() ddcore.Pointer { return ddcore.FromBits(f.meta.Root) }

// Levels returns level info in top-down (storage) order.
func (f *ArcFile) Levels() []LevelInfo {
	out := make([]LevelInfo, len(f.levels))
	copy(out, f.levels)
	return out
}

// Retain returns a second owning reference to the same backing file.
func (f *ArcFile) Retain() *ArcFile {
	f.handle.Acquire()
	return f
}

// Close releases this reference.
func (f *ArcFile) Close() error { return f.handle.Close() }

// Dir exposes the backing directory.
func (f *ArcFile) Dir() string { return f.handle.Dir() }

// InternalStream reads the "internal" sub-stream in storage (top-down)
// order.
func (f *ArcFile) InternalStream() (*ArcStream, error) {
	return f.openSubStream("internal")
}

// openSubStream opens one of the three named arc sub-streams, transparently
// decompressing it first if the file was sealed with WithCompression.
func (f *ArcFile) openSubStream(name string) (*ArcStream, error) {
	path := filepath.Join(f.handle.Dir(), name)
	if !f.meta.Compressed {
		return openRecordStream[ddcore.Arc](path, arcSize, decodeArc)
	}
	tmp, err := decompressToTemp(path + ".zst")
	if err != nil {
		return nil, err
	}
	// The temp file is unlinked immediately after being opened for read: its
	// directory entry goes away now, its data stays reachable through the
	// stream's own open descriptor until Close, and the OS reclaims it then.
	s, err := openRecordStream[ddcore.Arc](tmp, arcSize, decodeArc)
	if rmErr := os.Remove(tmp); rmErr != nil && err == nil {
		err = fmt.Errorf("%w: %v", ddcore.ErrIO, rmErr)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// compressSubStream replaces path with a zstd-compressed "path.zst" and
// removes the original.
func compressSubStream(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	defer in.Close()
	out, err := os.Create(path + ".zst")
	if err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	zw, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return os.Remove(path)
}

// decompressToTemp decompresses a zstd-compressed sub-stream into a fresh
// temp file and returns its path.
func decompressToTemp(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	defer in.Close()
	zr, err := zstd.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	defer zr.Close()
	out, err := os.CreateTemp("", "go-dd-zstd-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, zr); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return out.Name(), nil
}

// InternalStreamForLevel reads just the internal arcs written for the
// i'th level (0-indexed in storage/top-down order), using the per-level
// counts tracked at write time.
func (f *ArcFile) InternalStreamForLevel(i int) (*ArcStream, error) {
	s, err := f.InternalStream()
	if err != nil {
		return nil, err
	}
	var start int64
	for j := 0; j < i; j++ {
		start += f.internalCounts[j]
	}
	order := make([]int64, f.internalCounts[i])
	for j := range order {
		order[j] = start + int64(j)
	}
	return s.withOrder(order), nil
}

// arcCodec describes an Arc's fixed-size on-disk record, shared with the
// external sorter backing NodeArcStream.
var arcCodec = sorter.Codec[ddcore.Arc]{Size: arcSize, Encode: encodeArc, Decode: decodeArc}

// NodeArcStream reconstructs Node records on the fly from an arc file by
// pulling the two arcs sharing a source. Since this package's three
// sub-streams partition an arc file's arcs by the *target's* kind rather
// than the source, a source's low-arc and high-arc may land in different
// sub-streams; NodeArcStream feeds all three through an
// internal/sorter.ExternalSorter ordered by ArcSourceDescendingLess (the
// same source-descending, bottom-up order Reduce consumes a level at a
// time) and pairs each source's two arcs off that order. Memory is bounded
// by the sorter's run size, not by the arc file's total size.
type NodeArcStream struct {
	it   sorter.Iterator[ddcore.Arc]
	sort *sorter.ExternalSorter[ddcore.Arc]
}

// OpenNodeArcStream opens a stream of reconstructed Node records, sorted
// bottom-up by source.
func OpenNodeArcStream(f *ArcFile) (*NodeArcStream, error) {
	s, err := sorter.NewExternalSorter[ddcore.Arc](ddcore.ArcSourceDescendingLess, arcCodec, nodeArcRunSize)
	if err != nil {
		return nil, err
	}
	for _, name := range arcSubStreamNames {
		rs, err := f.openSubStream(name)
		if err != nil {
			s.Close()
			return nil, err
		}
		for rs.CanPull() {
			a, _ := rs.Pull()
			if err := s.Push(a); err != nil {
				rs.Close()
				s.Close()
				return nil, err
			}
		}
		if err := rs.Close(); err != nil {
			s.Close()
			return nil, err
		}
	}
	it, err := s.Sorted()
	if err != nil {
		s.Close()
		return nil, err
	}
	return &NodeArcStream{it: it, sort: s}, nil
}

func (n *NodeArcStream) CanPull() bool { return n.it.CanPull() }

func (n *NodeArcStream) Pull() (ddcore.Node, bool) {
	low, ok := n.it.Pull()
	if !ok {
		return ddcore.Node{}, false
	}
	high, ok := n.it.Pull()
	if !ok {
		panic("lfile: node-arc stream has an odd number of arcs for a source")
	}
	if low.SourceUID() != high.SourceUID() {
		panic("lfile: node-arc stream found mismatched low/high sources")
	}
	if low.IsHighArc() {
		low, high = high, low
	}
	return ddcore.Node{
		UID:  low.SourceUID(),
		Low:  low.Target,
		High: high.Target,
	}, true
}

func (n *NodeArcStream) Close() error {
	if err := n.it.Close(); err != nil {
		n.sort.Close()
		return err
	}
	return n.sort.Close()
}
