// Package sorter provides the two Sorter[T] implementations the levelized
// file model and the bucketed-external priority queue build on: an
// in-memory sort for runs that fit comfortably in RAM, and a k-way external
// merge-sort for runs that don't, modeled on the SST-compaction merge
// pattern used for on-disk sorted runs in storage engines like
// aalhour-rockyardkv.
package sorter

import (
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// Sorter accumulates values with Push, then yields them back in ascending
// order (per Less) through Sorted. A Sorter is single-use: Sorted may only
// be called once, after every Push.
type Sorter[T any] interface {
	Push(v T) error
	Sorted() (Iterator[T], error)
	Close() error
}

// Iterator yields a Sorter's output one value at a time.
type Iterator[T any] interface {
	CanPull() bool
	Pull() (T, bool)
	Close() error
}

// Codec describes how a sorter serializes T to and from a fixed-size byte
// record, needed only by ExternalSorter's spill files.
type Codec[T any] struct {
	Size   int
	Encode func(T, []byte)
	Decode func([]byte) T
}

// MemSorter buffers every pushed value in a slice and sorts it with
// sort.Slice; appropriate when the planner (internal/planner) has decided
// the run fits in available RAM.
type MemSorter[T any] struct {
	less func(a, b T) bool
	buf  []T
}

// NewMemSorter returns a Sorter that keeps its entire input in memory.
func NewMemSorter[T any](less func(a, b T) bool) *MemSorter[T] {
	return &MemSorter[T]{less: less}
}

func (s *MemSorter[T]) Push(v T) error {
	s.buf = append(s.buf, v)
	return nil
}

func (s *MemSorter[T]) Sorted() (Iterator[T], error) {
	sort.Slice(s.buf, func(i, j int) bool { return s.less(s.buf[i], s.buf[j]) })
	return &sliceIterator[T]{buf: s.buf}, nil
}

func (s *MemSorter[T]) Close() error { s.buf = nil; return nil }

type sliceIterator[T any] struct {
	buf []T
	idx int
}

func (it *sliceIterator[T]) CanPull() bool { return it.idx < len(it.buf) }
func (it *sliceIterator[T]) Pull() (T, bool) {
	if !it.CanPull() {
		var zero T
		return zero, false
	}
	v := it.buf[it.idx]
	it.idx++
	return v, true
}
func (it *sliceIterator[T]) Close() error { return nil }

// ExternalSorter buffers pushed values in fixed-size in-memory runs, spills
// each full run to a temp file in sorted order, and merges the spilled runs
// with a k-way heap merge at read time — the same run-then-merge shape as
// an LSM-tree's compaction, generalized from bytes to an arbitrary codec.
type ExternalSorter[T any] struct {
	less      func(a, b T) bool
	codec     Codec[T]
	runSize   int
	dir       string
	buf       []T
	runPaths  []string
	tailInMem bool
}

// NewExternalSorter returns a Sorter that spills to disk once runSize
// values have been pushed since the last spill.
func NewExternalSorter[T any](less func(a, b T) bool, codec Codec[T], runSize int) (*ExternalSorter[T], error) {
	if runSize <= 0 {
		return nil, ddcore.ErrInvalidArgument
	}
	dir, err := os.MkdirTemp("", fmt.Sprintf("go-dd-sorter-%s", uuid.NewString()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return &ExternalSorter[T]{less: less, codec: codec, runSize: runSize, dir: dir}, nil
}

func (s *ExternalSorter[T]) Push(v T) error {
	s.buf = append(s.buf, v)
	if len(s.buf) >= s.runSize {
		return s.spill()
	}
	return nil
}

func (s *ExternalSorter[T]) spill() error {
	sort.Slice(s.buf, func(i, j int) bool { return s.less(s.buf[i], s.buf[j]) })
	path := filepath.Join(s.dir, fmt.Sprintf("run-%d", len(s.runPaths)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	defer f.Close()
	rec := make([]byte, s.codec.Size)
	for _, v := range s.buf {
		s.codec.Encode(v, rec)
		if _, err := f.Write(rec); err != nil {
			return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
		}
	}
	s.runPaths = append(s.runPaths, path)
	s.buf = s.buf[:0]
	return nil
}

// Sorted flushes any buffered tail as one final run (if anything is
// pending) and returns a k-way merge iterator over every run on disk. If
// nothing was ever spilled, it degrades to an in-memory sort with no disk
// I/O at all.
func (s *ExternalSorter[T]) Sorted() (Iterator[T], error) {
	if len(s.runPaths) == 0 {
		sort.Slice(s.buf, func(i, j int) bool { return s.less(s.buf[i], s.buf[j]) })
		return &sliceIterator[T]{buf: s.buf}, nil
	}
	if len(s.buf) > 0 {
		if err := s.spill(); err != nil {
			return nil, err
		}
	}
	runs := make([]*runReader[T], len(s.runPaths))
	for i, p := range s.runPaths {
		r, err := openRunReader(p, s.codec)
		if err != nil {
			return nil, err
		}
		runs[i] = r
	}
	return newMergeIterator(s.less, runs), nil
}

func (s *ExternalSorter[T]) Close() error {
	s.buf = nil
	return os.RemoveAll(s.dir)
}

type runReader[T any] struct {
	f      *os.File
	decode func([]byte) T
	size   int
	buf    []byte
}

func openRunReader[T any](path string, codec Codec[T]) (*runReader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return &runReader[T]{f: f, decode: codec.Decode, size: codec.Size, buf: make([]byte, codec.Size)}, nil
}

func (r *runReader[T]) next() (T, bool) {
	n, err := r.f.Read(r.buf)
	if err != nil || n < r.size {
		var zero T
		return zero, false
	}
	return r.decode(r.buf), true
}

func (r *runReader[T]) Close() error { return r.f.Close() }

// mergeIterator is a k-way merge over already-sorted runReaders, using a
// binary heap keyed by each run's current head value.
type mergeIterator[T any] struct {
	less func(a, b T) bool
	runs []*runReader[T]
	h    *mergeHeap[T]
}

type heapItem[T any] struct {
	v      T
	runIdx int
}

type mergeHeap[T any] struct {
	items []heapItem[T]
	less  func(a, b T) bool
}

func (h *mergeHeap[T]) Len() int { return len(h.items) }
func (h *mergeHeap[T]) Less(i, j int) bool {
	return h.less(h.items[i].v, h.items[j].v)
}
func (h *mergeHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap[T]) Push(x any)    { h.items = append(h.items, x.(heapItem[T])) }
func (h *mergeHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

func newMergeIterator[T any](less func(a, b T) bool, runs []*runReader[T]) *mergeIterator[T] {
	h := &mergeHeap[T]{less: less}
	heap.Init(h)
	for i, r := range runs {
		if v, ok := r.next(); ok {
			heap.Push(h, heapItem[T]{v: v, runIdx: i})
		}
	}
	return &mergeIterator[T]{less: less, runs: runs, h: h}
}

func (m *mergeIterator[T]) CanPull() bool { return m.h.Len() > 0 }

func (m *mergeIterator[T]) Pull() (T, bool) {
	if m.h.Len() == 0 {
		var zero T
		return zero, false
	}
	top := heap.Pop(m.h).(heapItem[T])
	if v, ok := m.runs[top.runIdx].next(); ok {
		heap.Push(m.h, heapItem[T]{v: v, runIdx: top.runIdx})
	}
	return top.v, true
}

func (m *mergeIterator[T]) Close() error {
	var firstErr error
	for _, r := range m.runs {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
