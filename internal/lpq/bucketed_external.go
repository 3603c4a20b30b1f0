package lpq

import (
	"container/heap"

	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/sorter"
)

// DefaultRunSize is the number of values a BucketedExternal bucket buffers
// in RAM before spilling a sorted run to disk.
const DefaultRunSize = 1 << 16

// BucketedExternal is BucketedInternal's shape with each level's bucket
// backed by an internal/sorter.ExternalSorter instead of a plain slice, so
// a level whose traffic exceeds available RAM spills to disk rather than
// growing an in-process slice without bound. The overflow heap (for levels
// outside the window) stays in-memory, on the assumption that anything far
// enough ahead to be in overflow has not yet accumulated much traffic; see
// DESIGN.md.
type BucketedExternal[T any] struct {
	less    func(a, b T) bool
	codec   sorter.Codec[T]
	window  uint32
	runSize int

	currentLevel uint32
	buckets      map[uint32]*sorter.ExternalSorter[T]
	overflow     *genericHeap[T]
	cur          sorter.Iterator[T]
}

// NewBucketedExternal builds a BucketedExternal queue. window <= 0 uses
// DefaultBucketWindow; runSize <= 0 uses DefaultRunSize.
func NewBucketedExternal[T any](less func(a, b T) bool, codec sorter.Codec[T], window uint32, runSize int) *BucketedExternal[T] {
	if window == 0 {
		window = DefaultBucketWindow
	}
	if runSize <= 0 {
		runSize = DefaultRunSize
	}
	return &BucketedExternal[T]{
		less:     less,
		codec:    codec,
		window:   window,
		runSize:  runSize,
		buckets:  make(map[uint32]*sorter.ExternalSorter[T]),
		overflow: newGenericHeap(less),
	}
}

func (q *BucketedExternal[T]) bucketFor(level uint32) (*sorter.ExternalSorter[T], error) {
	if s, ok := q.buckets[level]; ok {
		return s, nil
	}
	s, err := sorter.NewExternalSorter[T](q.less, q.codec, q.runSize)
	if err != nil {
		return nil, err
	}
	q.buckets[level] = s
	return s, nil
}

func (q *BucketedExternal[T]) Push(v T, level uint32) error {
	if level < q.currentLevel {
		return ddcore.ErrInvalidArgument
	}
	if level-q.currentLevel < q.window {
		s, err := q.bucketFor(level)
		if err != nil {
			return err
		}
		return s.Push(v)
	}
	heap.Push(q.overflow, levelItem[T]{v: v, level: level})
	return nil
}

func (q *BucketedExternal[T]) SetupNextLevel(label uint32) error {
	if label < q.currentLevel {
		return ddcore.ErrInvalidArgument
	}
	if q.cur != nil {
		if err := q.cur.Close(); err != nil {
			return err
		}
		q.cur = nil
	}
	q.currentLevel = label

	for q.overflow.Len() > 0 && q.overflow.items[0].level-q.currentLevel < q.window {
		it := heap.Pop(q.overflow).(levelItem[T])
		s, err := q.bucketFor(it.level)
		if err != nil {
			return err
		}
		if err := s.Push(it.v); err != nil {
			return err
		}
	}

	s, ok := q.buckets[label]
	if !ok {
		q.cur = emptyIterator[T]{}
		return nil
	}
	delete(q.buckets, label)
	it, err := s.Sorted()
	if err != nil {
		return err
	}
	q.cur = it
	return nil
}

func (q *BucketedExternal[T]) CanPull() bool { return q.cur != nil && q.cur.CanPull() }

func (q *BucketedExternal[T]) Pull() (T, bool) {
	if q.cur == nil {
		var zero T
		return zero, false
	}
	return q.cur.Pull()
}

// Size reports only the overflow heap's length: spilled bucket sizes are
// not tracked without reading them back, so this is a lower bound, not an
// exact count.
func (q *BucketedExternal[T]) Size() int { return q.overflow.Len() }

func (q *BucketedExternal[T]) Close() error {
	var firstErr error
	if q.cur != nil {
		if err := q.cur.Close(); err != nil {
			firstErr = err
		}
	}
	for _, s := range q.buckets {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ LevelizedQueue[int] = (*BucketedExternal[int])(nil)
