package lpq

import (
	"container/heap"
	"sort"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// DefaultBucketWindow is how many upcoming levels get their own in-RAM
// bucket before a push falls back to the overflow heap.
const DefaultBucketWindow = 8

// BucketedInternal keeps one in-RAM slice per level within a sliding window
// of the current level, plus an overflow heap for anything pushed further
// ahead than the window reaches. SetupNextLevel sorts the level's bucket
// (an O(n log n) pass no larger than that level's own traffic) rather than
// paying heap-insertion cost for every push against every other pending
// level, which is the whole point of bucketing over Unbucketed.
type BucketedInternal[T any] struct {
	less   func(a, b T) bool
	window uint32

	currentLevel uint32
	buckets      map[uint32][]T
	overflow     *genericHeap[T]

	sortedBucket []T
	sortedIdx    int
}

// NewBucketedInternal builds a BucketedInternal queue. window <= 0 uses
// DefaultBucketWindow.
func NewBucketedInternal[T any](less func(a, b T) bool, window uint32) *BucketedInternal[T] {
	if window == 0 {
		window = DefaultBucketWindow
	}
	return &BucketedInternal[T]{
		less:     less,
		window:   window,
		buckets:  make(map[uint32][]T),
		overflow: newGenericHeap(less),
	}
}

func (q *BucketedInternal[T]) Push(v T, level uint32) error {
	if level < q.currentLevel {
		return ddcore.ErrInvalidArgument
	}
	if level-q.currentLevel < q.window {
		q.buckets[level] = append(q.buckets[level], v)
		return nil
	}
	heap.Push(q.overflow, levelItem[T]{v: v, level: level})
	return nil
}

func (q *BucketedInternal[T]) SetupNextLevel(label uint32) error {
	if label < q.currentLevel {
		return ddcore.ErrInvalidArgument
	}
	q.currentLevel = label
	pending := q.buckets[label]
	delete(q.buckets, label)

	for q.overflow.Len() > 0 && q.overflow.items[0].level-q.currentLevel < q.window {
		it := heap.Pop(q.overflow).(levelItem[T])
		if it.level == label {
			pending = append(pending, it.v)
		} else {
			q.buckets[it.level] = append(q.buckets[it.level], it.v)
		}
	}

	sort.Slice(pending, func(i, j int) bool { return q.less(pending[i], pending[j]) })
	q.sortedBucket = pending
	q.sortedIdx = 0
	return nil
}

func (q *BucketedInternal[T]) CanPull() bool { return q.sortedIdx < len(q.sortedBucket) }

func (q *BucketedInternal[T]) Pull() (T, bool) {
	if !q.CanPull() {
		var zero T
		return zero, false
	}
	v := q.sortedBucket[q.sortedIdx]
	q.sortedIdx++
	return v, true
}

func (q *BucketedInternal[T]) Size() int {
	total := len(q.sortedBucket) - q.sortedIdx
	for _, b := range q.buckets {
		total += len(b)
	}
	return total + q.overflow.Len()
}

func (q *BucketedInternal[T]) Close() error { return nil }

var _ LevelizedQueue[int] = (*BucketedInternal[int])(nil)
