package lfile

import (
	"bufio"
	"fmt"
	"os"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

// recordWriter appends fixed-size records to a single sub-stream file. It is
// the one place that knows how to buffer writes; NodeWriter and ArcWriter
// each hold one per named sub-stream.
type recordWriter[T any] struct {
	f      *os.File
	w      *bufio.Writer
	size   int
	encode func(T, []byte)
	buf    []byte
	count  int64
}

func createRecordWriter[T any](path string, size int, encode func(T, []byte)) (*recordWriter[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return &recordWriter[T]{
		f:      f,
		w:      bufio.NewWriter(f),
		size:   size,
		encode: encode,
		buf:    make([]byte, size),
	}, nil
}

func (w *recordWriter[T]) Push(v T) error {
	w.encode(v, w.buf)
	if _, err := w.w.Write(w.buf); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	w.count++
	return nil
}

func (w *recordWriter[T]) Count() int64 { return w.count }

func (w *recordWriter[T]) Close() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return nil
}

// recordStream reads fixed-size records from a sub-stream file either
// forward (storage order) or via an explicit visiting order supplied by the
// caller (used by NodeFile.TopDownStream to walk level-chunks root-first
// while keeping each chunk's own, already-canonical order intact).
type recordStream[T any] struct {
	f      *os.File
	size   int64
	decode func([]byte) T

	order []int64 // nil => sequential [0, count)
	count int64
	idx   int64

	buf    []byte
	peeked *T
}

func openRecordStream[T any](path string, size int, decode func([]byte) T) (*recordStream[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return &recordStream[T]{
		f:      f,
		size:   int64(size),
		decode: decode,
		count:  fi.Size() / int64(size),
		buf:    make([]byte, size),
	}, nil
}

// withOrder replaces the visiting order with an explicit index list.
func (s *recordStream[T]) withOrder(order []int64) *recordStream[T] {
	s.order = order
	s.idx = 0
	return s
}

func (s *recordStream[T]) length() int64 {
	if s.order != nil {
		return int64(len(s.order))
	}
	return s.count
}

func (s *recordStream[T]) CanPull() bool {
	return s.peeked != nil || s.idx < s.length()
}

func (s *recordStream[T]) Peek() (T, bool) {
	if s.peeked == nil {
		if s.idx >= s.length() {
			var zero T
			return zero, false
		}
		v := s.readAt(s.recordIndex(s.idx))
		s.peeked = &v
	}
	return *s.peeked, true
}

func (s *recordStream[T]) Pull() (T, bool) {
	v, ok := s.Peek()
	if !ok {
		return v, false
	}
	s.peeked = nil
	s.idx++
	return v, true
}

func (s *recordStream[T]) recordIndex(visitIdx int64) int64 {
	if s.order != nil {
		return s.order[visitIdx]
	}
	return visitIdx
}

func (s *recordStream[T]) readAt(recordIdx int64) T {
	if _, err := s.f.ReadAt(s.buf, recordIdx*s.size); err != nil {
		panic(fmt.Sprintf("lfile: short read at record %d: %v", recordIdx, err))
	}
	return s.decode(s.buf)
}

func (s *recordStream[T]) Close() error {
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ddcore.ErrIO, err)
	}
	return nil
}
