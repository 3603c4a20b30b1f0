package lpq

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/internal/sorter"
)

func intLess(a, b int) bool { return a < b }

var intCodec = sorter.Codec[int]{
	Size:   8,
	Encode: func(v int, buf []byte) { binary.LittleEndian.PutUint64(buf, uint64(v)) },
	Decode: func(buf []byte) int { return int(binary.LittleEndian.Uint64(buf)) },
}

func drainLevel(q LevelizedQueue[int]) []int {
	var out []int
	for q.CanPull() {
		v, _ := q.Pull()
		out = append(out, v)
	}
	return out
}

func TestUnbucketedOrdersByLevelThenValue(t *testing.T) {
	q := NewUnbucketed[int](intLess)
	require.NoError(t, q.Push(5, 1))
	require.NoError(t, q.Push(1, 0))
	require.NoError(t, q.Push(3, 0))
	require.NoError(t, q.Push(2, 1))

	require.NoError(t, q.SetupNextLevel(0))
	// Unbucketed does not stop at the level boundary, so level 0's two
	// values are pulled explicitly.
	var level0 []int
	for i := 0; i < 2; i++ {
		v, ok := q.Pull()
		require.True(t, ok)
		level0 = append(level0, v)
	}
	assert.Equal(t, []int{1, 3}, level0)

	// Level-0 items are gone; the heap still holds level 1's.
	require.NoError(t, q.SetupNextLevel(1))
	assert.True(t, q.CanPull())
	assert.Equal(t, []int{2, 5}, drainLevel(q))
}

func TestBucketedInternalSetupNextLevel(t *testing.T) {
	q := NewBucketedInternal[int](intLess, 4)
	require.NoError(t, q.Push(30, 2))
	require.NoError(t, q.Push(10, 0))
	require.NoError(t, q.Push(20, 0))
	require.NoError(t, q.Push(5, 1))

	require.NoError(t, q.SetupNextLevel(0))
	assert.Equal(t, []int{10, 20}, drainLevel(q))

	require.NoError(t, q.SetupNextLevel(1))
	assert.Equal(t, []int{5}, drainLevel(q))

	require.NoError(t, q.SetupNextLevel(2))
	assert.Equal(t, []int{30}, drainLevel(q))
}

func TestBucketedInternalRejectsPastLevelPush(t *testing.T) {
	q := NewBucketedInternal[int](intLess, 4)
	require.NoError(t, q.SetupNextLevel(5))
	assert.Error(t, q.Push(1, 2))
}

func TestBucketedExternalSetupNextLevel(t *testing.T) {
	q := NewBucketedExternal[int](intLess, intCodec, 4, 2)
	defer q.Close()

	require.NoError(t, q.Push(30, 2))
	require.NoError(t, q.Push(10, 0))
	require.NoError(t, q.Push(20, 0))
	require.NoError(t, q.Push(5, 1))

	require.NoError(t, q.SetupNextLevel(0))
	assert.Equal(t, []int{10, 20}, drainLevel(q))

	require.NoError(t, q.SetupNextLevel(1))
	assert.Equal(t, []int{5}, drainLevel(q))

	require.NoError(t, q.SetupNextLevel(2))
	assert.Equal(t, []int{30}, drainLevel(q))
}

func TestBucketedExternalEmptyLevelYieldsNothing(t *testing.T) {
	q := NewBucketedExternal[int](intLess, intCodec, 4, 2)
	defer q.Close()
	require.NoError(t, q.SetupNextLevel(0))
	assert.False(t, q.CanPull())
}
