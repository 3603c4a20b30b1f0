package ddcore

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInternal(t *testing.T, label uint32, id uint64, flag bool) Pointer {
	t.Helper()
	p, err := NewInternal(label, id, flag)
	require.NoError(t, err)
	return p
}

func mustUID(t *testing.T, label uint32, id uint64) UID {
	t.Helper()
	u, err := InternalUID(label, id)
	require.NoError(t, err)
	return u
}

func TestPointerAccessors(t *testing.T) {
	p := mustInternal(t, 3, 7, true)
	require.True(t, p.IsInternal())
	assert.False(t, p.IsTerminal())
	assert.False(t, p.IsNil())
	assert.EqualValues(t, 3, p.Label())
	assert.EqualValues(t, 7, p.ID())
	assert.True(t, p.Flag())

	f := NewTerminal(true, false)
	require.True(t, f.IsTerminal())
	assert.True(t, f.Value())

	n := NilPointer()
	assert.True(t, n.IsNil())
	assert.False(t, n.IsTerminal())
	assert.False(t, n.IsInternal())
}

func TestCompareOrdering(t *testing.T) {
	internalLow := mustInternal(t, 0, 0, false)
	internalHigh := mustInternal(t, 0, 5, false)
	internalNextLevel := mustInternal(t, 1, 0, false)
	termF := NewTerminal(false, false)
	termT := NewTerminal(true, false)

	pointers := []Pointer{termT, internalNextLevel, termF, internalHigh, internalLow}
	sort.Slice(pointers, func(i, j int) bool { return Less(pointers[i], pointers[j]) })

	want := []Pointer{internalLow, internalHigh, internalNextLevel, termF, termT}
	for i := range want {
		assert.Equal(t, want[i].String(), pointers[i].String())
	}
}

func TestUIDClearsFlag(t *testing.T) {
	p := mustInternal(t, 2, 1, true)
	u := NewUID(p)
	assert.False(t, u.Pointer().Flag())
	assert.True(t, u.As(true).Flag())
}

func TestNodeChildOrdering(t *testing.T) {
	a := Node{UID: mustUID(t, 1, 0), Low: NewTerminal(false, false), High: NewTerminal(true, false)}
	b := Node{UID: mustUID(t, 1, 1), Low: NewTerminal(true, false), High: NewTerminal(true, false)}
	// b's (High, Low) = (T, T), a's = (T, F); b should sort first under
	// descending (High, Low) order used by Reduce's canonical numbering.
	assert.True(t, ChildrenLess(b, a))
	assert.False(t, SameChildren(a, b))
}

func TestTupleLevel(t *testing.T) {
	tup := Tuple{First: mustInternal(t, 2, 0, false), Second: mustInternal(t, 5, 0, false)}
	assert.EqualValues(t, 2, tup.Level())
	assert.True(t, tup.HasLevel())

	allTerminal := Tuple{First: NewTerminal(false, false), Second: NewTerminal(true, false)}
	assert.False(t, allTerminal.HasLevel())
}
