package lfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/internal/ddcore"
)

func termF() ddcore.Pointer { return ddcore.NewTerminal(false, false) }
func termT() ddcore.Pointer { return ddcore.NewTerminal(true, false) }

// buildSmallNodeFile writes a 2-level diagram bottom-up:
//
//	level 1 (leaf-facing): two nodes, ids 0 and 1
//	level 0 (root):        one node pointing at both level-1 nodes
func buildSmallNodeFile(t *testing.T) *NodeFile {
	t.Helper()
	w, err := CreateNodeFile()
	require.NoError(t, err)

	uid1a, err := ddcore.InternalUID(1, 1)
	require.NoError(t, err)
	uid1b, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: uid1a, Low: termF(), High: termT()}))
	require.NoError(t, w.Push(ddcore.Node{UID: uid1b, Low: termT(), High: termF()}))
	w.PushLevel(1)

	uid0, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: uid0, Low: uid1b.As(false), High: uid1a.As(false)}))
	w.PushLevel(0)

	root := uid0.As(false)
	nf, err := w.Close(root, true)
	require.NoError(t, err)
	return nf
}

func TestNodeFileRoundTrip(t *testing.T) {
	nf := buildSmallNodeFile(t)
	defer nf.Close()

	assert.Equal(t, uint64(2), nf.Meta().Width)
	assert.True(t, nf.Meta().Canonical)
	assert.Equal(t, nf.Root().Label(), uint32(0))

	levels := nf.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, uint32(1), levels[0].Label) // storage order: bottom-up
	assert.Equal(t, uint32(0), levels[1].Label)
}

func TestNodeFileStreamIsStorageOrder(t *testing.T) {
	nf := buildSmallNodeFile(t)
	defer nf.Close()

	s, err := nf.Stream()
	require.NoError(t, err)
	defer s.Close()

	var labels []uint32
	for s.CanPull() {
		n, _ := s.Pull()
		labels = append(labels, n.UID.Label())
	}
	assert.Equal(t, []uint32{1, 1, 0}, labels)
}

func TestNodeFileTopDownStreamIsRootFirst(t *testing.T) {
	nf := buildSmallNodeFile(t)
	defer nf.Close()

	s, err := nf.TopDownStream()
	require.NoError(t, err)
	defer s.Close()

	var labels []uint32
	for s.CanPull() {
		n, _ := s.Pull()
		labels = append(labels, n.UID.Label())
	}
	assert.Equal(t, []uint32{0, 1, 1}, labels)
}

func TestNodeRandomAccess(t *testing.T) {
	nf := buildSmallNodeFile(t)
	defer nf.Close()

	ra, err := OpenNodeRandomAccess(nf)
	require.NoError(t, err)
	defer ra.Close()

	assert.True(t, ra.HasNextLevel(1))
	assert.False(t, ra.HasNextLevel(5))

	require.NoError(t, ra.SetupNextLevel(1))
	uid, err := ddcore.InternalUID(1, 1)
	require.NoError(t, err)
	n := ra.At(uid)
	assert.Equal(t, uint64(1), n.UID.ID())
	assert.Equal(t, ra.Root().Label(), uint32(0))
}

func TestArcFileRoundTripAndNodeArcStream(t *testing.T) {
	w, err := CreateArcFile()
	require.NoError(t, err)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	child, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)
	// Root's low-arc targets the internal child; its high-arc targets a
	// terminal. Source flag marks low (false) vs high (true).
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(false), Target: child.As(false)}))
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(true), Target: termT()}))
	w.PushLevel(0, 1)

	require.NoError(t, w.Push(ddcore.Arc{Source: child.As(false), Target: termF()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: child.As(true), Target: termT()}))
	w.PushLevel(1, 1)

	af, err := w.Close()
	require.NoError(t, err)
	defer af.Close()

	assert.Equal(t, uint64(1), af.Meta().NumberOfTerminals[0])
	assert.Equal(t, uint64(2), af.Meta().NumberOfTerminals[1])

	nas, err := OpenNodeArcStream(af)
	require.NoError(t, err)
	defer nas.Close()

	// The stream runs bottom-up (source descending): child before root.
	n, ok := nas.Pull()
	require.True(t, ok)
	assert.Equal(t, child, n.UID)
	assert.Equal(t, termF(), n.Low)
	assert.Equal(t, termT(), n.High)

	n, ok = nas.Pull()
	require.True(t, ok)
	assert.Equal(t, root, n.UID)
	assert.Equal(t, child.As(false), n.Low)
	assert.Equal(t, termT(), n.High)

	assert.False(t, nas.CanPull())
}

func TestArcFileWithCompressionRoundTrips(t *testing.T) {
	w, err := CreateArcFile(WithCompression())
	require.NoError(t, err)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	child, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(false), Target: child.As(false)}))
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(true), Target: termT()}))
	w.PushLevel(0, 1)

	require.NoError(t, w.Push(ddcore.Arc{Source: child.As(false), Target: termF()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: child.As(true), Target: termT()}))
	w.PushLevel(1, 1)

	af, err := w.Close()
	require.NoError(t, err)
	defer af.Close()

	assert.True(t, af.Meta().Compressed)

	nas, err := OpenNodeArcStream(af)
	require.NoError(t, err)
	defer nas.Close()

	n, ok := nas.Pull()
	require.True(t, ok)
	assert.Equal(t, child, n.UID)

	n, ok = nas.Pull()
	require.True(t, ok)
	assert.Equal(t, root, n.UID)
	assert.Equal(t, child.As(false), n.Low)
	assert.Equal(t, termT(), n.High)
	assert.False(t, nas.CanPull())
}

func TestHandleRefCountingRemovesDirOnLastClose(t *testing.T) {
	w, err := CreateNodeFile()
	require.NoError(t, err)
	w.PushLevel(0)
	nf, err := w.Close(termF(), true)
	require.NoError(t, err)

	dir := nf.Dir()
	second := nf.Retain()

	require.NoError(t, nf.Close())
	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr, "directory must survive while a second reference is open")

	require.NoError(t, second.Close())
	_, statErr = os.Stat(dir)
	assert.Error(t, statErr, "directory must be removed once the last reference closes")
}
