package equality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

func termF() ddcore.Pointer { return ddcore.NewTerminal(false, false) }
func termT() ddcore.Pointer { return ddcore.NewTerminal(true, false) }

// orFile builds the canonical BDD for x0 OR x1: level 0 branches low to a
// level-1 node and high directly to true; level 1 branches false/true
// directly to the terminals.
func orFile(t *testing.T) *lfile.NodeFile {
	t.Helper()
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)

	lvl1, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: lvl1, Low: termF(), High: termT()}))
	w.PushLevel(1)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: root, Low: lvl1.As(false), High: termT()}))
	w.PushLevel(0)

	nf, err := w.Close(root.As(false), true)
	require.NoError(t, err)
	return nf
}

// andFile builds the canonical BDD for x0 AND x1, structurally different
// from orFile at every node.
func andFile(t *testing.T) *lfile.NodeFile {
	t.Helper()
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)

	lvl1, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: lvl1, Low: termF(), High: termT()}))
	w.PushLevel(1)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: root, Low: termF(), High: lvl1.As(false)}))
	w.PushLevel(0)

	nf, err := w.Close(root.As(false), true)
	require.NoError(t, err)
	return nf
}

func TestFastPathIdenticalDiagramsAreEqual(t *testing.T) {
	a := orFile(t)
	defer a.Close()
	b := orFile(t)
	defer b.Close()

	equal, ok := FastPath(a, b)
	require.True(t, ok)
	assert.True(t, equal)
}

func TestFastPathDifferentDiagramsAreUnequal(t *testing.T) {
	a := orFile(t)
	defer a.Close()
	b := andFile(t)
	defer b.Close()

	equal, ok := FastPath(a, b)
	require.True(t, ok)
	assert.False(t, equal)
}

func TestFastPathNotApplicableWhenNotCanonical(t *testing.T) {
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)
	uid, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{UID: uid, Low: termF(), High: termT()}))
	w.PushLevel(0)
	a, err := w.Close(uid.As(false), false)
	require.NoError(t, err)
	defer a.Close()

	b := orFile(t)
	defer b.Close()

	_, ok := FastPath(a, b)
	assert.False(t, ok)
}

func TestSlowPathIdenticalDiagramsAreEqual(t *testing.T) {
	a := orFile(t)
	defer a.Close()
	b := orFile(t)
	defer b.Close()

	equal, err := SlowPath(a, b, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestSlowPathDifferentDiagramsAreUnequal(t *testing.T) {
	a := orFile(t)
	defer a.Close()
	b := andFile(t)
	defer b.Close()

	equal, err := SlowPath(a, b, ddstats.Noop)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestEqualDispatchesToFastPathWhenCanonical(t *testing.T) {
	a := orFile(t)
	defer a.Close()
	b := orFile(t)
	defer b.Close()

	equal, err := Equal(a, b, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, equal)
}
