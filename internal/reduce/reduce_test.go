package reduce

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

func TestBDDReduceForwardsRedundantRoot(t *testing.T) {
	w, err := lfile.CreateArcFile()
	require.NoError(t, err)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	lvl1, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)

	// Root's low and high arcs both target the same level-1 node, so after
	// resolving level 1, root's two children are identical and BDD's Rule 1
	// must forward root entirely, producing zero level-0 nodes.
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(false), Target: lvl1.As(false)}))
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(true), Target: lvl1.As(false)}))
	w.PushLevel(0, 1)

	require.NoError(t, w.Push(ddcore.Arc{Source: lvl1.As(false), Target: termF()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: lvl1.As(true), Target: termT()}))
	w.PushLevel(1, 1)

	w.SetRoot(root.As(false))
	af, err := w.Close()
	require.NoError(t, err)

	nf, err := Run(af, BDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	assert.Equal(t, uint32(1), nf.Root().Label())
	levels := nf.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, uint32(1), levels[0].Label)
	assert.Equal(t, uint64(1), levels[0].Width)
	assert.Equal(t, uint32(0), levels[1].Label)
	assert.Equal(t, uint64(0), levels[1].Width, "redundant root must not produce a level-0 node")
}

func TestBDDReduceDedupesIdenticalSiblings(t *testing.T) {
	w, err := lfile.CreateArcFile()
	require.NoError(t, err)

	a, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	b, err := ddcore.InternalUID(0, 1)
	require.NoError(t, err)
	lvl1, err := ddcore.InternalUID(1, 0)
	require.NoError(t, err)

	// Two distinct level-0 sources with identical (low, high) pairs must
	// collapse into one canonical level-0 node (Rule 2).
	require.NoError(t, w.Push(ddcore.Arc{Source: a.As(false), Target: lvl1.As(false)}))
	require.NoError(t, w.Push(ddcore.Arc{Source: a.As(true), Target: termT()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: b.As(false), Target: lvl1.As(false)}))
	require.NoError(t, w.Push(ddcore.Arc{Source: b.As(true), Target: termT()}))
	w.PushLevel(0, 2)

	require.NoError(t, w.Push(ddcore.Arc{Source: lvl1.As(false), Target: termF()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: lvl1.As(true), Target: termT()}))
	w.PushLevel(1, 1)

	w.SetRoot(a.As(false))
	af, err := w.Close()
	require.NoError(t, err)

	nf, err := Run(af, BDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	levels := nf.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, uint64(1), levels[1].Width, "a and b must collapse to one node")
}

func TestZDDReduceForwardsWhenHighIsFalseTerminal(t *testing.T) {
	w, err := lfile.CreateArcFile()
	require.NoError(t, err)

	root, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(false), Target: termT()}))
	require.NoError(t, w.Push(ddcore.Arc{Source: root.As(true), Target: termF()}))
	w.PushLevel(0, 1)

	w.SetRoot(root.As(false))
	af, err := w.Close()
	require.NoError(t, err)

	nf, err := Run(af, ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	assert.True(t, nf.Root().IsTerminal())
	assert.True(t, nf.Root().Value(), "high child false-terminal forwards root to its low child")
}
