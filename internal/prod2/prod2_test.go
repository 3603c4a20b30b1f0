package prod2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
	"github.com/zzenonn/go-dd/internal/reduce"
)

func termFile(t *testing.T, value bool) *lfile.NodeFile {
	t.Helper()
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)
	nf, err := w.Close(ddcore.NewTerminal(value, false), true)
	require.NoError(t, err)
	return nf
}

func singleVarIdentityFile(t *testing.T) *lfile.NodeFile {
	t.Helper()
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)
	uid, err := ddcore.InternalUID(0, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{
		UID:  uid,
		Low:  ddcore.NewTerminal(false, false),
		High: ddcore.NewTerminal(true, false),
	}))
	w.PushLevel(0)
	nf, err := w.Close(uid.As(false), true)
	require.NoError(t, err)
	return nf
}

func TestRunBothTerminalResolvesImmediately(t *testing.T) {
	left := termFile(t, true)
	defer left.Close()
	right := termFile(t, false)
	defer right.Close()

	af, err := Run(left, right, ZDD, Or, ddstats.Noop)
	require.NoError(t, err)

	nf, err := reduce.Run(af, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	assert.True(t, nf.Root().IsTerminal())
	assert.True(t, nf.Root().Value())
	assert.Empty(t, nf.Levels())
}

func TestRunAndWithConstantTrueIsIdentity(t *testing.T) {
	left := singleVarIdentityFile(t)
	defer left.Close()
	right := termFile(t, true)
	defer right.Close()

	af, err := Run(left, right, BDD, And, ddstats.Noop)
	require.NoError(t, err)

	nf, err := reduce.Run(af, reduce.BDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	require.True(t, nf.Root().IsInternal())
	assert.Equal(t, uint32(0), nf.Root().Label())

	levels := nf.Levels()
	require.Len(t, levels, 1)
	assert.Equal(t, uint64(1), levels[0].Width)
}

func TestRunDedupesSharedSubRequests(t *testing.T) {
	// x0 AND x0: both operands are the same identity diagram, so the
	// product construction should visit exactly one distinct request pair
	// per level instead of the Cartesian product of both diagrams' nodes.
	left := singleVarIdentityFile(t)
	defer left.Close()
	right := singleVarIdentityFile(t)
	defer right.Close()

	af, err := Run(left, right, BDD, And, ddstats.Noop)
	require.NoError(t, err)

	levels := af.Levels()
	require.Len(t, levels, 1)
	assert.Equal(t, uint64(1), levels[0].Width, "shared sub-requests must be deduplicated, not recomputed")

	nf, err := reduce.Run(af, reduce.BDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()
	assert.Equal(t, uint32(0), nf.Root().Label())
}
