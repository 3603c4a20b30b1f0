package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// twoSingletonFile builds the ZDD family {{x0}, {x1}}: label 1 requires
// x1 (low goes to false, high to true); the root (label 0) either takes
// x0 directly (high -> true) or defers to label 1 (low).
func twoSingletonFile(t *testing.T) *lfile.NodeFile {
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

func TestOptimalPicksCheaperSingleton(t *testing.T) {
	nf := twoSingletonFile(t)
	defer nf.Close()

	cost, labels, err := Optimal(nf, []float64{5, 2}, ddstats.Noop)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cost)
	assert.Equal(t, []uint32{1}, labels)
}

func TestOptimalOnBareFalseTerminalIsInfeasible(t *testing.T) {
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)
	nf, err := w.Close(termF(), true)
	require.NoError(t, err)
	defer nf.Close()

	cost, labels, err := Optimal(nf, nil, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, cost > 1e300)
	assert.Nil(t, labels)
}

func TestOptimalOutOfBoundsCostsErrors(t *testing.T) {
	nf := twoSingletonFile(t)
	defer nf.Close()

	_, _, err := Optimal(nf, []float64{5}, ddstats.Noop)
	assert.ErrorIs(t, err, ddcore.ErrInvalidArgument)
}
