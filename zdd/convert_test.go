package zdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/count"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// bddVariable builds the raw node file for the elementary BDD of x_label,
// the shape package bdd.Variable produces — built directly here rather
// than importing package bdd, since FromBDD only needs a *lfile.NodeFile.
func bddVariable(t *testing.T, label uint32) *lfile.NodeFile {
	t.Helper()
	w, err := lfile.CreateNodeFile()
	require.NoError(t, err)
	uid, err := ddcore.InternalUID(label, 0)
	require.NoError(t, err)
	require.NoError(t, w.Push(ddcore.Node{
		UID:  uid,
		Low:  ddcore.NewTerminal(false, false),
		High: ddcore.NewTerminal(true, false),
	}))
	w.PushLevel(label)
	nf, err := w.Close(uid.As(false), true)
	require.NoError(t, err)
	return nf
}

func TestFromBDDOfVariableIsSingletonFamily(t *testing.T) {
	f := bddVariable(t, 0)
	defer f.Close()

	z, err := FromBDD(f, []uint32{0}, ddstats.Noop)
	require.NoError(t, err)
	defer z.Close()

	ok, err := Contains(z, []uint32{0})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = Contains(z, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	size, err := Size(z, count.Int64Semiring{}, ddstats.Noop)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}
