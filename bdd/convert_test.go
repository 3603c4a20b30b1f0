package bdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/lfile"
)

// zddSingleton builds the raw node file for the ZDD family { {label} }, the
// shape package zdd.Singleton produces — built directly here rather than
// importing package zdd, since FromZDD only needs a *lfile.NodeFile.
func zddSingleton(t *testing.T, label uint32) *lfile.NodeFile {
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

func TestFromZDDOfSingletonFamilyIsVariable(t *testing.T) {
	z := zddSingleton(t, 0)
	defer z.Close()

	f, err := FromZDD(z, []uint32{0}, ddstats.Noop)
	require.NoError(t, err)
	defer f.Close()

	want, err := Variable(0)
	require.NoError(t, err)
	defer want.Close()

	eq, err := Equal(f, want, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, eq)
}
