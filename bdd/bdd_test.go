package bdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/execpolicy"
	"github.com/zzenonn/go-dd/internal/prod2"
)

func TestTerminalAndVariable(t *testing.T) {
	tr, err := Terminal(true)
	require.NoError(t, err)
	defer tr.Close()
	assert.True(t, tr.Root().IsTerminal())
	assert.True(t, tr.Root().Value())

	v, err := Variable(2)
	require.NoError(t, err)
	defer v.Close()
	assert.True(t, v.Root().IsInternal())
	assert.Equal(t, uint32(2), v.Root().Label())
}

func TestApplyAnd(t *testing.T) {
	ep := execpolicy.Default()
	x0, err := Variable(0)
	require.NoError(t, err)
	defer x0.Close()
	x1, err := Variable(1)
	require.NoError(t, err)
	defer x1.Close()

	out, err := Apply(ep, x0, x1, prod2.And, ddstats.Noop)
	require.NoError(t, err)
	defer out.Close()

	assert.True(t, out.Root().IsInternal())
	assert.Equal(t, uint32(0), out.Root().Label())
}

func TestNotOfConstants(t *testing.T) {
	ep := execpolicy.Default()
	tr, err := Terminal(true)
	require.NoError(t, err)
	defer tr.Close()

	out, err := Not(ep, tr, ddstats.Noop)
	require.NoError(t, err)
	defer out.Close()

	assert.True(t, out.Root().IsTerminal())
	assert.False(t, out.Root().Value())
}

// TestExistsEliminatesVariable checks BDD existential quantification on
// f = (x0 ∧ x1) ∨ (¬x0 ∧ x2); exists x0. f == x1 ∨ x2.
func TestExistsEliminatesVariable(t *testing.T) {
	ep := execpolicy.Default()

	x0, err := Variable(0)
	require.NoError(t, err)
	defer x0.Close()
	x1, err := Variable(1)
	require.NoError(t, err)
	defer x1.Close()
	x2, err := Variable(2)
	require.NoError(t, err)
	defer x2.Close()

	notX0, err := Not(ep, x0, ddstats.Noop)
	require.NoError(t, err)
	defer notX0.Close()

	left, err := Apply(ep, x0, x1, prod2.And, ddstats.Noop)
	require.NoError(t, err)
	defer left.Close()
	right, err := Apply(ep, notX0, x2, prod2.And, ddstats.Noop)
	require.NoError(t, err)
	defer right.Close()

	f, err := Apply(ep, left, right, prod2.Or, ddstats.Noop)
	require.NoError(t, err)
	defer f.Close()

	got, err := Exists(ep, f, []uint32{0}, ddstats.Noop)
	require.NoError(t, err)
	defer got.Close()

	want, err := Apply(ep, x1, x2, prod2.Or, ddstats.Noop)
	require.NoError(t, err)
	defer want.Close()

	eq, err := Equal(got, want, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestForallEliminatesVariable(t *testing.T) {
	ep := execpolicy.Default()
	x0, err := Variable(0)
	require.NoError(t, err)
	defer x0.Close()
	x1, err := Variable(1)
	require.NoError(t, err)
	defer x1.Close()

	f, err := Apply(ep, x0, x1, prod2.Or, ddstats.Noop)
	require.NoError(t, err)
	defer f.Close()

	// forall x0. (x0 or x1) == x1, since x0=false forces the disjunction
	// down to x1 alone.
	got, err := Forall(ep, f, []uint32{0}, ddstats.Noop)
	require.NoError(t, err)
	defer got.Close()

	eq, err := Equal(got, x1, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestIteSelectsBranchByCondition(t *testing.T) {
	ep := execpolicy.Default()
	cond, err := Variable(0)
	require.NoError(t, err)
	defer cond.Close()
	thenV, err := Variable(1)
	require.NoError(t, err)
	defer thenV.Close()
	elseV, err := Variable(2)
	require.NoError(t, err)
	defer elseV.Close()

	out, err := Ite(ep, cond, thenV, elseV, ddstats.Noop)
	require.NoError(t, err)
	defer out.Close()

	// ite(x0, x1, x2) == (x0 and x1) or (not x0 and x2)
	notCond, err := Not(ep, cond, ddstats.Noop)
	require.NoError(t, err)
	defer notCond.Close()
	left, err := Apply(ep, cond, thenV, prod2.And, ddstats.Noop)
	require.NoError(t, err)
	defer left.Close()
	right, err := Apply(ep, notCond, elseV, prod2.And, ddstats.Noop)
	require.NoError(t, err)
	defer right.Close()
	want, err := Apply(ep, left, right, prod2.Or, ddstats.Noop)
	require.NoError(t, err)
	defer want.Close()

	eq, err := Equal(out, want, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestEqualDistinguishesVariables(t *testing.T) {
	x0, err := Variable(0)
	require.NoError(t, err)
	defer x0.Close()
	x1, err := Variable(1)
	require.NoError(t, err)
	defer x1.Close()

	eq, err := Equal(x0, x1, ddstats.Noop)
	require.NoError(t, err)
	assert.False(t, eq)

	x0Again, err := Variable(0)
	require.NoError(t, err)
	defer x0Again.Close()
	eq, err = Equal(x0, x0Again, ddstats.Noop)
	require.NoError(t, err)
	assert.True(t, eq)
}
