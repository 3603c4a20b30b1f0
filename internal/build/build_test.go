package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/go-dd/ddstats"
	"github.com/zzenonn/go-dd/internal/ddcore"
	"github.com/zzenonn/go-dd/internal/reduce"
)

// countState tracks how many of the first label variables were set to
// true; used to build "exactly k of n" family specs.
type countState struct{ taken int }

func (s *countState) Clone() State       { c := *s; return &c }
func (s *countState) Hash() uint64       { return uint64(s.taken) }
func (s *countState) Equal(o State) bool { return o.(*countState).taken == s.taken }

// exactlyKSpec builds the ZDD family of all length-n bitstrings with
// exactly k ones.
type exactlyKSpec struct {
	n, k uint32
}

func (s exactlyKSpec) Variables() uint32      { return s.n }
func (s exactlyKSpec) InitialState() State    { return &countState{} }
func (s exactlyKSpec) IsValid(st State) bool  { return st.(*countState).taken == int(s.k) }
func (s exactlyKSpec) GetChild(_ context.Context, st State, _ uint32, take bool) (State, error) {
	cur := st.(*countState)
	next := cur.taken
	if take {
		next++
	}
	if next > int(s.k) {
		return nil, errInfeasible
	}
	return &countState{taken: next}, nil
}

var errInfeasible = errors.New("infeasible")

func TestRunBuildsExactlyKFamily(t *testing.T) {
	spec := exactlyKSpec{n: 3, k: 2}
	af, err := Run(context.Background(), spec, ddstats.Noop)
	require.NoError(t, err)

	nf, err := reduce.Run(af, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer nf.Close()

	assert.True(t, nf.Root().IsInternal())
}

func TestRunWithParallelMatchesSequential(t *testing.T) {
	spec := exactlyKSpec{n: 4, k: 2}

	seqAf, err := Run(context.Background(), spec, ddstats.Noop)
	require.NoError(t, err)
	seqNf, err := reduce.Run(seqAf, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer seqNf.Close()

	parAf, err := Run(context.Background(), spec, ddstats.Noop, WithParallel(4))
	require.NoError(t, err)
	parNf, err := reduce.Run(parAf, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer parNf.Close()

	assert.Equal(t, seqNf.Levels(), parNf.Levels())
}

func TestRunMemoryLimitExhausted(t *testing.T) {
	spec := exactlyKSpec{n: 6, k: 3}
	_, err := Run(context.Background(), spec, ddstats.Noop, WithMemoryLimit(1))
	assert.ErrorIs(t, err, ddcore.ErrResourceExhausted)
}

func TestRunWithCompressionMatchesUncompressed(t *testing.T) {
	spec := exactlyKSpec{n: 4, k: 2}

	plainAf, err := Run(context.Background(), spec, ddstats.Noop)
	require.NoError(t, err)
	plainNf, err := reduce.Run(plainAf, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer plainNf.Close()

	compAf, err := Run(context.Background(), spec, ddstats.Noop, WithCompression())
	require.NoError(t, err)
	assert.True(t, compAf.Meta().Compressed)
	compNf, err := reduce.Run(compAf, reduce.ZDD, ddstats.Noop)
	require.NoError(t, err)
	defer compNf.Close()

	assert.Equal(t, plainNf.Levels(), compNf.Levels())
}
