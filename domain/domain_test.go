package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zzenonn/go-dd/internal/ddcore"
)

func TestSetGetUnset(t *testing.T) {
	defer Unset()

	_, err := Get()
	assert.ErrorIs(t, err, ddcore.ErrDomainUnset)

	Set([]uint32{0, 1, 2})
	assert.True(t, IsSet())
	assert.Equal(t, 3, Size())

	ctx, err := Get()
	require.NoError(t, err)
	assert.True(t, ctx.Contains(1))
	assert.False(t, ctx.Contains(5))

	Unset()
	assert.False(t, IsSet())
	assert.Equal(t, 0, Size())
}

func TestContextLabelsIsACopy(t *testing.T) {
	ctx, err := NewContext([]uint32{0, 1, 2})
	require.NoError(t, err)
	labels := ctx.Labels()
	labels[0] = 99
	assert.Equal(t, uint32(0), ctx.Labels()[0])
}
