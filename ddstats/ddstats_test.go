package ddstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopDoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop.LevelProcessed(3, 10)
		Noop.LPQPush()
		Noop.LPQPull()
		Noop.NodesProduced(5)
		Noop.ArcsProduced(5)
	})
}

func TestCountersAccumulate(t *testing.T) {
	var c Counters
	c.LevelProcessed(0, 4)
	c.LevelProcessed(1, 4)
	c.LPQPush()
	c.LPQPush()
	c.LPQPull()
	c.NodesProduced(7)
	c.ArcsProduced(14)

	snap := c.Get()
	assert.Equal(t, uint64(2), snap.LevelsProcessed)
	assert.Equal(t, uint64(2), snap.LPQPushes)
	assert.Equal(t, uint64(1), snap.LPQPulls)
	assert.Equal(t, uint64(7), snap.NodesProduced)
	assert.Equal(t, uint64(14), snap.ArcsProduced)

	c.Reset()
	assert.Equal(t, Snapshot{}, c.Get())
}

func TestGlobalIsSharedSingleton(t *testing.T) {
	Global().Reset()
	Global().NodesProduced(1)
	assert.Equal(t, uint64(1), Global().Get().NodesProduced)
	Global().Reset()
}

func TestCountersImplementsRecorder(t *testing.T) {
	var _ Recorder = &Counters{}
}
