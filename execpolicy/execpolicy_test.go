package execpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsAllAuto(t *testing.T) {
	p := Default()
	assert.Equal(t, AccessAuto, p.Access())
	assert.Equal(t, MemoryAuto, p.Memory())
	assert.Equal(t, QuantifyAuto, p.Quantify())
}

func TestWithChaining(t *testing.T) {
	p := Default().
		WithAccess(AccessRandomAccess).
		WithMemory(MemoryInternal).
		WithQuantify(QuantifyNested)

	assert.Equal(t, AccessRandomAccess, p.Access())
	assert.Equal(t, MemoryInternal, p.Memory())
	assert.Equal(t, QuantifyNested, p.Quantify())

	// Default() must stay untouched by the chain above.
	assert.Equal(t, AccessAuto, Default().Access())
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "Random_Access", AccessRandomAccess.String())
	assert.Equal(t, "External", MemoryExternal.String())
	assert.Equal(t, "Nested", QuantifyNested.String())
	assert.Equal(t, "Auto", Access(99).String())
}
