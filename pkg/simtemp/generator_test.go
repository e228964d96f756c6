package simtemp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorReadingsStayInRange(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(42)

	for i := 0; i < 10000; i++ {
		reading := gen.Next()
		require.GreaterOrEqual(t, reading, int32(baselineMC-jitterRangeMC))
		require.LessOrEqual(t, reading, int32(baselineMC+jitterRangeMC))
	}
}

func TestGeneratorDeterministicForSeed(t *testing.T) {
	t.Parallel()

	a := NewGenerator(7)
	b := NewGenerator(7)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestGeneratorSeedsDiverge(t *testing.T) {
	t.Parallel()

	a := NewGenerator(1)
	b := NewGenerator(2)

	same := true

	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}

	assert.False(t, same, "different seeds should produce different sequences")
}
