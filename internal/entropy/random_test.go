package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
}

func TestSourcesStayInUnitInterval(t *testing.T) {
	sources := []Source{NewSeeded(7), Crypto(), Fixed(0.5)}
	for _, src := range sources {
		for i := 0; i < 100; i++ {
			v := src.Float()
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestFixedClamps(t *testing.T) {
	assert.Equal(t, 0.0, Fixed(-3).Float())
	assert.Less(t, Fixed(1).Float(), 1.0)
	assert.Equal(t, 0.25, Fixed(0.25).Float())
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, "a", Pick(Fixed(0), items))
	assert.Equal(t, "c", Pick(Fixed(0.99), items))
	assert.Equal(t, "", Pick(Fixed(0.5), []string(nil)))
}
