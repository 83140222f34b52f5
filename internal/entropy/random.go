// Package entropy provides the random sources used by market price draws.
// Production code uses a seeded source; tests pin the draw with Fixed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float() float64
}

// Seeded is a deterministic, goroutine-safe source.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source. A zero seed draws one from crypto/rand.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = int64(cryptoRandUint64() >> 1)
	}
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// Float returns the next float in [0, 1).
func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed always returns the same value, clamped into [0, 1).
type Fixed float64

// Float returns the fixed value.
func (f Fixed) Float() float64 {
	v := float64(f)
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.9999999999999999
	}
	return v
}

// cryptoSource reads from crypto/rand.
type cryptoSource struct{}

// Crypto returns a source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Float() float64 {
	return cryptoRandFloat()
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := cryptoRandUint64() >> 11
	return float64(n) / float64(1<<53)
}

func cryptoRandUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to the midpoint.
		return 1 << 63
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Pick returns a uniformly chosen element of items using src.
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	i := int(src.Float() * float64(len(items)))
	if i >= len(items) {
		i = len(items) - 1
	}
	return items[i]
}
