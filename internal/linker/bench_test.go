package linker

import (
	"math/rand"
	"testing"

	"github.com/pilively/plexus/internal/field"
)

func benchParticles(n int) []field.Particle {
	rng := rand.New(rand.NewSource(1))
	particles := make([]field.Particle, n)
	for i := range particles {
		particles[i] = field.Particle{
			Index: i,
			X:     rng.Float64() * 1200,
			Y:     rng.Float64() * 800,
			Z:     rng.Float64() * 1000,
		}
	}
	return particles
}

func BenchmarkNaive500(b *testing.B) {
	particles := benchParticles(500)
	l := New()
	l.GridThreshold = 1000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Compute(particles, 170)
	}
}

func BenchmarkGrid500(b *testing.B) {
	particles := benchParticles(500)
	l := New()
	l.GridThreshold = 0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Compute(particles, 170)
	}
}

func BenchmarkGrid2000(b *testing.B) {
	particles := benchParticles(2000)
	l := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Compute(particles, 170)
	}
}
