package lottery

import (
	"math"
	"math/rand/v2"
)

// RandomSource is a uniform random source returning values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// Func adapts a plain function to RandomSource. Handy for stubs in tests.
type Func func() float64

func (f Func) Float64() float64 { return f() }

type defaultRNG struct{}

func (defaultRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG returns the process-wide math/rand/v2 source.
func DefaultRNG() RandomSource { return defaultRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic PCG source (simulations, tests).
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// Sequence replays the given values in order and wraps around.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence builds a replaying source. An empty sequence always returns 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Unit draws one value and clamps it into [0, 1) so a misbehaving stub cannot
// index past the end of a range.
func Unit(rng RandomSource) float64 {
	if rng == nil {
		rng = DefaultRNG()
	}
	u := rng.Float64()
	if math.IsNaN(u) || u < 0 {
		return 0
	}
	if u >= 1 {
		return math.Nextafter(1, 0)
	}
	return u
}

// Uniform returns a value in [lo, hi).
func Uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + Unit(rng)*(hi-lo)
}

// Intn returns an int in [0, n). n must be positive.
func Intn(rng RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	k := int(Unit(rng) * float64(n))
	if k >= n {
		k = n - 1
	}
	return k
}

// Shuffle permutes xs in place (Fisher-Yates).
func Shuffle[T any](rng RandomSource, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := Intn(rng, i+1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
