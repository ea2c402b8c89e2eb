package reveal

import (
	"testing"
	"time"

	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/types"
)

const frameStep = 16 * time.Millisecond

func samplePool() []types.Entry {
	return []types.Entry{
		{Name: "Anna", Weight: 1},
		{Name: "Arthur", Weight: 2},
		{Name: "Charlie", Weight: 3},
		{Name: "Elena", Weight: 1},
	}
}

func seededConfig(seed uint64, entries []types.Entry) Config {
	return Config{
		Entries:  entries,
		Weighted: true,
		Speed:    1,
		RNG:      lottery.NewSeededRNG(seed),
		Tuning:   tuning.Default(),
	}
}

// firstThen returns first for the first draw and defers to rest afterwards.
func firstThen(first float64, rest lottery.RandomSource) lottery.RandomSource {
	used := false
	return lottery.Func(func() float64 {
		if !used {
			used = true
			return first
		}
		return rest.Float64()
	})
}

// runToEnd ticks m until it settles or limit elapses and returns the final
// step together with every step observed.
func runToEnd(t *testing.T, m Machine, limit time.Duration) (Step, []Step) {
	t.Helper()
	var steps []Step
	for elapsed := time.Duration(0); elapsed <= limit; elapsed += frameStep {
		s := m.Tick(elapsed)
		steps = append(steps, s)
		if s.Done {
			return s, steps
		}
	}
	t.Fatalf("machine did not settle within %v", limit)
	return Step{}, steps
}

func containsName(entries []types.Entry, name string) bool {
	return types.IndexOf(entries, name) >= 0
}
