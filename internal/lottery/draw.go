package lottery

import (
	"errors"
	"sort"

	"github.com/ichi0g0y/name-picker/internal/types"
)

var (
	ErrEmptyPool           = errors.New("pool has no entries")
	ErrInsufficientEntries = errors.New("at least 2 entries are required")
	ErrPoolTooLarge        = errors.New("pool total weight is too large")
	errInvalidWeightTotal  = errors.New("invalid total weight")
)

// MinEntries is the smallest pool any reveal accepts.
const MinEntries = 2

// MaxTotalWeight bounds Σweights. Slots and Claw expand the pool into one
// item per weight unit.
const MaxTotalWeight = 10000

// WeightedEntry は累積重み抽選に使用するエントリ。
type WeightedEntry struct {
	Index         int
	Weight        int
	CumulativeSum int
}

// SelectWeightedIndex draws an index with probability weight(i)/Σweights.
// Conceptually every index is repeated weight times and one slot of that
// flattened list is picked uniformly; with weighted=false all weights are 1.
func SelectWeightedIndex(entries []types.Entry, weighted bool, rng RandomSource) (int, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyPool
	}
	return SelectFromWeights(EffectiveWeights(entries, weighted), rng)
}

// SelectFromWeights is SelectWeightedIndex over raw weights.
func SelectFromWeights(weights []int, rng RandomSource) (int, error) {
	if len(weights) == 0 {
		return 0, ErrEmptyPool
	}

	cumulative, total := buildCumulative(weights)
	if total <= 0 {
		return 0, errInvalidWeightTotal
	}

	picked := Intn(rng, total) // flattened index, 0-based
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i].CumulativeSum > picked
	})
	if idx >= len(cumulative) {
		return 0, errInvalidWeightTotal
	}
	return cumulative[idx].Index, nil
}

// ValidatePool checks the pool is large enough for a multi-party reveal and
// small enough to expand.
func ValidatePool(entries []types.Entry, weighted bool) error {
	switch {
	case len(entries) == 0:
		return ErrEmptyPool
	case len(entries) < MinEntries:
		return ErrInsufficientEntries
	case len(entries) > MaxTotalWeight:
		return ErrPoolTooLarge
	case TotalWeight(entries, weighted) > MaxTotalWeight:
		return ErrPoolTooLarge
	}
	return nil
}

func buildCumulative(weights []int) ([]WeightedEntry, int) {
	out := make([]WeightedEntry, 0, len(weights))
	total := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		total += w
		out = append(out, WeightedEntry{Index: i, Weight: w, CumulativeSum: total})
	}
	return out, total
}
