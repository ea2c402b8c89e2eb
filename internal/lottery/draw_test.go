package lottery

import (
	"errors"
	"math"
	"testing"

	"github.com/ichi0g0y/name-picker/internal/types"
)

func TestSelectWeightedIndex_EmptyPool(t *testing.T) {
	_, err := SelectWeightedIndex(nil, true, DefaultRNG())
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectWeightedIndex_HighDrawLandsOnHeavyEntry(t *testing.T) {
	entries := []types.Entry{{Name: "A", Weight: 1}, {Name: "B", Weight: 3}}

	idx, err := SelectWeightedIndex(entries, true, Func(func() float64 { return 0.9 }))
	if err != nil {
		t.Fatalf("SelectWeightedIndex failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("unexpected index: got=%d want=1", idx)
	}
}

func TestSelectWeightedIndex_Boundaries(t *testing.T) {
	entries := []types.Entry{{Name: "A", Weight: 1}, {Name: "B", Weight: 3}}

	tests := []struct {
		name string
		u    float64
		want int
	}{
		{name: "zero", u: 0, want: 0},
		{name: "just below first boundary", u: 0.2499, want: 0},
		{name: "first boundary", u: 0.25, want: 1},
		{name: "almost one", u: 0.9999, want: 1},
		{name: "out of range stub", u: 1.5, want: 1},
		{name: "negative stub", u: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectWeightedIndex(entries, true, Func(func() float64 { return tt.u }))
			if err != nil {
				t.Fatalf("SelectWeightedIndex failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected index: got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestSelectWeightedIndex_UnweightedIgnoresWeights(t *testing.T) {
	entries := []types.Entry{{Name: "A", Weight: 1}, {Name: "B", Weight: 99}}

	// 重み無効時は 0.49 で A、0.5 で B
	idx, err := SelectWeightedIndex(entries, false, Func(func() float64 { return 0.49 }))
	if err != nil {
		t.Fatalf("SelectWeightedIndex failed: %v", err)
	}
	if idx != 0 {
		t.Fatalf("unexpected index: got=%d want=0", idx)
	}

	idx, err = SelectWeightedIndex(entries, false, Func(func() float64 { return 0.5 }))
	if err != nil {
		t.Fatalf("SelectWeightedIndex failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("unexpected index: got=%d want=1", idx)
	}
}

func TestSelectWeightedIndex_Distribution(t *testing.T) {
	entries := []types.Entry{
		{Name: "A", Weight: 1},
		{Name: "B", Weight: 2},
		{Name: "C", Weight: 5},
	}
	rng := NewSeededRNG(7)

	const trials = 80000
	counts := make([]int, len(entries))
	for i := 0; i < trials; i++ {
		idx, err := SelectWeightedIndex(entries, true, rng)
		if err != nil {
			t.Fatalf("SelectWeightedIndex failed: %v", err)
		}
		counts[idx]++
	}

	shares := Shares(entries, true)
	for i, c := range counts {
		got := float64(c) / trials
		if math.Abs(got-shares[i]) > 0.01 {
			t.Fatalf("entry %s share off: got=%.4f want=%.4f", entries[i].Name, got, shares[i])
		}
	}
}

func TestSelectFromWeights_SkipsNonPositive(t *testing.T) {
	idx, err := SelectFromWeights([]int{0, 2, 0}, Func(func() float64 { return 0.99 }))
	if err != nil {
		t.Fatalf("SelectFromWeights failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("unexpected index: got=%d want=1", idx)
	}

	if _, err := SelectFromWeights([]int{0, 0}, DefaultRNG()); err == nil {
		t.Fatalf("expected error for zero total weight")
	}
}

func TestValidatePool(t *testing.T) {
	tests := []struct {
		name       string
		entries    []types.Entry
		unweighted bool
		want       error
	}{
		{name: "empty", entries: nil, want: ErrEmptyPool},
		{name: "single", entries: GenerateEntries(1), want: ErrInsufficientEntries},
		{name: "two", entries: GenerateEntries(2), want: nil},
		{name: "huge weight is clamped", entries: []types.Entry{{Name: "A", Weight: 1}, {Name: "B", Weight: 1 << 62}}, want: nil},
		{name: "at max total", entries: heavyEntries(MaxTotalWeight / types.MaxWeight), want: nil},
		{name: "over max total", entries: heavyEntries(MaxTotalWeight/types.MaxWeight + 1), want: ErrPoolTooLarge},
		{name: "too many entries", entries: GenerateEntries(MaxTotalWeight + 1), unweighted: true, want: ErrPoolTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePool(tt.entries, !tt.unweighted); !errors.Is(err, tt.want) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tt.want)
			}
		})
	}
}

func TestValidatePool_UnweightedIgnoresHeavyWeights(t *testing.T) {
	entries := heavyEntries(MaxTotalWeight/types.MaxWeight + 1)
	if err := ValidatePool(entries, false); err != nil {
		t.Fatalf("unweighted pool should pass: %v", err)
	}
}

func heavyEntries(n int) []types.Entry {
	entries := GenerateEntries(n)
	for i := range entries {
		entries[i].Weight = types.MaxWeight
	}
	return entries
}

func TestShuffle_Permutation(t *testing.T) {
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Shuffle(NewSeededRNG(1), xs)

	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		seen[x] = true
	}
	if len(seen) != 8 {
		t.Fatalf("shuffle lost elements: %v", xs)
	}
}

func TestSequence_Wraps(t *testing.T) {
	seq := NewSequence(0.1, 0.2)
	got := []float64{seq.Float64(), seq.Float64(), seq.Float64()}
	if got[0] != 0.1 || got[1] != 0.2 || got[2] != 0.1 {
		t.Fatalf("unexpected sequence: %v", got)
	}
}
