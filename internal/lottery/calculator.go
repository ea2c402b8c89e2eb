package lottery

import "github.com/ichi0g0y/name-picker/internal/types"

// EffectiveWeights returns the weight each entry contributes to a draw.
// Weights are clamped to at least 1; with weighting disabled every entry is 1.
func EffectiveWeights(entries []types.Entry, weighted bool) []int {
	weights := make([]int, len(entries))
	for i, e := range entries {
		if !weighted {
			weights[i] = 1
			continue
		}
		weights[i] = types.ClampWeight(e.Weight)
	}
	return weights
}

// TotalWeight sums the effective weights.
func TotalWeight(entries []types.Entry, weighted bool) int {
	total := 0
	for _, w := range EffectiveWeights(entries, weighted) {
		total += w
	}
	return total
}

// ExpandIndices flattens weights into a list where index i appears weights[i] times.
// [1,3] -> [0,1,1,1]
func ExpandIndices(weights []int) []int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	out := make([]int, 0, total)
	for i, w := range weights {
		for k := 0; k < w; k++ {
			out = append(out, i)
		}
	}
	return out
}

// Shares returns weight(i)/Σweight for every entry.
func Shares(entries []types.Entry, weighted bool) []float64 {
	weights := EffectiveWeights(entries, weighted)
	total := 0
	for _, w := range weights {
		total += w
	}

	shares := make([]float64, len(weights))
	if total == 0 {
		return shares
	}
	for i, w := range weights {
		shares[i] = float64(w) / float64(total)
	}
	return shares
}
