// Package simulate replays many draws offline and compares the observed
// winner shares with the weight shares.
package simulate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/types"
)

var ErrNoTrials = errors.New("trials must be positive")

const (
	defaultStep = 16 * time.Millisecond
	maxTicks    = 200000
)

// Params configures one simulation run.
type Params struct {
	Entries  []types.Entry
	Weighted bool
	// Mode runs the full reveal per trial. Empty means selector only.
	Mode   reveal.Mode
	Speed  float64
	Trials int
	Seed   uint64
	Tuning tuning.Tuning
	Step   time.Duration
}

// Row is the outcome for one entry.
type Row struct {
	Name     string  `json:"name"`
	Weight   int     `json:"weight"`
	Wins     int     `json:"wins"`
	Observed float64 `json:"observed"`
	Expected float64 `json:"expected"`
}

type Report struct {
	Mode         string  `json:"mode"`
	Trials       int     `json:"trials"`
	Rows         []Row   `json:"rows"`
	MaxDeviation float64 `json:"max_deviation"`
}

// Run executes p.Trials draws with a seeded source.
func Run(p Params) (Report, error) {
	if p.Trials <= 0 {
		return Report{}, ErrNoTrials
	}
	if err := lottery.ValidatePool(p.Entries, p.Weighted); err != nil {
		return Report{}, err
	}
	if p.Mode != "" {
		mode, err := reveal.ParseMode(string(p.Mode))
		if err != nil {
			return Report{}, err
		}
		p.Mode = mode
	}
	if p.Step <= 0 {
		p.Step = defaultStep
	}
	if p.Tuning == (tuning.Tuning{}) {
		p.Tuning = tuning.Default()
	}

	rng := lottery.NewSeededRNG(p.Seed)
	wins := make([]int, len(p.Entries))

	for i := 0; i < p.Trials; i++ {
		idx, err := trial(p, rng)
		if err != nil {
			return Report{}, fmt.Errorf("trial %d: %w", i, err)
		}
		wins[idx]++
	}

	return buildReport(p, wins), nil
}

func trial(p Params, rng lottery.RandomSource) (int, error) {
	if p.Mode == "" {
		return lottery.SelectWeightedIndex(p.Entries, p.Weighted, rng)
	}

	m, err := reveal.New(p.Mode, reveal.Config{
		Entries:  p.Entries,
		Weighted: p.Weighted,
		Speed:    p.Speed,
		RNG:      rng,
		Tuning:   p.Tuning,
	})
	if err != nil {
		return 0, err
	}

	for tick := 0; tick < maxTicks; tick++ {
		s := m.Tick(time.Duration(tick) * p.Step)
		if !s.Done {
			continue
		}
		idx := types.IndexOf(p.Entries, s.Winner)
		if idx < 0 {
			return 0, fmt.Errorf("winner %q not in pool", s.Winner)
		}
		return idx, nil
	}
	return 0, fmt.Errorf("%s did not resolve within %d ticks", p.Mode, maxTicks)
}

func buildReport(p Params, wins []int) Report {
	shares := lottery.Shares(p.Entries, p.Weighted)
	weights := lottery.EffectiveWeights(p.Entries, p.Weighted)

	mode := string(p.Mode)
	if mode == "" {
		mode = "selector"
	}
	r := Report{Mode: mode, Trials: p.Trials, Rows: make([]Row, len(p.Entries))}
	for i, e := range p.Entries {
		observed := float64(wins[i]) / float64(p.Trials)
		r.Rows[i] = Row{
			Name:     e.Name,
			Weight:   weights[i],
			Wins:     wins[i],
			Observed: observed,
			Expected: shares[i],
		}
		r.MaxDeviation = math.Max(r.MaxDeviation, math.Abs(observed-shares[i]))
	}
	return r
}
