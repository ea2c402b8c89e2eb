package simulate

import (
	"errors"
	"testing"

	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/types"
)

func pool() []types.Entry {
	return []types.Entry{
		{Name: "Anna", Weight: 1},
		{Name: "Arthur", Weight: 2},
		{Name: "Charlie", Weight: 3},
		{Name: "Elena", Weight: 1},
	}
}

func TestRun_SelectorMatchesShares(t *testing.T) {
	r, err := Run(Params{Entries: pool(), Weighted: true, Trials: 20000, Seed: 42})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if r.Mode != "selector" || r.Trials != 20000 {
		t.Fatalf("unexpected header: %+v", r)
	}

	total := 0
	for _, row := range r.Rows {
		total += row.Wins
	}
	if total != 20000 {
		t.Fatalf("wins sum=%d want=20000", total)
	}
	if r.MaxDeviation > 0.02 {
		t.Fatalf("max deviation too large: %v", r.MaxDeviation)
	}
	if r.Rows[2].Expected != 3.0/7.0 {
		t.Fatalf("Charlie expected share=%v", r.Rows[2].Expected)
	}
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(Params{Entries: pool(), Weighted: true, Trials: 500, Seed: 9})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, _ := Run(Params{Entries: pool(), Weighted: true, Trials: 500, Seed: 9})
	for i := range a.Rows {
		if a.Rows[i].Wins != b.Rows[i].Wins {
			t.Fatalf("same seed should give the same result: %+v vs %+v", a.Rows[i], b.Rows[i])
		}
	}
}

func TestRun_FullReveals(t *testing.T) {
	for _, mode := range reveal.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			r, err := Run(Params{Entries: pool(), Weighted: true, Mode: mode, Speed: 10, Trials: 20, Seed: 3})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			total := 0
			for _, row := range r.Rows {
				total += row.Wins
			}
			if total != 20 {
				t.Fatalf("every trial needs a winner, got %d", total)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want error
	}{
		{name: "no trials", p: Params{Entries: pool()}, want: ErrNoTrials},
		{name: "empty", p: Params{Trials: 1}, want: lottery.ErrEmptyPool},
		{name: "single", p: Params{Entries: pool()[:1], Trials: 1}, want: lottery.ErrInsufficientEntries},
		{name: "mode", p: Params{Entries: pool(), Trials: 1, Mode: "roulette"}, want: reveal.ErrUnknownMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(tt.p); !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want=%v", err, tt.want)
			}
		})
	}
}
