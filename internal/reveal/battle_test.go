package reveal

import (
	"testing"
	"time"

	"github.com/ichi0g0y/name-picker/internal/types"
)

func TestBattle_SurvivorIsNeverHit(t *testing.T) {
	pool := samplePool()
	for seed := uint64(1); seed <= 30; seed++ {
		b, err := NewBattle(seededConfig(seed, pool))
		if err != nil {
			t.Fatalf("NewBattle failed: %v", err)
		}
		survivor := b.Survivor()

		final, steps := runToEnd(t, b, 5*time.Minute)
		for _, s := range steps {
			c := s.Frame.(BattleFrame).Contestants[survivor]
			if c.Lives != c.MaxLives || !c.Alive || c.Hit {
				t.Fatalf("seed %d: survivor was touched: %+v", seed, c)
			}
		}

		f := final.Frame.(BattleFrame)
		if f.Remaining != 1 {
			t.Fatalf("unexpected remaining: got=%d want=1", f.Remaining)
		}
		if final.Winner != pool[survivor].Name {
			t.Fatalf("unexpected winner: got=%q want=%q", final.Winner, pool[survivor].Name)
		}

		alive := 0
		for _, c := range f.Contestants {
			if c.Alive {
				alive++
			}
		}
		if alive != 1 {
			t.Fatalf("unexpected alive count: %d", alive)
		}

		// 生存者以外のライフ合計がそのままヒット数になる
		wantHits := 0
		for i, e := range pool {
			if i != survivor {
				wantHits += e.Weight
			}
		}
		if b.Hits() != wantHits {
			t.Fatalf("unexpected hits: got=%d want=%d", b.Hits(), wantHits)
		}
	}
}

func TestBattle_LivesFollowWeighting(t *testing.T) {
	pool := []types.Entry{{Name: "A", Weight: 4}, {Name: "B", Weight: 2}}

	tests := []struct {
		name     string
		weighted bool
		want     []int
	}{
		{name: "weighted", weighted: true, want: []int{4, 2}},
		{name: "unweighted", weighted: false, want: []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := seededConfig(1, pool)
			cfg.Weighted = tt.weighted
			b, err := NewBattle(cfg)
			if err != nil {
				t.Fatalf("NewBattle failed: %v", err)
			}
			for i, c := range b.Contestants() {
				if c.Lives != tt.want[i] {
					t.Fatalf("unexpected lives for %s: got=%d want=%d", c.Name, c.Lives, tt.want[i])
				}
			}
		})
	}
}

func TestBattle_IntervalAccelerates(t *testing.T) {
	pool := make([]types.Entry, 10)
	for i := range pool {
		pool[i] = types.Entry{Name: string(rune('A' + i)), Weight: 1}
	}
	b, err := NewBattle(seededConfig(1, pool))
	if err != nil {
		t.Fatalf("NewBattle failed: %v", err)
	}

	prev := b.interval()
	if prev != 700*time.Millisecond {
		t.Fatalf("unexpected starting interval: %v", prev)
	}
	for b.alive > 1 {
		b.alive--
		got := b.interval()
		if got > prev {
			t.Fatalf("interval grew: %v > %v", got, prev)
		}
		if got < 150*time.Millisecond {
			t.Fatalf("interval below floor: %v", got)
		}
		prev = got
	}
}

func TestBattle_EliminatedFadeOut(t *testing.T) {
	b, err := NewBattle(seededConfig(4, samplePool()))
	if err != nil {
		t.Fatalf("NewBattle failed: %v", err)
	}
	final, _ := runToEnd(t, b, 5*time.Minute)

	for i, c := range final.Frame.(BattleFrame).Contestants {
		if i == b.Survivor() {
			if c.Opacity != 1 {
				t.Fatalf("survivor should stay opaque: %v", c.Opacity)
			}
			continue
		}
		if c.Alive || c.Opacity < 0 || c.Opacity > 1 {
			t.Fatalf("unexpected eliminated contestant: %+v", c)
		}
	}
}
