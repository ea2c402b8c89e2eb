package reveal

import (
	"errors"
	"testing"
	"time"

	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/types"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "wheel", want: ModeWheel},
		{in: " Slots ", want: ModeSlots},
		{in: "BATTLE", want: ModeBattle},
		{in: "pinball", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Fatalf("unexpected error: got=%v want=%v", err, ErrUnknownMode)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("unexpected mode: got=%q err=%v want=%q", got, err, tt.want)
			}
		})
	}
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New(Mode("pinball"), seededConfig(1, samplePool()))
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_RejectsSmallPools(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			_, err := New(mode, seededConfig(1, nil))
			if !errors.Is(err, lottery.ErrEmptyPool) {
				t.Fatalf("unexpected error for empty pool: %v", err)
			}

			_, err = New(mode, seededConfig(1, []types.Entry{{Name: "solo", Weight: 1}}))
			if !errors.Is(err, lottery.ErrInsufficientEntries) {
				t.Fatalf("unexpected error for single entry: %v", err)
			}
		})
	}
}

func TestAllModesResolveToPoolMember(t *testing.T) {
	pool := samplePool()
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			for seed := uint64(1); seed <= 5; seed++ {
				m, err := New(mode, seededConfig(seed, pool))
				if err != nil {
					t.Fatalf("New failed: %v", err)
				}
				final, steps := runToEnd(t, m, 2*time.Minute)
				if final.Cancelled {
					t.Fatalf("draw should not be cancelled")
				}
				if !containsName(pool, final.Winner) {
					t.Fatalf("winner %q is not in the pool", final.Winner)
				}
				for _, s := range steps {
					if s.Frame == nil || s.Frame.FrameMode() != mode {
						t.Fatalf("frame mode mismatch: %#v", s.Frame)
					}
				}

				// 確定後の Tick は同じ結果を返す
				again := m.Tick(10 * time.Minute)
				if again.Winner != final.Winner || !again.Done {
					t.Fatalf("settled machine changed: got=%+v want=%+v", again, final)
				}
			}
		})
	}
}

func TestCancellation_EveryMode(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			cfg := seededConfig(3, samplePool())
			cfg.Token = NewToken()
			m, err := New(mode, cfg)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			elapsed := time.Duration(0)
			for i := 0; i < 40; i++ {
				if s := m.Tick(elapsed); s.Done {
					t.Fatalf("draw settled too early at %v", elapsed)
				}
				elapsed += frameStep
			}

			if !cfg.Token.Cancel() {
				t.Fatalf("first Cancel should report a change")
			}
			if cfg.Token.Cancel() {
				t.Fatalf("second Cancel should be a no-op")
			}

			for i := 0; i < 3; i++ {
				s := m.Tick(elapsed + time.Duration(i)*time.Hour)
				if !s.Done || !s.Cancelled {
					t.Fatalf("expected cancelled step, got=%+v", s)
				}
				if s.Frame != nil || s.Winner != "" {
					t.Fatalf("cancelled step must carry no frame or winner: %+v", s)
				}
			}
		})
	}
}

func TestToken_NilIsNeverCancelled(t *testing.T) {
	var tok *Token
	if tok.Cancelled() {
		t.Fatalf("nil token should not be cancelled")
	}
	if tok.Cancel() {
		t.Fatalf("nil token cancel should be a no-op")
	}
}

func TestPolicy_Lifecycle(t *testing.T) {
	p := NewPolicy()
	if !p.FirstClawDrawPending() {
		t.Fatalf("fresh policy should have the guarantee pending")
	}
	if !p.TakeFirstClawGuarantee() {
		t.Fatalf("first take should return true")
	}
	if p.TakeFirstClawGuarantee() {
		t.Fatalf("second take should return false")
	}
	p.Reset()
	if !p.FirstClawDrawPending() {
		t.Fatalf("reset should restore the guarantee")
	}

	var nilPolicy *Policy
	if nilPolicy.TakeFirstClawGuarantee() {
		t.Fatalf("nil policy should never guarantee")
	}
}
