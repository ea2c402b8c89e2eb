package reveal

import (
	"math"
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
)

type SlotsPhase string

const (
	SlotsIdle     SlotsPhase = "idle"
	SlotsSpinning SlotsPhase = "spinning"
	SlotsStopped  SlotsPhase = "stopped"
)

type SlotsFrame struct {
	Mode       Mode       `json:"mode"`
	Phase      SlotsPhase `json:"phase"`
	Offset     float64    `json:"offset"`
	ItemHeight float64    `json:"item_height"`
	Reel       []string   `json:"reel"`
	Winner     string     `json:"winner,omitempty"`
}

func (SlotsFrame) FrameMode() Mode { return ModeSlots }

// Slots scrolls a reel and stops exactly on a pre-drawn winner.
type Slots struct {
	base
	reel       []string
	winner     string
	start      float64
	target     float64
	itemHeight float64
	duration   time.Duration
	phase      SlotsPhase
}

func NewSlots(cfg Config) (*Slots, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	t := b.cfg.Tuning.Slots

	idx, err := lottery.SelectFromWeights(b.weights, b.cfg.RNG)
	if err != nil {
		return nil, err
	}

	names := b.names()
	strip := lottery.ExpandIndices(b.weights)
	lottery.Shuffle(b.cfg.RNG, strip)

	reel := make([]string, 0, t.MinReelItems+len(strip))
	for repeats := 0; repeats < t.MinRepeats || len(reel) < t.MinReelItems; repeats++ {
		for _, i := range strip {
			reel = append(reel, names[i])
		}
	}

	s := &Slots{
		base:       b,
		reel:       reel,
		winner:     names[idx],
		itemHeight: t.ItemHeight,
		duration:   b.scaled(t.Duration),
		phase:      SlotsIdle,
	}
	s.target = s.stopOffset()
	return s, nil
}

// stopOffset picks the first winner slot past the reel midpoint. When no such
// slot exists, one full reel length is added until the distance is covered.
func (s *Slots) stopOffset() float64 {
	n := len(s.reel)
	reelLen := float64(n) * s.itemHeight
	minDistance := reelLen / 2

	for i := int(math.Ceil(float64(n) / 2)); i < n; i++ {
		if s.reel[i] == s.winner {
			return s.start + float64(i)*s.itemHeight
		}
	}

	first := 0
	for i, name := range s.reel {
		if name == s.winner {
			first = i
			break
		}
	}
	target := s.start + float64(first)*s.itemHeight
	for target-s.start < minDistance {
		target += reelLen
	}
	return target
}

// TargetOffset is the offset the reel comes to rest on.
func (s *Slots) TargetOffset() float64 { return s.target }

func (s *Slots) Winner() string { return s.winner }

func (s *Slots) Reel() []string { return s.reel }

// NameAt returns the reel item centred at offset.
func (s *Slots) NameAt(offset float64) string {
	n := len(s.reel)
	i := int(math.Round(offset/s.itemHeight)) % n
	if i < 0 {
		i += n
	}
	return s.reel[i]
}

func (s *Slots) Tick(elapsed time.Duration) Step {
	if st, ok := s.begin(elapsed); !ok {
		return st
	}
	s.phase = SlotsSpinning

	p := anim.Progress(elapsed, s.duration)
	frame := SlotsFrame{
		Mode:       ModeSlots,
		Phase:      s.phase,
		Offset:     anim.Lerp(s.start, s.target, anim.EaseOutCubic(p)),
		ItemHeight: s.itemHeight,
		Reel:       s.reel,
	}
	if p < 1 {
		return Step{Frame: frame}
	}

	s.phase = SlotsStopped
	frame.Phase = s.phase
	frame.Offset = s.target
	frame.Winner = s.winner
	return s.settle(Step{Frame: frame, Winner: s.winner})
}
