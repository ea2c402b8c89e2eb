package reveal

import (
	"math"
	"sort"
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/types"
)

const twoPi = 2 * math.Pi

type WheelPhase string

const (
	WheelIdle     WheelPhase = "idle"
	WheelSpinning WheelPhase = "spinning"
	WheelResolved WheelPhase = "resolved"
)

// WheelSegment is one entry's arc, [Start, End) in radians.
type WheelSegment struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type WheelFrame struct {
	Mode     Mode           `json:"mode"`
	Phase    WheelPhase     `json:"phase"`
	Rotation float64        `json:"rotation"`
	Segments []WheelSegment `json:"segments"`
	Winner   string         `json:"winner,omitempty"`
}

func (WheelFrame) FrameMode() Mode { return ModeWheel }

// WheelSegments lays arcs proportional to the effective weights in pool order.
func WheelSegments(entries []types.Entry, weighted bool) []WheelSegment {
	weights := lottery.EffectiveWeights(entries, weighted)
	total := 0
	for _, w := range weights {
		total += w
	}

	segs := make([]WheelSegment, len(entries))
	acc := 0
	for i, e := range entries {
		start := float64(acc) / float64(total) * twoPi
		acc += weights[i]
		segs[i] = WheelSegment{Name: e.Name, Start: start, End: float64(acc) / float64(total) * twoPi}
	}
	if len(segs) > 0 {
		segs[len(segs)-1].End = twoPi
	}
	return segs
}

// NormalizeAngle maps a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// PointerAngle is the wheel angle under the top pointer after rotating by r.
func PointerAngle(r float64) float64 {
	return NormalizeAngle(-math.Pi/2 - r)
}

// SegmentAt returns the segment containing angle. An angle on an edge belongs
// to the segment starting there; anything at or past the last end (rounding)
// belongs to the last segment.
func SegmentAt(segs []WheelSegment, angle float64) int {
	if len(segs) == 0 {
		return -1
	}
	i := sort.Search(len(segs), func(i int) bool { return segs[i].End > angle })
	if i >= len(segs) {
		return len(segs) - 1
	}
	return i
}

// Wheel derives its winner from where the pointer lands, not from the selector.
type Wheel struct {
	base
	segments []WheelSegment
	rotation float64 // R
	duration time.Duration
	phase    WheelPhase
}

func NewWheel(cfg Config) (*Wheel, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	t := b.cfg.Tuning.Wheel
	spins := t.MinSpins + lottery.Uniform(b.cfg.RNG, 0, t.ExtraSpins)
	r := spins*twoPi + lottery.Uniform(b.cfg.RNG, 0, twoPi)

	return &Wheel{
		base:     b,
		segments: WheelSegments(b.cfg.Entries, b.cfg.Weighted),
		rotation: r,
		duration: b.scaled(t.Duration),
		phase:    WheelIdle,
	}, nil
}

// TargetRotation is the total rotation the spin ends on.
func (w *Wheel) TargetRotation() float64 { return w.rotation }

func (w *Wheel) Segments() []WheelSegment { return w.segments }

func (w *Wheel) Tick(elapsed time.Duration) Step {
	if s, ok := w.begin(elapsed); !ok {
		return s
	}
	w.phase = WheelSpinning

	p := anim.Progress(elapsed, w.duration)
	frame := WheelFrame{
		Mode:     ModeWheel,
		Phase:    w.phase,
		Rotation: w.rotation * anim.EaseOutCubic(p),
		Segments: w.segments,
	}
	if p < 1 {
		return Step{Frame: frame}
	}

	w.phase = WheelResolved
	winner := w.segments[SegmentAt(w.segments, PointerAngle(w.rotation))].Name
	frame.Phase = w.phase
	frame.Rotation = w.rotation
	frame.Winner = winner
	return w.settle(Step{Frame: frame, Winner: winner})
}
