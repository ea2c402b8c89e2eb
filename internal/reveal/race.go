package reveal

import (
	"math"
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
)

type RacePhase string

const (
	RaceRunning  RacePhase = "running"
	RaceFinale   RacePhase = "finale"
	RaceResolved RacePhase = "resolved"
)

// targetGap keeps the drawn racer strictly behind every unfinished rival once
// the hold engages.
const targetGap = 0.002

// minSpeedFactor floors every racer at a fraction of the nominal speed so the
// field always reaches the line.
const minSpeedFactor = 0.1

type Racer struct {
	Name     string  `json:"name"`
	Lane     int     `json:"lane"`
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"`
	Finished bool    `json:"finished"`
	Place    int     `json:"place,omitempty"`
}

type RaceFrame struct {
	Mode   Mode      `json:"mode"`
	Phase  RacePhase `json:"phase"`
	Racers []Racer   `json:"racers"`
	Winner string    `json:"winner,omitempty"`
}

func (RaceFrame) FrameMode() Mode { return ModeRace }

// Race picks the last-place finisher: the drawn racer is held back until
// every rival has crossed the line.
type Race struct {
	base
	racers    []Racer
	baseSpeed []float64
	curves    [][]float64
	minSpeed  float64
	target    int
	duration  time.Duration
	finished  int
	phase     RacePhase
}

func NewRace(cfg Config) (*Race, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	t := b.cfg.Tuning.Race

	target, err := lottery.SelectFromWeights(b.weights, b.cfg.RNG)
	if err != nil {
		return nil, err
	}

	r := &Race{
		base:     b,
		target:   target,
		duration: b.scaled(t.Duration),
		phase:    RaceRunning,
	}

	nominal := 1 / r.duration.Seconds() // progress per second
	r.minSpeed = nominal * minSpeedFactor
	n := len(b.cfg.Entries)
	r.racers = make([]Racer, n)
	r.baseSpeed = make([]float64, n)
	r.curves = make([][]float64, n)
	for i, e := range b.cfg.Entries {
		s := nominal * (1 + lottery.Uniform(b.cfg.RNG, -t.SpeedJitter, t.SpeedJitter))
		if i == target {
			s *= 1 - t.TargetSlowdown
		}
		r.baseSpeed[i] = s
		r.curves[i] = variationCurve(b.cfg.RNG, t.VariationPoints, t.VariationSpread)
		r.racers[i] = Racer{Name: e.Name, Lane: i, Speed: math.Max(s, r.minSpeed)}
	}
	return r, nil
}

// variationCurve samples a speed multiplier curve once and smooths it with a
// 3-point moving average.
func variationCurve(rng lottery.RandomSource, points int, spread float64) []float64 {
	raw := make([]float64, points)
	for i := range raw {
		raw[i] = 1 + lottery.Uniform(rng, -spread, spread)
	}
	out := make([]float64, points)
	for i := range raw {
		sum, n := raw[i], 1.0
		if i > 0 {
			sum += raw[i-1]
			n++
		}
		if i < points-1 {
			sum += raw[i+1]
			n++
		}
		out[i] = sum / n
	}
	return out
}

func sampleCurve(curve []float64, t float64) float64 {
	if len(curve) == 1 {
		return curve[0]
	}
	t = math.Min(1, math.Max(0, t))
	pos := t * float64(len(curve)-1)
	i := int(pos)
	if i >= len(curve)-1 {
		return curve[len(curve)-1]
	}
	return anim.Lerp(curve[i], curve[i+1], pos-float64(i))
}

// Target is the index of the racer that will finish last.
func (r *Race) Target() int { return r.target }

func (r *Race) Racers() []Racer { return r.racers }

func (r *Race) Tick(elapsed time.Duration) Step {
	if s, ok := r.begin(elapsed); !ok {
		return s
	}
	t := r.cfg.Tuning.Race
	dt := anim.Seconds(r.dt)
	timeFrac := anim.Progress(elapsed, r.duration)
	finale := timeFrac >= 1-t.FinishWindow
	if finale {
		r.phase = RaceFinale
	}

	avg := 0.0
	for _, rc := range r.racers {
		avg += rc.Progress
	}
	avg /= float64(len(r.racers))

	tp := r.racers[r.target].Progress
	for i := range r.racers {
		rc := &r.racers[i]
		if i == r.target || rc.Finished {
			continue
		}

		desired := r.baseSpeed[i] * sampleCurve(r.curves[i], timeFrac)
		if avg < t.RubberBandUntil {
			switch {
			case rc.Progress > avg+t.RubberBandDelta:
				desired *= 0.9
			case rc.Progress < avg-t.RubberBandDelta:
				desired *= 1.1
			}
		}
		desired = math.Max(desired, r.minSpeed)
		if finale && rc.Progress < tp+t.FinishLead {
			// 最終区間ではターゲットの少し前に押し出す
			desired = math.Max(desired, r.racers[r.target].Speed*1.25)
			rc.Progress = anim.Approach(rc.Progress, math.Min(1, tp+t.FinishLead), 0.25)
		}

		rc.Speed = anim.Approach(rc.Speed, desired, t.SpeedBlend)
		rc.Progress += rc.Speed * dt
		if rc.Progress >= 1 {
			rc.Progress = 1
			rc.Finished = true
			r.finished++
			rc.Place = r.finished
		}
	}

	if r.finished == len(r.racers)-1 {
		r.phase = RaceResolved
		winner := r.racers[r.target].Name
		return r.settle(Step{Frame: r.frame(winner), Winner: winner})
	}

	r.advanceTarget(dt, timeFrac, avg, finale)
	return Step{Frame: r.frame("")}
}

// advanceTarget moves the drawn racer. Until the finish stretch it runs with
// the pack but stays short of the stretch; once the finale starts or any rival
// enters the stretch it is held behind the slowest unfinished rival.
func (r *Race) advanceTarget(dt, timeFrac, avg float64, finale bool) {
	t := r.cfg.Tuning.Race
	rc := &r.racers[r.target]

	desired := r.baseSpeed[r.target] * sampleCurve(r.curves[r.target], timeFrac)
	if avg < t.RubberBandUntil && rc.Progress < avg-t.RubberBandDelta {
		desired *= 1.1
	}
	rc.Speed = anim.Approach(rc.Speed, math.Max(desired, r.minSpeed), t.SpeedBlend)

	stretch := math.Min(1-t.FinishWindow, 1-targetGap)
	leader := 0.0
	for i, other := range r.racers {
		if i != r.target {
			leader = math.Max(leader, other.Progress)
		}
	}

	limit := stretch
	if finale || leader >= stretch {
		limit = 1
		for i, other := range r.racers {
			if i == r.target || other.Finished {
				continue
			}
			limit = math.Min(limit, other.Progress-targetGap)
		}
	}
	next := math.Min(rc.Progress+rc.Speed*dt, limit)
	rc.Progress = math.Max(rc.Progress, next)
}

func (r *Race) frame(winner string) RaceFrame {
	racers := make([]Racer, len(r.racers))
	copy(racers, r.racers)
	return RaceFrame{Mode: ModeRace, Phase: r.phase, Racers: racers, Winner: winner}
}
