package reveal

import (
	"math"
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
)

type SpotlightPhase string

const (
	SpotlightSweeping SpotlightPhase = "sweeping"
	SpotlightHoming   SpotlightPhase = "homing"
	SpotlightLocked   SpotlightPhase = "locked"
	SpotlightResolved SpotlightPhase = "resolved"
)

type SpotTarget struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type SpotlightFrame struct {
	Mode    Mode           `json:"mode"`
	Phase   SpotlightPhase `json:"phase"`
	Center  Point          `json:"center"`
	Radius  float64        `json:"radius"`
	Targets []SpotTarget   `json:"targets"`
	Winner  string         `json:"winner,omitempty"`
}

func (SpotlightFrame) FrameMode() Mode { return ModeSpotlight }

// Spotlight wanders over the stage, homes on the winner and locks there.
type Spotlight struct {
	base
	targets []SpotTarget
	winner  int
	path    []Point // start point followed by the sweep waypoints
	sweep   time.Duration
	homing  time.Duration
	lock    time.Duration
	phase   SpotlightPhase
}

func NewSpotlight(cfg Config) (*Spotlight, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	t := b.cfg.Tuning.Spotlight
	stage := b.cfg.Tuning.Stage

	winner, err := lottery.SelectFromWeights(b.weights, b.cfg.RNG)
	if err != nil {
		return nil, err
	}

	pos := gridLayout(len(b.cfg.Entries), stage, 80)
	targets := make([]SpotTarget, len(pos))
	for i, e := range b.cfg.Entries {
		targets[i] = SpotTarget{Name: e.Name, X: pos[i].X, Y: pos[i].Y}
	}

	sp := &Spotlight{
		base:    b,
		targets: targets,
		winner:  winner,
		sweep:   b.scaled(time.Duration(lottery.Uniform(b.cfg.RNG, float64(t.SweepMin), float64(t.SweepMax)))),
		homing:  b.scaled(t.HomingDuration),
		lock:    b.scaled(t.LockDuration),
		phase:   SpotlightSweeping,
	}
	sp.path = sp.waypoints()
	return sp, nil
}

// waypoints builds the sweep path. The last waypoint sits a short random
// distance from the winner, never exactly on it.
func (sp *Spotlight) waypoints() []Point {
	t := sp.cfg.Tuning.Spotlight
	stage := sp.cfg.Tuning.Stage
	rng := sp.cfg.RNG
	margin := t.Radius / 2

	count := t.MinWaypoints + lottery.Intn(rng, t.MaxWaypoints-t.MinWaypoints+1)
	path := []Point{{X: stage.Width / 2, Y: stage.Height / 2}}
	for i := 0; i < count-1; i++ {
		path = append(path, Point{
			X: lottery.Uniform(rng, margin, stage.Width-margin),
			Y: lottery.Uniform(rng, margin, stage.Height-margin),
		})
	}

	w := sp.WinnerPosition()
	angle := lottery.Uniform(rng, 0, twoPi)
	dist := t.NearOffset * lottery.Uniform(rng, 0.4, 1)
	near := Point{X: w.X + math.Cos(angle)*dist, Y: w.Y + math.Sin(angle)*dist}
	return append(path, clampPoint(near, stage, margin))
}

func (sp *Spotlight) WinnerPosition() Point {
	return Point{X: sp.targets[sp.winner].X, Y: sp.targets[sp.winner].Y}
}

// Waypoints excludes the starting point.
func (sp *Spotlight) Waypoints() []Point { return sp.path[1:] }

func (sp *Spotlight) sweepAt(p float64) Point {
	legs := len(sp.path) - 1
	pos := p * float64(legs)
	i := int(pos)
	if i >= legs {
		return sp.path[legs]
	}
	return sp.path[i].lerp(sp.path[i+1], anim.EaseInOutCubic(pos-float64(i)))
}

func (sp *Spotlight) Tick(elapsed time.Duration) Step {
	if s, ok := sp.begin(elapsed); !ok {
		return s
	}
	t := sp.cfg.Tuning.Spotlight
	last := sp.path[len(sp.path)-1]
	winnerPos := sp.WinnerPosition()

	frame := SpotlightFrame{Mode: ModeSpotlight, Radius: t.Radius, Targets: sp.targets}
	switch {
	case elapsed < sp.sweep:
		sp.phase = SpotlightSweeping
		frame.Center = sp.sweepAt(anim.Progress(elapsed, sp.sweep))

	case elapsed < sp.sweep+sp.homing:
		sp.phase = SpotlightHoming
		p := anim.EaseOutCubic(anim.Progress(elapsed-sp.sweep, sp.homing))
		frame.Center = last.lerp(winnerPos, p)

	case elapsed < sp.sweep+sp.homing+sp.lock:
		sp.phase = SpotlightLocked
		p := anim.EaseOutCubic(anim.Progress(elapsed-sp.sweep-sp.homing, sp.lock))
		frame.Center = winnerPos
		frame.Radius = anim.Lerp(t.Radius, t.LockedRadius, p)

	default:
		sp.phase = SpotlightResolved
		frame.Center = winnerPos
		frame.Radius = t.LockedRadius
		frame.Phase = sp.phase
		frame.Winner = sp.targets[sp.winner].Name
		return sp.settle(Step{Frame: frame, Winner: frame.Winner})
	}

	frame.Phase = sp.phase
	return Step{Frame: frame}
}
