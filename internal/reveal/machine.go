// Package reveal implements the animated draw modes. Every mode is a state
// machine advanced by Tick with the draw's elapsed time; each one ends on a
// winner fixed by a weighted draw (or, for the wheel, by its geometry).
package reveal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/types"
)

// Mode identifies a reveal.
type Mode string

const (
	ModeWheel     Mode = "wheel"
	ModeSlots     Mode = "slots"
	ModeClaw      Mode = "claw"
	ModeRace      Mode = "race"
	ModeBattle    Mode = "battle"
	ModeSpotlight Mode = "spotlight"
)

var ErrUnknownMode = errors.New("unknown draw mode")

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeWheel, ModeSlots, ModeClaw, ModeRace, ModeBattle, ModeSpotlight}
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Frame is the per-tick payload handed to a renderer.
type Frame interface {
	FrameMode() Mode
}

// Step is the result of one Tick. Frame is nil once a draw was cancelled.
type Step struct {
	Frame     Frame
	Done      bool
	Winner    string
	Cancelled bool
}

// Machine advances one draw.
type Machine interface {
	Tick(elapsed time.Duration) Step
}

// Config carries what every mode needs.
type Config struct {
	Entries  []types.Entry
	Weighted bool
	Speed    float64
	RNG      lottery.RandomSource
	Token    *Token
	Policy   *Policy
	Tuning   tuning.Tuning
}

func (c Config) normalized() Config {
	if c.RNG == nil {
		c.RNG = lottery.DefaultRNG()
	}
	if c.Tuning == (tuning.Tuning{}) {
		c.Tuning = tuning.Default()
	}
	c.Speed = anim.ClampSpeed(c.Speed)
	c.Entries = append([]types.Entry(nil), c.Entries...)
	return c
}

// New builds the machine for mode. The pool must hold at least two entries.
func New(mode Mode, cfg Config) (Machine, error) {
	switch mode {
	case ModeWheel:
		return NewWheel(cfg)
	case ModeSlots:
		return NewSlots(cfg)
	case ModeClaw:
		return NewClaw(cfg)
	case ModeRace:
		return NewRace(cfg)
	case ModeBattle:
		return NewBattle(cfg)
	case ModeSpotlight:
		return NewSpotlight(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// base is the state every machine shares.
type base struct {
	cfg     Config
	weights []int
	dt      time.Duration
	last    time.Duration
	final   *Step
}

func newBase(cfg Config) (base, error) {
	cfg = cfg.normalized()
	if err := lottery.ValidatePool(cfg.Entries, cfg.Weighted); err != nil {
		return base{}, err
	}
	return base{cfg: cfg, weights: lottery.EffectiveWeights(cfg.Entries, cfg.Weighted)}, nil
}

// begin handles the common tick prologue: a settled machine repeats its last
// step, a cancelled one settles without a frame. ok=false means stop here.
func (b *base) begin(elapsed time.Duration) (Step, bool) {
	if b.final != nil {
		return *b.final, false
	}
	if b.cfg.Token.Cancelled() {
		return b.settle(Step{Done: true, Cancelled: true}), false
	}
	if elapsed < b.last {
		elapsed = b.last
	}
	b.dt = elapsed - b.last
	b.last = elapsed
	return Step{}, true
}

func (b *base) settle(s Step) Step {
	s.Done = true
	b.final = &s
	return s
}

func (b *base) scaled(d time.Duration) time.Duration {
	return anim.Scale(d, b.cfg.Speed)
}

func (b *base) rate(perSecond float64) float64 {
	return anim.ScaleRate(perSecond, b.cfg.Speed)
}

func (b *base) names() []string {
	return types.Names(b.cfg.Entries)
}
