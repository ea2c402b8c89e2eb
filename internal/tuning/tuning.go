// Package tuning holds the per-mode animation constants and loads overrides
// from a YAML file.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Stage is the logical canvas the positional modes lay entities out on.
type Stage struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

type Wheel struct {
	Duration   time.Duration `yaml:"duration"`
	MinSpins   float64       `yaml:"min_spins"`
	ExtraSpins float64       `yaml:"extra_spins"`
}

type Slots struct {
	Duration     time.Duration `yaml:"duration"`
	ItemHeight   float64       `yaml:"item_height"`
	MinReelItems int           `yaml:"min_reel_items"`
	MinRepeats   int           `yaml:"min_repeats"`
}

type Claw struct {
	MoveSpeed    float64       `yaml:"move_speed"`    // px/s
	DropSpeed    float64       `yaml:"drop_speed"`    // px/s, descending
	LiftSpeed    float64       `yaml:"lift_speed"`    // px/s, ascending
	GrabDelay    time.Duration `yaml:"grab_delay"`    // prongs closing
	ReleaseDelay time.Duration `yaml:"release_delay"` // prongs opening over the chute
	FallDuration time.Duration `yaml:"fall_duration"` // piece falling into the chute
	NoFumbleOdds float64       `yaml:"no_fumble_odds"`
	OneFumbleCap float64       `yaml:"one_fumble_cap"`
	PieceRadius  float64       `yaml:"piece_radius"`
	ProngOpen    float64       `yaml:"prong_open"`
	ProngClosed  float64       `yaml:"prong_closed"`
}

type Race struct {
	Duration        time.Duration `yaml:"duration"`
	SpeedJitter     float64       `yaml:"speed_jitter"`
	TargetSlowdown  float64       `yaml:"target_slowdown"`
	RubberBandDelta float64       `yaml:"rubber_band_delta"`
	RubberBandUntil float64       `yaml:"rubber_band_until"`
	FinishWindow    float64       `yaml:"finish_window"`
	FinishLead      float64       `yaml:"finish_lead"`
	SpeedBlend      float64       `yaml:"speed_blend"`
	VariationPoints int           `yaml:"variation_points"`
	VariationSpread float64       `yaml:"variation_spread"`
}

type Battle struct {
	BaseInterval time.Duration `yaml:"base_interval"`
	MinInterval  time.Duration `yaml:"min_interval"`
	Acceleration float64       `yaml:"acceleration"`
	FadeDuration time.Duration `yaml:"fade_duration"`
}

type Spotlight struct {
	SweepMin       time.Duration `yaml:"sweep_min"`
	SweepMax       time.Duration `yaml:"sweep_max"`
	MinWaypoints   int           `yaml:"min_waypoints"`
	MaxWaypoints   int           `yaml:"max_waypoints"`
	NearOffset     float64       `yaml:"near_offset"`
	HomingDuration time.Duration `yaml:"homing_duration"`
	LockDuration   time.Duration `yaml:"lock_duration"`
	Radius         float64       `yaml:"radius"`
	LockedRadius   float64       `yaml:"locked_radius"`
}

// Tuning is the full set of reveal constants.
type Tuning struct {
	Stage     Stage     `yaml:"stage"`
	Wheel     Wheel     `yaml:"wheel"`
	Slots     Slots     `yaml:"slots"`
	Claw      Claw      `yaml:"claw"`
	Race      Race      `yaml:"race"`
	Battle    Battle    `yaml:"battle"`
	Spotlight Spotlight `yaml:"spotlight"`
}

// Default returns the built-in constants.
func Default() Tuning {
	return Tuning{
		Stage: Stage{Width: 800, Height: 600},
		Wheel: Wheel{
			Duration:   4 * time.Second,
			MinSpins:   5,
			ExtraSpins: 3,
		},
		Slots: Slots{
			Duration:     3 * time.Second,
			ItemHeight:   140,
			MinReelItems: 30,
			MinRepeats:   3,
		},
		Claw: Claw{
			MoveSpeed:    320,
			DropSpeed:    260,
			LiftSpeed:    200,
			GrabDelay:    450 * time.Millisecond,
			ReleaseDelay: 300 * time.Millisecond,
			FallDuration: 600 * time.Millisecond,
			NoFumbleOdds: 0.67,
			OneFumbleCap: 0.83,
			PieceRadius:  24,
			ProngOpen:    0.7,
			ProngClosed:  0.15,
		},
		Race: Race{
			Duration:        8 * time.Second,
			SpeedJitter:     0.03,
			TargetSlowdown:  0.05,
			RubberBandDelta: 0.06,
			RubberBandUntil: 0.75,
			FinishWindow:    0.15,
			FinishLead:      0.01,
			SpeedBlend:      0.08,
			VariationPoints: 8,
			VariationSpread: 0.12,
		},
		Battle: Battle{
			BaseInterval: 700 * time.Millisecond,
			MinInterval:  150 * time.Millisecond,
			Acceleration: 0.8,
			FadeDuration: 500 * time.Millisecond,
		},
		Spotlight: Spotlight{
			SweepMin:       2500 * time.Millisecond,
			SweepMax:       4 * time.Second,
			MinWaypoints:   2,
			MaxWaypoints:   4,
			NearOffset:     60,
			HomingDuration: 700 * time.Millisecond,
			LockDuration:   1200 * time.Millisecond,
			Radius:         120,
			LockedRadius:   70,
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value; a missing file yields the defaults unchanged.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidTuning, name)
	}
	return nil
}

func positiveDur(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidTuning, name)
	}
	return nil
}

func fraction(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be within [0,1]", ErrInvalidTuning, name)
	}
	return nil
}

func openFraction(name string, v float64) error {
	if v < 0 || v >= 1 {
		return fmt.Errorf("%w: %s must be within [0,1)", ErrInvalidTuning, name)
	}
	return nil
}

// Validate rejects values that would stall or break a reveal.
func (t Tuning) Validate() error {
	checks := []error{
		positive("stage.width", t.Stage.Width),
		positive("stage.height", t.Stage.Height),
		positiveDur("wheel.duration", t.Wheel.Duration),
		positive("wheel.min_spins", t.Wheel.MinSpins),
		positiveDur("slots.duration", t.Slots.Duration),
		positive("slots.item_height", t.Slots.ItemHeight),
		positive("claw.move_speed", t.Claw.MoveSpeed),
		positive("claw.drop_speed", t.Claw.DropSpeed),
		positive("claw.lift_speed", t.Claw.LiftSpeed),
		positive("claw.piece_radius", t.Claw.PieceRadius),
		fraction("claw.no_fumble_odds", t.Claw.NoFumbleOdds),
		fraction("claw.one_fumble_cap", t.Claw.OneFumbleCap),
		positiveDur("race.duration", t.Race.Duration),
		openFraction("race.speed_jitter", t.Race.SpeedJitter),
		openFraction("race.variation_spread", t.Race.VariationSpread),
		fraction("race.target_slowdown", t.Race.TargetSlowdown),
		fraction("race.rubber_band_until", t.Race.RubberBandUntil),
		fraction("race.finish_window", t.Race.FinishWindow),
		fraction("race.speed_blend", t.Race.SpeedBlend),
		positiveDur("battle.base_interval", t.Battle.BaseInterval),
		positiveDur("battle.min_interval", t.Battle.MinInterval),
		fraction("battle.acceleration", t.Battle.Acceleration),
		positiveDur("spotlight.sweep_min", t.Spotlight.SweepMin),
		positiveDur("spotlight.homing_duration", t.Spotlight.HomingDuration),
		positiveDur("spotlight.lock_duration", t.Spotlight.LockDuration),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	switch {
	case t.Slots.MinReelItems < 1 || t.Slots.MinRepeats < 1:
		return fmt.Errorf("%w: slots reel sizes must be at least 1", ErrInvalidTuning)
	case t.Claw.OneFumbleCap < t.Claw.NoFumbleOdds:
		return fmt.Errorf("%w: claw.one_fumble_cap must not be below claw.no_fumble_odds", ErrInvalidTuning)
	case t.Race.SpeedBlend == 0:
		return fmt.Errorf("%w: race.speed_blend must be positive", ErrInvalidTuning)
	case t.Race.VariationPoints < 2:
		return fmt.Errorf("%w: race.variation_points must be at least 2", ErrInvalidTuning)
	case t.Battle.MinInterval > t.Battle.BaseInterval:
		return fmt.Errorf("%w: battle.min_interval exceeds battle.base_interval", ErrInvalidTuning)
	case t.Spotlight.SweepMax < t.Spotlight.SweepMin:
		return fmt.Errorf("%w: spotlight.sweep_max is below spotlight.sweep_min", ErrInvalidTuning)
	case t.Spotlight.MinWaypoints < 2 || t.Spotlight.MaxWaypoints < t.Spotlight.MinWaypoints:
		return fmt.Errorf("%w: spotlight waypoints must be 2 or more and ordered", ErrInvalidTuning)
	}
	return nil
}
