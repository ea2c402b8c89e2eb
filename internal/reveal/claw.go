package reveal

import (
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
)

type ClawState string

const (
	ClawMoving      ClawState = "moving"
	ClawDescending  ClawState = "descending"
	ClawGrabbing    ClawState = "grabbing"
	ClawAscending   ClawState = "ascending"
	ClawMoveToChute ClawState = "move_to_chute"
	ClawDropping    ClawState = "dropping"
	ClawDone        ClawState = "done"
)

// ClawPiece is one liftable prize. An entry owns as many pieces as its weight.
type ClawPiece struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Held      bool    `json:"held"`
	Delivered bool    `json:"delivered"`
}

type ClawFrame struct {
	Mode        Mode        `json:"mode"`
	State       ClawState   `json:"state"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	ProngAngle  float64     `json:"prong_angle"`
	Pieces      []ClawPiece `json:"pieces"`
	Chute       Point       `json:"chute"`
	Attempt     int         `json:"attempt"`
	FumblesLeft int         `json:"fumbles_left"`
	Winner      string      `json:"winner,omitempty"`
}

func (ClawFrame) FrameMode() Mode { return ModeClaw }

// Claw lifts a pre-drawn piece, possibly after a few fabricated fumbles.
type Claw struct {
	base
	timeline anim.Timeline

	pieces  []ClawPiece
	target  int // piece index the claw is going for
	held    int // piece index in the prongs, -1 when empty
	initial string

	x, y       float64
	railY      float64
	chute      Point
	prong      float64
	prongFrom  float64
	prongTo    float64
	prongStart time.Duration
	prongDur   time.Duration

	state       ClawState
	waiting     bool // a timeline callback owns the next transition
	fumbles     int
	fumblesLeft int
	grabs       int
	attempt     int
	winner      string
}

func NewClaw(cfg Config) (*Claw, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	t := b.cfg.Tuning.Claw
	stage := b.cfg.Tuning.Stage

	c := &Claw{
		base:      b,
		held:      -1,
		railY:     t.PieceRadius * 2.5,
		chute:     Point{X: t.PieceRadius * 3, Y: t.PieceRadius * 2.5},
		prong:     t.ProngOpen,
		prongFrom: t.ProngOpen,
		prongTo:   t.ProngOpen,
		state:     ClawMoving,
	}
	c.x, c.y = stage.Width/2, c.railY
	c.scatterPieces()

	// 展開後のピースから一様抽選する
	c.target = lottery.Intn(b.cfg.RNG, len(c.pieces))
	c.initial = c.pieces[c.target].Name
	c.fumbles = c.rollFumbles()
	c.fumblesLeft = c.fumbles
	c.attempt = 1
	return c, nil
}

func (c *Claw) scatterPieces() {
	t := c.cfg.Tuning.Claw
	stage := c.cfg.Tuning.Stage
	names := c.names()

	flat := lottery.ExpandIndices(c.weights)
	lottery.Shuffle(c.cfg.RNG, flat)

	minX := c.chute.X + t.PieceRadius*3
	maxX := stage.Width - t.PieceRadius
	minY := stage.Height * 0.55
	maxY := stage.Height - t.PieceRadius
	if maxX < minX {
		maxX = minX
	}

	c.pieces = make([]ClawPiece, len(flat))
	for i, idx := range flat {
		c.pieces[i] = ClawPiece{
			ID:   i,
			Name: names[idx],
			X:    lottery.Uniform(c.cfg.RNG, minX, maxX),
			Y:    lottery.Uniform(c.cfg.RNG, minY, maxY),
		}
	}
}

// rollFumbles partitions one uniform roll into 0, 1 or 2 fumbles. The first
// claw draw of a session never fumbles.
func (c *Claw) rollFumbles() int {
	if c.cfg.Policy.TakeFirstClawGuarantee() {
		return 0
	}
	t := c.cfg.Tuning.Claw
	u := lottery.Unit(c.cfg.RNG)
	switch {
	case u < t.NoFumbleOdds:
		return 0
	case u < t.OneFumbleCap:
		return 1
	}
	return 2
}

// Fumbles is the number of fabricated failed grabs rolled for this draw.
func (c *Claw) Fumbles() int { return c.fumbles }

// SuccessfulGrabs counts grabs that actually held a piece.
func (c *Claw) SuccessfulGrabs() int { return c.grabs }

// InitialTarget is the name of the piece drawn before any fumble.
func (c *Claw) InitialTarget() string { return c.initial }

func (c *Claw) State() ClawState { return c.state }

// after schedules fn on the draw's own clock. fn is skipped once cancelled.
func (c *Claw) after(delay time.Duration, fn func()) {
	c.waiting = true
	c.timeline.After(c.scaled(delay), func() {
		if c.cfg.Token.Cancelled() {
			return
		}
		c.waiting = false
		fn()
	})
}

func (c *Claw) setProng(to float64, d time.Duration) {
	c.prongFrom, c.prongTo = c.prong, to
	c.prongStart = c.last
	c.prongDur = c.scaled(d)
}

func (c *Claw) Tick(elapsed time.Duration) Step {
	if s, ok := c.begin(elapsed); !ok {
		c.timeline.Clear()
		return s
	}

	c.timeline.Advance(elapsed)
	if c.cfg.Token.Cancelled() {
		c.timeline.Clear()
		return c.settle(Step{Done: true, Cancelled: true})
	}

	if !c.waiting {
		c.step()
	}
	c.prong = anim.Lerp(c.prongFrom, c.prongTo, anim.EaseOutCubic(anim.Progress(elapsed-c.prongStart, c.prongDur)))
	if c.held >= 0 {
		c.pieces[c.held].X = c.x
		c.pieces[c.held].Y = c.y + c.cfg.Tuning.Claw.PieceRadius
	}

	frame := c.frame()
	if c.state == ClawDone {
		return c.settle(Step{Frame: frame, Winner: c.winner})
	}
	return Step{Frame: frame}
}

// step applies motion for the current state and handles arrivals.
func (c *Claw) step() {
	t := c.cfg.Tuning.Claw
	dt := anim.Seconds(c.dt)
	var arrived bool

	switch c.state {
	case ClawMoving:
		c.x, arrived = moveToward(c.x, c.pieces[c.target].X, c.rate(t.MoveSpeed)*dt)
		if arrived {
			c.state = ClawDescending
		}

	case ClawDescending:
		bottom := c.pieces[c.target].Y - t.PieceRadius
		c.y, arrived = moveToward(c.y, bottom, c.rate(t.DropSpeed)*dt)
		if arrived {
			c.state = ClawGrabbing
			c.setProng(t.ProngClosed, t.GrabDelay)
			c.after(t.GrabDelay, c.resolveGrab)
		}

	case ClawAscending:
		c.y, arrived = moveToward(c.y, c.railY, c.rate(t.LiftSpeed)*dt)
		if !arrived {
			return
		}
		if c.held >= 0 {
			c.state = ClawMoveToChute
			return
		}
		c.attempt++
		c.state = ClawMoving

	case ClawMoveToChute:
		c.x, arrived = moveToward(c.x, c.chute.X, c.rate(t.MoveSpeed)*dt)
		if arrived {
			c.state = ClawDropping
			c.setProng(t.ProngOpen, t.ReleaseDelay)
			c.after(t.ReleaseDelay, c.release)
		}
	}
}

// resolveGrab either burns a fumble (open prongs, redraw the target) or
// closes on the target piece.
func (c *Claw) resolveGrab() {
	t := c.cfg.Tuning.Claw
	if c.fumblesLeft > 0 {
		c.fumblesLeft--
		c.setProng(t.ProngOpen, t.ReleaseDelay)
		c.target = lottery.Intn(c.cfg.RNG, len(c.pieces))
		c.state = ClawAscending
		return
	}

	c.held = c.target
	c.pieces[c.held].Held = true
	c.grabs++
	c.state = ClawAscending
}

func (c *Claw) release() {
	p := &c.pieces[c.held]
	c.held = -1
	p.Held = false
	p.X, p.Y = c.chute.X, c.cfg.Tuning.Stage.Height
	c.after(c.cfg.Tuning.Claw.FallDuration, func() {
		p.Delivered = true
		c.winner = p.Name
		c.state = ClawDone
	})
}

func (c *Claw) frame() ClawFrame {
	pieces := make([]ClawPiece, len(c.pieces))
	copy(pieces, c.pieces)
	return ClawFrame{
		Mode:        ModeClaw,
		State:       c.state,
		X:           c.x,
		Y:           c.y,
		ProngAngle:  c.prong,
		Pieces:      pieces,
		Chute:       c.chute,
		Attempt:     c.attempt,
		FumblesLeft: c.fumblesLeft,
		Winner:      c.winner,
	}
}
