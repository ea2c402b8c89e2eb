// Package driver runs one reveal at a time to completion or cancellation.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/status"
	"github.com/ichi0g0y/name-picker/internal/tuning"
	"github.com/ichi0g0y/name-picker/internal/types"
)

var ErrAlreadyRunning = errors.New("a draw is already running")

const DefaultFrameInterval = 16 * time.Millisecond

// Options wires the driver to its collaborators. Pool is required.
type Options struct {
	Pool          PoolSource
	Renderer      Renderer
	Recorder      Recorder
	Clock         Clock
	Frames        FrameSource
	RNG           lottery.RandomSource
	Policy        *reveal.Policy
	Tuning        tuning.Tuning
	FrameInterval time.Duration
	// Weighted reports whether weights apply to the next draw. nil means true.
	Weighted func() bool
}

// Result is how a draw ended. Cancelled draws carry no winner.
type Result struct {
	DrawID    string      `json:"draw_id"`
	Mode      reveal.Mode `json:"mode"`
	Winner    string      `json:"winner,omitempty"`
	Cancelled bool        `json:"cancelled"`
}

// Draw is a single in-flight session.
type Draw struct {
	ID        string
	Mode      reveal.Mode
	Speed     float64
	Weighted  bool
	Entries   []types.Entry
	StartedAt time.Time

	token   *reveal.Token
	machine reveal.Machine

	mu     sync.Mutex // serialises a tick and its render against Cancel
	once   sync.Once
	done   chan struct{}
	result Result
}

// Done is closed once the draw has resolved.
func (dr *Draw) Done() <-chan struct{} { return dr.done }

// Wait blocks until the draw resolves or ctx ends.
func (dr *Draw) Wait(ctx context.Context) (Result, error) {
	select {
	case <-dr.done:
		return dr.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the outcome; ok is false until the draw resolved.
func (dr *Draw) Result() (Result, bool) {
	select {
	case <-dr.done:
		return dr.result, true
	default:
		return Result{}, false
	}
}

// Driver owns the busy flag. Only one draw may be in flight.
type Driver struct {
	opts Options

	mu         sync.Mutex
	current    *Draw
	lastWinner string
}

func New(opts Options) *Driver {
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Frames == nil {
		opts.Frames = TickerFrames()
	}
	if opts.RNG == nil {
		opts.RNG = lottery.DefaultRNG()
	}
	if opts.Policy == nil {
		opts.Policy = reveal.NewPolicy()
	}
	if opts.Tuning == (tuning.Tuning{}) {
		opts.Tuning = tuning.Default()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	return &Driver{opts: opts}
}

// Busy reports whether a draw is in flight.
func (d *Driver) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current != nil
}

// Current returns the in-flight draw, or nil.
func (d *Driver) Current() *Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// LastWinner is the winner of the most recent resolved draw.
func (d *Driver) LastWinner() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastWinner
}

// ClearLastWinner forgets the last winner once it has been acted on.
func (d *Driver) ClearLastWinner() {
	d.mu.Lock()
	d.lastWinner = ""
	d.mu.Unlock()
}

// Start snapshots the pool and runs mode in the background. All validation
// errors are returned synchronously.
func (d *Driver) Start(mode reveal.Mode, speed float64) (*Draw, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current != nil {
		return nil, ErrAlreadyRunning
	}
	if d.opts.Pool == nil {
		return nil, lottery.ErrEmptyPool
	}

	entries, err := d.opts.Pool.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}

	weighted := true
	if d.opts.Weighted != nil {
		weighted = d.opts.Weighted()
	}
	speed = anim.ClampSpeed(speed)
	token := reveal.NewToken()

	machine, err := reveal.New(mode, reveal.Config{
		Entries:  entries,
		Weighted: weighted,
		Speed:    speed,
		RNG:      d.opts.RNG,
		Token:    token,
		Policy:   d.opts.Policy,
		Tuning:   d.opts.Tuning,
	})
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draw id: %w", err)
	}

	dr := &Draw{
		ID:        id,
		Mode:      mode,
		Speed:     speed,
		Weighted:  weighted,
		Entries:   entries,
		StartedAt: d.opts.Clock.Now(),
		token:     token,
		machine:   machine,
		done:      make(chan struct{}),
	}
	d.current = dr
	status.SetDrawing(dr.ID, string(mode))

	logger.Info("Draw started",
		zap.String("draw_id", dr.ID),
		zap.String("mode", string(mode)),
		zap.Float64("speed", speed),
		zap.Int("entries", len(entries)),
		zap.Bool("weighted", weighted))

	go d.run(dr)
	return dr, nil
}

// Cancel aborts the in-flight draw. The busy flag is released before Cancel
// returns and no frame of the cancelled draw is rendered afterwards.
func (d *Driver) Cancel() bool {
	d.mu.Lock()
	dr := d.current
	d.current = nil
	d.mu.Unlock()

	if dr == nil {
		return false
	}

	dr.token.Cancel()
	// 描画中のフレームが終わるのを待つ
	dr.mu.Lock()
	dr.mu.Unlock()

	d.finish(dr, Result{Cancelled: true})
	return true
}

func (d *Driver) run(dr *Draw) {
	ticks, stop := d.opts.Frames.Start(d.opts.FrameInterval)
	defer stop()

	if d.tick(dr, dr.StartedAt) {
		return
	}
	for {
		select {
		case <-dr.done:
			return
		case now, ok := <-ticks:
			if !ok {
				return
			}
			if d.tick(dr, now) {
				return
			}
		}
	}
}

// tick advances the machine once; it reports whether the draw is over.
func (d *Driver) tick(dr *Draw, now time.Time) bool {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.token.Cancelled() {
		return true
	}

	s := dr.machine.Tick(now.Sub(dr.StartedAt))
	if s.Frame != nil {
		d.opts.Renderer.RenderFrame(dr.ID, s.Frame)
	}
	if !s.Done {
		return false
	}

	d.finish(dr, Result{Winner: s.Winner, Cancelled: s.Cancelled})
	return true
}

// finish resolves dr exactly once.
func (d *Driver) finish(dr *Draw, res Result) {
	dr.once.Do(func() {
		res.DrawID = dr.ID
		res.Mode = dr.Mode
		dr.result = res

		d.mu.Lock()
		if d.current == dr {
			d.current = nil
		}
		if !res.Cancelled {
			d.lastWinner = res.Winner
		}
		idle := d.current == nil
		d.mu.Unlock()

		if idle {
			status.SetIdle()
		}

		if res.Cancelled {
			logger.Info("Draw cancelled", zap.String("draw_id", dr.ID), zap.String("mode", string(dr.Mode)))
		} else {
			logger.Info("Draw resolved",
				zap.String("draw_id", dr.ID),
				zap.String("mode", string(dr.Mode)),
				zap.String("winner", res.Winner))
			d.record(dr, res)
		}

		close(dr.done)
	})
}

func (d *Driver) record(dr *Draw, res Result) {
	if d.opts.Recorder == nil {
		return
	}
	rec := types.DrawRecord{
		DrawID:      dr.ID,
		Mode:        string(dr.Mode),
		WinnerName:  res.Winner,
		PoolSize:    len(dr.Entries),
		TotalWeight: lottery.TotalWeight(dr.Entries, dr.Weighted),
		Speed:       dr.Speed,
		DrawnAt:     d.opts.Clock.Now(),
	}
	if err := d.opts.Recorder.RecordDraw(rec); err != nil {
		logger.Error("Failed to record draw", zap.String("draw_id", dr.ID), zap.Error(err))
	}
}
