package driver

import (
	"time"

	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/types"
)

// PoolSource supplies the entries a draw snapshots at start.
type PoolSource interface {
	Entries() ([]types.Entry, error)
}

// PoolFunc adapts a function to PoolSource.
type PoolFunc func() ([]types.Entry, error)

func (f PoolFunc) Entries() ([]types.Entry, error) { return f() }

// Renderer receives every frame of a draw.
type Renderer interface {
	RenderFrame(drawID string, frame reveal.Frame)
}

// Recorder persists resolved draws.
type Recorder interface {
	RecordDraw(rec types.DrawRecord) error
}

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// FrameSource produces host ticks at roughly the given interval.
type FrameSource interface {
	Start(interval time.Duration) (ticks <-chan time.Time, stop func())
}

type tickerFrames struct{}

func (tickerFrames) Start(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// TickerFrames drives draws from a time.Ticker.
func TickerFrames() FrameSource { return tickerFrames{} }

type nopRenderer struct{}

func (nopRenderer) RenderFrame(string, reveal.Frame) {}
