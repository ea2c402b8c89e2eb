package reveal

import (
	"math"

	"github.com/ichi0g0y/name-picker/internal/tuning"
)

// Point is a stage coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

func (p Point) dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// gridLayout spreads n slots evenly over the stage inside margin.
func gridLayout(n int, stage tuning.Stage, margin float64) []Point {
	if n <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(n) * stage.Width / stage.Height)))
	if cols < 1 {
		cols = 1
	}
	rows := (n + cols - 1) / cols

	w := stage.Width - 2*margin
	h := stage.Height - 2*margin
	cellW := w / float64(cols)
	cellH := h / float64(rows)

	out := make([]Point, n)
	for i := range out {
		c, r := i%cols, i/cols
		out[i] = Point{
			X: margin + cellW*(float64(c)+0.5),
			Y: margin + cellH*(float64(r)+0.5),
		}
	}
	return out
}

func clampPoint(p Point, stage tuning.Stage, margin float64) Point {
	p.X = math.Min(stage.Width-margin, math.Max(margin, p.X))
	p.Y = math.Min(stage.Height-margin, math.Max(margin, p.Y))
	return p
}

// moveToward steps cur toward target by at most step and reports arrival.
func moveToward(cur, target, step float64) (float64, bool) {
	d := target - cur
	if math.Abs(d) <= step {
		return target, true
	}
	if d > 0 {
		return cur + step, false
	}
	return cur - step, false
}
