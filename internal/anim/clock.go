// Package anim maps elapsed time to animation progress. It never owns a timer:
// callers pass the elapsed time of the current host tick.
package anim

import (
	"math"
	"time"
)

const (
	MinSpeed = 0.1
	MaxSpeed = 10.0
)

// ClampSpeed keeps a speed multiplier inside [MinSpeed, MaxSpeed].
// Non-finite or non-positive values fall back to 1.
func ClampSpeed(speed float64) float64 {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return 1
	}
	return math.Min(MaxSpeed, math.Max(MinSpeed, speed))
}

// Scale shortens (speed > 1) or stretches (speed < 1) a base duration.
func Scale(base time.Duration, speed float64) time.Duration {
	return time.Duration(float64(base) / ClampSpeed(speed))
}

// ScaleRate multiplies a per-second rate by the speed multiplier.
func ScaleRate(rate, speed float64) float64 {
	return rate * ClampSpeed(speed)
}

// Progress returns clamp(elapsed/duration, 0, 1). A zero duration is complete.
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Seconds is a float view of a duration used by per-second motion.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}
