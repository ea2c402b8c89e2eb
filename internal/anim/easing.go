package anim

import (
	"fmt"
	"strings"
)

// Easing maps linear progress t∈[0,1] to eased progress.
type Easing func(t float64) float64

func EaseLinear(t float64) float64 { return t }

// EaseOutQuad f(t) = 1 - (1-t)^2
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseOutCubic f(t) = 1 - (1-t)^3
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseOutQuart f(t) = 1 - (1-t)^4
func EaseOutQuart(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u*u
}

// EaseInOutCubic accelerates then decelerates.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Approach moves current toward target by factor (exponential smoothing).
func Approach(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

var easings = map[string]Easing{
	"linear":         EaseLinear,
	"easeoutquad":    EaseOutQuad,
	"easeoutcubic":   EaseOutCubic,
	"easeoutquart":   EaseOutQuart,
	"easeinoutcubic": EaseInOutCubic,
}

// EasingByName resolves names like "easeOutCubic" (case-insensitive).
// An empty name resolves to linear.
func EasingByName(name string) (Easing, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return EaseLinear, nil
	}
	e, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return e, nil
}
