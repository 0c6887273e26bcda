package main

import (
	"math"
	"math/rand"
	"time"
)

const degToRad = math.Pi / 180

// Transform is a world-space position with a facing angle in degrees.
// World y grows upward and angles grow counter-clockwise.
type Transform struct {
	X, Y  float64
	Angle float64
}

// Move advances the transform forward along its angle and sideways
// along angle-90.
func (t *Transform) Move(forward, side float64) {
	a := t.Angle * degToRad
	s := (t.Angle - 90) * degToRad
	t.X += math.Cos(a)*forward + math.Cos(s)*side
	t.Y += math.Sin(a)*forward + math.Sin(s)*side
}

// Turn rotates the transform by deg and wraps the result into [0, 360)
func (t *Transform) Turn(deg float64) {
	t.Angle = WrapAngle(t.Angle + deg)
}

// WrapAngle wraps a degree angle into [0, 360)
func WrapAngle(a float64) float64 {
	return (a/360 - math.Floor(a/360)) * 360
}

// AngleDelta returns a-b folded into [-180, 180]
func AngleDelta(a, b float64) float64 {
	d := a - b
	if d > 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}

// GetAngle returns the angle in degrees of the vector from (x2,y2) to (x1,y1)
func GetAngle(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(y1-y2, x1-x2) / degToRad
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// randInt returns a rounded random number in [min, max]
func randInt(rng *rand.Rand, min, max float64) float64 {
	return math.Round(min + rng.Float64()*(max-min))
}

// randFloat returns a random float in [min, max)
func randFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
