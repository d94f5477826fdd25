package motion

import (
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"math"
)

// Heading returns the compass heading in degrees, in [0, 360), for a
// horizontal magnetometer reading.
func Heading(mx, my float64) float64 {
	h := math.Mod(math.Atan2(my, mx)*180/math.Pi+360, 360)
	if h >= 360 {
		h = 0
	}
	return h
}

// AngleDelta returns the absolute shortest angular distance between two headings, in [0, 180].
func AngleDelta(start, end float64) float64 {
	d := floorMod(end-start+180, 360)
	return math.Abs(d - 180)
}

func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// WindowRotation returns how many degrees the heading changed between the
// first and last sample of the window.
// ok is false when the window has fewer than two samples or any sample lacks
// a usable mag_x or mag_y value.
func WindowRotation(w window.Window) (deg float64, ok bool) {
	if w.Len() < 2 {
		return 0, false
	}
	if !w.HasChannel(imu.MagX) || !w.HasChannel(imu.MagY) || w.HasMissing(imu.MagX, imu.MagY) {
		return 0, false
	}
	first, last := w.Samples[0], w.Samples[w.Len()-1]
	start := Heading(first.Get(imu.MagX), first.Get(imu.MagY))
	end := Heading(last.Get(imu.MagX), last.Get(imu.MagY))
	return AngleDelta(start, end), true
}
