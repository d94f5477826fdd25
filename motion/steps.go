/*
Package motion derives physical quantities from a window of IMU samples:
how many steps were taken and how far the device rotated.
*/
package motion

import (
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/dsp"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"math"
)

// maxNormalizedCutoff keeps the low-pass design valid when the sampling rate
// puts the configured cutoff at or above Nyquist.
const maxNormalizedCutoff = 0.99

// flatTolerance is the relative spread below which a filtered signal is
// treated as flat. Filtering a constant leaves rounding ripple that would
// otherwise count as a step.
const flatTolerance = 1e-9

// StepConfig parameterizes CountSteps.
type StepConfig struct {
	RateHz         float64
	WindowSize     int
	CutoffHz       float64
	Order          int
	CadenceDivisor float64
}

// DefaultStepConfig returns the settings used for 100 Hz recordings in windows of 20.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		RateHz:         100,
		WindowSize:     20,
		CutoffHz:       4.2,
		Order:          4,
		CadenceDivisor: 2.5,
	}
}

// PeakDistance is the minimum separation between counted steps, in samples.
func (c StepConfig) PeakDistance() int {
	if c.CadenceDivisor <= 0 {
		return 0
	}
	return int(math.Floor(c.RateHz / c.CadenceDivisor))
}

// Magnitude returns the acceleration magnitude of each sample.
func Magnitude(w window.Window) []float64 {
	out := make([]float64, w.Len())
	for i, s := range w.Samples {
		x, y, z := s.Get(imu.AccX), s.Get(imu.AccY), s.Get(imu.AccZ)
		out[i] = math.Sqrt(x*x + y*y + z*z)
	}
	return out
}

// CountSteps counts steps in the window: peaks of the low-passed acceleration
// magnitude that rise above its mean, at least one cadence period apart.
//
// It returns 0 when the window is short, holds a missing acceleration value,
// the filtered signal is flat, or the signal cannot be filtered. The result is always in [0, window size].
func CountSteps(w window.Window, cfg StepConfig) int {
	if w.Len() == 0 || w.Len() < cfg.WindowSize {
		return 0
	}
	if w.HasMissing(imu.AccX, imu.AccY, imu.AccZ) {
		return 0
	}
	filtered, err := LowPass(Magnitude(w), cfg)
	if err != nil {
		return 0
	}
	mean, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, v := range filtered {
		mean += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean /= float64(len(filtered))
	if hi-lo <= flatTolerance*math.Max(1, math.Abs(mean)) {
		return 0
	}

	peaks, err := dsp.FindPeaks(filtered, mean, cfg.PeakDistance())
	if err != nil {
		return 0
	}
	return min(len(peaks), w.Len())
}

// LowPass applies the configured zero-phase Butterworth filter to x.
func LowPass(x []float64, cfg StepConfig) ([]float64, error) {
	wn, err := dsp.NormalizedCutoff(cfg.CutoffHz, cfg.RateHz, maxNormalizedCutoff)
	if err != nil {
		return nil, err
	}
	b, a, err := dsp.ButterLowpass(cfg.Order, wn)
	if err != nil {
		return nil, err
	}
	return dsp.FiltFilt(b, a, x)
}
