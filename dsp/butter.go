/*
Package dsp holds the small amount of digital signal processing the step
counter needs: Butterworth low-pass design, zero-phase filtering, and peak
detection. Results match scipy.signal's butter, filtfilt and find_peaks
for the parameters used here.
*/
package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	ErrBadOrder       = errors.New("filter order must be at least 1")
	ErrBadCutoff      = errors.New("normalized cutoff must be in (0, 1)")
	ErrSignalTooShort = errors.New("signal too short")
	ErrBadDistance    = errors.New("peak distance must be at least 1")
	ErrUnstable       = errors.New("filter is numerically unstable")
)

// NormalizedCutoff returns cutoff/(0.5*rate) clamped to at most maxWn.
// A non-positive or non-finite rate has no Nyquist frequency and is an error.
func NormalizedCutoff(cutoffHz, rateHz, maxWn float64) (float64, error) {
	nyquist := 0.5 * rateHz
	if nyquist <= 0 || math.IsNaN(nyquist) || math.IsInf(nyquist, 0) {
		return 0, fmt.Errorf("%w: sampling rate %v", ErrBadCutoff, rateHz)
	}
	wn := cutoffHz / nyquist
	if wn >= 1 || wn > maxWn {
		wn = maxWn
	}
	if wn <= 0 || math.IsNaN(wn) {
		return 0, fmt.Errorf("%w: %v", ErrBadCutoff, wn)
	}
	return wn, nil
}

// ButterLowpass designs a digital low-pass Butterworth filter of the given order.
// wn is the cutoff normalized to the Nyquist frequency.
// It returns the transfer function numerator b and denominator a, with a[0] == 1.
func ButterLowpass(order int, wn float64) (b, a []float64, err error) {
	if order < 1 {
		return nil, nil, fmt.Errorf("%w: %d", ErrBadOrder, order)
	}
	if !(wn > 0 && wn < 1) {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadCutoff, wn)
	}

	// Pre-warp for the bilinear transform at fs=2.
	const fs = 2.0
	warped := 2 * fs * math.Tan(math.Pi*wn/fs)

	// Analog prototype poles on the left half of the unit circle,
	// scaled to the warped cutoff.
	poles := make([]complex128, order)
	for i := range poles {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order))) * complex(warped, 0)
	}
	gain := math.Pow(warped, float64(order))

	// Bilinear transform. Every analog zero is at infinity, so all digital zeros sit at -1.
	fs2 := complex(2*fs, 0)
	dpoles := make([]complex128, order)
	denom := complex(1, 0)
	for i, p := range poles {
		dpoles[i] = (fs2 + p) / (fs2 - p)
		denom *= fs2 - p
	}
	gain *= real(1 / denom)

	zeros := make([]complex128, order)
	for i := range zeros {
		zeros[i] = -1
	}
	bc := poly(zeros)
	ac := poly(dpoles)
	b = make([]float64, len(bc))
	a = make([]float64, len(ac))
	for i := range bc {
		b[i] = gain * real(bc[i])
	}
	for i := range ac {
		a[i] = real(ac[i])
	}
	return b, a, nil
}

// poly returns the coefficients of the monic polynomial with the given roots,
// highest power first.
func poly(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	return c
}
