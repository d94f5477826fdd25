package dsp

import (
	"fmt"
	"slices"
)

// LocalMaxima returns the indices of local maxima in x.
// The first and last samples are never maxima. A flat-topped peak is
// reported once, at the middle of the plateau (rounded down).
func LocalMaxima(x []float64) []int {
	var peaks []int
	iMax := len(x) - 1
	for i := 1; i < iMax; i++ {
		if !(x[i-1] < x[i]) {
			continue
		}
		ahead := i + 1
		for ahead < iMax && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			left, right := i, ahead-1
			peaks = append(peaks, (left+right)/2)
			i = ahead
		}
	}
	return peaks
}

// FilterHeight keeps the peaks whose value is at least minHeight.
func FilterHeight(x []float64, peaks []int, minHeight float64) []int {
	out := peaks[:0:0]
	for _, p := range peaks {
		if x[p] >= minHeight {
			out = append(out, p)
		}
	}
	return out
}

// SelectByDistance drops peaks closer than distance samples to a higher peak,
// visiting peaks from highest to lowest.
func SelectByDistance(x []float64, peaks []int, distance int) ([]int, error) {
	if distance < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadDistance, distance)
	}
	keep := make([]bool, len(peaks))
	order := make([]int, len(peaks))
	for i := range peaks {
		keep[i] = true
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		switch {
		case x[peaks[i]] < x[peaks[j]]:
			return -1
		case x[peaks[i]] > x[peaks[j]]:
			return 1
		}
		return 0
	})
	for oi := len(order) - 1; oi >= 0; oi-- {
		j := order[oi]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}
	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindPeaks returns local maxima at least minHeight high and at least distance samples apart.
func FindPeaks(x []float64, minHeight float64, distance int) ([]int, error) {
	peaks := FilterHeight(x, LocalMaxima(x), minHeight)
	return SelectByDistance(x, peaks, distance)
}
