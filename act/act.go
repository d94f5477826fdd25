/*
Package act improves the activity labels a classifier reports for a run of windows.

A Walking label is only believed when steps were counted in the window, and
short Standing runs between other activities are treated as classifier noise.
*/
package act

import (
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"math"
	"time"
)

// Override relabels Walking as Standing when no steps were counted.
func Override(raw activity.Label, steps int) activity.Label {
	if raw == activity.Walking && steps <= 0 {
		return activity.Standing
	}
	return raw
}

// SmoothStanding replaces every maximal run of Standing labels shorter than
// minWindows with the label just before the run, or, for a run at the start,
// the label just after it. A run spanning the whole sequence becomes Unknown.
// The result has the same length as labels; labels is not modified.
func SmoothStanding(labels []activity.Label, minWindows int) []activity.Label {
	out := make([]activity.Label, len(labels))
	copy(out, labels)
	for i := 0; i < len(out); {
		if out[i] != activity.Standing {
			i++
			continue
		}
		start := i
		for i < len(out) && out[i] == activity.Standing {
			i++
		}
		if i-start >= minWindows {
			continue
		}
		replace := activity.Unknown
		if start > 0 {
			replace = out[start-1]
		} else if i < len(out) {
			replace = out[i]
		}
		for j := start; j < i; j++ {
			out[j] = replace
		}
	}
	return out
}

// Correct applies Override to every window, smooths short Standing runs, and
// applies Override once more, so a window smoothed into Walking without steps
// reverts to Standing. An isolated Standing window between Walking windows
// therefore ends as Walking only when it counted at least one step.
func Correct(raw []activity.Label, steps []int, minWindows int) ([]activity.Label, error) {
	if len(raw) != len(steps) {
		return nil, fmt.Errorf("have %d labels but %d step counts", len(raw), len(steps))
	}
	out := make([]activity.Label, len(raw))
	for i := range raw {
		out[i] = Override(raw[i], steps[i])
	}
	out = SmoothStanding(out, minWindows)
	for i := range out {
		out[i] = Override(out[i], steps[i])
	}
	return out, nil
}

// MinStandingWindows converts a minimum Standing duration into a window count,
// rounding up. It returns 0, disabling smoothing, for a non-positive rate or window size.
func MinStandingWindows(d time.Duration, rateHz float64, windowSize int) int {
	if d <= 0 || rateHz <= 0 || windowSize < 1 {
		return 0
	}
	return int(math.Ceil(d.Seconds() * rateHz / float64(windowSize)))
}
