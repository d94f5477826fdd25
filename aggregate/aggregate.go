/*
Package aggregate folds per-window results into totals for one run or session.
*/
package aggregate

import (
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"sync"
)

// Observation is what one corrected window contributes to the totals.
type Observation struct {
	Label       activity.Label
	Steps       int
	Rotation    float64
	HasRotation bool
}

// RunSummary is a snapshot of the totals of a run or session.
type RunSummary struct {
	Label            activity.Label `json:"activity"`
	Steps            int            `json:"steps"`
	DistanceM        float64        `json:"distance_m"`
	RotationRightDeg float64        `json:"rotation_right_deg"`
	RotationLeftDeg  float64        `json:"rotation_left_deg"`
	Windows          int            `json:"windows"`
	Breakdown        []Share        `json:"breakdown,omitempty"`
}

// Share is the fraction of windows that carried a label.
type Share struct {
	Label    activity.Label `json:"activity"`
	Fraction float64        `json:"fraction"`
}

// DistanceKm returns the walked distance in kilometres.
func (s RunSummary) DistanceKm() float64 { return s.DistanceM / 1000 }

// Aggregator accumulates Observations. Steps count only toward Walking windows
// and rotation only toward rotation windows. It is safe for concurrent use.
type Aggregator struct {
	stepLength float64

	mu      sync.Mutex
	modes   activity.ModeTracker
	steps   int
	right   float64
	left    float64
	windows int
}

// New returns an Aggregator converting steps to metres with stepLengthM.
func New(stepLengthM float64) *Aggregator {
	return &Aggregator{stepLength: stepLengthM}
}

// Add folds one window into the totals.
func (a *Aggregator) Add(o Observation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.windows++
	a.modes.Push(o.Label, 1)
	switch {
	case o.Label == activity.Walking:
		if o.Steps > 0 {
			a.steps += o.Steps
		}
	case o.HasRotation && o.Label == activity.RotationRight:
		a.right += o.Rotation
	case o.HasRotation && o.Label == activity.RotationLeft:
		a.left += o.Rotation
	}
}

// Totals returns the running totals.
func (a *Aggregator) Totals() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	sorted := a.modes.Sorted().RelWeights()
	breakdown := make([]Share, 0, len(sorted))
	for _, m := range sorted {
		breakdown = append(breakdown, Share{Label: m.Label, Fraction: m.Scalar})
	}
	return RunSummary{
		Label:            a.modes.Mode(),
		Steps:            a.steps,
		DistanceM:        float64(a.steps) * a.stepLength,
		RotationRightDeg: a.right,
		RotationLeftDeg:  a.left,
		Windows:          a.windows,
		Breakdown:        breakdown,
	}
}

// Summary returns the final totals of a run. An empty run reports Unknown.
func (a *Aggregator) Summary() RunSummary {
	return a.Totals()
}

// Reset clears the totals for a new run or session.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.modes.Reset()
	a.steps = 0
	a.right = 0
	a.left = 0
	a.windows = 0
}
