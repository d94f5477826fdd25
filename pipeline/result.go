package pipeline

import (
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/act"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/motion"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
)

// WindowResult is everything derived from one window.
type WindowResult struct {
	Index    int            `json:"index"`
	RawLabel activity.Label `json:"raw_activity"`
	Label    activity.Label `json:"activity"`
	Steps    int            `json:"steps"`
	// DistanceM is Steps times the step length, whatever the label.
	DistanceM float64 `json:"distance_m"`
	// RotationDeg is nil when the window has no usable magnetometer data.
	RotationDeg *float64 `json:"rotation_deg,omitempty"`
}

// Observation returns what the window contributes to run totals.
func (r WindowResult) Observation() aggregate.Observation {
	o := aggregate.Observation{Label: r.Label, Steps: r.Steps}
	if r.RotationDeg != nil {
		o.Rotation = *r.RotationDeg
		o.HasRotation = true
	}
	return o
}

// stepConfig adapts the pipeline settings for the step counter.
func stepConfig(config *params.PipelineConfig) motion.StepConfig {
	return motion.StepConfig{
		RateHz:         config.SamplingRateHz,
		WindowSize:     config.WindowSize,
		CutoffHz:       config.LowpassCutoffHz,
		Order:          config.LowpassOrder,
		CadenceDivisor: config.CadenceDivisor,
	}
}

// StandingWindows returns the effective smoothing threshold in windows.
func StandingWindows(config *params.PipelineConfig) int {
	if config.MinStandingWindows > 0 {
		return config.MinStandingWindows
	}
	return act.MinStandingWindows(config.MinStandingDuration, config.SamplingRateHz, config.WindowSize)
}

// classified is the per-window work that does not depend on neighbours.
type classified struct {
	raw      activity.Label
	steps    int
	rotation float64
	rotOK    bool
}

func classify(w window.Window, config *params.PipelineConfig, art *Artifacts) (classified, error) {
	var c classified
	v, err := features.Extract(w, art.Schema)
	if err != nil {
		return c, err
	}
	label, err := art.Classifier.Predict(v)
	if err != nil {
		return c, err
	}
	c.raw = activity.FromString(label)
	c.steps = motion.CountSteps(w, stepConfig(config))
	c.rotation, c.rotOK = motion.WindowRotation(w)
	return c, nil
}

func (c classified) result(index int, label activity.Label, stepLength float64) WindowResult {
	r := WindowResult{
		Index:     index,
		RawLabel:  c.raw,
		Label:     label,
		Steps:     c.steps,
		DistanceM: float64(c.steps) * stepLength,
	}
	if c.rotOK {
		rot := c.rotation
		r.RotationDeg = &rot
	}
	return r
}
