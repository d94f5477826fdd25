package pipeline

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/act"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/stream"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"log/slog"
	"time"
)

// Run is the result of analyzing one recording.
type Run struct {
	ID       string               `json:"id"`
	Name     string               `json:"name,omitempty"`
	Started  time.Time            `json:"started"`
	Duration time.Duration        `json:"duration"`
	Samples  int                  `json:"samples"`
	Windows  []WindowResult       `json:"windows"`
	Summary  aggregate.RunSummary `json:"summary"`
}

// BatchOptions tune Analyze beyond the pipeline config.
type BatchOptions struct {
	// Name labels the run, eg. the recording's file name.
	Name string
	// ProgressInterval logs throughput periodically. 0 logs only at the end.
	ProgressInterval time.Duration
}

// Analyze classifies a whole recording in tumbling windows.
// A trailing partial window is ignored. Per-window work runs on
// config.Workers goroutines; label correction and totals are computed in
// window order afterwards, so the result does not depend on the worker count.
func Analyze(ctx context.Context, samples []imu.Sample, config *params.PipelineConfig, src ArtifactSource, opts BatchOptions) (*Run, error) {
	if config == nil {
		config = params.DefaultPipelineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no model", ErrConfiguration)
	}
	art, err := src.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(art.Schema) == 0 {
		return nil, fmt.Errorf("%w: no feature schema", ErrConfiguration)
	}

	run := &Run{
		ID:      uuid.NewString(),
		Name:    opts.Name,
		Started: time.Now(),
		Samples: len(samples),
	}
	logger := slog.With("run", run.ID, "name", opts.Name)

	windows, err := window.Tumbling(samples, config.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	logger.Info("Analyzing", "samples", len(samples), "windows", len(windows),
		"dropped", len(samples)-len(windows)*config.WindowSize, "workers", config.Workers)

	meter := stream.NewTickMeter("windows", opts.ProgressInterval)
	defer meter.Stop()

	type outcome struct {
		classified
		err error
	}
	outcomes, err := stream.OrderedMap(ctx, config.Workers, windows, func(i int, w window.Window) outcome {
		c, err := classify(w, config, art)
		meter.Mark(1)
		return outcome{classified: c, err: err}
	})
	if err != nil {
		return nil, err
	}

	raw := make([]activity.Label, len(outcomes))
	steps := make([]int, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			return nil, fmt.Errorf("window %d: %w", i, o.err)
		}
		raw[i] = o.raw
		steps[i] = o.steps
	}
	corrected, err := act.Correct(raw, steps, StandingWindows(config))
	if err != nil {
		return nil, err
	}

	agg := aggregate.New(config.StepLengthM)
	run.Windows = make([]WindowResult, len(outcomes))
	for i, o := range outcomes {
		r := o.result(i, corrected[i], config.StepLengthM)
		run.Windows[i] = r
		agg.Add(r.Observation())
	}
	run.Summary = agg.Summary()
	run.Duration = time.Since(run.Started)
	logger.Info("Analyzed", "activity", run.Summary.Label, "steps", run.Summary.Steps,
		"distance_m", run.Summary.DistanceM, "elapsed", run.Duration.Round(time.Millisecond))
	return run, nil
}
