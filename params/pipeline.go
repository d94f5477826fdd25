package params

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// PipelineConfig holds everything that shapes window processing.
type PipelineConfig struct {
	SamplingRateHz float64
	WindowSize     int
	StepLengthM    float64

	// MinStandingWindows is the shortest Standing run kept by smoothing.
	// When 0 it is derived from MinStandingDuration.
	MinStandingWindows  int
	MinStandingDuration time.Duration

	LowpassCutoffHz float64
	LowpassOrder    int
	CadenceDivisor  float64

	// Workers is the batch worker pool size.
	Workers int
}

func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		SamplingRateHz:      100,
		WindowSize:          20,
		StepLengthM:         0.6,
		MinStandingWindows:  0,
		MinStandingDuration: 2 * time.Second,
		LowpassCutoffHz:     4.2,
		LowpassOrder:        4,
		CadenceDivisor:      2.5,
		Workers:             runtime.NumCPU(),
	}
}

// Validate reports settings that no window could be processed with.
func (c *PipelineConfig) Validate() error {
	switch {
	case c.WindowSize < 1:
		return fmt.Errorf("%w: window size %d", ErrInvalidConfig, c.WindowSize)
	case !(c.SamplingRateHz > 0):
		return fmt.Errorf("%w: sampling rate %v", ErrInvalidConfig, c.SamplingRateHz)
	case c.StepLengthM < 0:
		return fmt.Errorf("%w: step length %v", ErrInvalidConfig, c.StepLengthM)
	case c.MinStandingWindows < 0:
		return fmt.Errorf("%w: min standing windows %d", ErrInvalidConfig, c.MinStandingWindows)
	case c.LowpassOrder < 1:
		return fmt.Errorf("%w: lowpass order %d", ErrInvalidConfig, c.LowpassOrder)
	}
	return nil
}

type ModelConfig struct {
	// ModelURI locates the classifier export: a path, file://, http(s):// or s3:// URI.
	ModelURI string
	// SchemaURI locates the feature schema. When empty the model's own feature names are used.
	SchemaURI string
	// SchemaFormat is one of "csv", "json", "lines", or "" to guess.
	SchemaFormat string
	// MemoSize bounds the prediction cache. 0 disables it.
	MemoSize int
	// LoadTimeout bounds one attempt to fetch and parse the artifacts. 0 means no bound.
	LoadTimeout time.Duration
}

func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		MemoSize:    10_000,
		LoadTimeout: 30 * time.Second,
	}
}
