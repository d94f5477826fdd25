/*
Package pipeline runs windows of IMU samples through feature extraction,
classification, step counting, heading estimation, label correction and
aggregation.

Analyze processes a whole recording in tumbling windows. A Session processes
a live stream one sample at a time in sliding windows.
Both share the model and schema through an ArtifactSource.
*/
package pipeline

import (
	"context"
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/artifact"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/classifier"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrConfiguration  = features.ErrConfiguration
	ErrMalformedInput = imu.ErrMalformedInput
)

// Artifacts is a loaded model and the schema its inputs are aligned to.
// It is read-only once loaded and shared by every session.
type Artifacts struct {
	Classifier classifier.Classifier
	Schema     features.Schema
}

// ArtifactSource supplies Artifacts, loading them on first use.
type ArtifactSource interface {
	Get(ctx context.Context) (*Artifacts, error)
}

// Static is an ArtifactSource of already loaded artifacts.
type Static Artifacts

func (s *Static) Get(ctx context.Context) (*Artifacts, error) {
	return (*Artifacts)(s), nil
}

// LoadArtifacts fetches the model and schema named by the config.
// Without a schema location, the model's embedded feature names are the schema.
func LoadArtifacts(ctx context.Context, config *params.ModelConfig) (*Artifacts, error) {
	if config == nil || config.ModelURI == "" {
		return nil, fmt.Errorf("%w: no model location configured", ErrConfiguration)
	}
	rc, err := artifact.Open(ctx, config.ModelURI)
	if err != nil {
		return nil, fmt.Errorf("%w: open model: %v", ErrConfiguration, err)
	}
	forest, err := classifier.LoadForest(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: load model %s: %v", ErrConfiguration, config.ModelURI, err)
	}

	var schema features.Schema
	if config.SchemaURI != "" {
		src, err := artifact.Open(ctx, config.SchemaURI)
		if err != nil {
			return nil, fmt.Errorf("%w: open schema: %v", ErrConfiguration, err)
		}
		format := config.SchemaFormat
		if format == features.FormatAuto {
			format = features.FormatFromPath(config.SchemaURI)
		}
		schema, err = features.ReadSchema(src, format)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("load schema %s: %w", config.SchemaURI, err)
		}
	} else {
		schema = forest.Schema()
	}
	if len(schema) == 0 {
		return nil, features.ErrNoSchema
	}

	var c classifier.Classifier = forest
	if config.MemoSize > 0 {
		memo, err := classifier.NewMemo(forest, config.MemoSize)
		if err != nil {
			return nil, err
		}
		c = memo
	}
	slog.Info("Loaded model", "model", config.ModelURI, "schema", config.SchemaURI,
		"features", len(schema), "classes", len(forest.Classes), "trees", len(forest.Trees))
	return &Artifacts{Classifier: c, Schema: schema}, nil
}

// LazyArtifacts loads artifacts once, on first Get.
// Concurrent first callers wait for a single load. A failed load is
// not remembered, so a later Get tries again.
// When Timeout is positive each load attempt is cancelled after it.
type LazyArtifacts struct {
	load func(ctx context.Context) (*Artifacts, error)

	Timeout time.Duration

	mu  sync.Mutex
	art *Artifacts
}

// NewLazyArtifacts returns a source loading from the model config.
func NewLazyArtifacts(config *params.ModelConfig) *LazyArtifacts {
	l := NewLazyArtifactsFunc(func(ctx context.Context) (*Artifacts, error) {
		return LoadArtifacts(ctx, config)
	})
	l.Timeout = config.LoadTimeout
	return l
}

// NewLazyArtifactsFunc returns a source calling load until it succeeds once.
func NewLazyArtifactsFunc(load func(ctx context.Context) (*Artifacts, error)) *LazyArtifacts {
	return &LazyArtifacts{load: load}
}

func (l *LazyArtifacts) Get(ctx context.Context) (*Artifacts, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.art != nil {
		return l.art, nil
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	art, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.art = art
	return art, nil
}

// Loaded reports whether artifacts have been loaded.
func (l *LazyArtifacts) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.art != nil
}
