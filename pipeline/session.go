package pipeline

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/act"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"sync"
	"time"
)

// ErrNoFeatures is returned by a live session when no schema is available.
var ErrNoFeatures = fmt.Errorf("%w: no features extracted", ErrConfiguration)

var ErrSessionClosed = errors.New("session closed")

// Session classifies one live stream of samples.
//
// Every sample pushed after the first N yields a result for the newest N
// samples. Live results have Walking overridden by the step count but are
// not smoothed, since smoothing needs windows that have not arrived yet.
// Totals fold only every N-th window, the non-overlapping windows a batch
// run of the same samples would see.
//
// Push is serialized; one session is meant to serve one connection.
type Session struct {
	ID      string
	Source  string
	Device  string
	Started time.Time

	config *params.PipelineConfig
	src    ArtifactSource
	agg    *aggregate.Aggregator

	mu      sync.Mutex
	win     *window.Sliding
	last    *WindowResult
	closed  bool
	samples int
}

// NewSession starts a live session reading artifacts from src.
// source and device only label published events.
func NewSession(config *params.PipelineConfig, src ArtifactSource, source, device string) (*Session, error) {
	if config == nil {
		config = params.DefaultPipelineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	win, err := window.NewSliding(config.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	s := &Session{
		ID:      uuid.NewString(),
		Source:  source,
		Device:  device,
		Started: time.Now(),
		config:  config,
		src:     src,
		agg:     aggregate.New(config.StepLengthM),
		win:     win,
	}
	events.SessionFeed.Send(events.SessionEvent{
		SessionID: s.ID,
		Source:    s.Source,
		Device:    s.Device,
		Started:   s.Started,
		Time:      s.Started,
	})
	return s, nil
}

// PushJSON decodes one wire message and pushes it.
func (s *Session) PushJSON(ctx context.Context, data []byte) (*WindowResult, error) {
	sample, err := imu.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return s.Push(ctx, sample)
}

// Push adds a sample. It returns nil and no error until the window is full.
// An error leaves the session usable.
func (s *Session) Push(ctx context.Context, sample imu.Sample) (*WindowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.samples++
	w, ok := s.win.Push(sample)
	if !ok {
		return nil, nil
	}
	if s.src == nil {
		return nil, ErrNoFeatures
	}
	art, err := s.src.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(art.Schema) == 0 {
		return nil, ErrNoFeatures
	}
	c, err := classify(w, s.config, art)
	if err != nil {
		return nil, err
	}
	r := c.result(w.Index, act.Override(c.raw, c.steps), s.config.StepLengthM)
	if w.Index%s.config.WindowSize == 0 {
		s.agg.Add(r.Observation())
	}
	s.last = &r

	events.WindowFeed.Send(events.WindowEvent{
		SessionID:   s.ID,
		Source:      s.Source,
		Device:      s.Device,
		Index:       r.Index,
		Activity:    r.Label.String(),
		Steps:       r.Steps,
		DistanceM:   r.DistanceM,
		RotationDeg: r.RotationDeg,
		Time:        time.Now(),
	})
	return &r, nil
}

// Last returns the most recent result, or nil before the first full window.
func (s *Session) Last() *WindowResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Samples returns the number of samples pushed.
func (s *Session) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

// Totals returns the running totals.
func (s *Session) Totals() aggregate.RunSummary {
	return s.agg.Totals()
}

// Close ends the session and returns its final totals.
// Closing twice returns the same totals without publishing again.
func (s *Session) Close() aggregate.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := s.agg.Totals()
	if s.closed {
		return totals
	}
	s.closed = true
	events.SessionFeed.Send(events.SessionEvent{
		SessionID: s.ID,
		Source:    s.Source,
		Device:    s.Device,
		Ended:     true,
		Started:   s.Started,
		Time:      time.Now(),
		Totals:    totals,
	})
	return totals
}
