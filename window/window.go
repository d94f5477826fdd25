/*
Package window partitions a sample stream into fixed-size windows.

Batch analysis uses Tumbling, a non-overlapping stride-N partition.
Live sessions use Sliding, which emits the newest N samples for every
sample pushed once N samples have been seen.
Neither ever emits a window shorter than N.
*/
package window

import (
	"errors"
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/stream"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"math"
)

var ErrBadSize = errors.New("window size must be at least 1")

// Window is an immutable, ordered run of exactly Size samples.
type Window struct {
	// Index is the window's position in the stream of emitted windows.
	Index   int
	Samples []imu.Sample
}

// Len returns the number of samples in the window.
func (w Window) Len() int { return len(w.Samples) }

// Column returns the values of one channel, in sample order.
func (w Window) Column(c imu.Channel) []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = s.Get(c)
	}
	return out
}

// HasChannel reports whether every sample in the window carried the channel.
func (w Window) HasChannel(c imu.Channel) bool {
	if len(w.Samples) == 0 {
		return false
	}
	for _, s := range w.Samples {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// HasMissing reports whether any of the channels holds a missing value in any sample.
func (w Window) HasMissing(channels ...imu.Channel) bool {
	for _, s := range w.Samples {
		for _, c := range channels {
			if math.IsNaN(s.Get(c)) {
				return true
			}
		}
	}
	return false
}

// Tumbling partitions samples into consecutive windows of size n.
// A trailing partial window is dropped.
func Tumbling(samples []imu.Sample, n int) ([]Window, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	count := len(samples) / n
	out := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		chunk := make([]imu.Sample, n)
		copy(chunk, samples[i*n:(i+1)*n])
		out = append(out, Window{Index: i, Samples: chunk})
	}
	return out, nil
}

// Sliding is a stride-1 windower. It is not safe for concurrent Push;
// one live session owns one Sliding.
type Sliding struct {
	size    int
	buf     *stream.RingBuffer[imu.Sample]
	pushed  int
	emitted int
}

// NewSliding returns a stride-1 windower of size n.
func NewSliding(n int) (*Sliding, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	return &Sliding{size: n, buf: stream.NewRingBuffer[imu.Sample](n)}, nil
}

// Push appends a sample. Once at least Size samples have been pushed,
// it returns the most recent Size samples and ok=true.
func (s *Sliding) Push(sample imu.Sample) (w Window, ok bool) {
	s.buf.Add(sample)
	s.pushed++
	if !s.buf.Full() {
		return Window{}, false
	}
	w = Window{Index: s.emitted, Samples: s.buf.Get()}
	s.emitted++
	return w, true
}

// Size returns the window size.
func (s *Sliding) Size() int { return s.size }

// Pushed returns the number of samples pushed since creation or Reset.
func (s *Sliding) Pushed() int { return s.pushed }

// Buffered returns the number of samples currently buffered (at most Size).
func (s *Sliding) Buffered() int { return s.buf.Len() }

// Reset drops buffered samples.
func (s *Sliding) Reset() {
	s.buf.Reset()
	s.pushed = 0
	s.emitted = 0
}
