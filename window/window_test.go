package window

import (
	"errors"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"math"
	"testing"
)

func samplesN(n int) []imu.Sample {
	out := make([]imu.Sample, n)
	for i := range out {
		out[i] = imu.NewSample(float64(i), 0, 0, 0, 0, 0, 0, 0, 0)
	}
	return out
}

func TestTumbling(t *testing.T) {
	cases := []struct {
		samples, n, want int
	}{
		{0, 20, 0},
		{19, 20, 0},
		{20, 20, 1},
		{59, 20, 2},
		{60, 20, 3},
		{7, 1, 7},
	}
	for _, c := range cases {
		ws, err := Tumbling(samplesN(c.samples), c.n)
		if err != nil {
			t.Fatal(err)
		}
		if len(ws) != c.want {
			t.Errorf("samples=%d n=%d: have %d windows want %d", c.samples, c.n, len(ws), c.want)
		}
		for i, w := range ws {
			if w.Len() != c.n {
				t.Errorf("short window %d: %d", i, w.Len())
			}
			if w.Index != i {
				t.Errorf("window index %d want %d", w.Index, i)
			}
			if first := w.Samples[0].Get(imu.AccX); first != float64(i*c.n) {
				t.Errorf("window %d starts at %v want %v", i, first, i*c.n)
			}
		}
	}
}

func TestTumbling_CopiesSamples(t *testing.T) {
	in := samplesN(4)
	ws, _ := Tumbling(in, 2)
	in[0].Set(imu.AccX, 99)
	if ws[0].Samples[0].Get(imu.AccX) != 0 {
		t.Error("window shares backing array with input")
	}
}

func TestBadSize(t *testing.T) {
	if _, err := Tumbling(samplesN(3), 0); !errors.Is(err, ErrBadSize) {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
	if _, err := NewSliding(-1); !errors.Is(err, ErrBadSize) {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
}

func TestSliding(t *testing.T) {
	s, err := NewSliding(3)
	if err != nil {
		t.Fatal(err)
	}
	in := samplesN(6)
	var got []Window
	for i, sample := range in {
		w, ok := s.Push(sample)
		if i < 2 {
			if ok {
				t.Fatalf("window emitted before buffer full at %d", i)
			}
			continue
		}
		if !ok {
			t.Fatalf("no window at %d", i)
		}
		got = append(got, w)
	}
	if len(got) != 4 {
		t.Fatalf("have %d windows want 4", len(got))
	}
	for i, w := range got {
		if w.Len() != 3 {
			t.Errorf("window %d len %d", i, w.Len())
		}
		// Most recent three samples, oldest first.
		for j := 0; j < 3; j++ {
			if v := w.Samples[j].Get(imu.AccX); v != float64(i+j) {
				t.Errorf("window %d sample %d: have %v want %v", i, j, v, i+j)
			}
		}
		if w.Index != i {
			t.Errorf("index %d want %d", w.Index, i)
		}
	}
	if s.Pushed() != 6 || s.Buffered() != 3 {
		t.Errorf("pushed=%d buffered=%d", s.Pushed(), s.Buffered())
	}
	s.Reset()
	if _, ok := s.Push(in[0]); ok {
		t.Error("window emitted right after reset")
	}
}

func TestWindow_Channels(t *testing.T) {
	a := imu.Sample{}
	a.Set(imu.MagX, 1)
	a.Set(imu.MagY, 2)
	b := imu.Sample{}
	b.Set(imu.MagX, 3)
	w := Window{Samples: []imu.Sample{a, b}}
	if !w.HasChannel(imu.MagX) {
		t.Error("mag_x should be present")
	}
	if w.HasChannel(imu.MagY) {
		t.Error("mag_y missing from one sample")
	}
	if got := w.Column(imu.MagX); got[0] != 1 || got[1] != 3 {
		t.Errorf("column: %v", got)
	}
	b.Set(imu.AccX, math.NaN())
	w = Window{Samples: []imu.Sample{a, b}}
	if !w.HasMissing(imu.AccX, imu.AccY) {
		t.Error("NaN not reported missing")
	}
	if w.HasMissing(imu.MagX) {
		t.Error("unexpected missing")
	}
}
