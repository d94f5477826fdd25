package motion

import (
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/testing/testdata"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"math"
	"testing"
)

func TestCountSteps_Sinusoid(t *testing.T) {
	w := window.Window{Samples: testdata.StepWindow(20)}
	got := CountSteps(w, DefaultStepConfig())
	if got != 1 {
		t.Errorf("have %d want %d", got, 1)
	}
}

func TestCountSteps_Zero(t *testing.T) {
	w := window.Window{Samples: make([]imu.Sample, 20)}
	if got := CountSteps(w, DefaultStepConfig()); got != 0 {
		t.Errorf("have %d want 0", got)
	}
}

func TestCountSteps_Still(t *testing.T) {
	w := window.Window{Samples: testdata.Still(20)}
	if got := CountSteps(w, DefaultStepConfig()); got != 0 {
		t.Errorf("have %d want 0", got)
	}
}

func TestCountSteps_Degenerate(t *testing.T) {
	cfg := DefaultStepConfig()

	short := window.Window{Samples: testdata.StepWindow(20)[:10]}
	if got := CountSteps(short, cfg); got != 0 {
		t.Errorf("short window: have %d want 0", got)
	}

	missing := testdata.StepWindow(20)
	missing[7].Set(imu.AccY, math.NaN())
	if got := CountSteps(window.Window{Samples: missing}, cfg); got != 0 {
		t.Errorf("missing value: have %d want 0", got)
	}

	zeroRate := cfg
	zeroRate.RateHz = 0
	if got := CountSteps(window.Window{Samples: testdata.StepWindow(20)}, zeroRate); got != 0 {
		t.Errorf("zero rate: have %d want 0", got)
	}

	// Fewer than 16 samples cannot be padded for a 4th order filter.
	tiny := cfg
	tiny.WindowSize = 8
	if got := CountSteps(window.Window{Samples: testdata.StepWindow(8)}, tiny); got != 0 {
		t.Errorf("window shorter than filter padding: have %d want 0", got)
	}

	// Peak distance rounds down to zero.
	slow := cfg
	slow.RateHz = 2
	if got := CountSteps(window.Window{Samples: testdata.StepWindow(20)}, slow); got != 0 {
		t.Errorf("zero peak distance: have %d want 0", got)
	}
}

func TestCountSteps_Bounds(t *testing.T) {
	cfg := DefaultStepConfig()
	for _, samples := range [][]imu.Sample{
		testdata.StepWindow(20),
		testdata.Still(20),
		testdata.Turning(20, 0, 90),
		make([]imu.Sample, 20),
	} {
		w := window.Window{Samples: samples}
		got := CountSteps(w, cfg)
		if got < 0 || got > w.Len() {
			t.Errorf("steps %d outside [0, %d]", got, w.Len())
		}
		if again := CountSteps(w, cfg); again != got {
			t.Errorf("not deterministic: %d then %d", got, again)
		}
	}
}

func TestPeakDistance(t *testing.T) {
	cfg := DefaultStepConfig()
	if d := cfg.PeakDistance(); d != 40 {
		t.Errorf("have %d want 40", d)
	}
	cfg.CadenceDivisor = 0
	if d := cfg.PeakDistance(); d != 0 {
		t.Errorf("have %d want 0", d)
	}
}

func TestHeading(t *testing.T) {
	cases := []struct {
		mx, my, want float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, 270},
		{1, -1, 315},
	}
	for _, c := range cases {
		got := Heading(c.mx, c.my)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Heading(%v, %v) have %v want %v", c.mx, c.my, got, c.want)
		}
	}
	for i := -720; i <= 720; i += 7 {
		rad := float64(i) * math.Pi / 180
		h := Heading(math.Cos(rad), math.Sin(rad))
		if h < 0 || h >= 360 {
			t.Errorf("heading %v out of range", h)
		}
	}
}

func TestAngleDelta(t *testing.T) {
	cases := []struct {
		start, end, want float64
	}{
		{10, 350, 20},
		{350, 10, 20},
		{0, 180, 180},
		{90, 90, 0},
		{0, 90, 90},
		{270, 0, 90},
	}
	for _, c := range cases {
		if got := AngleDelta(c.start, c.end); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("AngleDelta(%v, %v) have %v want %v", c.start, c.end, got, c.want)
		}
	}
}

func TestWindowRotation(t *testing.T) {
	w := window.Window{Samples: testdata.Turning(20, 10, 350)}
	deg, ok := WindowRotation(w)
	if !ok {
		t.Fatal("rotation should be computable")
	}
	if math.Abs(deg-20) > 1e-6 {
		t.Errorf("have %v want 20", deg)
	}

	w = window.Window{Samples: testdata.WithoutMagnetometer(testdata.Turning(20, 10, 350))}
	if _, ok := WindowRotation(w); ok {
		t.Error("rotation without magnetometer should not be computable")
	}

	w = window.Window{Samples: testdata.Turning(1, 10, 350)}
	if _, ok := WindowRotation(w); ok {
		t.Error("rotation of a single sample should not be computable")
	}

	samples := testdata.Turning(20, 0, 45)
	samples[3].Set(imu.MagY, math.NaN())
	if _, ok := WindowRotation(window.Window{Samples: samples}); ok {
		t.Error("rotation with a missing magnetometer value should not be computable")
	}
}
