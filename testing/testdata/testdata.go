package testdata

import (
	"context"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catz"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// basepath is the root directory of this package.
var basepath string

func init() {
	_, currentFile, _, _ := runtime.Caller(0)
	basepath = filepath.Dir(currentFile)
}

// Path returns the absolute path the given relative file or directory path,
// relative to this testdata/ directory.
// If rel is already absolute, it is returned unmodified.
// Taken from https://github.com/grpc/grpc-go/blob/master/testdata/testdata.go.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(basepath, rel)
}

// Gravity is the resting acceleration magnitude used by the generators.
const Gravity = 9.81

// StepWindow returns one window of n samples at 100 Hz in which acc_z swings
// 3 m/s² around 9.8 at 2 Hz, peaking in the middle of the window.
// A window of 20 samples filters to exactly one step.
func StepWindow(n int) []imu.Sample {
	return wave(n, 3)
}

// ShuffleWindow is StepWindow at a tenth of the amplitude: still one step,
// but too little movement for ForestJSON to call it Walking.
func ShuffleWindow(n int) []imu.Sample {
	return wave(n, 0.3)
}

func wave(n int, amplitude float64) []imu.Sample {
	out := make([]imu.Sample, n)
	for i := range out {
		z := 9.8 + amplitude*math.Cos(2*math.Pi*2*float64(i-n/2)/100)
		out[i] = imu.NewSample(0, 0, z, 0, 0, 0, 40, 0, -30)
	}
	return out
}

// Walking repeats StepWindow windows times.
func Walking(windows, n int) []imu.Sample {
	out := make([]imu.Sample, 0, windows*n)
	for i := 0; i < windows; i++ {
		out = append(out, StepWindow(n)...)
	}
	return out
}

// Still returns n samples of a device at rest, pointing north.
func Still(n int) []imu.Sample {
	out := make([]imu.Sample, n)
	for i := range out {
		out[i] = imu.NewSample(0, 0, Gravity, 0, 0, 0, 40, 0, -30)
	}
	return out
}

// Turning returns n samples of a device at rest whose heading moves linearly
// from fromDeg to toDeg. gyro_z carries the sign of the turn.
func Turning(n int, fromDeg, toDeg float64) []imu.Sample {
	out := make([]imu.Sample, n)
	gz := 0.5
	if toDeg < fromDeg {
		gz = -0.5
	}
	for i := range out {
		h := fromDeg
		if n > 1 {
			h += (toDeg - fromDeg) * float64(i) / float64(n-1)
		}
		rad := h * math.Pi / 180
		out[i] = imu.NewSample(0, 0, Gravity, 0, 0, gz, 40*math.Cos(rad), 40*math.Sin(rad), -30)
	}
	return out
}

// WithoutMagnetometer returns copies of samples with the magnetometer channels absent.
func WithoutMagnetometer(samples []imu.Sample) []imu.Sample {
	out := make([]imu.Sample, len(samples))
	for i, s := range samples {
		out[i] = dropMag(s)
	}
	return out
}

func dropMag(s imu.Sample) imu.Sample {
	d := imu.Sample{}
	for _, c := range imu.Channels {
		if c == imu.MagX || c == imu.MagY || c == imu.MagZ {
			continue
		}
		d.Set(c, s.Get(c))
	}
	return d
}

// JSONLines renders samples as newline-delimited live wire messages.
func JSONLines(samples []imu.Sample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		b, _ := s.MarshalJSON()
		out[i] = string(b)
	}
	return out
}

// WriteCSVGZ writes samples to a gzipped CSV recording at path.
func WriteCSVGZ(path string, samples []imu.Sample) error {
	conf := catz.DefaultGZFileWriterConfig()
	conf.Flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	w, err := catz.NewGZFileWriter(path, conf)
	if err != nil {
		return err
	}
	if err := imu.WriteCSV(w, samples); err != nil {
		w.MaybeClose()
		return err
	}
	return w.Close()
}

// ReadCSVGZ reads a gzipped CSV recording, as written by WriteCSVGZ.
func ReadCSVGZ(ctx context.Context, path string) ([]imu.Sample, error) {
	gzr, err := catz.NewGZFileReader(path)
	if err != nil {
		return nil, err
	}
	defer gzr.MaybeClose()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imu.ReadCSV(gzr)
}

// CSV renders samples as a CSV recording.
func CSV(samples []imu.Sample) string {
	sb := new(strings.Builder)
	_ = imu.WriteCSV(sb, samples)
	return sb.String()
}

// ForestJSON is a small forest over two features that separates the
// generators above: Walking has a varying acc_z, Turning has a signed gyro_z,
// and everything else is Standing.
const ForestJSON = `{
  "classes": ["Rotation Left", "Rotation Right", "Standing", "Walking"],
  "feature_names": ["acc_z_std", "gyro_z_mean"],
  "trees": [{
    "children_left":  [1, 2, -1, 4, -1, -1, -1],
    "children_right": [6, 3, -1, 5, -1, -1, -1],
    "feature":        [0, 1, -2, 1, -2, -2, -2],
    "threshold":      [0.3, -0.25, -2, 0.25, -2, -2, -2],
    "value": [
      [1, 1, 1, 1],
      [1, 1, 1, 0],
      [1, 0, 0, 0],
      [0, 1, 1, 0],
      [0, 0, 1, 0],
      [0, 1, 0, 0],
      [0, 0, 0, 1]
    ]
  }]
}`

// SchemaCSV is a training table header for ForestJSON.
const SchemaCSV = "acc_z_std,gyro_z_mean,Label\n"
