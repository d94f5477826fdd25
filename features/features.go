/*
Package features turns a window of IMU samples into the fixed, ordered
feature vector a classifier was trained on.

Every channel contributes six statistics named <channel>_<stat>:
mean, std (population), min, max, range and peaks (count of local maxima).
The raw set is then aligned to a Schema: names the schema lacks are dropped,
names the window lacks are filled with 0.0, and order follows the schema.
*/
package features

import (
	"errors"
	"fmt"
	"github.com/montanaflynn/stats"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/dsp"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"math"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNoSchema      = fmt.Errorf("%w: no feature schema loaded", ErrConfiguration)
)

// Stats lists the per-channel statistics in the order they are named.
var Stats = []string{"mean", "std", "min", "max", "range", "peaks"}

// Name returns the feature name for a channel statistic, eg. "acc_x_mean".
func Name(c imu.Channel, stat string) string {
	return c.String() + "_" + stat
}

// RawNames returns all 54 raw feature names in channel-major order.
func RawNames() []string {
	out := make([]string, 0, len(imu.Channels)*len(Stats))
	for _, c := range imu.Channels {
		for _, s := range Stats {
			out = append(out, Name(c, s))
		}
	}
	return out
}

// Vector is a feature vector aligned to a schema.
// Names and Values always have the same length.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (v Vector) Len() int { return len(v.Values) }

// Get returns a feature by name.
func (v Vector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Raw computes the raw statistics of every channel of the window.
// Missing values are skipped; a channel with no usable value contributes no features.
func Raw(w window.Window) map[string]float64 {
	out := make(map[string]float64, len(imu.Channels)*len(Stats))
	for _, c := range imu.Channels {
		col := present(w.Column(c))
		if len(col) == 0 {
			continue
		}
		// Errors are only returned for empty input, excluded above.
		mean, _ := stats.Mean(col)
		std, _ := stats.StandardDeviationPopulation(col)
		lo, _ := stats.Min(col)
		hi, _ := stats.Max(col)
		out[Name(c, "mean")] = mean
		out[Name(c, "std")] = std
		out[Name(c, "min")] = lo
		out[Name(c, "max")] = hi
		out[Name(c, "range")] = hi - lo
		out[Name(c, "peaks")] = float64(countPeaks(col))
	}
	return out
}

func present(col []float64) []float64 {
	out := col[:0:0]
	for _, v := range col {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func countPeaks(col []float64) int {
	if len(col) <= 1 {
		return 0
	}
	return len(dsp.LocalMaxima(col))
}

// Align orders raw features by the schema, filling absent names with 0.0.
func Align(raw map[string]float64, schema Schema) Vector {
	v := Vector{
		Names:  make([]string, len(schema)),
		Values: make([]float64, len(schema)),
	}
	copy(v.Names, schema)
	for i, name := range schema {
		v.Values[i] = raw[name]
	}
	return v
}

// Extract computes the feature vector of a window under the schema.
func Extract(w window.Window, schema Schema) (Vector, error) {
	if len(schema) == 0 {
		return Vector{}, ErrNoSchema
	}
	return Align(Raw(w), schema), nil
}
