package imu

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/tidwall/gjson"
	"math"
)

// Channel indexes one of the nine raw IMU channels.
type Channel int

const (
	AccX Channel = iota
	AccY
	AccZ
	GyroX
	GyroY
	GyroZ
	MagX
	MagY
	MagZ
)

// NumChannels is the count of raw channels carried by a Sample.
const NumChannels = 9

// Channels lists every channel in canonical (training table) order.
var Channels = []Channel{AccX, AccY, AccZ, GyroX, GyroY, GyroZ, MagX, MagY, MagZ}

var channelNames = [NumChannels]string{
	"acc_x", "acc_y", "acc_z",
	"gyro_x", "gyro_y", "gyro_z",
	"mag_x", "mag_y", "mag_z",
}

// String returns the wire and column name of the channel, eg. "acc_x".
func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ChannelFromName returns the channel for a wire/column name.
func ChannelFromName(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return -1, false
}

var ErrMalformedInput = errors.New("malformed input")

// Sample is one IMU reading. Samples carry no timestamp;
// arrival order is the only ordering signal.
//
// A channel that was absent on input reads as 0.0 and is not marked present.
// A channel that was present but empty (JSON null, blank CSV cell) reads as NaN,
// which downstream consumers treat as a missing value.
type Sample struct {
	Values  [NumChannels]float64
	present uint16
}

// Get returns the value for the channel.
func (s Sample) Get(c Channel) float64 {
	return s.Values[c]
}

// Set assigns a value and marks the channel present.
func (s *Sample) Set(c Channel, v float64) {
	s.Values[c] = v
	s.present |= 1 << uint(c)
}

// Has reports whether the channel was supplied on input.
func (s Sample) Has(c Channel) bool {
	return s.present&(1<<uint(c)) != 0
}

// IsMissing reports whether the channel holds a missing (NaN) value.
func (s Sample) IsMissing(c Channel) bool {
	return math.IsNaN(s.Values[c])
}

// NewSample builds a Sample with all nine channels present, in canonical order.
func NewSample(accX, accY, accZ, gyroX, gyroY, gyroZ, magX, magY, magZ float64) Sample {
	s := Sample{}
	for i, v := range []float64{accX, accY, accZ, gyroX, gyroY, gyroZ, magX, magY, magZ} {
		s.Set(Channel(i), v)
	}
	return s
}

// FromJSON decodes a live wire message: one JSON object mapping channel names to numbers.
// Absent channels default to 0.0, null channels are missing values,
// and unknown keys are ignored.
func FromJSON(data []byte) (Sample, error) {
	s := Sample{}
	if !gjson.ValidBytes(data) {
		return s, fmt.Errorf("%w: invalid JSON", ErrMalformedInput)
	}
	obj := gjson.ParseBytes(data)
	if !obj.IsObject() {
		return s, fmt.Errorf("%w: sample must be a JSON object", ErrMalformedInput)
	}
	for _, c := range Channels {
		res := obj.Get(c.String())
		if !res.Exists() {
			continue
		}
		switch res.Type {
		case gjson.Number:
			s.Set(c, res.Float())
		case gjson.Null:
			s.Set(c, math.NaN())
		default:
			return s, fmt.Errorf("%w: channel %s is not a number: %s", ErrMalformedInput, c, res.Raw)
		}
	}
	return s, nil
}

// MarshalJSON writes present channels as a flat object, the same shape FromJSON reads.
// Missing values are written as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, NumChannels)
	for _, c := range Channels {
		if !s.Has(c) {
			continue
		}
		if s.IsMissing(c) {
			m[c.String()] = nil
			continue
		}
		m[c.String()] = s.Values[c]
	}
	return json.Marshal(m)
}

// UnmarshalJSON satisfies json.Unmarshaler using FromJSON.
func (s *Sample) UnmarshalJSON(data []byte) error {
	got, err := FromJSON(data)
	if err != nil {
		return err
	}
	*s = got
	return nil
}
