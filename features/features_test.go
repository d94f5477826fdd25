package features

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/testing/testdata"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/window"
	"io"
	"math"
	"strings"
	"testing"
	"testing/iotest"
)

func windowOf(accX ...float64) window.Window {
	samples := make([]imu.Sample, len(accX))
	for i, v := range accX {
		samples[i] = imu.NewSample(v, 0, 0, 0, 0, 0, 0, 0, 0)
	}
	return window.Window{Samples: samples}
}

func TestRawNames(t *testing.T) {
	names := RawNames()
	if len(names) != 54 {
		t.Fatalf("have %d want 54", len(names))
	}
	if names[0] != "acc_x_mean" || names[53] != "mag_z_peaks" {
		t.Errorf("unexpected order: %s .. %s", names[0], names[53])
	}
}

func TestExtract_AllZero(t *testing.T) {
	w := window.Window{Samples: make([]imu.Sample, 20)}
	v, err := Extract(w, Schema(RawNames()))
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 54 {
		t.Fatalf("have %d want 54", v.Len())
	}
	for i, x := range v.Values {
		if x != 0 {
			t.Errorf("%s = %v, want 0", v.Names[i], x)
		}
	}
}

func TestExtract_Stats(t *testing.T) {
	w := windowOf(1, 2, 3, 4)
	raw := Raw(w)
	want := map[string]float64{
		"acc_x_mean":  2.5,
		"acc_x_std":   math.Sqrt(1.25),
		"acc_x_min":   1,
		"acc_x_max":   4,
		"acc_x_range": 3,
		"acc_x_peaks": 0,
	}
	for k, wv := range want {
		if math.Abs(raw[k]-wv) > 1e-12 {
			t.Errorf("%s have %v want %v", k, raw[k], wv)
		}
	}

	raw = Raw(windowOf(0, 1, 0, 1, 1, 0))
	if raw["acc_x_peaks"] != 2 {
		t.Errorf("peaks have %v want 2", raw["acc_x_peaks"])
	}
	raw = Raw(windowOf(5))
	if raw["acc_x_peaks"] != 0 || raw["acc_x_std"] != 0 {
		t.Errorf("single sample: %v", raw)
	}
}

func TestExtract_SkipsMissing(t *testing.T) {
	w := windowOf(1, math.NaN(), 3)
	raw := Raw(w)
	if raw["acc_x_mean"] != 2 {
		t.Errorf("have %v want 2", raw["acc_x_mean"])
	}

	w = windowOf(math.NaN(), math.NaN())
	raw = Raw(w)
	if _, ok := raw["acc_x_mean"]; ok {
		t.Error("channel without values should contribute no features")
	}
	v := Align(raw, Schema{"acc_x_mean", "acc_y_mean"})
	if diff := cmp.Diff([]float64{0, 0}, v.Values); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestExtract_SchemaAlignment(t *testing.T) {
	schema := Schema{"gyro_z_max", "not_a_feature", "acc_x_mean"}
	w := window.Window{Samples: testdata.Turning(20, 0, 90)}
	v, err := Extract(w, schema)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string(schema), v.Names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if v.Len() != len(schema) {
		t.Fatalf("have %d want %d", v.Len(), len(schema))
	}
	if v.Values[0] != 0.5 || v.Values[1] != 0 || v.Values[2] != 0 {
		t.Errorf("unexpected values %v", v.Values)
	}
	if got, ok := v.Get("gyro_z_max"); !ok || got != 0.5 {
		t.Errorf("Get have %v %v", got, ok)
	}
}

func TestExtract_NoSchema(t *testing.T) {
	_, err := Extract(windowOf(1, 2), nil)
	if !errors.Is(err, ErrNoSchema) || !errors.Is(err, ErrConfiguration) {
		t.Errorf("have %v want ErrNoSchema", err)
	}
}

func TestReadSchema(t *testing.T) {
	want := Schema{"acc_x_mean", "acc_x_std", "gyro_z_peaks"}
	cases := []struct {
		name, format, data string
	}{
		{"csv", FormatCSV, "acc_x_mean,acc_x_std,gyro_z_peaks,Label\n1,2,3,Walking\n"},
		{"csv label first", FormatCSV, "Label,acc_x_mean,acc_x_std,gyro_z_peaks\n"},
		{"json", FormatJSON, `["acc_x_mean", "acc_x_std", "gyro_z_peaks"]`},
		{"lines", FormatLines, "acc_x_mean\nacc_x_std\n\ngyro_z_peaks\n"},
		{"auto csv", FormatAuto, "\ufeffacc_x_mean,acc_x_std,gyro_z_peaks,Label\n"},
		{"auto json", FormatAuto, ` ["acc_x_mean","acc_x_std","gyro_z_peaks"]`},
		{"auto lines", FormatAuto, "acc_x_mean\r\nacc_x_std\r\ngyro_z_peaks"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ReadSchema(strings.NewReader(c.data), c.format)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

// A schema table is only read up to its header row.
func TestReadSchema_HeaderOnly(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("acc_x_mean,Label\n1,Walking\n"),
		iotest.ErrReader(errors.New("rows should not be read")),
	)
	got, err := ReadSchema(r, FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Schema{"acc_x_mean"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// Only the CSV table carries a Label column; other formats keep every name.
func TestReadSchema_LabelOnlyDroppedFromCSV(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatLines} {
		data := `["label", "acc_x_mean"]`
		if format == FormatLines {
			data = "label\nacc_x_mean\n"
		}
		got, err := ReadSchema(strings.NewReader(data), format)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(Schema{"label", "acc_x_mean"}, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", format, diff)
		}
	}
	got, err := ReadSchema(strings.NewReader("label,acc_x_mean,Label\n"), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Schema{"label", "acc_x_mean"}, got); diff != "" {
		t.Errorf("csv (-want +got):\n%s", diff)
	}
}

func TestReadSchema_Errors(t *testing.T) {
	cases := []struct {
		format, data string
	}{
		{FormatJSON, `{"a": 1}`},
		{FormatJSON, `["a", 2]`},
		{FormatJSON, `["a"`},
		{FormatLines, "a\nb\na\n"},
		{FormatLines, ""},
		{FormatCSV, "Label\n"},
		{"yaml", "a: b"},
	}
	for _, c := range cases {
		_, err := ReadSchema(strings.NewReader(c.data), c.format)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("format=%q data=%q: have %v want ErrConfiguration", c.format, c.data, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]string{
		"features.csv":     FormatCSV,
		"features.CSV.gz":  FormatCSV,
		"schema.json":      FormatJSON,
		"names.txt":        FormatLines,
		"s3://b/k/feature": FormatAuto,
	}
	for in, want := range cases {
		if got := FormatFromPath(in); got != want {
			t.Errorf("%s have %q want %q", in, got, want)
		}
	}
}
