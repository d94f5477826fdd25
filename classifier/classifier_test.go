package classifier

import (
	"errors"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/testing/testdata"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"math"
	"strings"
	"sync"
	"testing"
)

const twoTreeForest = `{
  "classes": ["Standing", "Walking"],
  "feature_names": ["acc_x_std", "gyro_z_max"],
  "trees": [
    {
      "children_left":  [1, -1, -1],
      "children_right": [2, -1, -1],
      "feature":        [0, -2, -2],
      "threshold":      [0.5, -2, -2],
      "value":          [[10, 10], [10, 0], [0, 10]]
    },
    {
      "children_left":  [-1],
      "children_right": [-1],
      "feature":        [-2],
      "threshold":      [-2],
      "value":          [[3, 3]]
    }
  ]
}`

func mustForest(t *testing.T, s string) *Forest {
	t.Helper()
	f, err := LoadForest(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func vec(names []string, values ...float64) features.Vector {
	return features.Vector{Names: names, Values: values}
}

func TestForest_Predict(t *testing.T) {
	f := mustForest(t, twoTreeForest)
	names := []string{"acc_x_std", "gyro_z_max"}
	cases := []struct {
		std  float64
		want string
	}{
		{0.2, "Standing"},
		{0.5, "Standing"},
		{0.9, "Walking"},
	}
	for _, c := range cases {
		got, err := f.Predict(vec(names, c.std, 0))
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("std=%v have %s want %s", c.std, got, c.want)
		}
	}
	proba, err := f.Proba(vec(names, 0.2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if proba[0] != 0.75 || proba[1] != 0.25 {
		t.Errorf("proba have %v want [0.75 0.25]", proba)
	}
}

func TestForest_ReordersByName(t *testing.T) {
	f := mustForest(t, twoTreeForest)
	got, err := f.Predict(vec([]string{"extra", "gyro_z_max", "acc_x_std"}, 100, 0, 0.9))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Walking" {
		t.Errorf("have %s want Walking", got)
	}
	_, err = f.Predict(vec([]string{"gyro_z_max"}, 0))
	if !errors.Is(err, features.ErrConfiguration) {
		t.Errorf("have %v want ErrConfiguration", err)
	}
}

func TestForest_RejectsNonFinite(t *testing.T) {
	f := mustForest(t, twoTreeForest)
	_, err := f.Predict(vec([]string{"acc_x_std", "gyro_z_max"}, math.NaN(), 0))
	if !errors.Is(err, imu.ErrMalformedInput) {
		t.Errorf("have %v want ErrMalformedInput", err)
	}
}

func TestForest_Schema(t *testing.T) {
	f := mustForest(t, testdata.ForestJSON)
	schema := f.Schema()
	if len(schema) != 2 || schema[0] != "acc_z_std" || schema[1] != "gyro_z_mean" {
		t.Errorf("have %v", schema)
	}
	schema[0] = "mutated"
	if f.Schema()[0] != "acc_z_std" {
		t.Error("Schema exposed internal slice")
	}
}

func TestForest_Toy(t *testing.T) {
	f := mustForest(t, testdata.ForestJSON)
	names := []string{"acc_z_std", "gyro_z_mean"}
	cases := []struct {
		std, gz float64
		want    string
	}{
		{0, 0, "Standing"},
		{2, 0, "Walking"},
		{0, 0.5, "Rotation Right"},
		{0, -0.5, "Rotation Left"},
	}
	for _, c := range cases {
		got, err := f.Predict(vec(names, c.std, c.gz))
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("std=%v gz=%v have %s want %s", c.std, c.gz, got, c.want)
		}
	}
}

func TestLoadForest_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":   `{`,
		"no classes": `{"classes": [], "trees": [{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1]]}]}`,
		"no trees":   `{"classes": ["a"], "trees": []}`,
		"one child":  `{"classes": ["a"], "trees": [{"children_left":[1,-1],"children_right":[-1,-1],"feature":[0,-2],"threshold":[0,-2],"value":[[1],[1]]}]}`,
		"ragged":     `{"classes": ["a"], "trees": [{"children_left":[-1],"children_right":[-1, -1],"feature":[-2],"threshold":[-2],"value":[[1]]}]}`,
		"leaf width": `{"classes": ["a", "b"], "trees": [{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[[1]]}]}`,
		"backwards":  `{"classes": ["a"], "trees": [{"children_left":[-1,0],"children_right":[-1,0],"feature":[-2,0],"threshold":[-2,0],"value":[[1],[1]]}]}`,
		"few names":  `{"classes": ["a"], "feature_names": ["x"], "trees": [{"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[3,-2,-2],"threshold":[0,-2,-2],"value":[[1],[1],[1]]}]}`,
	}
	for name, s := range cases {
		_, err := LoadForest(strings.NewReader(s))
		if !errors.Is(err, ErrInvalidModel) {
			t.Errorf("%s: have %v want ErrInvalidModel", name, err)
		}
	}
}

func TestMemo(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	inner := Func(func(v features.Vector) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if v.Values[0] < 0 {
			return "", errors.New("negative")
		}
		return "Walking", nil
	})
	m, err := NewMemo(inner, 0)
	if err != nil {
		t.Fatal(err)
	}
	names := []string{"a"}
	for i := 0; i < 3; i++ {
		if got, err := m.Predict(vec(names, 1)); err != nil || got != "Walking" {
			t.Fatalf("have %q %v", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("have %d calls want 1", calls)
	}
	for i := 0; i < 2; i++ {
		if _, err := m.Predict(vec(names, -1)); err == nil {
			t.Error("expected error")
		}
	}
	if calls != 3 {
		t.Errorf("errors should not be cached: have %d calls want 3", calls)
	}
	hits, misses := m.Stats()
	if hits != 2 || misses != 3 {
		t.Errorf("have hits=%d misses=%d want 2, 3", hits, misses)
	}
	if m.Schema() != nil {
		t.Error("plain func should carry no schema")
	}
}
