package activity

import (
	"testing"
)

func TestModeTracker_Sorted(t *testing.T) {
	mt := NewModeTracker()
	for _, l := range []Label{Standing, Walking, Walking, RotationLeft, Standing, Walking} {
		mt.Push(l, 1)
	}
	sorted := mt.Sorted()
	if len(sorted) != 3 {
		t.Fatalf("have %d want %d", len(sorted), 3)
	}
	t.Logf("sorted: %v", sorted)
	if sorted[0].Label != Walking {
		t.Errorf("have %v want %v", sorted[0].Label, Walking)
	}
	if sorted[len(sorted)-1].Label != RotationLeft {
		t.Errorf("have %v want %v", sorted[len(sorted)-1].Label, RotationLeft)
	}
	wantSum := 6.0
	gotSum := 0.0
	for _, m := range sorted {
		gotSum += m.Scalar
	}
	if gotSum != wantSum {
		t.Errorf("have %f want %f", gotSum, wantSum)
	}
}

func TestModeTracker_ModeTieFirstSeen(t *testing.T) {
	cases := []struct {
		pushes []Label
		want   Label
	}{
		{nil, Unknown},
		{[]Label{Standing, Walking}, Standing},
		{[]Label{Walking, Standing}, Walking},
		{[]Label{RotationRight, Walking, Walking, RotationRight}, RotationRight},
		{[]Label{Walking, Standing, Standing}, Standing},
	}
	for i, c := range cases {
		mt := NewModeTracker()
		for _, l := range c.pushes {
			mt.Push(l, 1)
		}
		if got := mt.Mode(); got != c.want {
			t.Errorf("i=%d have %v want %v", i, got, c.want)
		}
	}
}

func TestModeTracker_ZeroValueAndReset(t *testing.T) {
	var mt ModeTracker
	mt.Push(Walking, 2)
	if mt.Mode() != Walking {
		t.Fatalf("zero value tracker did not accept push")
	}
	mt.Reset()
	if mt.Len() != 0 || mt.Mode() != Unknown {
		t.Errorf("reset tracker not empty: %v", mt.Sorted())
	}
}

func TestModes_RelWeights(t *testing.T) {
	mt := NewModeTracker()
	mt.Push(Walking, 3)
	mt.Push(Standing, 1)
	rel := mt.Sorted().RelWeights()
	if rel[0].Scalar != 0.75 || rel[1].Scalar != 0.25 {
		t.Errorf("have %v", rel)
	}
}

func TestFromString(t *testing.T) {
	cases := map[string]Label{
		"Walking":        Walking,
		"walk":           Walking,
		"Standing":       Standing,
		"still":          Standing,
		"Rotation Left":  RotationLeft,
		"rotation_right": RotationRight,
		"  Sitting ":     Label("Sitting"),
		"":               Unknown,
	}
	for in, want := range cases {
		if got := FromString(in); got != want {
			t.Errorf("FromString(%q) have %q want %q", in, got, want)
		}
	}
}

func TestLabel_IsRotation(t *testing.T) {
	if !RotationLeft.IsRotation() || !RotationRight.IsRotation() {
		t.Error("rotation labels not rotation")
	}
	if Walking.IsRotation() || Standing.IsRotation() {
		t.Error("non-rotation labels are rotation")
	}
	if Label("").String() != "Unknown" {
		t.Errorf("empty label string: %q", Label("").String())
	}
}
