package activity

import (
	"regexp"
	"slices"
	"strings"
)

// Label is an activity label as emitted by a classifier.
// The vocabulary belongs to the model; the pipeline only reasons about
// the handful of labels below.
type Label string

const (
	Walking       Label = "Walking"
	Standing      Label = "Standing"
	RotationLeft  Label = "Rotation Left"
	RotationRight Label = "Rotation Right"
	Unknown       Label = "Unknown"
)

var (
	activityWalking  = regexp.MustCompile(`(?i)^\s*walk(ing)?\s*$`)
	activityStanding = regexp.MustCompile(`(?i)^\s*(stand(ing)?|still|stationary)\s*$`)
	activityRotLeft  = regexp.MustCompile(`(?i)^\s*rotation[\s_-]*left\s*$`)
	activityRotRight = regexp.MustCompile(`(?i)^\s*rotation[\s_-]*right\s*$`)
)

// String implements the Stringer interface.
func (l Label) String() string {
	if l == "" {
		return string(Unknown)
	}
	return string(l)
}

// IsKnown returns true if the label is not empty or Unknown.
func (l Label) IsKnown() bool { return l != "" && l != Unknown }

// IsRotation returns whether the label is one of the rotation labels.
func (l Label) IsRotation() bool { return l == RotationLeft || l == RotationRight }

// Emoji returns a single emoji representation of the label.
func (l Label) Emoji() string {
	switch l {
	case Walking:
		return "🚶"
	case Standing:
		return "🧍"
	case RotationLeft:
		return "↩️"
	case RotationRight:
		return "↪️"
	}
	return "❓"
}

// FromString normalizes classifier output spellings onto the canonical labels
// the pipeline reasons about. Other labels pass through trimmed.
func FromString(str string) Label {
	switch {
	case activityWalking.MatchString(str):
		return Walking
	case activityStanding.MatchString(str):
		return Standing
	case activityRotLeft.MatchString(str):
		return RotationLeft
	case activityRotRight.MatchString(str):
		return RotationRight
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return Unknown
	}
	return Label(str)
}

// Mode implements basic reasoning about Label frequency or weighting.
type Mode struct {
	Label  Label
	Scalar float64
	// first is the order in which the label was first pushed.
	first int
}

// SortModes describes the sorting order of modes.
// Greater scalar values are ordered first, less scalar values last.
// In case of scalar ties, the label seen first is preferred.
func SortModes(a, b Mode) int {
	if a.Scalar > b.Scalar {
		return -1
	} else if a.Scalar < b.Scalar {
		return 1
	} else if a.first < b.first {
		return -1
	} else if a.first > b.first {
		return 1
	}
	return 0
}

// Modes is a slice of Mode.
type Modes []Mode

// RelWeights mutates the Modes slice to have relative scalar weights (0 to 1).
func (s Modes) RelWeights() Modes {
	totalWeight := 0.0
	for _, m := range s {
		totalWeight += m.Scalar
	}
	if totalWeight == 0 {
		return s
	}
	for i := range s {
		s[i].Scalar /= totalWeight
	}
	return s
}

// ModeTracker accumulates label weights and reports the stable mode.
// The zero value is ready to use.
type ModeTracker struct {
	modes []Mode
	index map[Label]int
}

// NewModeTracker creates an empty ModeTracker.
func NewModeTracker() *ModeTracker {
	return &ModeTracker{index: map[Label]int{}}
}

// Push adds weight to a label.
func (mt *ModeTracker) Push(l Label, weight float64) {
	if mt.index == nil {
		mt.index = map[Label]int{}
	}
	i, ok := mt.index[l]
	if !ok {
		i = len(mt.modes)
		mt.index[l] = i
		mt.modes = append(mt.modes, Mode{Label: l, first: i})
	}
	mt.modes[i].Scalar += weight
}

// Sorted returns the modes sorted by scalar value, with greatest scalars first.
func (mt *ModeTracker) Sorted() Modes {
	modes := slices.Clone(Modes(mt.modes))
	slices.SortStableFunc(modes, SortModes)
	return modes
}

// Mode returns the most weighted label, ties broken by first appearance.
// An empty tracker returns Unknown.
func (mt *ModeTracker) Mode() Label {
	sorted := mt.Sorted()
	if len(sorted) == 0 {
		return Unknown
	}
	return sorted[0].Label
}

// Len returns the number of distinct labels seen.
func (mt *ModeTracker) Len() int { return len(mt.modes) }

func (mt *ModeTracker) Reset() {
	mt.modes = nil
	mt.index = map[Label]int{}
}
