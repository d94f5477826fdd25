package classifier

import (
	"encoding/json"
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"io"
	"math"
)

// leaf marks a node without children in the exported child arrays.
const leaf = -1

// Tree is one decision tree in the flat array layout of sklearn's tree_ attribute.
// Node i tests x[Feature[i]] <= Threshold[i], going to ChildrenLeft[i] when true.
// Value[i] holds per-class weights at the node.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest is a random forest classifier.
// Prediction averages the normalized leaf class distributions of all trees
// and returns the class with the highest mean, the first class winning ties.
type Forest struct {
	Classes      []string `json:"classes"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Trees        []Tree   `json:"trees"`

	nFeatures int
	index     map[string]int
}

// LoadForest reads and validates a JSON forest export.
func LoadForest(r io.Reader) (*Forest, error) {
	f := &Forest{}
	if err := json.NewDecoder(r).Decode(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := f.init(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) init() error {
	if len(f.Classes) == 0 {
		return fmt.Errorf("%w: no classes", ErrInvalidModel)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidModel)
	}
	f.nFeatures = 0
	for ti, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if n == 0 || len(t.ChildrenRight) != n || len(t.Feature) != n ||
			len(t.Threshold) != n || len(t.Value) != n {
			return fmt.Errorf("%w: tree %d has inconsistent node arrays", ErrInvalidModel, ti)
		}
		for i := 0; i < n; i++ {
			l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
			if l == leaf || r == leaf {
				if l != r {
					return fmt.Errorf("%w: tree %d node %d has one child", ErrInvalidModel, ti, i)
				}
				if len(t.Value[i]) != len(f.Classes) {
					return fmt.Errorf("%w: tree %d leaf %d has %d class weights, want %d",
						ErrInvalidModel, ti, i, len(t.Value[i]), len(f.Classes))
				}
				continue
			}
			// Children always follow their parent in sklearn's layout,
			// which also rules out cycles.
			if l <= i || r <= i || l >= n || r >= n {
				return fmt.Errorf("%w: tree %d node %d has bad children", ErrInvalidModel, ti, i)
			}
			if t.Feature[i] < 0 {
				return fmt.Errorf("%w: tree %d node %d has bad feature", ErrInvalidModel, ti, i)
			}
			f.nFeatures = max(f.nFeatures, t.Feature[i]+1)
		}
	}
	if len(f.FeatureNames) > 0 {
		if len(f.FeatureNames) < f.nFeatures {
			return fmt.Errorf("%w: %d feature names for %d features", ErrInvalidModel, len(f.FeatureNames), f.nFeatures)
		}
		f.nFeatures = len(f.FeatureNames)
		f.index = make(map[string]int, len(f.FeatureNames))
		for i, name := range f.FeatureNames {
			f.index[name] = i
		}
	}
	return nil
}

// Schema returns the feature names the forest was trained on, if the export carried them.
func (f *Forest) Schema() features.Schema {
	if len(f.FeatureNames) == 0 {
		return nil
	}
	out := make(features.Schema, len(f.FeatureNames))
	copy(out, f.FeatureNames)
	return out
}

// inputs arranges the vector in the forest's feature order.
func (f *Forest) inputs(v features.Vector) ([]float64, error) {
	for i, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: feature %s is not finite", imu.ErrMalformedInput, v.Names[i])
		}
	}
	if f.index == nil || sameNames(f.FeatureNames, v.Names) {
		if len(v.Values) < f.nFeatures {
			return nil, fmt.Errorf("%w: vector has %d features, model needs %d",
				features.ErrConfiguration, len(v.Values), f.nFeatures)
		}
		return v.Values, nil
	}
	x := make([]float64, len(f.FeatureNames))
	found := 0
	for i, name := range v.Names {
		if j, ok := f.index[name]; ok {
			x[j] = v.Values[i]
			found++
		}
	}
	if found != len(f.FeatureNames) {
		return nil, fmt.Errorf("%w: vector lacks %d of the model's features",
			features.ErrConfiguration, len(f.FeatureNames)-found)
	}
	return x, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Proba returns the mean class distribution over all trees, indexed like Classes.
func (f *Forest) Proba(v features.Vector) ([]float64, error) {
	x, err := f.inputs(v)
	if err != nil {
		return nil, err
	}
	proba := make([]float64, len(f.Classes))
	for _, t := range f.Trees {
		node := 0
		for t.ChildrenLeft[node] != leaf {
			if x[t.Feature[node]] <= t.Threshold[node] {
				node = t.ChildrenLeft[node]
			} else {
				node = t.ChildrenRight[node]
			}
		}
		weights := t.Value[node]
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if total == 0 {
			continue
		}
		for i, w := range weights {
			proba[i] += w / total
		}
	}
	for i := range proba {
		proba[i] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the most probable class.
func (f *Forest) Predict(v features.Vector) (string, error) {
	proba, err := f.Proba(v)
	if err != nil {
		return "", err
	}
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return f.Classes[best], nil
}
