/*
Package classifier maps feature vectors to activity labels.

The pipeline depends only on the Classifier interface. Forest evaluates a
random forest exported from scikit-learn as JSON, and Memo caches any
Classifier's answers for repeated vectors.
*/
package classifier

import (
	"errors"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
)

var ErrInvalidModel = errors.New("invalid model")

// Classifier predicts a label for a feature vector aligned to its schema.
type Classifier interface {
	Predict(v features.Vector) (string, error)
}

// SchemaProvider is implemented by classifiers that carry the names
// of the features they were trained on.
type SchemaProvider interface {
	Schema() features.Schema
}

// Func adapts a plain function to a Classifier.
type Func func(v features.Vector) (string, error)

func (f Func) Predict(v features.Vector) (string, error) { return f(v) }
