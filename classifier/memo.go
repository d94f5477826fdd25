package classifier

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/features"
	"sync/atomic"
)

// DefaultMemoSize is the number of distinct vectors a Memo remembers.
const DefaultMemoSize = 10_000

// Memo caches the predictions of a Classifier, keyed by a hash of the vector.
// Errors are not cached. It is safe for concurrent use if the wrapped Classifier is.
type Memo struct {
	Classifier
	cache        *lru.Cache[uint64, string]
	hits, misses atomic.Int64
}

func NewMemo(c Classifier, size int) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	cache, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, err
	}
	return &Memo{Classifier: c, cache: cache}, nil
}

func (m *Memo) Predict(v features.Vector) (string, error) {
	hash, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return m.Classifier.Predict(v)
	}
	if label, ok := m.cache.Get(hash); ok {
		m.hits.Add(1)
		return label, nil
	}
	m.misses.Add(1)
	label, err := m.Classifier.Predict(v)
	if err != nil {
		return "", err
	}
	m.cache.Add(hash, label)
	return label, nil
}

// Schema forwards to the wrapped classifier when it carries feature names.
func (m *Memo) Schema() features.Schema {
	if sp, ok := m.Classifier.(SchemaProvider); ok {
		return sp.Schema()
	}
	return nil
}

// Stats returns cache hits and misses.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
