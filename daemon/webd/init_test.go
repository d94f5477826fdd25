package webd

import (
	"context"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/classifier"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/common"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/testing/testdata"
	"log/slog"
	"strings"
	"testing"
)

func toyArtifacts(t *testing.T) pipeline.ArtifactSource {
	t.Helper()
	f, err := classifier.LoadForest(strings.NewReader(testdata.ForestJSON))
	if err != nil {
		t.Fatal(err)
	}
	return &pipeline.Static{Classifier: f, Schema: f.Schema()}
}

// newTestWebDaemon creates a WebDaemon with a fresh data directory,
// classifying with src, or the toy model when src is nil.
func newTestWebDaemon(t *testing.T, src pipeline.ArtifactSource) *WebDaemon {
	t.Helper()
	t.Cleanup(common.SlogResetLevel(slog.LevelWarn))
	config := params.DefaultTestWebDaemonConfig()
	config.DataDir = t.TempDir()
	if src == nil {
		src = toyArtifacts(t)
	}
	d, err := NewWebDaemon(config, src)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.startBroadcast(ctx)
	t.Cleanup(func() {
		cancel()
		_ = d.readers.Close()
		_ = d.watchers.Close()
		_ = d.Close()
	})
	return d
}
