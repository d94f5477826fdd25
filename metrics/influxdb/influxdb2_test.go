package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWindowPoint(t *testing.T) {
	rot := 20.0
	ev := events.WindowEvent{
		SessionID:   "abc",
		Source:      events.SourceWebsocket,
		Index:       4,
		Activity:    "Rotation Right",
		Steps:       0,
		RotationDeg: &rot,
		Time:        time.Unix(1700000000, 0),
	}
	line := write.PointToLineProtocol(WindowPoint(ev), time.Second)
	for _, want := range []string{
		MeasurementWindow + ",",
		`activity=Rotation\ Right`,
		"index=4i",
		"steps=0i",
		"rotation_deg=20",
		" 1700000000\n",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("%q does not contain %q", line, want)
		}
	}
	if strings.Contains(line, "device=") {
		t.Errorf("empty device should not be tagged: %q", line)
	}
}

func TestSessionPoint(t *testing.T) {
	start := time.Unix(1700000000, 0)
	ev := events.SessionEvent{
		SessionID: "abc",
		Source:    events.SourceMQTT,
		Device:    "phone",
		Ended:     true,
		Started:   start,
		Time:      start.Add(90 * time.Second),
		Totals:    aggregate.RunSummary{Label: activity.Walking, Steps: 12, Windows: 6},
	}
	line := write.PointToLineProtocol(SessionPoint(ev), time.Second)
	for _, want := range []string{"device=phone", "activity=Walking", "steps=12i", "windows=6i", "duration_s=90"} {
		if !strings.Contains(line, want) {
			t.Errorf("%q does not contain %q", line, want)
		}
	}
}

func TestExportWindows(t *testing.T) {
	var mu sync.Mutex
	var body strings.Builder
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body.Write(b)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	config := params.DefaultInfluxConfig()
	config.URL = srv.URL
	config.Org = "org"
	windows := []events.WindowEvent{
		{SessionID: "s", Source: events.SourceBatch, Index: 0, Activity: "Walking", Steps: 1, Time: time.Now()},
		{SessionID: "s", Source: events.SourceBatch, Index: 1, Activity: "Standing", Time: time.Now()},
	}
	if err := ExportWindows(config, windows); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	got := body.String()
	if strings.Count(got, MeasurementWindow) != 2 {
		t.Errorf("have %q want 2 points", got)
	}
}
