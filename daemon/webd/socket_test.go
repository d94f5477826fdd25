package webd

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/gorilla/websocket"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/testing/testdata"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatal(err)
	}
}

func readReply(t *testing.T, conn *websocket.Conn) liveReply {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	r := liveReply{}
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatalf("reply %q: %v", b, err)
	}
	return r
}

// TestWebDaemon_liveSession sends N-1 samples, a malformed message, then more samples.
// The malformed message must be the first reply, so nothing was written for
// the partial window, and the session survives it.
func TestWebDaemon_liveSession(t *testing.T) {
	d := newTestWebDaemon(t, nil)
	srv := httptest.NewServer(d.NewRouter())
	defer srv.Close()
	conn := dial(t, srv, "/ws/read/")

	lines := testdata.JSONLines(testdata.Walking(2, 20))
	for _, l := range lines[:19] {
		send(t, conn, l)
	}
	send(t, conn, `{"acc_x": 1.0`)
	if r := readReply(t, conn); r.Error != invalidJSONMessage || r.Activity != "" {
		t.Fatalf("have %+v want Invalid JSON error", r)
	}

	send(t, conn, lines[19])
	if r := readReply(t, conn); r.Activity != "Walking" {
		t.Fatalf("have %+v want Walking", r)
	}
	// Every further sample yields a result for the newest window.
	send(t, conn, lines[20])
	if r := readReply(t, conn); r.Activity == "" || r.Error != "" {
		t.Fatalf("have %+v want an activity", r)
	}
}

func TestWebDaemon_liveSessionWithoutPath(t *testing.T) {
	d := newTestWebDaemon(t, nil)
	srv := httptest.NewServer(d.NewRouter())
	defer srv.Close()
	conn := dial(t, srv, "/ws/read")
	for _, l := range testdata.JSONLines(testdata.StepWindow(20)) {
		send(t, conn, l)
	}
	if r := readReply(t, conn); r.Activity != "Walking" {
		t.Fatalf("have %+v want Walking", r)
	}
}

func TestWebDaemon_liveArtifactFailure(t *testing.T) {
	fail := pipeline.NewLazyArtifactsFunc(func(ctx context.Context) (*pipeline.Artifacts, error) {
		return nil, errors.New("model unavailable")
	})
	d := newTestWebDaemon(t, fail)
	srv := httptest.NewServer(d.NewRouter())
	defer srv.Close()
	conn := dial(t, srv, "/ws/read/")

	lines := testdata.JSONLines(testdata.Walking(2, 20))
	for _, l := range lines[:20] {
		send(t, conn, l)
	}
	if r := readReply(t, conn); !strings.Contains(r.Error, "model unavailable") {
		t.Fatalf("have %+v want model error", r)
	}
	send(t, conn, lines[20])
	if r := readReply(t, conn); r.Error == "" {
		t.Fatalf("have %+v want another error reply on the same connection", r)
	}
}

func TestWebDaemon_watch(t *testing.T) {
	d := newTestWebDaemon(t, nil)
	srv := httptest.NewServer(d.NewRouter())
	defer srv.Close()

	watcher := dial(t, srv, "/ws/watch")
	deadline := time.Now().Add(5 * time.Second)
	for d.watchers.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	reader := dial(t, srv, "/ws/read/")
	for _, l := range testdata.JSONLines(testdata.StepWindow(20)) {
		send(t, reader, l)
	}
	if r := readReply(t, reader); r.Activity != "Walking" {
		t.Fatalf("have %+v want Walking", r)
	}

	// Other tests' sessions may publish on the same feed; wait for a Walking window at index 0.
	for {
		_ = watcher.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, b, err := watcher.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		ev := events.WindowEvent{}
		if err := json.Unmarshal(b, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Source == events.SourceWebsocket && ev.Index == 0 && ev.Activity == "Walking" && ev.Steps == 1 {
			break
		}
	}
}
