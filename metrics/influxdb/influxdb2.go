package influxdb

import (
	"context"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"log/slog"
	"sync"
	"time"
)

const (
	MeasurementWindow  = "motionsense_window"
	MeasurementSession = "motionsense_session"
)

// WindowPoint converts a live window result to a point.
func WindowPoint(ev events.WindowEvent) *write.Point {
	p := influxdb2.NewPointWithMeasurement(MeasurementWindow).
		SetTime(ev.Time).
		AddTag("session", ev.SessionID).
		AddTag("source", ev.Source).
		AddTag("activity", ev.Activity).
		AddField("index", ev.Index).
		AddField("steps", ev.Steps).
		AddField("distance_m", ev.DistanceM).
		// Add activity as a field, in addition to as tag, above.
		AddField("activity", ev.Activity)
	if ev.Device != "" {
		p.AddTag("device", ev.Device)
	}
	if ev.RotationDeg != nil {
		p.AddField("rotation_deg", *ev.RotationDeg)
	}
	return p
}

// SessionPoint converts an ended session to a point of its totals.
func SessionPoint(ev events.SessionEvent) *write.Point {
	t := ev.Totals
	p := influxdb2.NewPointWithMeasurement(MeasurementSession).
		SetTime(ev.Time).
		AddTag("session", ev.SessionID).
		AddTag("source", ev.Source).
		AddTag("activity", t.Label.String()).
		AddField("windows", t.Windows).
		AddField("steps", t.Steps).
		AddField("distance_m", t.DistanceM).
		AddField("rotation_right_deg", t.RotationRightDeg).
		AddField("rotation_left_deg", t.RotationLeftDeg).
		AddField("duration_s", ev.Time.Sub(ev.Started).Seconds())
	if ev.Device != "" {
		p.AddTag("device", ev.Device)
	}
	return p
}

func newClient(config *params.InfluxConfig) influxdb2.Client {
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Millisecond)
	if config.FlushInterval > 0 {
		opts.SetFlushInterval(uint(config.FlushInterval.Milliseconds()))
	}
	return influxdb2.NewClientWithOptions(config.URL, config.Token, opts)
}

// ExportWindows posts window results to an InfluxDB Write API.
// Because it accepts a slice, use batches. The Write API will buffer and flush.
// The last error encountered is returned.
func ExportWindows(config *params.InfluxConfig, windows []events.WindowEvent) error {
	client := newClient(config)
	writeAPI := client.WriteAPI(config.Org, config.Bucket)

	// Errors returns a channel for reading errors which occurs during async writes.
	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, w := range windows {
		writeAPI.WritePoint(WindowPoint(w))
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}

// Run writes every live window and ended session from the event feeds until ctx is done.
// Write errors are logged and do not stop the exporter.
func Run(ctx context.Context, config *params.InfluxConfig) {
	client := newClient(config)
	writeAPI := client.WriteAPI(config.Org, config.Bucket)
	errorsCh := writeAPI.Errors()
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				slog.Warn("InfluxDB write failed", "error", e)
			}
		}
	}()
	defer func() {
		writeAPI.Flush()
		client.Close()
		wait.Wait()
	}()

	windows := make(chan events.WindowEvent, 256)
	windowsSub := events.WindowFeed.Subscribe(windows)
	defer windowsSub.Unsubscribe()
	sessions := make(chan events.SessionEvent, 64)
	sessionsSub := events.SessionFeed.Subscribe(sessions)
	defer sessionsSub.Unsubscribe()

	slog.Info("Exporting to InfluxDB", "url", config.URL, "org", config.Org, "bucket", config.Bucket)
	for {
		select {
		case <-ctx.Done():
			return
		case <-windowsSub.Err():
			return
		case <-sessionsSub.Err():
			return
		case ev := <-windows:
			writeAPI.WritePoint(WindowPoint(ev))
		case ev := <-sessions:
			if ev.Ended {
				writeAPI.WritePoint(SessionPoint(ev))
			}
		}
	}
}
