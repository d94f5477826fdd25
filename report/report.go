/*
Package report renders batch runs for people: a text report and a PNG plot.
*/
package report

import (
	"bufio"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"io"
	"strings"
	"time"
)

// fixed rounds half away from zero to places and always prints them.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func metres(m float64) string {
	return fixed(m, 2) + " m (" + fixed(m/1000, 3) + " km)"
}

func degrees(d float64) string {
	return fixed(d, 1) + "°"
}

// Options select what the text report includes.
type Options struct {
	// Summary omits the per-window lines.
	Summary bool
}

// Text writes a run report. Windows are numbered from 1.
func Text(w io.Writer, run *pipeline.Run, opts Options) error {
	bw := bufio.NewWriter(w)
	name := run.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(bw, "Run %s (%s): %s samples, %s windows, analyzed in %s\n",
		run.ID, name, humanize.Comma(int64(run.Samples)), humanize.Comma(int64(len(run.Windows))),
		run.Duration.Round(time.Millisecond))

	if !opts.Summary {
		for _, r := range run.Windows {
			writeWindow(bw, r)
		}
	}
	bw.WriteString("\n")
	writeSummary(bw, run.Summary)
	return bw.Flush()
}

func writeWindow(w *bufio.Writer, r pipeline.WindowResult) {
	fmt.Fprintf(w, "\nWindow %d → %s %s", r.Index+1, r.Label, r.Label.Emoji())
	if r.RawLabel != r.Label {
		fmt.Fprintf(w, " (classified %s)", r.RawLabel)
	}
	w.WriteString("\n")
	switch {
	case r.Label == activity.Walking:
		fmt.Fprintf(w, "  Steps: %d\n", r.Steps)
		fmt.Fprintf(w, "  Distance: %s\n", metres(r.DistanceM))
	case r.Label.IsRotation():
		if r.RotationDeg == nil {
			w.WriteString("  Rotation: N/A (missing or insufficient magnetometer data)\n")
			return
		}
		fmt.Fprintf(w, "  Rotation: %s\n", degrees(*r.RotationDeg))
	}
}

func writeSummary(w *bufio.Writer, s aggregate.RunSummary) {
	fmt.Fprintf(w, "Overall activity: %s\n", s.Label)
	fmt.Fprintf(w, "Total steps: %s\n", humanize.Comma(int64(s.Steps)))
	fmt.Fprintf(w, "Total distance: %s\n", metres(s.DistanceM))
	fmt.Fprintf(w, "Total rotation right: %s\n", degrees(s.RotationRightDeg))
	fmt.Fprintf(w, "Total rotation left: %s\n", degrees(s.RotationLeftDeg))
	if len(s.Breakdown) == 0 {
		return
	}
	parts := make([]string, len(s.Breakdown))
	for i, b := range s.Breakdown {
		parts[i] = fmt.Sprintf("%s %s%%", b.Label, fixed(b.Fraction*100, 1))
	}
	fmt.Fprintf(w, "Breakdown: %s\n", strings.Join(parts, ", "))
}
