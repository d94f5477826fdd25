package report

import (
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/activity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"image/color"
)

var (
	colorDistance = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorRight    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorLeft     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Plot saves a chart of a run: cumulative distance by window, and the
// signed rotation of rotation windows (right positive, left negative).
// The format follows the file extension, eg. .png or .svg.
func Plot(run *pipeline.Run, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run %s", run.Name)
	if run.Name == "" {
		p.Title.Text = fmt.Sprintf("Run %s", run.ID)
	}
	p.X.Label.Text = "Window"
	p.Y.Label.Text = "Distance (m) / Rotation (°)"

	distance := make(plotter.XYs, 0, len(run.Windows))
	var right, left plotter.XYs
	total := 0.0
	for _, r := range run.Windows {
		if r.Label == activity.Walking {
			total += r.DistanceM
		}
		x := float64(r.Index)
		distance = append(distance, plotter.XY{X: x, Y: total})
		if r.RotationDeg == nil {
			continue
		}
		switch r.Label {
		case activity.RotationRight:
			right = append(right, plotter.XY{X: x, Y: *r.RotationDeg})
		case activity.RotationLeft:
			left = append(left, plotter.XY{X: x, Y: -*r.RotationDeg})
		}
	}

	if len(distance) > 0 {
		line, err := plotter.NewLine(distance)
		if err != nil {
			return err
		}
		line.Color = colorDistance
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("distance", line)
	}
	for _, series := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{{"rotation right", right, colorRight}, {"rotation left", left, colorLeft}} {
		if len(series.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(series.pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = series.c
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(sc)
		p.Legend.Add(series.name, sc)
	}
	p.Add(plotter.NewGrid())

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
