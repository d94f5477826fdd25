/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/artifact"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catz"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/metrics/influxdb"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/report"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/state"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/stream"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"
)

var optAnalyzeJSON bool
var optAnalyzeSummary bool
var optAnalyzePlot string
var optAnalyzeSave bool
var optAnalyzeOut string
var optAnalyzeProgress time.Duration

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <recording>",
	Short: "Classify a recorded session",
	Long: `Analyze classifies a recording in tumbling windows of N samples,
smooths the labels, and reports per-window results and run totals.

The recording is a CSV with a header naming channel columns
(acc_x ... mag_z; other columns are ignored), or newline-delimited JSON
samples when the name ends in .ndjson or .jsonl. Either may be gzipped.
It may be a path, file://, http(s):// or s3:// location, or - for stdin.

Examples:

  motionsense analyze --model model.json walk.csv
  motionsense analyze --model s3://models/forest.json.gz --json --save walk.csv.gz
  zcat walk.csv.gz | motionsense analyze --model model.json --plot walk.png -
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		ctx, cancel := interruptContext()
		defer cancel()

		samples, err := readRecording(ctx, args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		art, err := pipeline.LoadArtifacts(ctx, modelConfig())
		if err != nil {
			return err
		}
		config := pipelineConfig()
		run, err := pipeline.Analyze(ctx, samples, config, (*pipeline.Static)(art),
			pipeline.BatchOptions{Name: path.Base(args[0]), ProgressInterval: optAnalyzeProgress})
		if err != nil {
			return err
		}

		if optAnalyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			err = enc.Encode(run)
		} else {
			err = report.Text(cmd.OutOrStdout(), run, report.Options{Summary: optAnalyzeSummary})
		}
		if err != nil {
			return err
		}

		if optAnalyzePlot != "" {
			if err := report.Plot(run, optAnalyzePlot); err != nil {
				return fmt.Errorf("plot: %w", err)
			}
			slog.Info("Wrote plot", "path", optAnalyzePlot)
		}
		if optAnalyzeOut != "" {
			b, err := json.Marshal(run)
			if err != nil {
				return err
			}
			if err := artifact.Put(ctx, optAnalyzeOut, b, "application/json"); err != nil {
				return fmt.Errorf("write %s: %w", optAnalyzeOut, err)
			}
			slog.Info("Wrote run", "location", optAnalyzeOut)
		}
		if optAnalyzeSave {
			st, err := state.Open(viper.GetString("datadir"), false)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveRun(run); err != nil {
				return err
			}
			slog.Info("Saved run", "id", run.ID, "datadir", viper.GetString("datadir"))
		}
		if ic := influxConfig(); ic.Enabled() {
			if err := influxdb.ExportWindows(ic, runWindowEvents(run, windowDuration(config))); err != nil {
				slog.Warn("InfluxDB export failed", "error", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.BoolVar(&optAnalyzeJSON, "json", false, "Print the run as JSON instead of a text report")
	flags.BoolVar(&optAnalyzeSummary, "summary", false, "Text report totals only")
	flags.StringVar(&optAnalyzePlot, "plot", "", "Save a chart of the run, eg. run.png")
	flags.BoolVar(&optAnalyzeSave, "save", false, "Store the run in the data directory")
	flags.StringVar(&optAnalyzeOut, "out", "", "Also write the run as JSON to a path or s3:// location")
	flags.DurationVar(&optAnalyzeProgress, "progress", 0, "Log progress at this interval")
}

// isNDJSONName reports whether a location names newline-delimited JSON, gzipped or not.
func isNDJSONName(loc string) bool {
	name := strings.TrimSuffix(strings.ToLower(loc), ".gz")
	return strings.HasSuffix(name, ".ndjson") || strings.HasSuffix(name, ".jsonl")
}

// readRecording reads all samples of a recording.
func readRecording(ctx context.Context, loc string) ([]imu.Sample, error) {
	var rc io.ReadCloser
	var err error
	if loc == "-" {
		rc, err = catz.MaybeGZ(os.Stdin)
	} else {
		rc, err = artifact.Open(ctx, loc)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if !isNDJSONName(loc) {
		return imu.ReadCSV(rc)
	}
	samples, skipped := stream.NDJSON[imu.Sample](ctx, rc)
	out := stream.Collect(ctx, samples)
	if n := <-skipped; n > 0 {
		return out, fmt.Errorf("%w: %d undecodable samples", imu.ErrMalformedInput, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no samples")
	}
	return out, ctx.Err()
}

// windowDuration is the recorded time one window spans.
func windowDuration(config *params.PipelineConfig) time.Duration {
	return time.Duration(float64(config.WindowSize) / config.SamplingRateHz * float64(time.Second))
}

// runWindowEvents describes a batch run's windows as events, for export.
// Window times are offsets of spacing from the analysis start.
func runWindowEvents(run *pipeline.Run, spacing time.Duration) []events.WindowEvent {
	out := make([]events.WindowEvent, len(run.Windows))
	for i, r := range run.Windows {
		out[i] = events.WindowEvent{
			SessionID:   run.ID,
			Source:      events.SourceBatch,
			Device:      run.Name,
			Index:       r.Index,
			Activity:    r.Label.String(),
			Steps:       r.Steps,
			DistanceM:   r.DistanceM,
			RotationDeg: r.RotationDeg,
			Time:        run.Started.Add(time.Duration(i) * spacing),
		}
	}
	return out
}
