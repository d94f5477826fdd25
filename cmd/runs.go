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
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/report"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/state"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs and ended live sessions",
	Long: `Runs lists batch runs saved with analyze --save or POST /analyze?save=true,
and live sessions recorded by serve and mqttd.

The data directory is opened read-only. A running serve or mqttd holds the
write lock, so this waits up to a few seconds and then gives up.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		st, err := state.Open(viper.GetString("datadir"), true)
		if err != nil {
			return err
		}
		defer st.Close()
		return listState(os.Stdout, st)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the report of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		ctx, cancel := interruptContext()
		defer cancel()

		st, err := state.Open(viper.GetString("datadir"), true)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.ReadRun(args[0])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		windows, err := st.ReadRunWindows(ctx, args[0])
		if err != nil {
			return fmt.Errorf("run %s windows: %w", args[0], err)
		}
		return report.Text(os.Stdout, storedRun(rec, windows), report.Options{Summary: optRunsSummary})
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete stored runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)
		cmd.SilenceUsage = true

		st, err := state.Open(viper.GetString("datadir"), false)
		if err != nil {
			return err
		}
		defer st.Close()
		for _, id := range args {
			if err := st.DeleteRun(id); err != nil {
				return err
			}
			slog.Info("Deleted run", "id", id)
		}
		return nil
	},
}

var optRunsSummary bool

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRmCmd)
	runsShowCmd.Flags().BoolVar(&optRunsSummary, "summary", false, "Print only the run summary")
}

func storedRun(rec *state.RunRecord, windows []pipeline.WindowResult) *pipeline.Run {
	return &pipeline.Run{
		ID:       rec.ID,
		Name:     rec.Name,
		Started:  rec.Started,
		Duration: rec.Duration,
		Samples:  rec.Samples,
		Windows:  windows,
		Summary:  rec.Summary,
	}
}

func listState(w io.Writer, st *state.State) error {
	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	sessions, err := st.ListSessions()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN\tNAME\tSTARTED\tSAMPLES\tACTIVITY\tSTEPS\n")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, humanize.Time(r.Started), humanize.Comma(int64(r.Samples)),
			r.Summary.Label, humanize.Comma(int64(r.Summary.Steps)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SESSION\tSOURCE\tDEVICE\tENDED\tWINDOWS\tACTIVITY\tSTEPS\n")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Source, s.Device, humanize.Time(s.Ended), humanize.Comma(int64(s.Totals.Windows)),
			s.Totals.Label, humanize.Comma(int64(s.Totals.Steps)))
	}
	return tw.Flush()
}
