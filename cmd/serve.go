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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/daemon/webd"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/metrics/influxdb"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"log"
	"log/slog"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live classification webserver",
	Long: `Serve classifies live samples sent over websockets.

  /ws/read/   send one JSON sample per message, eg. {"acc_x": 0.1, ..., "mag_z": -30};
              after N samples every message is answered {"activity": "Walking"},
              or {"error": "..."}.
  /ws/watch   receive every live window result.
  /sessions   live and recent sessions; /runs stored batch runs.
  /analyze    POST a CSV recording to classify it in batch (token protected).

The model is loaded on first use.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		config := params.DefaultWebDaemonConfig()
		config.DataDir = viper.GetString("datadir")
		config.Address = viper.GetString("http.address")
		config.Token = viper.GetString("http.token")
		config.Pipeline = pipelineConfig()
		config.Model = modelConfig()

		server, err := webd.NewWebDaemon(config, nil)
		if err != nil {
			log.Fatalln(err)
		}
		defer server.Close()

		if ic := influxConfig(); ic.Enabled() {
			go influxdb.Run(ctx, ic)
		}
		slog.Info("webd.Run")
		if err := server.Run(ctx); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	defaults := params.DefaultWebDaemonConfig()
	pFlags := serveCmd.PersistentFlags()
	pFlags.String("address", defaults.Address, "HTTP address to listen on")
	pFlags.String("token", defaults.Token, "Token required by /analyze; empty allows all")
	bindFlag(pFlags.Lookup("address"), "http.address")
	bindFlag(pFlags.Lookup("token"), "http.token")
}
