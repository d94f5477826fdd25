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
	"fmt"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/common"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   params.AppName,
	Short: "Classify walking, standing and turning from IMU streams",
	Long: `motionsense classifies windows of 9-axis IMU samples into activities,
counts steps, estimates rotation from the magnetometer, and totals them per run.

Recorded sessions are analyzed in batch (analyze). Live streams are served
over websockets (serve) or MQTT (mqttd).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/."+params.AppName+"/"+params.ConfigFileName+")")
	pFlags.Int("verbosity", int(slog.LevelInfo), "Log level: -4 debug, 0 info, 4 warn, 8 error")
	pFlags.String("datadir", params.DefaultDatadirRoot, "Data directory for stored runs and sessions")
	bindFlag(pFlags.Lookup("verbosity"), "verbosity")
	bindFlag(pFlags.Lookup("datadir"), "datadir")

	addPipelineFlags(pFlags)
	addModelFlags(pFlags)
	addInfluxFlags(pFlags)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(filepath.Join(home, "."+params.AppName))
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(params.ConfigFileName, filepath.Ext(params.ConfigFileName)))
	}

	viper.SetEnvPrefix(params.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}
}

// setDefaultSlog sets the default logger level from --verbosity.
func setDefaultSlog(cmd *cobra.Command, args []string) {
	slog.SetLogLoggerLevel(slog.Level(viper.GetInt("verbosity")))
	slog.Debug("Command", "name", cmd.Name(), "args", args, "config", viper.ConfigFileUsed())
}

// interruptContext returns a context canceled on the first interrupt signal.
// A second signal exits immediately.
func interruptContext() (context.Context, context.CancelFunc) {
	return common.InterruptContext(context.Background(), os.Exit)
}
