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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
)

// bindFlag binds a flag to a config key, so the key may come from the flag,
// MOTIONSENSE_<KEY> in the environment, or the config file.
func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func addPipelineFlags(flags *pflag.FlagSet) {
	d := params.DefaultPipelineConfig()
	flags.Float64("sampling-rate", d.SamplingRateHz, "Sampling rate in Hz")
	flags.Int("window-size", d.WindowSize, "Samples per window (N)")
	flags.Float64("step-length", d.StepLengthM, "Metres per step")
	flags.Int("min-standing-windows", d.MinStandingWindows, "Minimum run of Standing windows kept by smoothing; 0 derives it from --min-standing-duration")
	flags.Duration("min-standing-duration", d.MinStandingDuration, "Minimum Standing duration kept by smoothing")
	flags.Float64("lowpass-cutoff", d.LowpassCutoffHz, "Step filter cutoff in Hz")
	flags.Int("lowpass-order", d.LowpassOrder, "Step filter Butterworth order")
	flags.Float64("cadence-divisor", d.CadenceDivisor, "Minimum peak distance is floor(rate / divisor) samples")
	flags.Int("workers", d.Workers, "Batch window workers")

	bindFlag(flags.Lookup("sampling-rate"), "sampling_rate_hz")
	bindFlag(flags.Lookup("window-size"), "window_size")
	bindFlag(flags.Lookup("step-length"), "step_length_m")
	bindFlag(flags.Lookup("min-standing-windows"), "min_standing_windows")
	bindFlag(flags.Lookup("min-standing-duration"), "min_standing_duration")
	bindFlag(flags.Lookup("lowpass-cutoff"), "lowpass_cutoff_hz")
	bindFlag(flags.Lookup("lowpass-order"), "lowpass_order")
	bindFlag(flags.Lookup("cadence-divisor"), "cadence_divisor")
	bindFlag(flags.Lookup("workers"), "workers")
}

func pipelineConfig() *params.PipelineConfig {
	return &params.PipelineConfig{
		SamplingRateHz:      viper.GetFloat64("sampling_rate_hz"),
		WindowSize:          viper.GetInt("window_size"),
		StepLengthM:         viper.GetFloat64("step_length_m"),
		MinStandingWindows:  viper.GetInt("min_standing_windows"),
		MinStandingDuration: viper.GetDuration("min_standing_duration"),
		LowpassCutoffHz:     viper.GetFloat64("lowpass_cutoff_hz"),
		LowpassOrder:        viper.GetInt("lowpass_order"),
		CadenceDivisor:      viper.GetFloat64("cadence_divisor"),
		Workers:             viper.GetInt("workers"),
	}
}

func addModelFlags(flags *pflag.FlagSet) {
	d := params.DefaultModelConfig()
	flags.String("model", d.ModelURI, "Model location: path, file://, http(s):// or s3://bucket/key")
	flags.String("schema", d.SchemaURI, "Feature schema location; empty uses the model's feature names")
	flags.String("schema-format", d.SchemaFormat, "Schema format: csv, json or lines; empty guesses from the location and content")
	flags.Int("memo-size", d.MemoSize, "Memoized predictions; 0 disables")
	flags.Duration("model-load-timeout", d.LoadTimeout, "Give up on one model or schema load after this long; 0 waits indefinitely")

	bindFlag(flags.Lookup("model"), "model_uri")
	bindFlag(flags.Lookup("schema"), "schema_uri")
	bindFlag(flags.Lookup("schema-format"), "schema_format")
	bindFlag(flags.Lookup("memo-size"), "memo_size")
	bindFlag(flags.Lookup("model-load-timeout"), "model_load_timeout")
}

func modelConfig() *params.ModelConfig {
	return &params.ModelConfig{
		ModelURI:     viper.GetString("model_uri"),
		SchemaURI:    viper.GetString("schema_uri"),
		SchemaFormat: viper.GetString("schema_format"),
		MemoSize:     viper.GetInt("memo_size"),
		LoadTimeout:  viper.GetDuration("model_load_timeout"),
	}
}

func addInfluxFlags(flags *pflag.FlagSet) {
	d := params.DefaultInfluxConfig()
	flags.String("influx-url", d.URL, "InfluxDB URL; empty disables export")
	flags.String("influx-token", d.Token, "InfluxDB token")
	flags.String("influx-org", d.Org, "InfluxDB organization")
	flags.String("influx-bucket", d.Bucket, "InfluxDB bucket")

	bindFlag(flags.Lookup("influx-url"), "influx.url")
	bindFlag(flags.Lookup("influx-token"), "influx.token")
	bindFlag(flags.Lookup("influx-org"), "influx.org")
	bindFlag(flags.Lookup("influx-bucket"), "influx.bucket")
}

func influxConfig() *params.InfluxConfig {
	c := params.DefaultInfluxConfig()
	c.URL = viper.GetString("influx.url")
	c.Token = viper.GetString("influx.token")
	c.Org = viper.GetString("influx.org")
	c.Bucket = viper.GetString("influx.bucket")
	return c
}
