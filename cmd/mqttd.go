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
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/daemon/mqttd"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/metrics/influxdb"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/state"
	"log"
	"log/slog"
)

// mqttdCmd represents the mqttd command
var mqttdCmd = &cobra.Command{
	Use:   "mqttd",
	Short: "Classify live samples from an MQTT broker",
	Long: `Mqttd subscribes to <prefix>/+/imu and answers each device on
<prefix>/<device>/activity, in the same message shapes as the websocket server.

A device's session ends after --session-idle without samples; its totals
are stored in the data directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		ctx, cancel := interruptContext()
		defer cancel()

		config := params.DefaultMQTTDaemonConfig()
		config.Broker = viper.GetString("mqtt.broker")
		config.ClientID = viper.GetString("mqtt.client_id")
		config.Username = viper.GetString("mqtt.username")
		config.Password = viper.GetString("mqtt.password")
		config.TopicPrefix = viper.GetString("mqtt.topic_prefix")
		config.QoS = byte(viper.GetUint("mqtt.qos"))
		config.SessionIdle = viper.GetDuration("mqtt.session_idle")
		config.Pipeline = pipelineConfig()
		config.Model = modelConfig()

		d, err := mqttd.NewMQTTDaemon(config, nil)
		if err != nil {
			log.Fatalln(err)
		}

		st, err := state.Open(viper.GetString("datadir"), false)
		if err != nil {
			log.Fatalln(err)
		}
		defer st.Close()
		go st.RecordSessions(ctx)

		if ic := influxConfig(); ic.Enabled() {
			go influxdb.Run(ctx, ic)
		}
		slog.Info("mqttd.Run")
		if err := d.Run(ctx); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mqttdCmd)

	d := params.DefaultMQTTDaemonConfig()
	pFlags := mqttdCmd.PersistentFlags()
	pFlags.String("broker", d.Broker, "MQTT broker URL")
	pFlags.String("client-id", d.ClientID, "MQTT client ID")
	pFlags.String("username", d.Username, "MQTT username")
	pFlags.String("password", d.Password, "MQTT password")
	pFlags.String("topic-prefix", d.TopicPrefix, "Topic prefix")
	pFlags.Uint("qos", uint(d.QoS), "Subscribe and publish QoS")
	pFlags.Duration("session-idle", d.SessionIdle, "End a device's session after this long without samples")

	bindFlag(pFlags.Lookup("broker"), "mqtt.broker")
	bindFlag(pFlags.Lookup("client-id"), "mqtt.client_id")
	bindFlag(pFlags.Lookup("username"), "mqtt.username")
	bindFlag(pFlags.Lookup("password"), "mqtt.password")
	bindFlag(pFlags.Lookup("topic-prefix"), "mqtt.topic_prefix")
	bindFlag(pFlags.Lookup("qos"), "mqtt.qos")
	bindFlag(pFlags.Lookup("session-idle"), "mqtt.session_idle")
}
