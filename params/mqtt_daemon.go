package params

import "time"

type MQTTDaemonConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string

	// TopicPrefix roots the per-device topics:
	// <prefix>/<device>/imu carries samples in, <prefix>/<device>/activity carries replies out.
	TopicPrefix string
	QoS         byte

	// SessionIdle ends a device's session after this long without samples.
	SessionIdle time.Duration

	Pipeline *PipelineConfig
	Model    *ModelConfig
}

func DefaultMQTTDaemonConfig() *MQTTDaemonConfig {
	return &MQTTDaemonConfig{
		Broker:      "tcp://localhost:1883",
		ClientID:    AppName,
		TopicPrefix: AppName,
		QoS:         1,
		SessionIdle: 5 * time.Minute,
		Pipeline:    DefaultPipelineConfig(),
		Model:       DefaultModelConfig(),
	}
}
