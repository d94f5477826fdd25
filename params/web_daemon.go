package params

import "time"

type WebDaemonConfig struct {
	ListenerConfig
	DataDir string

	// Token, when set, is required as a Bearer token or ?token= on batch endpoints.
	Token string

	// MaxUploadBytes bounds POST /analyze bodies.
	MaxUploadBytes int64

	// WriteWait bounds a websocket write.
	WriteWait time.Duration

	Pipeline *PipelineConfig
	Model    *ModelConfig
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		DataDir:        DefaultDatadirRoot,
		ListenerConfig: DefaultWebListenerConfig(),
		MaxUploadBytes: 64 << 20,
		WriteWait:      10 * time.Second,
		Pipeline:       DefaultPipelineConfig(),
		Model:          DefaultModelConfig(),
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	d := DefaultWebDaemonConfig()
	d.DataDir = ""
	d.ListenerConfig = ListenerConfig{
		Network: "tcp",
		Address: "localhost:3333",
	}
	return d
}
