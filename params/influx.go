package params

import "time"

// InfluxConfig configures the InfluxDB exporter. An empty URL disables export.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	FlushInterval time.Duration
}

func DefaultInfluxConfig() *InfluxConfig {
	return &InfluxConfig{
		Bucket:        AppName,
		FlushInterval: 10 * time.Second,
	}
}

func (c *InfluxConfig) Enabled() bool {
	return c != nil && c.URL != ""
}
