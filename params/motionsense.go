package params

import (
	"compress/gzip"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/mitchellh/go-homedir"
	"path/filepath"
	"time"
)

func init() {
	metrics.Enabled = true
}

const (
	AppName   = "motionsense"
	EnvPrefix = "MOTIONSENSE"

	ConfigFileName = "config.yaml"
	StateDBName    = "state.db"
	RunsDir        = "runs"
)

var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, "."+AppName)
}()

var DefaultDatadirRoot = DatadirRoot

var (
	StateRunsBucket     = []byte("runs")
	StateSessionsBucket = []byte("sessions")
)

var DefaultGZipCompressionLevel = gzip.BestCompression

var (
	// CacheSessionTTL is how long a finished live session's totals are remembered in memory.
	CacheSessionTTL = 1 * time.Hour
	// CacheRedeliverySize is how many recent MQTT deliveries are remembered for dedupe.
	CacheRedeliverySize = 10_000
)
