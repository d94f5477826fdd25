package stream

import (
	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/common"
	"log/slog"
	"sync"
	"time"
)

// TickMeter logs throughput of a long-running loop at a fixed interval.
type TickMeter struct {
	name       string
	interval   time.Duration
	started    time.Time
	ticker     *time.Ticker
	done       chan struct{}
	stopOnce   sync.Once
	reg        metrics.Registry
	count      metrics.Counter
	countMeter metrics.Meter
}

// NewTickMeter starts a meter that logs every interval until Stop is called.
// A non-positive interval disables the periodic log; Stop still logs a final line.
func NewTickMeter(name string, interval time.Duration) *TickMeter {
	// Enable metrics package.
	// Won't work without this global setting.
	metrics.Enabled = true

	reg := metrics.NewRegistry()
	rl := &TickMeter{
		name:       name,
		reg:        reg,
		interval:   interval,
		started:    time.Now(),
		done:       make(chan struct{}),
		count:      metrics.NewCounter(),
		countMeter: metrics.NewMeter(),
	}

	if err := reg.Register(name+".count", rl.count); err != nil {
		panic(err)
	}
	if err := reg.Register(name+".meter", rl.countMeter); err != nil {
		panic(err)
	}
	if interval > 0 {
		rl.ticker = time.NewTicker(interval)
		go rl.run()
	}
	return rl
}

// Mark records n processed items.
func (rl *TickMeter) Mark(n int64) {
	rl.count.Inc(n)
	rl.countMeter.Mark(n)
}

// Count returns the total marked so far.
func (rl *TickMeter) Count() int64 {
	return rl.count.Snapshot().Count()
}

func (rl *TickMeter) run() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.ticker.C:
			rl.log()
		}
	}
}

func (rl *TickMeter) log() {
	countSnap := rl.countMeter.Snapshot()
	slog.Info("Processed "+rl.name, "n", humanize.Comma(countSnap.Count()),
		"rate", common.DecimalToFixed(countSnap.RateMean(), 0),
		"running", time.Since(rl.started).Round(time.Millisecond))
}

// Stop ends periodic logging and logs a final line.
func (rl *TickMeter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() {
		close(rl.done)
		if rl.ticker != nil {
			rl.ticker.Stop()
		}
		rl.log()
		rl.countMeter.Stop()
	})
}
