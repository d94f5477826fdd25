package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"time"
)

// Source names where windows came from.
const (
	SourceWebsocket = "ws"
	SourceMQTT      = "mqtt"
	SourceBatch     = "batch"
)

// WindowEvent describes one classified live window.
type WindowEvent struct {
	SessionID   string    `json:"session"`
	Source      string    `json:"source"`
	Device      string    `json:"device,omitempty"`
	Index       int       `json:"index"`
	Activity    string    `json:"activity"`
	Steps       int       `json:"steps"`
	DistanceM   float64   `json:"distance_m"`
	RotationDeg *float64  `json:"rotation_deg,omitempty"`
	Time        time.Time `json:"time"`
}

// SessionEvent is emitted when a live session or batch run starts and when it ends.
// Totals are only meaningful on end.
type SessionEvent struct {
	SessionID string               `json:"session"`
	Source    string               `json:"source"`
	Device    string               `json:"device,omitempty"`
	Ended     bool                 `json:"ended"`
	Started   time.Time            `json:"started"`
	Time      time.Time            `json:"time"`
	Totals    aggregate.RunSummary `json:"totals"`
}

// WindowFeed is sent every live window result, after it was replied to the client.
var WindowFeed = event.FeedOf[WindowEvent]{}

// SessionFeed is sent session and run starts and ends.
var SessionFeed = event.FeedOf[SessionEvent]{}
