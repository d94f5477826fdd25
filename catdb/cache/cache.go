/*
Package cache holds in-memory views of live activity: the latest window and
state of each recent session, and a dedupe filter for redelivered messages.
*/
package cache

import (
	"context"
	"fmt"
	"github.com/golang/groupcache/lru"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"log/slog"
	"slices"
)

// SessionsTTLCache holds the latest start or end event of each session.
var SessionsTTLCache = ttlcache.New[string, events.SessionEvent](
	ttlcache.WithTTL[string, events.SessionEvent](params.CacheSessionTTL))

// LastWindowTTLCache holds the latest window result of each session.
var LastWindowTTLCache = ttlcache.New[string, events.WindowEvent](
	ttlcache.WithTTL[string, events.WindowEvent](params.CacheSessionTTL))

// SessionView is a session as reported by the live status endpoints.
type SessionView struct {
	events.SessionEvent
	Last *events.WindowEvent `json:"last,omitempty"`
}

func SetSession(ev events.SessionEvent) {
	SessionsTTLCache.Set(ev.SessionID, ev, ttlcache.DefaultTTL)
}

func SetLastWindow(ev events.WindowEvent) {
	LastWindowTTLCache.Set(ev.SessionID, ev, ttlcache.DefaultTTL)
}

// GetSession returns the cached view of a session.
func GetSession(id string) (SessionView, bool) {
	item := SessionsTTLCache.Get(id)
	if item == nil {
		return SessionView{}, false
	}
	v := SessionView{SessionEvent: item.Value()}
	if w := LastWindowTTLCache.Get(id); w != nil {
		last := w.Value()
		v.Last = &last
	}
	return v, true
}

// Sessions returns every cached session, most recently updated first.
func Sessions() []SessionView {
	var out []SessionView
	for _, id := range SessionsTTLCache.Keys() {
		if v, ok := GetSession(id); ok {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b SessionView) int {
		return b.Time.Compare(a.Time)
	})
	return out
}

// Track fills the caches from events.SessionFeed and events.WindowFeed until ctx is done.
func Track(ctx context.Context) {
	go SessionsTTLCache.Start()
	go LastWindowTTLCache.Start()
	defer SessionsTTLCache.Stop()
	defer LastWindowTTLCache.Stop()

	sessions := make(chan events.SessionEvent, 64)
	sessionsSub := events.SessionFeed.Subscribe(sessions)
	defer sessionsSub.Unsubscribe()
	windows := make(chan events.WindowEvent, 256)
	windowsSub := events.WindowFeed.Subscribe(windows)
	defer windowsSub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sessionsSub.Err():
			slog.Warn("Session feed closed", "error", err)
			return
		case err := <-windowsSub.Err():
			slog.Warn("Window feed closed", "error", err)
			return
		case ev := <-sessions:
			SetSession(ev)
		case ev := <-windows:
			SetLastWindow(ev)
			// Refresh the session so it outlives its last window.
			if item := SessionsTTLCache.Get(ev.SessionID); item != nil {
				s := item.Value()
				s.Time = ev.Time
				SetSession(s)
			}
		}
	}
}

// Delivery identifies one received broker message.
type Delivery struct {
	Topic     string
	MessageID uint16
	Payload   []byte
}

// NewDedupePassLRUFunc returns a filter which is true for deliveries
// not seen among the last size distinct deliveries.
// Message IDs are reused by brokers, so the payload is part of the key.
func NewDedupePassLRUFunc(size int) func(Delivery) bool {
	if size <= 0 {
		size = 10_000
	}
	var dedupeCache = lru.New(size)
	return func(d Delivery) bool {
		hash, err := hashstructure.Hash(d, hashstructure.FormatV2, nil)
		if err != nil {
			return false
		}
		key := fmt.Sprintf("%d", hash)
		_, ok := dedupeCache.Get(key)
		if ok {
			return false
		}
		dedupeCache.Add(key, true)
		return true
	}
}
