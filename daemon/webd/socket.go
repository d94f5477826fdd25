package webd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/olahol/melody"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"log/slog"
	"net/http"
)

const sessionKey = "session"

// liveReply is the only message shape written to reading clients.
type liveReply struct {
	Activity string `json:"activity,omitempty"`
	Error    string `json:"error,omitempty"`
}

const invalidJSONMessage = "Invalid JSON"

// maxLiveMessageBytes bounds one inbound sample message.
const maxLiveMessageBytes = 4096

// initMelody sets up the websocket handlers.
func (s *WebDaemon) initMelody() {
	s.readers = melody.New()
	s.readers.Config.MaxMessageSize = maxLiveMessageBytes
	if s.Config.WriteWait > 0 {
		s.readers.Config.WriteWait = s.Config.WriteWait
	}

	s.readers.HandleConnect(func(ms *melody.Session) {
		sess, err := pipeline.NewSession(s.Config.Pipeline, s.artifacts, events.SourceWebsocket, ms.Request.RemoteAddr)
		if err != nil {
			s.logger.Error("Failed to start session", "error", err)
			writeReply(ms, liveReply{Error: err.Error()})
			_ = ms.Close()
			return
		}
		ms.Set(sessionKey, sess)
		s.logger.Info("Session connected", "session", sess.ID, "remote", ms.Request.RemoteAddr)
	})

	s.readers.HandleMessage(s.handleReadMessage)

	s.readers.HandleDisconnect(func(ms *melody.Session) {
		sess, ok := sessionOf(ms)
		if !ok {
			return
		}
		totals := sess.Close()
		s.logger.Info("Session disconnected", "session", sess.ID, "samples", sess.Samples(),
			"activity", totals.Label, "steps", totals.Steps)
	})

	s.readers.HandleError(func(ms *melody.Session, e error) {
		s.logger.Warn("Websocket error", "error", e, "remote", ms.Request.RemoteAddr)
	})

	s.watchers = melody.New()
	// Watchers only listen. Log and drop.
	s.watchers.HandleMessage(func(ms *melody.Session, msg []byte) {
		s.logger.Debug("Dropping watcher message", "remote", ms.Request.RemoteAddr, "bytes", len(msg))
	})
}

func sessionOf(ms *melody.Session) (*pipeline.Session, bool) {
	v, ok := ms.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*pipeline.Session)
	return sess, ok
}

func writeReply(ms *melody.Session, r liveReply) {
	b, err := json.Marshal(r)
	if err != nil {
		slog.Error("Failed to marshal reply", "error", err)
		return
	}
	_ = ms.Write(b)
}

// handleReadMessage pushes one sample. Nothing is written until the window is full.
// Errors are replied and never close the connection.
func (s *WebDaemon) handleReadMessage(ms *melody.Session, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered live handler", "panic", r)
			writeReply(ms, liveReply{Error: fmt.Sprint(r)})
		}
	}()
	sess, ok := sessionOf(ms)
	if !ok {
		writeReply(ms, liveReply{Error: "no session"})
		return
	}
	res, err := sess.PushJSON(context.Background(), msg)
	switch {
	case errors.Is(err, pipeline.ErrMalformedInput):
		writeReply(ms, liveReply{Error: invalidJSONMessage})
	case err != nil:
		s.logger.Warn("Live window failed", "session", sess.ID, "error", err)
		writeReply(ms, liveReply{Error: err.Error()})
	case res != nil:
		writeReply(ms, liveReply{Activity: res.Label.String()})
	}
}

func (s *WebDaemon) handleRead(w http.ResponseWriter, r *http.Request) {
	if err := s.readers.HandleRequest(w, r); err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err)
	}
}

func (s *WebDaemon) handleWatch(w http.ResponseWriter, r *http.Request) {
	if err := s.watchers.HandleRequest(w, r); err != nil {
		s.logger.Warn("Websocket upgrade failed", "error", err)
	}
}

// startBroadcast subscribes to events.WindowFeed and sends every live window
// result, as published, to all watchers until ctx is done.
func (s *WebDaemon) startBroadcast(ctx context.Context) {
	windows := make(chan events.WindowEvent, 256)
	sub := events.WindowFeed.Subscribe(windows)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-windows:
				if s.watchers.Len() == 0 {
					continue
				}
				b, err := json.Marshal(ev)
				if err != nil {
					s.logger.Error("Failed to marshal window event", "error", err)
					continue
				}
				if err := s.watchers.Broadcast(b); err != nil {
					s.logger.Warn("Failed to broadcast window event", "error", err)
				}
			case err := <-sub.Err():
				if err != nil {
					s.logger.Error("Window feed subscription failed", "error", err)
				}
				return
			}
		}
	}()
}
