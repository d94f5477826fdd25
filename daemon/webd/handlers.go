package webd

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catdb/cache"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catz"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/state"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/types/imu"
	"net/http"
	"strconv"
	"time"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt    time.Time               `json:"started_at"`
	Uptime       string                  `json:"uptime"`
	Config       *params.WebDaemonConfig `json:"config"`
	ModelLoaded  bool                    `json:"model_loaded"`
	ReadConns    int                     `json:"read_conns"`
	WatchConns   int                     `json:"watch_conns"`
	LiveSessions int                     `json:"live_sessions"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt:    s.started,
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		ReadConns:    s.readers.Len(),
		WatchConns:   s.watchers.Len(),
		LiveSessions: len(cache.Sessions()),
		Config:       s.Config,
	}
	if lazy, ok := s.artifacts.(*pipeline.LazyArtifacts); ok {
		st.ModelLoaded = lazy.Loaded()
	} else {
		st.ModelLoaded = s.artifacts != nil
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	if _, err = w.Write(j); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// handleSessions lists live and recently ended sessions held in memory.
func (s *WebDaemon) handleSessions(w http.ResponseWriter, r *http.Request) {
	list := cache.Sessions()
	if list == nil {
		list = []cache.SessionView{}
	}
	s.writeJSON(w, list)
}

// handleSession returns one session, from memory or else from the state store.
func (s *WebDaemon) handleSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if v, ok := cache.GetSession(id); ok {
		s.writeJSON(w, v)
		return
	}
	if s.state == nil {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}
	rec, err := s.state.ReadSession(id)
	if err != nil {
		s.httpStateError(w, err)
		return
	}
	s.writeJSON(w, rec)
}

func (s *WebDaemon) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		s.writeJSON(w, []state.RunRecord{})
		return
	}
	runs, err := s.state.ListRuns()
	if err != nil {
		s.httpStateError(w, err)
		return
	}
	if runs == nil {
		runs = []state.RunRecord{}
	}
	s.writeJSON(w, runs)
}

type runWithWindows struct {
	*state.RunRecord
	Windows []pipeline.WindowResult `json:"windows"`
}

func (s *WebDaemon) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, "no such run", http.StatusNotFound)
		return
	}
	id := mux.Vars(r)["id"]
	rec, err := s.state.ReadRun(id)
	if err != nil {
		s.httpStateError(w, err)
		return
	}
	windows, err := s.state.ReadRunWindows(r.Context(), id)
	if err != nil {
		s.httpStateError(w, err)
		return
	}
	s.writeJSON(w, runWithWindows{RunRecord: rec, Windows: windows})
}

func (s *WebDaemon) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, "no such run", http.StatusNotFound)
		return
	}
	if err := s.state.DeleteRun(mux.Vars(r)["id"]); err != nil {
		s.httpStateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebDaemon) httpStateError(w http.ResponseWriter, err error) {
	if errors.Is(err, state.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("State read failed", "error", err)
	http.Error(w, "state read failed", http.StatusInternalServerError)
}

// handleAnalyze runs the batch pipeline over a CSV recording posted as the body,
// optionally gzipped. ?name= labels the run; ?save=true stores it.
func (s *WebDaemon) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}
	body := r.Body
	if s.Config.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes)
	}
	rc, err := catz.MaybeGZ(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	defer rc.Close()
	samples, err := imu.ReadCSV(rc)
	if err != nil {
		s.logger.Warn("Failed to decode upload", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	q := r.URL.Query()
	run, err := pipeline.Analyze(r.Context(), samples, s.Config.Pipeline, s.artifacts, pipeline.BatchOptions{Name: q.Get("name")})
	if err != nil {
		s.logger.Error("Analyze failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrConfiguration) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, fmt.Sprintf("analyze: %v", err), status)
		return
	}
	if save, _ := strconv.ParseBool(q.Get("save")); save {
		if s.state == nil {
			http.Error(w, "no data directory configured", http.StatusConflict)
			return
		}
		if err := s.state.SaveRun(run); err != nil {
			s.logger.Error("Failed to save run", "run", run.ID, "error", err)
			http.Error(w, "failed to save run", http.StatusInternalServerError)
			return
		}
	}
	s.writeJSON(w, run)
}
