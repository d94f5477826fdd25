/*
Package state persists batch runs and finished live sessions under the data directory.

Summaries live in a bbolt database; per-window results of saved runs are
written beside it as gzipped newline-delimited JSON.
*/
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/aggregate"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/catz"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/events"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/params"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/pipeline"
	"github.com/zaidaldasht/motionSense-AI-compitition-raven-team/stream"
	"go.etcd.io/bbolt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

var ErrNotFound = errors.New("not found")

// OpenTimeout bounds the wait for the database file lock.
// Only one writer may hold the database; read-only opens share it.
var OpenTimeout = 5 * time.Second

type State struct {
	DB    *bbolt.DB
	Runs  *catz.Flat
	rOnly bool
}

// RunRecord is the stored summary of a batch run.
type RunRecord struct {
	ID       string               `json:"id"`
	Name     string               `json:"name,omitempty"`
	Started  time.Time            `json:"started"`
	Duration time.Duration        `json:"duration"`
	Samples  int                  `json:"samples"`
	Summary  aggregate.RunSummary `json:"summary"`
}

// SessionRecord is the stored summary of an ended live session.
type SessionRecord struct {
	ID      string               `json:"id"`
	Source  string               `json:"source"`
	Device  string               `json:"device,omitempty"`
	Started time.Time            `json:"started"`
	Ended   time.Time            `json:"ended"`
	Totals  aggregate.RunSummary `json:"totals"`
}

// Open opens the state database in datadir, creating it unless readOnly.
func Open(datadir string, readOnly bool) (*State, error) {
	root := catz.NewFlat(datadir)
	if !readOnly {
		if err := root.Ensure(); err != nil {
			return nil, err
		}
	}
	dbPath := filepath.Join(root.Path(), params.StateDBName)
	if readOnly {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  OpenTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", dbPath, err)
	}
	s := &State{DB: db, Runs: root.Sub(params.RunsDir), rOnly: readOnly}
	if !readOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			for _, b := range [][]byte{params.StateRunsBucket, params.StateSessionsBucket} {
				if _, err := tx.CreateBucketIfNotExists(b); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *State) Close() error {
	return s.DB.Close()
}

func (s *State) storeKV(bucket, key []byte, data []byte) error {
	if key == nil {
		return fmt.Errorf("storeKV: nil key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *State) readKV(bucket, key []byte) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return ErrNotFound
		}
		// Gotcha! The value returned by Get is only valid in the scope of the transaction.
		got := b.Get(key)
		if got == nil {
			return ErrNotFound
		}
		out = slices.Clone(got)
		return nil
	})
	return out, err
}

func listKV[T any](s *State, bucket []byte) ([]T, error) {
	var out []T
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec T
			if err := json.Unmarshal(v, &rec); err != nil {
				slog.Warn("Skipping undecodable record", "bucket", string(bucket), "key", string(k), "error", err)
				return nil
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

func runWindowsName(id string) string {
	return id + ".ndjson.gz"
}

// SaveRun stores the run summary and writes its windows to the runs directory.
func (s *State) SaveRun(run *pipeline.Run) error {
	rec := RunRecord{
		ID:       run.ID,
		Name:     run.Name,
		Started:  run.Started,
		Duration: run.Duration,
		Samples:  run.Samples,
		Summary:  run.Summary,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	w, err := s.Runs.Create(runWindowsName(run.ID))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, r := range run.Windows {
		if err := enc.Encode(r); err != nil {
			w.MaybeClose()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := s.storeKV(params.StateRunsBucket, []byte(run.ID), b); err != nil {
		return err
	}
	slog.Debug("Stored run", "id", run.ID, "windows", len(run.Windows))
	return nil
}

// ReadRun returns a stored run summary.
func (s *State) ReadRun(id string) (*RunRecord, error) {
	b, err := s.readKV(params.StateRunsBucket, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	rec := &RunRecord{}
	return rec, json.Unmarshal(b, rec)
}

// ReadRunWindows returns the stored per-window results of a run.
func (s *State) ReadRunWindows(ctx context.Context, id string) ([]pipeline.WindowResult, error) {
	r, err := s.Runs.Open(runWindowsName(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run %s windows: %w", id, ErrNotFound)
		}
		return nil, err
	}
	defer r.MaybeClose()
	results, skipped := stream.NDJSON[pipeline.WindowResult](ctx, r)
	out := stream.Collect(ctx, results)
	if n := <-skipped; n > 0 {
		return out, fmt.Errorf("run %s: %d undecodable windows", id, n)
	}
	return out, ctx.Err()
}

// DeleteRun removes a stored run and its windows.
func (s *State) DeleteRun(id string) error {
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.StateRunsBucket)
		if b == nil || b.Get([]byte(id)) == nil {
			return fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
	if err != nil {
		return err
	}
	return s.Runs.Remove(runWindowsName(id))
}

// ListRuns returns stored runs, most recent first.
func (s *State) ListRuns() ([]RunRecord, error) {
	runs, err := listKV[RunRecord](s, params.StateRunsBucket)
	slices.SortStableFunc(runs, func(a, b RunRecord) int {
		return b.Started.Compare(a.Started)
	})
	return runs, err
}

// SaveSession stores the totals of an ended session.
func (s *State) SaveSession(ev events.SessionEvent) error {
	rec := SessionRecord{
		ID:      ev.SessionID,
		Source:  ev.Source,
		Device:  ev.Device,
		Started: ev.Started,
		Ended:   ev.Time,
		Totals:  ev.Totals,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.storeKV(params.StateSessionsBucket, []byte(rec.ID), b)
}

// ReadSession returns a stored session.
func (s *State) ReadSession(id string) (*SessionRecord, error) {
	b, err := s.readKV(params.StateSessionsBucket, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	rec := &SessionRecord{}
	return rec, json.Unmarshal(b, rec)
}

// ListSessions returns stored sessions, most recently ended first.
func (s *State) ListSessions() ([]SessionRecord, error) {
	sessions, err := listKV[SessionRecord](s, params.StateSessionsBucket)
	slices.SortStableFunc(sessions, func(a, b SessionRecord) int {
		return b.Ended.Compare(a.Ended)
	})
	return sessions, err
}

// RecordSessions saves every ended session sent on events.SessionFeed until ctx is done.
func (s *State) RecordSessions(ctx context.Context) {
	ch := make(chan events.SessionEvent, 64)
	sub := events.SessionFeed.Subscribe(ch)
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				slog.Error("Session feed subscription failed", "error", err)
			}
			return
		case ev := <-ch:
			if !ev.Ended {
				continue
			}
			if err := s.SaveSession(ev); err != nil {
				slog.Error("Failed to store session", "session", ev.SessionID, "error", err)
			}
		}
	}
}
