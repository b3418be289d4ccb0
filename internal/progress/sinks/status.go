package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/econlabs/nber-paper-crawler/internal/progress"
)

// Snapshot is the latest aggregate view of a running scan, served by the
// status HTTP endpoint.
type Snapshot struct {
	RunID      string    `json:"run_id"`
	Running    bool      `json:"running"`
	Checked    int64     `json:"checked"`
	Accepted   int64     `json:"accepted"`
	LastPaper  int       `json:"last_paper,omitempty"`
	LastTitle  string    `json:"last_title,omitempty"`
	StopReason string    `json:"stop_reason,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StatusSink keeps an in-memory aggregate of the event stream for the status
// server to read. It is safe for concurrent use.
type StatusSink struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStatusSink returns an empty StatusSink.
func NewStatusSink() *StatusSink {
	return &StatusSink{}
}

// Consume folds the batch into the snapshot.
func (s *StatusSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		s.snap.RunID = evt.RunUUID().String()
		s.snap.Checked = evt.Checked
		s.snap.Accepted = evt.Accepted
		s.snap.UpdatedAt = evt.TS
		switch evt.Stage {
		case progress.StageScanStart:
			s.snap.Running = true
			s.snap.StopReason = ""
		case progress.StagePaperAccepted:
			s.snap.LastPaper = evt.Paper
			s.snap.LastTitle = evt.Title
		case progress.StagePaperMiss:
			s.snap.LastPaper = evt.Paper
		case progress.StageScanDone:
			s.snap.Running = false
			s.snap.StopReason = evt.Note
		case progress.StageScanError:
			s.snap.Running = false
			s.snap.StopReason = "error"
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *StatusSink) Close(context.Context) error {
	return nil
}

// Snapshot returns a copy of the current aggregate view.
func (s *StatusSink) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
