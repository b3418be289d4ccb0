// Package progress defines the event stream emitted during a scan.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageScanStart     Stage = "SCAN_START"
	StageScanProgress  Stage = "SCAN_PROGRESS"
	StagePaperAccepted Stage = "PAPER_ACCEPTED"
	StagePaperMiss     Stage = "PAPER_MISS"
	StageScanDone      Stage = "SCAN_DONE"
	StageScanError     Stage = "SCAN_ERROR"
)

// Event captures a single milestone of scan progress.
type Event struct {
	// RunID uniquely identifies a scan run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Paper is the working-paper number for per-paper stages.
	Paper int
	// Title optionally carries the accepted paper's title.
	Title string
	// Checked and Accepted snapshot the run counters at emit time.
	Checked  int64
	Accepted int64
	// Outcome carries the extraction outcome for miss events.
	Outcome string
	// Dur captures extraction latency where measured.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. stop reason).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageScanStart, StageScanProgress, StageScanDone, StageScanError:
	case StagePaperAccepted:
		if e.Paper <= 0 {
			return errors.New("accepted event requires paper number")
		}
	case StagePaperMiss:
		if e.Paper <= 0 {
			return errors.New("miss event requires paper number")
		}
		if e.Outcome == "" {
			return errors.New("miss event requires outcome")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for sinks that store it.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
