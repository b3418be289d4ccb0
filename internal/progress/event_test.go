package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sampleEvent(stage Stage) Event {
	evt := Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
	}
	switch stage {
	case StagePaperAccepted:
		evt.Paper = 33150
		evt.Title = "A Paper"
	case StagePaperMiss:
		evt.Paper = 33150
		evt.Outcome = "not_found"
	}
	return evt
}

// TestEventValidate covers required fields per stage.
func TestEventValidate(t *testing.T) {
	t.Parallel()

	for _, stage := range []Stage{
		StageScanStart, StageScanProgress, StagePaperAccepted,
		StagePaperMiss, StageScanDone, StageScanError,
	} {
		require.NoError(t, sampleEvent(stage).Validate(), string(stage))
	}

	missingRun := sampleEvent(StageScanStart)
	missingRun.RunID = [16]byte{}
	require.ErrorContains(t, missingRun.Validate(), "run id")

	missingTS := sampleEvent(StageScanStart)
	missingTS.TS = time.Time{}
	require.ErrorContains(t, missingTS.Validate(), "timestamp")

	acceptedNoPaper := sampleEvent(StagePaperAccepted)
	acceptedNoPaper.Paper = 0
	require.ErrorContains(t, acceptedNoPaper.Validate(), "paper number")

	missNoOutcome := sampleEvent(StagePaperMiss)
	missNoOutcome.Outcome = ""
	require.ErrorContains(t, missNoOutcome.Validate(), "outcome")

	unknown := sampleEvent(StageScanStart)
	unknown.Stage = "NOT_A_STAGE"
	require.ErrorContains(t, unknown.Validate(), "unknown stage")
}

// TestRunUUIDRoundTrip verifies the binary and uuid forms agree.
func TestRunUUIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	evt := Event{RunID: UUIDToBytes(id)}
	require.Equal(t, id, evt.RunUUID())
}
